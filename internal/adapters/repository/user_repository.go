package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/flowboard/core/internal/adapters/rowmap"
	"github.com/flowboard/core/internal/domain/entities"
	"github.com/flowboard/core/internal/ports"
)

// UserRepositoryImpl implements the UserRepository interface
type UserRepositoryImpl struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) ports.UserRepository {
	return &UserRepositoryImpl{db: db}
}

// userRow scans created_at as text or timestamp, whichever the driver yields.
type userRow struct {
	ID           int64    `db:"id"`
	Email        string   `db:"email"`
	Name         string   `db:"name"`
	Role         string   `db:"role"`
	PasswordHash string   `db:"password_hash"`
	CreatedAt    scanTime `db:"created_at"`
}

type scanTime struct {
	time.Time
}

func (t *scanTime) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		t.Time = v
	case string:
		parsed, ok := rowmap.ParseTime(v)
		if !ok {
			return fmt.Errorf("unparseable time %q", v)
		}
		t.Time = parsed
	case []byte:
		return t.Scan(string(v))
	case nil:
		t.Time = time.Time{}
	default:
		return fmt.Errorf("unsupported time type %T", src)
	}
	return nil
}

func (u userRow) record() *ports.UserRecord {
	return &ports.UserRecord{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Role:         entities.Role(u.Role),
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt.Time,
	}
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *ports.UserRecord) error {
	query := r.db.Rebind(`
		INSERT INTO users (email, name, role, password_hash)
		VALUES (?, ?, ?, ?)
		RETURNING id, created_at`)

	var (
		id        int64
		createdAt scanTime
	)
	err := r.db.QueryRowxContext(ctx, query,
		strings.ToLower(user.Email), user.Name, string(user.Role), user.PasswordHash,
	).Scan(&id, &createdAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ports.ErrEmailTaken
		}
		return fmt.Errorf("create user: %w", err)
	}

	user.ID = id
	user.Email = strings.ToLower(user.Email)
	user.CreatedAt = createdAt.Time
	return nil
}

func (r *UserRepositoryImpl) GetByID(ctx context.Context, id int64) (*ports.UserRecord, error) {
	query := r.db.Rebind(`
		SELECT id, email, name, role, password_hash, created_at
		FROM users
		WHERE id = ?`)

	var row userRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ports.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}

	return row.record(), nil
}

func (r *UserRepositoryImpl) GetByEmail(ctx context.Context, email string) (*ports.UserRecord, error) {
	query := r.db.Rebind(`
		SELECT id, email, name, role, password_hash, created_at
		FROM users
		WHERE email = ?`)

	var row userRow
	if err := r.db.GetContext(ctx, &row, query, strings.ToLower(email)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ports.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	return row.record(), nil
}

// isUniqueViolation matches lib/pq's unique_violation code and sqlite's
// constraint message.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
