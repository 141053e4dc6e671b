package ports

import (
	"context"
	"errors"
	"time"

	"github.com/flowboard/core/internal/domain/entities"
)

// ErrCacheMiss is returned by a SessionCache that holds nothing for a token.
var ErrCacheMiss = errors.New("session not cached")

// Row is a flat persisted record keyed by snake_case column name.
type Row map[string]any

// Order selects the ordering column of a select.
type Order struct {
	Column    string
	Ascending bool
}

// OrderByID is the board's canonical ordering.
var OrderByID = Order{Column: "id", Ascending: true}

// TableStore is the generic filterable, orderable row store behind the task
// table. Every method is one round trip.
type TableStore interface {
	SelectAll(ctx context.Context, table string, order Order) ([]Row, error)
	SelectEq(ctx context.Context, table, column string, value any, order Order) ([]Row, error)
	// Insert returns the stored row, or nil when the store returned nothing.
	Insert(ctx context.Context, table string, row Row) (Row, error)
	// UpdateByID returns the updated row, or nil when no row matched.
	UpdateByID(ctx context.Context, table string, id int64, patch Row) (Row, error)
	// DeleteByID succeeds when zero rows match.
	DeleteByID(ctx context.Context, table string, id int64) error
}

// IdentityUser is a user record as held by the identity service.
// Metadata is writable by the user and only carries display fields.
// AppMetadata is written by the service operator and is the only source of
// role and numeric user id.
type IdentityUser struct {
	ID          string         `json:"id"`
	Email       string         `json:"email"`
	Metadata    map[string]any `json:"user_metadata"`
	AppMetadata map[string]any `json:"app_metadata"`
	CreatedAt   *time.Time     `json:"created_at,omitempty"`
}

// Identity is a signed-in user together with its access token.
type Identity struct {
	User        IdentityUser
	AccessToken string
}

// IdentityProvider is the hosted identity service.
type IdentityProvider interface {
	SignUp(ctx context.Context, email, password string, profile map[string]any) (*Identity, error)
	SignIn(ctx context.Context, email, password string) (*Identity, error)
	SignOut(ctx context.Context, accessToken string) error
	GetUser(ctx context.Context, accessToken string) (*IdentityUser, error)
}

// SessionCache holds viewers already resolved for an access token.
type SessionCache interface {
	Get(ctx context.Context, token string) (*entities.User, error)
	Set(ctx context.Context, token string, user *entities.User, ttl time.Duration) error
	Delete(ctx context.Context, token string) error
}

// User records of the local identity provider
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

// UserRecord is a locally stored identity.
type UserRecord struct {
	ID           int64
	Email        string
	Name         string
	Role         entities.Role
	PasswordHash string
	CreatedAt    time.Time
}

// UserRepository persists local identities.
type UserRepository interface {
	Create(ctx context.Context, user *UserRecord) error
	GetByID(ctx context.Context, id int64) (*UserRecord, error)
	GetByEmail(ctx context.Context, email string) (*UserRecord, error)
}
