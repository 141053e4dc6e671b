package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/flowboard/core/internal/domain/entities"
	"github.com/flowboard/core/internal/infrastructure/config"
	"github.com/flowboard/core/internal/infrastructure/logger"
	"github.com/flowboard/core/internal/ports"
)

var errInvalidCredentials = errors.New("invalid login credentials")

// Claims represents the JWT claims issued by the local identity provider
type Claims struct {
	UserID int64         `json:"user_id"`
	Email  string        `json:"email"`
	Role   entities.Role `json:"role"`
	jwt.RegisteredClaims
}

// LocalIdentity is an in-process identity provider for boards that run
// against their own database. Passwords are bcrypt hashes and access tokens
// are HS256 JWTs.
type LocalIdentity struct {
	users     ports.UserRepository
	jwtConfig config.JWTConfig
	orgDomain string
	logger    *logger.Logger

	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

// NewLocalIdentity creates a provider over users.
func NewLocalIdentity(users ports.UserRepository, jwtConfig config.JWTConfig, orgDomain string, logger *logger.Logger) *LocalIdentity {
	return &LocalIdentity{
		users:     users,
		jwtConfig: jwtConfig,
		orgDomain: orgDomain,
		logger:    logger.WithComponent("local_identity"),
		revoked:   make(map[string]time.Time),
		now:       time.Now,
	}
}

func (l *LocalIdentity) SignUp(ctx context.Context, email, password string, profile map[string]any) (*ports.Identity, error) {
	name, _ := profile["name"].(string)
	role := entities.DeriveRole(email, l.orgDomain)

	record, err := l.CreateUser(ctx, email, name, password, role)
	if err != nil {
		return nil, &entities.AuthError{Op: "sign_up", Err: err}
	}

	token, err := l.issue(record)
	if err != nil {
		return nil, &entities.AuthError{Op: "sign_up", Err: err}
	}
	return &ports.Identity{User: identityUser(record), AccessToken: token}, nil
}

func (l *LocalIdentity) SignIn(ctx context.Context, email, password string) (*ports.Identity, error) {
	record, err := l.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ports.ErrUserNotFound) {
			return nil, &entities.AuthError{Op: "sign_in", Err: errInvalidCredentials}
		}
		return nil, &entities.AuthError{Op: "sign_in", Err: err}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(record.PasswordHash), []byte(password)); err != nil {
		l.logger.LogSecurityEvent("invalid_password", record.ID, "", map[string]interface{}{"email": record.Email})
		return nil, &entities.AuthError{Op: "sign_in", Err: errInvalidCredentials}
	}

	token, err := l.issue(record)
	if err != nil {
		return nil, &entities.AuthError{Op: "sign_in", Err: err}
	}
	return &ports.Identity{User: identityUser(record), AccessToken: token}, nil
}

// SignOut revokes the token until it would have expired anyway.
func (l *LocalIdentity) SignOut(_ context.Context, accessToken string) error {
	claims, err := l.parse(accessToken)
	if err != nil {
		return &entities.AuthError{Op: "sign_out", Err: err}
	}

	expires := l.now().Add(l.jwtConfig.ExpiresIn)
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}

	l.mu.Lock()
	l.revoked[claims.ID] = expires
	l.pruneLocked()
	l.mu.Unlock()
	return nil
}

func (l *LocalIdentity) GetUser(ctx context.Context, accessToken string) (*ports.IdentityUser, error) {
	claims, err := l.parse(accessToken)
	if err != nil {
		return nil, &entities.AuthError{Op: "get_user", Err: err}
	}

	l.mu.Lock()
	_, revoked := l.revoked[claims.ID]
	l.mu.Unlock()
	if revoked {
		return nil, &entities.AuthError{Op: "get_user", Err: errors.New("token has been revoked")}
	}

	record, err := l.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, &entities.AuthError{Op: "get_user", Err: err}
	}

	user := identityUser(record)
	return &user, nil
}

// CreateUser stores a new identity. It backs both sign-up and the
// `user create` command.
func (l *LocalIdentity) CreateUser(ctx context.Context, email, name, password string, role entities.Role) (*ports.UserRecord, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, errors.New("email is required")
	}
	if len(password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if !role.IsValid() {
		role = entities.DeriveRole(email, l.orgDomain)
	}
	if name == "" {
		name = email
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	record := &ports.UserRecord{
		Email:        email,
		Name:         name,
		Role:         role,
		PasswordHash: string(hash),
	}
	if err := l.users.Create(ctx, record); err != nil {
		return nil, err
	}

	l.logger.Infow("User created", "user_id", record.ID, "email", record.Email, "role", record.Role)
	return record, nil
}

func (l *LocalIdentity) issue(record *ports.UserRecord) (string, error) {
	now := l.now()
	claims := &Claims{
		UserID: record.ID,
		Email:  record.Email,
		Role:   record.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(l.jwtConfig.ExpiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    l.jwtConfig.Issuer,
			Subject:   strconv.FormatInt(record.ID, 10),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(l.jwtConfig.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (l *LocalIdentity) parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(l.jwtConfig.Secret), nil
	}, jwt.WithTimeFunc(l.now))
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

func (l *LocalIdentity) pruneLocked() {
	now := l.now()
	for id, expires := range l.revoked {
		if now.After(expires) {
			delete(l.revoked, id)
		}
	}
}

func identityUser(record *ports.UserRecord) ports.IdentityUser {
	createdAt := record.CreatedAt
	return ports.IdentityUser{
		ID:    strconv.FormatInt(record.ID, 10),
		Email: record.Email,
		Metadata: map[string]any{
			"name": record.Name,
		},
		AppMetadata: map[string]any{
			"role":    string(record.Role),
			"user_id": record.ID,
		},
		CreatedAt: &createdAt,
	}
}
