package services

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/flowboard/core/internal/domain/entities"
	"github.com/flowboard/core/internal/infrastructure/logger"
	"github.com/flowboard/core/internal/ports"
)

// MinPasswordLength is the shortest password the register flow accepts.
const MinPasswordLength = 6

// Registration form errors, checked before the identity service is called
var (
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	ErrPasswordMismatch = errors.New("passwords do not match")
)

// AuthService signs users up, in and out against the identity provider and
// resolves access tokens to board users.
type AuthService struct {
	provider  ports.IdentityProvider
	cache     ports.SessionCache
	cacheTTL  time.Duration
	orgDomain string
	logger    *logger.Logger
}

// NewAuthService creates an auth service. cache may be nil.
func NewAuthService(provider ports.IdentityProvider, cache ports.SessionCache, cacheTTL time.Duration, orgDomain string, logger *logger.Logger) *AuthService {
	return &AuthService{
		provider:  provider,
		cache:     cache,
		cacheTTL:  cacheTTL,
		orgDomain: orgDomain,
		logger:    logger.WithComponent("auth"),
	}
}

// ValidateRegistration checks the register form the way the page does.
func ValidateRegistration(req ports.RegisterRequest) error {
	if len(req.Password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if req.Password != req.ConfirmPassword {
		return ErrPasswordMismatch
	}
	return nil
}

// Register creates an identity. Only the display name is sent as profile
// metadata; the role is resolved from app metadata or the email domain.
func (s *AuthService) Register(ctx context.Context, req ports.RegisterRequest) (*ports.AuthResponse, error) {
	if err := ValidateRegistration(req); err != nil {
		return nil, err
	}

	identity, err := s.provider.SignUp(ctx, req.Email, req.Password, map[string]any{
		"name": req.Name,
	})
	if err != nil {
		return nil, asAuthError("sign_up", err)
	}

	user := s.toUser(identity.User)
	s.remember(ctx, identity.AccessToken, user)
	s.logger.Infow("User registered", "user_id", user.ID, "email", user.Email, "role", user.Role)

	return &ports.AuthResponse{User: user, Token: identity.AccessToken}, nil
}

// Login signs in with email and password.
func (s *AuthService) Login(ctx context.Context, req ports.LoginRequest) (*ports.AuthResponse, error) {
	identity, err := s.provider.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		s.logger.Warnw("Login failed", "email", req.Email, "error", err)
		return nil, asAuthError("sign_in", err)
	}

	user := s.toUser(identity.User)
	s.remember(ctx, identity.AccessToken, user)
	s.logger.Infow("User logged in", "user_id", user.ID, "email", user.Email)

	return &ports.AuthResponse{User: user, Token: identity.AccessToken}, nil
}

// Logout forgets the token locally and signs it out at the provider.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if s.cache != nil {
		if err := s.cache.Delete(ctx, token); err != nil {
			s.logger.Warnw("Session cache delete failed", "error", err)
		}
	}
	if err := s.provider.SignOut(ctx, token); err != nil {
		return asAuthError("sign_out", err)
	}
	return nil
}

// CurrentUser resolves an access token, consulting the session cache first.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*entities.User, error) {
	if token == "" {
		return nil, &entities.AuthError{Op: "get_user", Err: entities.ErrUnauthorized}
	}

	if s.cache != nil {
		user, err := s.cache.Get(ctx, token)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, ports.ErrCacheMiss) {
			s.logger.Warnw("Session cache read failed", "error", err)
		}
	}

	identity, err := s.provider.GetUser(ctx, token)
	if err != nil {
		return nil, asAuthError("get_user", err)
	}

	user := s.toUser(*identity)
	s.remember(ctx, token, user)
	return user, nil
}

func (s *AuthService) remember(ctx context.Context, token string, user *entities.User) {
	if s.cache == nil || token == "" {
		return
	}
	if err := s.cache.Set(ctx, token, user, s.cacheTTL); err != nil {
		s.logger.Warnw("Session cache write failed", "error", err)
	}
}

func (s *AuthService) toUser(u ports.IdentityUser) *entities.User {
	name, _ := u.Metadata["name"].(string)
	if name == "" {
		name = u.Email
	}
	return &entities.User{
		ID:        IdentityUserID(u),
		Email:     u.Email,
		Name:      name,
		Role:      entities.ResolveRole(u.AppMetadata, u.Email, s.orgDomain),
		CreatedAt: u.CreatedAt,
	}
}

// IdentityUserID maps an identity to the integer id tasks are owned by.
// A numeric user_id in app metadata wins, then a numeric provider id.
// Otherwise the id is derived from the provider's UUID so it is stable
// across sessions. The user-writable profile metadata is never consulted.
func IdentityUserID(u ports.IdentityUser) int64 {
	switch v := u.AppMetadata["user_id"].(type) {
	case int64:
		if v > 0 {
			return v
		}
	case float64:
		if v > 0 {
			return int64(v)
		}
	case json.Number:
		if n, err := v.Int64(); err == nil && n > 0 {
			return n
		}
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
	}

	if n, err := strconv.ParseInt(strings.TrimSpace(u.ID), 10, 64); err == nil {
		return n
	}

	if id, err := uuid.Parse(u.ID); err == nil {
		n := int64(binary.BigEndian.Uint64(id[:8]) & 0x7fffffffffffffff)
		if n == 0 {
			n = 1
		}
		return n
	}
	return 0
}

// asAuthError keeps provider errors verbatim while giving them the AuthError
// type.
func asAuthError(op string, err error) error {
	var authErr *entities.AuthError
	if errors.As(err, &authErr) {
		return err
	}
	return &entities.AuthError{Op: op, Err: err}
}
