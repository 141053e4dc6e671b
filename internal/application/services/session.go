package services

import (
	"context"
	"sync"

	"github.com/flowboard/core/internal/domain/entities"
	"github.com/flowboard/core/internal/ports"
)

// Session is the signed-in state of one client: its token and the user the
// token resolved to.
type Session struct {
	auth *AuthService

	mu    sync.RWMutex
	token string
	user  *entities.User
}

func NewSession(auth *AuthService) *Session {
	return &Session{auth: auth}
}

// Init resolves an existing token. A token that does not resolve is
// dropped and the session stays signed out.
func (s *Session) Init(ctx context.Context, token string) error {
	user, err := s.auth.CurrentUser(ctx, token)
	if err != nil {
		s.clear()
		return err
	}
	s.set(token, user)
	return nil
}

func (s *Session) Login(ctx context.Context, req ports.LoginRequest) (*ports.AuthResponse, error) {
	resp, err := s.auth.Login(ctx, req)
	if err != nil {
		return nil, err
	}
	s.set(resp.Token, resp.User)
	return resp, nil
}

func (s *Session) Register(ctx context.Context, req ports.RegisterRequest) (*ports.AuthResponse, error) {
	resp, err := s.auth.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	s.set(resp.Token, resp.User)
	return resp, nil
}

// Teardown signs out and clears the session even when sign-out fails.
func (s *Session) Teardown(ctx context.Context) error {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()

	var err error
	if token != "" {
		err = s.auth.Logout(ctx, token)
	}
	s.clear()
	return err
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the signed-in user.
func (s *Session) User() (entities.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return entities.User{}, false
	}
	return *s.user, true
}

// Viewer returns the authorization input for the signed-in user.
func (s *Session) Viewer() (entities.Viewer, bool) {
	user, ok := s.User()
	if !ok {
		return entities.Viewer{}, false
	}
	return user.Viewer(), true
}

// Context attaches the session token for store calls made on the user's
// behalf.
func (s *Session) Context(ctx context.Context) context.Context {
	if token := s.Token(); token != "" {
		return ports.WithAccessToken(ctx, token)
	}
	return ctx
}

func (s *Session) set(token string, user *entities.User) {
	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()
}

func (s *Session) clear() {
	s.set("", nil)
}
