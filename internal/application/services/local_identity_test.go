package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowboard/core/internal/adapters/repository"
	"github.com/flowboard/core/internal/domain/entities"
	"github.com/flowboard/core/internal/infrastructure/config"
	"github.com/flowboard/core/internal/infrastructure/database"
	"github.com/flowboard/core/internal/infrastructure/logger"
	"github.com/flowboard/core/internal/ports"
)

func newTestLocalIdentity(t *testing.T) *LocalIdentity {
	t.Helper()
	db, err := database.New("sqlite", config.DatabaseConfig{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewLocalIdentity(repository.NewUserRepository(db.DB), config.JWTConfig{
		Secret:    "test-secret",
		ExpiresIn: time.Hour,
		Issuer:    "flowboard-test",
	}, "botnoigroup.com", logger.NewNop())
}

func TestLocalIdentityRoundTrip(t *testing.T) {
	ctx := context.Background()
	provider := newTestLocalIdentity(t)
	auth := NewAuthService(provider, nil, 0, "botnoigroup.com", logger.NewNop())

	registered, err := auth.Register(ctx, ports.RegisterRequest{
		Email: "dao@botnoigroup.com", Name: "Dao", Password: "secret1", ConfirmPassword: "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), registered.User.ID)
	assert.Equal(t, entities.RoleMember, registered.User.Role)
	assert.NotEmpty(t, registered.Token)

	guest, err := auth.Register(ctx, ports.RegisterRequest{
		Email: "visitor@gmail.com", Name: "Visitor", Password: "secret2", ConfirmPassword: "secret2",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), guest.User.ID)
	assert.Equal(t, entities.RoleGuest, guest.User.Role)

	loggedIn, err := auth.Login(ctx, ports.LoginRequest{Email: "dao@botnoigroup.com", Password: "secret1"})
	require.NoError(t, err)

	me, err := auth.CurrentUser(ctx, loggedIn.Token)
	require.NoError(t, err)
	assert.Equal(t, "Dao", me.Name)
	assert.Equal(t, int64(1), me.ID)

	require.NoError(t, auth.Logout(ctx, loggedIn.Token))
	_, err = auth.CurrentUser(ctx, loggedIn.Token)
	var authErr *entities.AuthError
	assert.True(t, errors.As(err, &authErr))

	// other tokens of the same user stay valid
	_, err = auth.CurrentUser(ctx, registered.Token)
	assert.NoError(t, err)
}

func TestLocalIdentityRejections(t *testing.T) {
	ctx := context.Background()
	provider := newTestLocalIdentity(t)

	_, err := provider.CreateUser(ctx, "dao@botnoigroup.com", "Dao", "secret1", entities.RoleMember)
	require.NoError(t, err)

	_, err = provider.SignIn(ctx, "dao@botnoigroup.com", "wrong-password")
	assert.ErrorIs(t, err, errInvalidCredentials)

	_, err = provider.SignIn(ctx, "nobody@botnoigroup.com", "secret1")
	assert.ErrorIs(t, err, errInvalidCredentials)

	_, err = provider.SignUp(ctx, "dao@botnoigroup.com", "secret1", map[string]any{"name": "Again"})
	assert.ErrorIs(t, err, ports.ErrEmailTaken)

	_, err = provider.CreateUser(ctx, "short@botnoigroup.com", "Short", "123", entities.RoleMember)
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	_, err = provider.GetUser(ctx, "not-a-jwt")
	assert.Error(t, err)
}

func TestLocalIdentityExpiredToken(t *testing.T) {
	ctx := context.Background()
	provider := newTestLocalIdentity(t)

	identity, err := provider.SignUp(ctx, "dao@botnoigroup.com", "secret1", map[string]any{"name": "Dao"})
	require.NoError(t, err)
	assert.Equal(t, "member", identity.User.AppMetadata["role"])
	assert.NotContains(t, identity.User.Metadata, "role")

	provider.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = provider.GetUser(ctx, identity.AccessToken)
	assert.Error(t, err)
}
