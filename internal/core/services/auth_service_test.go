package services

import (
	"context"
	"testing"

	"alfa-sacco/internal/adapters/persistence/repositories"
	"alfa-sacco/internal/config"
	"alfa-sacco/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAuthService(db *gorm.DB) *AuthService {
	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:           "test-secret",
			RefreshSecret:    "test-refresh-secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
	}
	return NewAuthService(repositories.NewUserRepository(db), repositories.NewRefreshTokenRepository(db), cfg)
}

func TestRegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	registered, err := svc.Register(context.Background(), &RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)
	assert.Equal(t, string(domain.RoleMember), registered.User.Role)
	assert.NotEmpty(t, registered.AccessToken)
	assert.NotEmpty(t, registered.RefreshToken)

	loggedIn, err := svc.Login(context.Background(), &LoginInput{Username: "alice", Password: "supersecret"})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)

	_, err = svc.Login(context.Background(), &LoginInput{Username: "alice", Password: "wrongpass"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestRegisterRejectsDuplicatesAndWeakPasswords(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	_, err := svc.Register(context.Background(), &RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "short",
	})
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = svc.Register(context.Background(), &RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "supersecret",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), &RegisterInput{
		Username: "alice", Email: "other@example.com", Password: "supersecret",
	})
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
}

func TestRefreshTokenRotation(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	registered, err := svc.Register(context.Background(), &RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "supersecret",
	})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), registered.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, registered.RefreshToken, refreshed.RefreshToken)

	// The used token is revoked and cannot be replayed
	_, err = svc.RefreshToken(context.Background(), registered.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	// The rotated token still works
	_, err = svc.RefreshToken(context.Background(), refreshed.RefreshToken)
	require.NoError(t, err)
}

func TestLogoutRevokesToken(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	registered, err := svc.Register(context.Background(), &RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "supersecret",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), registered.RefreshToken))

	_, err = svc.RefreshToken(context.Background(), registered.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestInactiveUserCannotLogin(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	registered, err := svc.Register(context.Background(), &RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "supersecret",
	})
	require.NoError(t, err)

	require.NoError(t, db.Table("users").Where("id = ?", registered.User.ID).Update("is_active", false).Error)

	_, err = svc.Login(context.Background(), &LoginInput{Username: "alice", Password: "supersecret"})
	assert.ErrorIs(t, err, domain.ErrUserInactive)
}
