package service

import (
	"context"
	"testing"
	"time"

	apperrors "github.com/dkoval/shoply/internal/errors"
	"github.com/dkoval/shoply/internal/store"
	"github.com/dkoval/shoply/pkg/auth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testTokenManager() *auth.TokenManager {
	return auth.NewTokenManager("0123456789abcdef0123456789abcdef", "shoply-test", time.Hour)
}

func TestAuthService_Register(t *testing.T) {
	t.Run("hashes the password and issues a token", func(t *testing.T) {
		users := &mockUserStore{}
		svc := NewAuthService(users, testTokenManager())

		result, err := svc.Register(context.Background(), RegisterDto{
			Email: "new@example.com", Password: "s3cret-pass", FullName: "New User",
		})

		require.NoError(t, err)
		assert.NotEmpty(t, result.AccessToken)
		assert.Equal(t, "Bearer", result.TokenType)
		assert.Equal(t, int64(3600), result.ExpiresIn)
		assert.Equal(t, "new@example.com", result.User.Email)

		assert.NotEqual(t, "s3cret-pass", users.passwordHash, "password must not be stored in clear")
		require.NoError(t, bcrypt.CompareHashAndPassword([]byte(users.passwordHash), []byte("s3cret-pass")))
	})

	t.Run("duplicate email passes through", func(t *testing.T) {
		users := &mockUserStore{createErr: apperrors.ErrEmailTaken}
		svc := NewAuthService(users, testTokenManager())

		_, err := svc.Register(context.Background(), RegisterDto{
			Email: "taken@example.com", Password: "s3cret-pass", FullName: "New User",
		})

		require.ErrorIs(t, err, apperrors.ErrEmailTaken)
	})
}

func TestAuthService_Login(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &store.User{ID: uuid.New(), Email: "user@example.com", PasswordHash: string(hash), FullName: "User", IsActive: true}

	t.Run("valid credentials", func(t *testing.T) {
		svc := NewAuthService(&mockUserStore{user: user}, testTokenManager())

		result, err := svc.Login(context.Background(), LoginDto{Email: "user@example.com", Password: "s3cret-pass"})

		require.NoError(t, err)
		assert.NotEmpty(t, result.AccessToken)
		assert.Equal(t, user.ID, result.User.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc := NewAuthService(&mockUserStore{user: user}, testTokenManager())

		_, err := svc.Login(context.Background(), LoginDto{Email: "user@example.com", Password: "wrong"})

		require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("unknown email maps to invalid credentials", func(t *testing.T) {
		svc := NewAuthService(&mockUserStore{findErr: apperrors.ErrUserNotFound}, testTokenManager())

		_, err := svc.Login(context.Background(), LoginDto{Email: "ghost@example.com", Password: "whatever"})

		require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})
}

func TestUserService_ChangePassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("old-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &store.User{ID: uuid.New(), PasswordHash: string(hash), IsActive: true}

	t.Run("verifies the current password", func(t *testing.T) {
		users := &mockUserStore{user: user}
		svc := NewUserService(users, &mockProductStore{})

		err := svc.ChangePassword(context.Background(), user.ID, PasswordChangeDto{
			CurrentPassword: "old-pass", NewPassword: "new-pass-123",
		})

		require.NoError(t, err)
		require.NoError(t, bcrypt.CompareHashAndPassword([]byte(users.passwordHash), []byte("new-pass-123")))
	})

	t.Run("rejects a wrong current password", func(t *testing.T) {
		svc := NewUserService(&mockUserStore{user: user}, &mockProductStore{})

		err := svc.ChangePassword(context.Background(), user.ID, PasswordChangeDto{
			CurrentPassword: "not-it", NewPassword: "new-pass-123",
		})

		require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})
}
