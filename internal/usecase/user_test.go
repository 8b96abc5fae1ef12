package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/rocketscienceinc/gomoku-backend/internal/service"
)

// fakeUserRepo - in-memory stand-in for the sqlite repository.
type fakeUserRepo struct {
	users map[string]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*entity.User)}
}

func (that *fakeUserRepo) Save(_ context.Context, user *entity.User) error {
	that.users[user.Email] = user
	return nil
}

func (that *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	user, ok := that.users[email]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	return user, nil
}

func TestUserUseCase_Register(t *testing.T) {
	t.Run("Registers a new user and issues a token", func(t *testing.T) {
		// Given: an empty repository
		repo := newFakeUserRepo()
		uc := NewUserUseCase(repo, service.NewAuthService("test-secret"))

		// When: registering
		user, token, err := uc.Register(context.Background(), "player", "player@example.com", "hunter2")

		// Then: the user is stored with a hashed password
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, "player", user.Username)
		assert.NotEmpty(t, user.PasswordHash)
		assert.NotEqual(t, "hunter2", user.PasswordHash)
	})

	t.Run("Fails when the email is taken", func(t *testing.T) {
		repo := newFakeUserRepo()
		uc := NewUserUseCase(repo, service.NewAuthService("test-secret"))

		_, _, err := uc.Register(context.Background(), "player", "player@example.com", "hunter2")
		require.NoError(t, err)

		_, _, err = uc.Register(context.Background(), "other", "player@example.com", "hunter3")

		require.ErrorIs(t, err, apperror.ErrUserAlreadyExists)
	})
}

func TestUserUseCase_Login(t *testing.T) {
	t.Run("Logs in with the right password", func(t *testing.T) {
		// Given: a registered user
		repo := newFakeUserRepo()
		uc := NewUserUseCase(repo, service.NewAuthService("test-secret"))
		_, _, err := uc.Register(context.Background(), "player", "player@example.com", "hunter2")
		require.NoError(t, err)

		// When: logging in
		user, token, err := uc.Login(context.Background(), "player@example.com", "hunter2")

		// Then: credentials check out
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, "player", user.Username)
	})

	t.Run("Rejects a wrong password", func(t *testing.T) {
		repo := newFakeUserRepo()
		uc := NewUserUseCase(repo, service.NewAuthService("test-secret"))
		_, _, err := uc.Register(context.Background(), "player", "player@example.com", "hunter2")
		require.NoError(t, err)

		_, _, err = uc.Login(context.Background(), "player@example.com", "wrong")

		require.ErrorIs(t, err, apperror.ErrInvalidCredentials)
	})

	t.Run("Rejects an unknown email", func(t *testing.T) {
		repo := newFakeUserRepo()
		uc := NewUserUseCase(repo, service.NewAuthService("test-secret"))

		_, _, err := uc.Login(context.Background(), "nobody@example.com", "hunter2")

		require.ErrorIs(t, err, apperror.ErrInvalidCredentials)
	})
}
