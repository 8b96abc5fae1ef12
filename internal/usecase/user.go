package usecase

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

type UserUseCase interface {
	Register(ctx context.Context, username, email, password string) (*entity.User, string, error)
	Login(ctx context.Context, email, password string) (*entity.User, string, error)
}

type userRepo interface {
	Save(ctx context.Context, user *entity.User) error
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
}

type authService interface {
	GenerateToken(email, username string) (string, error)
}

type userUseCase struct {
	repo userRepo
	auth authService
}

func NewUserUseCase(repo userRepo, auth authService) UserUseCase {
	return &userUseCase{
		repo: repo,
		auth: auth,
	}
}

// Register - creates an account and issues a session token.
func (that *userUseCase) Register(ctx context.Context, username, email, password string) (*entity.User, string, error) {
	_, err := that.repo.FindByEmail(ctx, email)
	if err == nil {
		return nil, "", apperror.ErrUserAlreadyExists
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}

	if err = that.repo.Save(ctx, user); err != nil {
		return nil, "", fmt.Errorf("failed to save user: %w", err)
	}

	token, err := that.auth.GenerateToken(user.Email, user.Username)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return user, token, nil
}

// Login - verifies credentials and issues a session token.
func (that *userUseCase) Login(ctx context.Context, email, password string) (*entity.User, string, error) {
	user, err := that.repo.FindByEmail(ctx, email)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, "", apperror.ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", apperror.ErrInvalidCredentials
	}

	token, err := that.auth.GenerateToken(user.Email, user.Username)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return user, token, nil
}
