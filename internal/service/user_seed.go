package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"go-token-auth/internal/model"
)

type userCreator interface {
	FindByEmail(ctx context.Context, email string) (model.User, error)
	Create(ctx context.Context, u model.User) error
}

// SeedUser creates a user with a bcrypt hashed password unless one with the
// same email already exists. It reports whether a user was created.
func SeedUser(ctx context.Context, users userCreator, email string, password string, cost int) (bool, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return false, model.ErrInvalidInput
	}

	_, err := users.FindByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, model.ErrUserNotFound) {
		return false, fmt.Errorf("look up seed user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return false, fmt.Errorf("hash seed password: %w", err)
	}

	err = users.Create(ctx, model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	})
	if errors.Is(err, model.ErrUserAlreadyExists) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}
