package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"go-token-auth/internal/model"
)

type userFinder interface {
	FindByEmail(ctx context.Context, email string) (model.User, error)
}

// PasswordMatcher reports whether plaintext hashes to hash.
type PasswordMatcher func(plaintext string, hash string) bool

func BcryptMatcher(plaintext string, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// CredentialVerifier checks an email/password pair against the user store.
type CredentialVerifier struct {
	users   userFinder
	matches PasswordMatcher
}

func NewCredentialVerifier(users userFinder, matches PasswordMatcher) *CredentialVerifier {
	if matches == nil {
		matches = BcryptMatcher
	}
	return &CredentialVerifier{users: users, matches: matches}
}

// Verify returns model.ErrUserNotFound when no user has exactly this email
// and model.ErrInvalidCredentials when the password does not match.
func (v *CredentialVerifier) Verify(ctx context.Context, email string, password string) (model.User, error) {
	user, err := v.users.FindByEmail(ctx, email)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("verify credentials: %w", err)
	}

	if !v.matches(password, user.PasswordHash) {
		return model.User{}, model.ErrInvalidCredentials
	}

	return user, nil
}
