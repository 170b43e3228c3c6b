package repository

import (
	"context"
	"strings"
	"sync"

	"go-token-auth/internal/model"
)

// MemoryUserRepository keeps users in process memory. It backs the memory
// store driver and tests; nothing survives a restart.
type MemoryUserRepository struct {
	mu      sync.RWMutex
	byID    map[string]model.User
	byEmail map[string]string
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:    map[string]model.User{},
		byEmail: map[string]string{},
	}
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return cloneUser(r.byID[id]), nil
}

func (r *MemoryUserRepository) Create(_ context.Context, u model.User) error {
	u.Email = strings.TrimSpace(u.Email)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[u.Email]; exists {
		return model.ErrUserAlreadyExists
	}
	if _, exists := r.byID[u.ID]; exists {
		return model.ErrUserAlreadyExists
	}

	r.byID[u.ID] = cloneUser(u)
	r.byEmail[u.Email] = u.ID
	return nil
}

func (r *MemoryUserRepository) UpdateRefreshToken(_ context.Context, userID string, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return model.ErrUserNotFound
	}
	u.RefreshToken = &token
	r.byID[userID] = u
	return nil
}

func (r *MemoryUserRepository) Ping(context.Context) error {
	return nil
}

// cloneUser copies the refresh token pointer target so callers cannot mutate
// stored state.
func cloneUser(u model.User) model.User {
	if u.RefreshToken != nil {
		token := *u.RefreshToken
		u.RefreshToken = &token
	}
	return u
}
