package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go-token-auth/internal/model"
	"go-token-auth/internal/repository"
)

const (
	testAccessSecret  = "access-secret"
	testRefreshSecret = "refresh-secret"
	testAccessTTL     = 15 * time.Minute
	testRefreshTTL    = 24 * time.Hour
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// countingStore records how often the lifecycle reaches the store.
type countingStore struct {
	UserStore
	finds   int
	updates int
}

func (s *countingStore) FindByEmail(ctx context.Context, email string) (model.User, error) {
	s.finds++
	return s.UserStore.FindByEmail(ctx, email)
}

func (s *countingStore) UpdateRefreshToken(ctx context.Context, userID string, token string) error {
	s.updates++
	return s.UserStore.UpdateRefreshToken(ctx, userID, token)
}

func newTestIssuer(t *testing.T, clock *fakeClock) *TokenIssuer {
	t.Helper()

	issuer, err := NewTokenIssuer(TokenIssuerConfig{
		AccessSecret:  testAccessSecret,
		RefreshSecret: testRefreshSecret,
		AccessTTL:     testAccessTTL,
		RefreshTTL:    testRefreshTTL,
		Now:           clock.Now,
	})
	require.NoError(t, err)
	return issuer
}

func newTestUser(t *testing.T, repo *repository.MemoryUserRepository, email string, password string) model.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := model.User{
		ID:           "user-" + email,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

type authFixture struct {
	svc    *AuthService
	store  *countingStore
	repo   *repository.MemoryUserRepository
	issuer *TokenIssuer
	clock  *fakeClock
	user   model.User
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	clock := newFakeClock()
	repo := repository.NewMemoryUserRepository()
	store := &countingStore{UserStore: repo}
	issuer := newTestIssuer(t, clock)
	user := newTestUser(t, repo, "u@example.com", "pw123")

	svc := NewAuthService(store, NewCredentialVerifier(store, nil), issuer, clock.Now)
	return &authFixture{svc: svc, store: store, repo: repo, issuer: issuer, clock: clock, user: user}
}

func (f *authFixture) login(t *testing.T) string {
	t.Helper()

	resp, err := f.svc.Login(context.Background(), model.LoginRequest{Email: f.user.Email, Password: "pw123"})
	require.NoError(t, err)
	return resp.Token
}
