package model

import "time"

// RefreshTokenRemoved is stored in place of a refresh token after logout.
const RefreshTokenRemoved = "removed"

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	RefreshToken *string   `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// StoredRefreshToken returns the persisted refresh token, or "" when none is set.
func (u User) StoredRefreshToken() string {
	if u.RefreshToken == nil {
		return ""
	}
	return *u.RefreshToken
}

// AuthClaims is a decoded token payload. Payload keeps every claim exactly as
// it was decoded so the set can be signed again without loss.
type AuthClaims struct {
	UserID    string         `json:"id,omitempty"`
	Email     string         `json:"email"`
	IssuedAt  time.Time      `json:"iat"`
	ExpiresAt time.Time      `json:"exp"`
	Payload   map[string]any `json:"-"`
}

// ExpiredAt reports whether the claims are no longer valid at now.
// Claims without an exp are treated as expired.
func (c *AuthClaims) ExpiredAt(now time.Time) bool {
	if c.ExpiresAt.IsZero() {
		return true
	}
	return !now.Before(c.ExpiresAt)
}
