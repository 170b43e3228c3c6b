package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"go-token-auth/internal/model"
)

// TokenKind selects the secret a token is signed and verified with.
type TokenKind int

const (
	AccessToken TokenKind = iota
	RefreshToken
)

func (k TokenKind) String() string {
	if k == RefreshToken {
		return "refresh"
	}
	return "access"
}

type VerifyOptions struct {
	// IgnoreExpiration skips the exp check; the caller decides freshness
	// from the returned ExpiresAt. A future nbf is still rejected.
	IgnoreExpiration bool
}

type TokenIssuerConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

// TokenIssuer signs and verifies HS256 access and refresh tokens. Each kind
// has its own secret and lifetime, so a token of one kind never verifies as
// the other.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewTokenIssuer(cfg TokenIssuerConfig) (*TokenIssuer, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("token secrets are required")
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, errors.New("access and refresh secrets must differ")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("token lifetimes must be positive")
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &TokenIssuer{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		now:           now,
	}, nil
}

func (i *TokenIssuer) IssueAccessToken(user model.User) (string, error) {
	now := i.now().UTC()
	return i.sign(jwt.MapClaims{
		"id":    user.ID,
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(i.accessTTL).Unix(),
	}, AccessToken)
}

func (i *TokenIssuer) IssueRefreshToken(user model.User) (string, error) {
	now := i.now().UTC()
	return i.sign(jwt.MapClaims{
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(i.refreshTTL).Unix(),
	}, RefreshToken)
}

func (i *TokenIssuer) VerifyAccessToken(token string, opts VerifyOptions) (*model.AuthClaims, error) {
	return i.verify(token, AccessToken, opts.IgnoreExpiration)
}

// VerifyRefreshToken always enforces expiration.
func (i *TokenIssuer) VerifyRefreshToken(token string) (*model.AuthClaims, error) {
	return i.verify(token, RefreshToken, false)
}

// ReSign signs an already decoded claim set again as-is. No claim is added or
// renewed, so exp stays whatever it was.
func (i *TokenIssuer) ReSign(claims *model.AuthClaims, kind TokenKind) (string, error) {
	if claims == nil || claims.Payload == nil {
		return "", model.ErrMalformedToken
	}

	payload := make(jwt.MapClaims, len(claims.Payload))
	for k, v := range claims.Payload {
		payload[k] = v
	}
	return i.sign(payload, kind)
}

func (i *TokenIssuer) sign(claims jwt.MapClaims, kind TokenKind) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret(kind))
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, nil
}

func (i *TokenIssuer) verify(tokenString string, kind TokenKind, ignoreExpiration bool) (*model.AuthClaims, error) {
	if tokenString == "" {
		return nil, model.ErrMalformedToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithJSONNumber(),
		jwt.WithTimeFunc(i.now),
	}
	if ignoreExpiration {
		opts = append(opts, jwt.WithoutClaimsValidation())
	} else {
		opts = append(opts, jwt.WithExpirationRequired())
	}

	secret := i.secret(kind)
	parsed, err := jwt.Parse(tokenString, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, model.ErrTokenExpired
		}
		return nil, model.ErrMalformedToken
	}
	if !parsed.Valid {
		return nil, model.ErrMalformedToken
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, model.ErrMalformedToken
	}

	if ignoreExpiration {
		nbf, err := mapClaims.GetNotBefore()
		if err != nil || (nbf != nil && i.now().Unix() < nbf.Unix()) {
			return nil, model.ErrMalformedToken
		}
	}

	return decodeClaims(mapClaims)
}

func (i *TokenIssuer) secret(kind TokenKind) []byte {
	if kind == RefreshToken {
		return i.refreshSecret
	}
	return i.accessSecret
}

func decodeClaims(mapClaims jwt.MapClaims) (*model.AuthClaims, error) {
	claims := &model.AuthClaims{Payload: make(map[string]any, len(mapClaims))}
	for k, v := range mapClaims {
		claims.Payload[k] = v
	}

	claims.UserID, _ = mapClaims["id"].(string)
	claims.Email, _ = mapClaims["email"].(string)

	// Registered time claims of the wrong type make the token unusable.
	iat, err := mapClaims.GetIssuedAt()
	if err != nil {
		return nil, model.ErrMalformedToken
	}
	if iat != nil {
		claims.IssuedAt = iat.Time
	}

	exp, err := mapClaims.GetExpirationTime()
	if err != nil {
		return nil, model.ErrMalformedToken
	}
	if exp != nil {
		claims.ExpiresAt = exp.Time
	}

	return claims, nil
}
