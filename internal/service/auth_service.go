package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go-token-auth/internal/model"
	"go-token-auth/pkg/apierror"
)

// UserStore is the persistence the token lifecycle needs.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (model.User, error)
	UpdateRefreshToken(ctx context.Context, userID string, token string) error
}

type credentialVerifier interface {
	Verify(ctx context.Context, email string, password string) (model.User, error)
}

type tokenIssuer interface {
	IssueAccessToken(user model.User) (string, error)
	IssueRefreshToken(user model.User) (string, error)
	VerifyAccessToken(token string, opts VerifyOptions) (*model.AuthClaims, error)
	VerifyRefreshToken(token string) (*model.AuthClaims, error)
	ReSign(claims *model.AuthClaims, kind TokenKind) (string, error)
}

var (
	errUserNotFound        = apierror.Unauthorized(apierror.CodeUserNotFound, "user not found")
	errWrongPassword       = apierror.Unauthorized(apierror.CodeWrongPassword, "wrong password")
	errInvalidAccessToken  = apierror.Unauthorized(apierror.CodeInvalidAccessToken, "access token is invalid")
	errInvalidToken        = apierror.Unauthorized(apierror.CodeInvalidToken, "token payload is invalid")
	errInvalidRefreshToken = apierror.Unauthorized(apierror.CodeInvalidRefreshToken, "refresh token is invalid")
	errNotLoggedIn         = apierror.Unauthorized(apierror.CodeNotLoggedIn, "user not logged in")
)

// AuthService runs the login, refresh and logout flows. It holds no per-user
// state; the stored refresh token on the user record is the only session
// anchor.
type AuthService struct {
	users       UserStore
	credentials credentialVerifier
	tokens      tokenIssuer
	now         func() time.Time
}

func NewAuthService(users UserStore, credentials credentialVerifier, tokens tokenIssuer, now func() time.Time) *AuthService {
	if now == nil {
		now = time.Now
	}
	return &AuthService{users: users, credentials: credentials, tokens: tokens, now: now}
}

func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.TokenResponse, error) {
	if missing := req.MissingFields(); len(missing) > 0 {
		return model.TokenResponse{}, apierror.BadRequest(apierror.CodeMissingFields,
			"missing required fields", strings.Join(missing, ", "))
	}

	user, err := s.credentials.Verify(ctx, req.Email, req.Password)
	switch {
	case errors.Is(err, model.ErrUserNotFound):
		return model.TokenResponse{}, errUserNotFound
	case errors.Is(err, model.ErrInvalidCredentials):
		return model.TokenResponse{}, errWrongPassword
	case err != nil:
		return model.TokenResponse{}, err
	}

	refreshToken, err := s.tokens.IssueRefreshToken(user)
	if err != nil {
		return model.TokenResponse{}, err
	}

	// Overwrites any earlier refresh token, which stops being accepted.
	if err := s.users.UpdateRefreshToken(ctx, user.ID, refreshToken); err != nil {
		return model.TokenResponse{}, fmt.Errorf("store refresh token: %w", err)
	}

	accessToken, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return model.TokenResponse{}, err
	}

	slog.InfoContext(ctx, "user logged in", "user_id", user.ID)
	return model.TokenResponse{Token: accessToken, Message: model.MessageLoginSuccess}, nil
}

// Refresh takes the raw Authorization header. A still valid access token is
// signed again unchanged, without touching the store. An expired one is
// replaced only if the user's stored refresh token still verifies.
func (s *AuthService) Refresh(ctx context.Context, authorization string) (model.TokenResponse, error) {
	token, ok := BearerToken(authorization)
	if !ok {
		return model.TokenResponse{}, errInvalidAccessToken
	}

	claims, err := s.tokens.VerifyAccessToken(token, VerifyOptions{IgnoreExpiration: true})
	if err != nil {
		return model.TokenResponse{}, errInvalidAccessToken
	}

	if claims.Email == "" {
		return model.TokenResponse{}, errInvalidToken
	}

	if !claims.ExpiredAt(s.now()) {
		// exp is kept as is; this does not extend the session.
		resigned, err := s.tokens.ReSign(claims, AccessToken)
		if err != nil {
			return model.TokenResponse{}, errInvalidToken
		}
		return model.TokenResponse{Token: resigned, Message: model.MessageValidAccessToken}, nil
	}

	user, err := s.users.FindByEmail(ctx, claims.Email)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.TokenResponse{}, errUserNotFound
	}
	if err != nil {
		return model.TokenResponse{}, fmt.Errorf("refresh: %w", err)
	}

	if _, err := s.tokens.VerifyRefreshToken(user.StoredRefreshToken()); err != nil {
		slog.DebugContext(ctx, "refresh token rejected", "user_id", user.ID, "reason", err.Error())
		return model.TokenResponse{}, errInvalidRefreshToken
	}

	accessToken, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return model.TokenResponse{}, err
	}

	return model.TokenResponse{Token: accessToken, Message: model.MessageRefreshTokenSuccess}, nil
}

// Logout trusts email to come from an access token already validated by the
// auth middleware. Issued access tokens stay valid until they expire.
func (s *AuthService) Logout(ctx context.Context, email string) error {
	if email == "" {
		return errNotLoggedIn
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, model.ErrUserNotFound) {
		return errNotLoggedIn
	}
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	if err := s.users.UpdateRefreshToken(ctx, user.ID, model.RefreshTokenRemoved); err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return errNotLoggedIn
		}
		return fmt.Errorf("remove refresh token: %w", err)
	}

	slog.InfoContext(ctx, "user logged out", "user_id", user.ID)
	return nil
}

// ValidateAccessToken enforces signature and expiry. The auth middleware uses
// it to guard logout.
func (s *AuthService) ValidateAccessToken(token string) (*model.AuthClaims, error) {
	claims, err := s.tokens.VerifyAccessToken(token, VerifyOptions{})
	if err != nil {
		return nil, err
	}
	if claims.Email == "" {
		return nil, model.ErrMalformedToken
	}
	return claims, nil
}

// BearerToken extracts the credentials from an "Authorization: Bearer <token>"
// header value. The scheme is matched case-insensitively.
func BearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
