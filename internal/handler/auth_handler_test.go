package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-token-auth/internal/middleware"
	"go-token-auth/internal/model"
	"go-token-auth/pkg/apierror"
)

type stubAuthService struct {
	loginReq    model.LoginRequest
	refreshAuth string
	logoutEmail string
	err         error
}

func (s *stubAuthService) Login(_ context.Context, req model.LoginRequest) (model.TokenResponse, error) {
	s.loginReq = req
	return model.TokenResponse{Token: "t", Message: model.MessageLoginSuccess}, s.err
}

func (s *stubAuthService) Refresh(_ context.Context, authorization string) (model.TokenResponse, error) {
	s.refreshAuth = authorization
	return model.TokenResponse{Token: "t", Message: model.MessageValidAccessToken}, s.err
}

func (s *stubAuthService) Logout(_ context.Context, email string) error {
	s.logoutEmail = email
	return s.err
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) model.APIError {
	t.Helper()

	var body model.APIError
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestLoginHandler(t *testing.T) {
	t.Run("passes credentials through", func(t *testing.T) {
		svc := &stubAuthService{}
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"u@example.com","password":"pw123"}`))

		NewAuthHandler(svc).Login(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "u@example.com", svc.loginReq.Email)
		assert.Equal(t, "pw123", svc.loginReq.Password)

		var body model.TokenResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, model.MessageLoginSuccess, body.Message)
		assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	})

	t.Run("empty body reaches the service", func(t *testing.T) {
		svc := &stubAuthService{}
		rec := httptest.NewRecorder()

		NewAuthHandler(svc).Login(rec, httptest.NewRequest(http.MethodPost, "/login", http.NoBody))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, model.LoginRequest{}, svc.loginReq)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		rec := httptest.NewRecorder()

		NewAuthHandler(&stubAuthService{}).Login(rec, httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("{")))

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, apierror.CodeInvalidBody, decodeError(t, rec).Code)
	})

	t.Run("service error", func(t *testing.T) {
		svc := &stubAuthService{err: apierror.Unauthorized(apierror.CodeWrongPassword, "wrong password")}
		rec := httptest.NewRecorder()

		NewAuthHandler(svc).Login(rec, httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{}`)))

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, apierror.CodeWrongPassword, decodeError(t, rec).Code)
	})
}

func TestRefreshHandlerForwardsHeader(t *testing.T) {
	svc := &stubAuthService{}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/refresh", nil)
	req.Header.Set("Authorization", "Bearer abc")

	NewAuthHandler(svc).Refresh(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Bearer abc", svc.refreshAuth)
}

func TestLogoutHandlerUsesContextEmail(t *testing.T) {
	svc := &stubAuthService{}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req = req.WithContext(middleware.WithClaims(req.Context(), &model.AuthClaims{Email: "u@example.com"}))

	NewAuthHandler(svc).Logout(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u@example.com", svc.logoutEmail)
	assert.JSONEq(t, `{"message":"logout_success"}`, rec.Body.String())
}

func TestWriteErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{err: apierror.Unauthorized(apierror.CodeNotLoggedIn, "user not logged in"), status: http.StatusUnauthorized, code: apierror.CodeNotLoggedIn},
		{err: fmt.Errorf("refresh: %w", apierror.Unauthorized(apierror.CodeInvalidToken, "invalid token")), status: http.StatusUnauthorized, code: apierror.CodeInvalidToken},
		{err: apierror.BadRequest(apierror.CodeMissingFields, "missing fields", "email"), status: http.StatusBadRequest, code: apierror.CodeMissingFields},
		{err: model.ErrUserNotFound, status: http.StatusInternalServerError, code: apierror.CodeInternal},
		{err: errors.New("db down"), status: http.StatusInternalServerError, code: apierror.CodeInternal},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		writeError(rec, tc.err)

		assert.Equal(t, tc.status, rec.Code, tc.err.Error())
		assert.Equal(t, tc.code, decodeError(t, rec).Code, tc.err.Error())
	}
}
