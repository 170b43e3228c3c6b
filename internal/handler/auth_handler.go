package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go-token-auth/internal/middleware"
	"go-token-auth/internal/model"
	"go-token-auth/pkg/apierror"
)

type authService interface {
	Login(ctx context.Context, req model.LoginRequest) (model.TokenResponse, error)
	Refresh(ctx context.Context, authorization string) (model.TokenResponse, error)
	Logout(ctx context.Context, email string) error
}

type AuthHandler struct {
	service authService
}

func NewAuthHandler(service authService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, apierror.BadRequest(apierror.CodeInvalidBody, "invalid JSON body", ""))
		return
	}

	resp, err := h.service.Login(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Refresh(r.Context(), r.Header.Get("Authorization"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var email string
	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
		email = claims.Email
	}

	if err := h.service.Logout(r.Context(), email); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{Message: model.MessageLogoutSuccess})
}
