package apierror

import (
	"fmt"
	"net/http"
)

// Machine-readable codes returned to clients.
const (
	CodeMissingFields       = "missing_fields"
	CodeInvalidBody         = "invalid_body"
	CodeUserNotFound        = "user_not_found"
	CodeWrongPassword       = "wrong_password"
	CodeInvalidAccessToken  = "invalid_access_token"
	CodeInvalidToken        = "invalid_token"
	CodeInvalidRefreshToken = "invalid_refresh_token"
	CodeNotLoggedIn         = "user_not_logged_in"
	CodeUnauthorized        = "unauthorized"
	CodeInternal            = "internal_error"
)

type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	HTTPStatus int    `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches another *APIError with the same code, so callers can compare
// against the values built by BadRequest and Unauthorized with errors.Is.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

func New(code string, message string, details string, status int) *APIError {
	return &APIError{Code: code, Message: message, Details: details, HTTPStatus: status}
}

func BadRequest(code string, message string, details string) *APIError {
	return New(code, message, details, http.StatusBadRequest)
}

func Unauthorized(code string, message string) *APIError {
	return New(code, message, "", http.StatusUnauthorized)
}
