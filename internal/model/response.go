package model

// Messages returned alongside a successful token response.
const (
	MessageLoginSuccess        = "login_success"
	MessageValidAccessToken    = "valid_access_token"
	MessageRefreshTokenSuccess = "refresh_token_success"
	MessageLogoutSuccess       = "logout_success"
)

type TokenResponse struct {
	Token   string `json:"token"`
	Message string `json:"message"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}
