package model

import "strings"

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// MissingFields lists the required login fields that are absent or blank,
// in declaration order.
func (r LoginRequest) MissingFields() []string {
	return RequiredProperties(map[string]string{
		"email":    r.Email,
		"password": r.Password,
	}, "email", "password")
}

// RequiredProperties returns the names from required whose value in values is
// empty after trimming.
func RequiredProperties(values map[string]string, required ...string) []string {
	missing := make([]string, 0, len(required))
	for _, name := range required {
		if strings.TrimSpace(values[name]) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}
