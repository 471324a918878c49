package api

import (
	"github.com/easygest/bp/internal/models"
)

// LoginRequest is the body for POST /auth/connexion.
type LoginRequest struct {
	Phone string `json:"numero_telephone"`
	PIN   string `json:"code_pin"`
}

// AuthResponse is the response from the auth endpoints. ClientID is only
// populated on a device's first login.
type AuthResponse struct {
	Success  bool         `json:"success"`
	Message  string       `json:"message,omitempty"`
	User     *models.User `json:"user,omitempty"`
	Token    string       `json:"token,omitempty"`
	ClientID string       `json:"client_id,omitempty"`
}

// MeResponse is the response from GET /auth/me.
type MeResponse struct {
	Success bool         `json:"success"`
	User    *models.User `json:"user,omitempty"`
}
