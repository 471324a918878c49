package syncclient

import (
	"context"
	"net/http"

	"github.com/easygest/bp/internal/api"
)

// Login authenticates with phone number and PIN. No token required.
func (c *Client) Login(ctx context.Context, phone, pin string) (*api.AuthResponse, error) {
	var resp api.AuthResponse
	err := c.doNoAuth(ctx, http.MethodPost, "/auth/connexion", &api.LoginRequest{Phone: phone, PIN: pin}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Me validates the stored token and returns the server's view of the
// session user.
func (c *Client) Me(ctx context.Context) (*api.MeResponse, error) {
	var resp api.MeResponse
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout invalidates the server-side session.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/deconnexion", nil, nil)
}
