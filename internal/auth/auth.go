// Package auth manages the device login session: online authentication
// against the server, a cached-credential fallback for offline logins,
// silent re-authentication after a reconnect, and logout.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/easygest/bp/internal/api"
	"github.com/easygest/bp/internal/crypto"
	"github.com/easygest/bp/internal/db"
	"github.com/easygest/bp/internal/models"
	"github.com/easygest/bp/internal/syncclient"
)

var (
	// ErrBadCredentials is returned when phone or PIN is wrong, online or
	// offline.
	ErrBadCredentials = errors.New("invalid phone number or pin")

	// ErrNoOfflineSession is returned when the server is unreachable and no
	// cached credential exists for the phone number.
	ErrNoOfflineSession = errors.New("no cached session for offline login")

	// ErrNotLoggedIn is returned by operations that need a session token.
	ErrNotLoggedIn = errors.New("not logged in")
)

// Remote is the server side of authentication. *syncclient.Client
// satisfies it.
type Remote interface {
	CheckReachable(ctx context.Context) bool
	Login(ctx context.Context, phone, pin string) (*api.AuthResponse, error)
	Me(ctx context.Context) (*api.MeResponse, error)
	Logout(ctx context.Context) error
	SetToken(token string)
}

// Manager owns the login session. Online logins refresh the credential
// cache so the same user can log back in while the server is down.
type Manager struct {
	store    *db.DB
	remote   Remote
	verifier LocalCredentialVerifier
}

// NewManager builds a manager with the default PIN-hash verifier. Pass a
// non-nil verifier to replace the offline check.
func NewManager(store *db.DB, remote Remote, verifier LocalCredentialVerifier) *Manager {
	if verifier == nil {
		verifier = &pinHashVerifier{store: store}
	}
	return &Manager{store: store, remote: remote, verifier: verifier}
}

// Login authenticates the user, preferring the server when reachable and
// falling back to the cached credential otherwise. The returned offline
// flag reports which path succeeded.
func (m *Manager) Login(ctx context.Context, phone, pin string) (user *models.User, offline bool, err error) {
	if m.remote.CheckReachable(ctx) {
		user, err = m.loginOnline(ctx, phone, pin)
		return user, false, err
	}
	slog.Info("server unreachable, trying offline login", "phone", phone)
	user, err = m.verifier.VerifyLocal(phone, pin)
	if err != nil {
		return nil, true, err
	}
	if err := m.store.SetCurrentUser(user); err != nil {
		return nil, true, fmt.Errorf("cache session user: %w", err)
	}
	return user, true, nil
}

func (m *Manager) loginOnline(ctx context.Context, phone, pin string) (*models.User, error) {
	resp, err := m.remote.Login(ctx, phone, pin)
	if err != nil {
		if errors.Is(err, syncclient.ErrUnauthorized) {
			return nil, ErrBadCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}
	if !resp.Success || resp.User == nil {
		return nil, ErrBadCredentials
	}

	if err := m.store.SetConfig(db.ConfigAuthToken, resp.Token); err != nil {
		return nil, fmt.Errorf("save token: %w", err)
	}
	m.remote.SetToken(resp.Token)
	if resp.ClientID != "" {
		if err := m.store.SetConfig(db.ConfigClientID, resp.ClientID); err != nil {
			return nil, fmt.Errorf("save client id: %w", err)
		}
	}
	if err := m.store.SetCurrentUser(resp.User); err != nil {
		return nil, fmt.Errorf("cache session user: %w", err)
	}
	if err := m.store.UpsertUser(resp.User); err != nil {
		slog.Warn("cache user record failed", "err", err)
	}
	if err := cachePIN(m.store, phone, pin); err != nil {
		slog.Warn("cache pin failed", "err", err)
	}
	return resp.User, nil
}

// SilentReauth validates the stored token against the server and refreshes
// the cached user. A rejected token is cleared so the next sync does not
// hammer the server with it.
func (m *Manager) SilentReauth(ctx context.Context) (*models.User, error) {
	token, err := m.store.GetConfig(db.ConfigAuthToken)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, ErrNotLoggedIn
	}
	m.remote.SetToken(token)

	resp, err := m.remote.Me(ctx)
	if err != nil {
		if errors.Is(err, syncclient.ErrUnauthorized) {
			if derr := m.store.DeleteConfig(db.ConfigAuthToken); derr != nil {
				slog.Warn("clear stale token failed", "err", derr)
			}
			m.remote.SetToken("")
			return nil, fmt.Errorf("session expired: %w", err)
		}
		return nil, fmt.Errorf("reauth: %w", err)
	}
	if !resp.Success || resp.User == nil {
		return nil, ErrNotLoggedIn
	}
	if err := m.store.SetCurrentUser(resp.User); err != nil {
		return nil, fmt.Errorf("cache session user: %w", err)
	}
	return resp.User, nil
}

// Logout ends the session. The server call is best-effort; the local
// session state is always cleared. Cached PIN material survives so the
// user can log back in offline.
func (m *Manager) Logout(ctx context.Context) error {
	if m.remote.CheckReachable(ctx) {
		if err := m.remote.Logout(ctx); err != nil {
			slog.Warn("server logout failed", "err", err)
		}
	}
	if err := m.store.DeleteConfig(db.ConfigAuthToken); err != nil {
		return err
	}
	m.remote.SetToken("")
	return m.store.SetCurrentUser(nil)
}

// CurrentUser returns the cached session user, or nil when logged out.
func (m *Manager) CurrentUser() (*models.User, error) {
	return m.store.CurrentUser()
}

func cachePIN(store *db.DB, phone, pin string) error {
	hash, err := crypto.HashPIN(pin)
	if err != nil {
		return err
	}
	return setCachedPIN(store, phone, hash)
}
