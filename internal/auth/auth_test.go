package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/easygest/bp/internal/api"
	"github.com/easygest/bp/internal/db"
	"github.com/easygest/bp/internal/models"
	"github.com/easygest/bp/internal/syncclient"
)

type fakeRemote struct {
	reachable bool
	token     string

	loginResp *api.AuthResponse
	loginErr  error
	meResp    *api.MeResponse
	meErr     error
	logouts   int
}

func (r *fakeRemote) CheckReachable(ctx context.Context) bool { return r.reachable }
func (r *fakeRemote) SetToken(token string)                   { r.token = token }
func (r *fakeRemote) Logout(ctx context.Context) error        { r.logouts++; return nil }

func (r *fakeRemote) Login(ctx context.Context, phone, pin string) (*api.AuthResponse, error) {
	return r.loginResp, r.loginErr
}

func (r *fakeRemote) Me(ctx context.Context) (*api.MeResponse, error) {
	return r.meResp, r.meErr
}

func testUser() *models.User {
	return &models.User{
		ID:     3,
		Name:   "Aissatou",
		Phone:  "690000001",
		Role:   models.RolePointeur,
		Active: true,
	}
}

func setupManager(t *testing.T) (*Manager, *db.DB, *fakeRemote) {
	t.Helper()
	store, err := db.InitializeInMemory()
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	remote := &fakeRemote{reachable: true}
	return NewManager(store, remote, nil), store, remote
}

func TestLogin_OnlineStoresSession(t *testing.T) {
	m, store, remote := setupManager(t)
	remote.loginResp = &api.AuthResponse{
		Success: true, User: testUser(), Token: "tok-1", ClientID: "device-1",
	}

	user, offline, err := m.Login(context.Background(), "690000001", "1234")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if offline {
		t.Fatal("online login flagged offline")
	}
	if user.ID != 3 {
		t.Fatalf("user id: got %d", user.ID)
	}

	token, _ := store.GetConfig(db.ConfigAuthToken)
	if token != "tok-1" {
		t.Fatalf("stored token: got %q", token)
	}
	if remote.token != "tok-1" {
		t.Fatalf("client token: got %q", remote.token)
	}
	clientID, _ := store.GetConfig(db.ConfigClientID)
	if clientID != "device-1" {
		t.Fatalf("client id: got %q", clientID)
	}
	cached, err := store.CurrentUser()
	if err != nil || cached == nil || cached.ID != 3 {
		t.Fatalf("cached user: %+v, %v", cached, err)
	}
}

func TestLogin_OnlineBadCredentials(t *testing.T) {
	m, _, remote := setupManager(t)
	remote.loginErr = syncclient.ErrUnauthorized

	_, _, err := m.Login(context.Background(), "690000001", "0000")
	if !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("expected ErrBadCredentials, got %v", err)
	}
}

func TestLogin_OfflineUsesCachedPIN(t *testing.T) {
	m, store, remote := setupManager(t)
	remote.loginResp = &api.AuthResponse{Success: true, User: testUser(), Token: "tok-1"}

	// Prime the cache with an online login, then cut the network.
	if _, _, err := m.Login(context.Background(), "690000001", "1234"); err != nil {
		t.Fatalf("online login: %v", err)
	}
	if cached, _ := store.GetConfig(db.ConfigPINHash); cached == "" {
		t.Fatal("online login did not cache the PIN hash")
	}
	remote.reachable = false

	user, offline, err := m.Login(context.Background(), "690000001", "1234")
	if err != nil {
		t.Fatalf("offline login: %v", err)
	}
	if !offline {
		t.Fatal("expected offline path")
	}
	if user.Phone != "690000001" {
		t.Fatalf("user phone: got %q", user.Phone)
	}

	_, _, err = m.Login(context.Background(), "690000001", "9999")
	if !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("wrong pin: expected ErrBadCredentials, got %v", err)
	}
	_, _, err = m.Login(context.Background(), "690000002", "1234")
	if !errors.Is(err, ErrNoOfflineSession) {
		t.Fatalf("unknown phone: expected ErrNoOfflineSession, got %v", err)
	}

	// The cached hash survives logout, so offline login still works after.
	remote.reachable = true
	if err := m.Logout(context.Background()); err != nil {
		t.Fatalf("logout: %v", err)
	}
	remote.reachable = false
	if _, _, err := m.Login(context.Background(), "690000001", "1234"); err != nil {
		t.Fatalf("offline login after logout: %v", err)
	}
}

func TestLogin_OfflineWithoutCacheFails(t *testing.T) {
	m, _, remote := setupManager(t)
	remote.reachable = false

	_, _, err := m.Login(context.Background(), "690000001", "1234")
	if !errors.Is(err, ErrNoOfflineSession) {
		t.Fatalf("expected ErrNoOfflineSession, got %v", err)
	}
}

func TestSilentReauth(t *testing.T) {
	m, store, remote := setupManager(t)

	_, err := m.SilentReauth(context.Background())
	if !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn, got %v", err)
	}

	if err := store.SetConfig(db.ConfigAuthToken, "tok-1"); err != nil {
		t.Fatalf("seed token: %v", err)
	}
	remote.meResp = &api.MeResponse{Success: true, User: testUser()}

	user, err := m.SilentReauth(context.Background())
	if err != nil {
		t.Fatalf("reauth: %v", err)
	}
	if user.ID != 3 {
		t.Fatalf("user id: got %d", user.ID)
	}

	// An expired token is cleared.
	remote.meResp = nil
	remote.meErr = syncclient.ErrUnauthorized
	if _, err := m.SilentReauth(context.Background()); err == nil {
		t.Fatal("expected error for expired token")
	}
	token, _ := store.GetConfig(db.ConfigAuthToken)
	if token != "" {
		t.Fatalf("stale token not cleared: %q", token)
	}
}

func TestLogout_ClearsSession(t *testing.T) {
	m, store, remote := setupManager(t)
	remote.loginResp = &api.AuthResponse{Success: true, User: testUser(), Token: "tok-1"}
	if _, _, err := m.Login(context.Background(), "690000001", "1234"); err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := m.Logout(context.Background()); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if remote.logouts != 1 {
		t.Fatalf("server logouts: got %d, want 1", remote.logouts)
	}
	token, _ := store.GetConfig(db.ConfigAuthToken)
	if token != "" {
		t.Fatalf("token not cleared: %q", token)
	}
	user, err := store.CurrentUser()
	if err != nil {
		t.Fatalf("current user: %v", err)
	}
	if user != nil {
		t.Fatal("session user not cleared")
	}
}
