package syncclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/easygest/bp/internal/api"
	"github.com/easygest/bp/internal/models"
)

func TestDoRequest_Headers(t *testing.T) {
	var gotAuth, gotClientID, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotClientID = r.Header.Get("X-Client-ID")
		gotAccept = r.Header.Get("Accept")
		json.NewEncoder(w).Encode(api.AckResponse{Success: true})
	}))
	defer srv.Close()

	c := New(srv.URL, "tok-1", "device-1")
	if _, err := c.Ack(context.Background(), nil); err != nil {
		t.Fatalf("ack: %v", err)
	}
	if gotAuth != "Bearer tok-1" {
		t.Fatalf("authorization: got %q", gotAuth)
	}
	if gotClientID != "device-1" {
		t.Fatalf("client id: got %q", gotClientID)
	}
	if gotAccept != "application/json" {
		t.Fatalf("accept: got %q", gotAccept)
	}
}

func TestDoRequest_SentinelErrors(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusNotFound, ErrNotFound},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			json.NewEncoder(w).Encode(map[string]string{"message": "nope"})
		}))
		c := New(srv.URL, "tok", "dev")
		_, err := c.Pull(context.Background(), "")
		if !errors.Is(err, tc.want) {
			t.Errorf("status %d: got %v, want %v", tc.status, err, tc.want)
		}
		srv.Close()
	}
}

func TestDoRequest_PlainErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer srv.Close()

	c := New(srv.URL, "tok", "dev")
	_, err := c.Pull(context.Background(), "")
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestCheckReachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("path: got %q, want /health", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	c := New(srv.URL, "", "")
	if !c.CheckReachable(context.Background()) {
		t.Fatal("expected reachable")
	}
	srv.Close()
	if c.CheckReachable(context.Background()) {
		t.Fatal("expected unreachable after server shutdown")
	}

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer bad.Close()
	c = New(bad.URL, "", "")
	if c.CheckReachable(context.Background()) {
		t.Fatal("non-200 health must read as offline")
	}
}

func TestPull_QueryAndDecode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("last_sync"); got != "2026-03-01T08:00:00Z" {
			t.Errorf("last_sync: got %q", got)
		}
		json.NewEncoder(w).Encode(api.PullResponse{
			Success: true,
			Data: api.PullData{
				Products: []models.Product{{ID: 1, Name: "pain complet", Price: 250}},
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "tok", "dev")
	resp, err := c.Pull(context.Background(), "2026-03-01T08:00:00Z")
	if err != nil {
		t.Fatalf("pull: %v", err)
	}
	if len(resp.Data.Products) != 1 || resp.Data.Products[0].Name != "pain complet" {
		t.Fatalf("products: %+v", resp.Data.Products)
	}
}

func TestPull_OmitsEmptyCheckpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawQuery != "" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode(api.PullResponse{Success: true})
	}))
	defer srv.Close()

	c := New(srv.URL, "tok", "dev")
	if _, err := c.Pull(context.Background(), ""); err != nil {
		t.Fatalf("pull: %v", err)
	}
}

func TestPush_WireEncoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sync/push" || r.Method != http.MethodPost {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		var body map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		// The dependent collection travels under its French wire name.
		if _, ok := body["inventaire_details"]; !ok {
			t.Error("missing inventaire_details collection")
		}
		var lines []models.InventoryLine
		json.Unmarshal(body["inventaire_details"], &lines)
		if len(lines) != 1 || lines[0].InventoryID != 42 {
			t.Errorf("lines: %+v", lines)
		}
		json.NewEncoder(w).Encode(api.PushResponse{
			Success: true,
			Synced: []api.SyncedRecord{
				{Table: models.TableInventoryLines, LocalID: lines[0].LocalID, ServerID: 9},
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "tok", "dev")
	resp, err := c.Push(context.Background(), &api.PushRequest{
		InventoryLines: []models.InventoryLine{
			{ID: 1_000_000_000, LocalID: "loc-abc", InventoryID: 42, ProductID: 7, RemainingQty: 2},
		},
	})
	if err != nil {
		t.Fatalf("push: %v", err)
	}
	if len(resp.Synced) != 1 || resp.Synced[0].ServerID != 9 {
		t.Fatalf("synced: %+v", resp.Synced)
	}
}

func TestLogin_NoAuthHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/connexion" {
			t.Errorf("path: %q", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "" {
			t.Error("login must not send a bearer token")
		}
		var req api.LoginRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Phone != "690000001" || req.PIN != "1234" {
			t.Errorf("credentials: %+v", req)
		}
		json.NewEncoder(w).Encode(api.AuthResponse{
			Success: true, Token: "tok-2",
			User: &models.User{ID: 3, Name: "Aissatou"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "stale-token", "dev")
	resp, err := c.Login(context.Background(), "690000001", "1234")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.Token != "tok-2" || resp.User == nil {
		t.Fatalf("response: %+v", resp)
	}
}
