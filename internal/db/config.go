package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/easygest/bp/internal/models"
)

// Well-known config keys.
const (
	ConfigLastSync    = "last_sync"
	ConfigAuthToken   = "auth_token"
	ConfigClientID    = "client_id"
	ConfigCurrentUser = "current_user"
	ConfigBaseURL     = "base_url"
	ConfigPINHash     = "user_pin_hash"
)

// GetConfig returns the raw value for key, or "" when unset.
func (db *DB) GetConfig(key string) (string, error) {
	var value string
	err := db.conn.QueryRow(`SELECT value FROM config WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get config %q: %w", key, err)
	}
	return value, nil
}

// SetConfig stores value under key, replacing any previous value.
func (db *DB) SetConfig(key, value string) error {
	_, err := db.conn.Exec(`INSERT OR REPLACE INTO config (key, value) VALUES (?, ?)`, key, value)
	if err != nil {
		return fmt.Errorf("set config %q: %w", key, err)
	}
	return nil
}

// DeleteConfig removes key from the config collection.
func (db *DB) DeleteConfig(key string) error {
	_, err := db.conn.Exec(`DELETE FROM config WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("delete config %q: %w", key, err)
	}
	return nil
}

// LastSync returns the pull checkpoint, or nil before the first successful
// cycle.
func (db *DB) LastSync() (*time.Time, error) {
	raw, err := db.GetConfig(ConfigLastSync)
	if err != nil || raw == "" {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("parse last_sync: %w", err)
	}
	return &t, nil
}

// SetLastSync advances the pull checkpoint.
func (db *DB) SetLastSync(t time.Time) error {
	return db.SetConfig(ConfigLastSync, t.UTC().Format(time.RFC3339))
}

// CurrentUser returns the cached session user, or nil when logged out.
func (db *DB) CurrentUser() (*models.User, error) {
	raw, err := db.GetConfig(ConfigCurrentUser)
	if err != nil || raw == "" {
		return nil, err
	}
	var u models.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, fmt.Errorf("decode current_user: %w", err)
	}
	return &u, nil
}

// SetCurrentUser caches the session user in the config collection.
func (db *DB) SetCurrentUser(u *models.User) error {
	if u == nil {
		return db.DeleteConfig(ConfigCurrentUser)
	}
	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode current_user: %w", err)
	}
	return db.SetConfig(ConfigCurrentUser, string(raw))
}

// ClientID returns the persisted device identifier, generating and storing
// one on first use.
func (db *DB) ClientID() (string, error) {
	id, err := db.GetConfig(ConfigClientID)
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}
	id = NewClientID()
	if err := db.SetConfig(ConfigClientID, id); err != nil {
		return "", err
	}
	return id, nil
}
