package auth

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/easygest/bp/internal/crypto"
	"github.com/easygest/bp/internal/db"
	"github.com/easygest/bp/internal/models"
)

// LocalCredentialVerifier checks a credential against locally cached
// material while the server is unreachable. The default implementation
// compares against the Argon2id hash cached on the last online login;
// tests and future credential schemes plug in their own.
type LocalCredentialVerifier interface {
	VerifyLocal(phone, pin string) (*models.User, error)
}

// cachedPIN is the value stored under the pin-hash config key.
type cachedPIN struct {
	Phone string `json:"phone"`
	Hash  string `json:"hash"`
}

func setCachedPIN(store *db.DB, phone, hash string) error {
	raw, err := json.Marshal(cachedPIN{Phone: phone, Hash: hash})
	if err != nil {
		return err
	}
	return store.SetConfig(db.ConfigPINHash, string(raw))
}

// pinHashVerifier verifies offline logins against the hash cached by the
// last successful online login. Only that user can log in offline; the
// user record itself must also exist in the local users collection.
type pinHashVerifier struct {
	store *db.DB
}

func (v *pinHashVerifier) VerifyLocal(phone, pin string) (*models.User, error) {
	raw, err := v.store.GetConfig(db.ConfigPINHash)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, ErrNoOfflineSession
	}
	var cached cachedPIN
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		return nil, fmt.Errorf("decode cached pin: %w", err)
	}
	if cached.Phone != phone {
		return nil, ErrNoOfflineSession
	}
	if err := crypto.VerifyPIN(pin, cached.Hash); err != nil {
		if errors.Is(err, crypto.ErrPINMismatch) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	user, err := v.store.GetUserByPhone(phone)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNoOfflineSession
	}
	if !user.Active {
		return nil, ErrBadCredentials
	}
	return user, nil
}
