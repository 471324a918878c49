// Package crypto hashes and verifies the short numeric PINs staff use to
// log in, so a cached credential can be checked while the server is
// unreachable. Hashes use Argon2id over a random salt.
package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	keyLen  = 32
	saltLen = 16

	// Argon2id parameters.
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

// ErrPINMismatch is returned when a PIN does not match the stored hash.
var ErrPINMismatch = errors.New("pin does not match")

// HashPIN derives an Argon2id hash of the PIN and encodes it together with
// its salt as "argon2id$<salt>$<hash>", both parts base64.
func HashPIN(pin string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("random salt: %w", err)
	}
	key := argon2.IDKey([]byte(pin), salt, argonTime, argonMemory, argonThreads, keyLen)
	return fmt.Sprintf("argon2id$%s$%s",
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key)), nil
}

// VerifyPIN checks pin against an encoded hash from HashPIN. It returns
// ErrPINMismatch on a wrong PIN and a descriptive error on a malformed hash.
func VerifyPIN(pin, encoded string) error {
	parts := strings.Split(encoded, "$")
	if len(parts) != 3 || parts[0] != "argon2id" {
		return errors.New("malformed pin hash")
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[1])
	if err != nil {
		return fmt.Errorf("decode salt: %w", err)
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[2])
	if err != nil {
		return fmt.Errorf("decode hash: %w", err)
	}
	got := argon2.IDKey([]byte(pin), salt, argonTime, argonMemory, argonThreads, uint32(len(want)))
	if subtle.ConstantTimeCompare(got, want) != 1 {
		return ErrPINMismatch
	}
	return nil
}
