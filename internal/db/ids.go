package db

import (
	"strings"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

const localIDPrefix = "loc-"

// NewLocalID generates the client-side join key assigned to records created
// offline. ULIDs sort by creation time, which keeps pending batches in
// insertion order when pushed.
func NewLocalID() string {
	return localIDPrefix + strings.ToLower(ulid.Make().String())
}

// IsLocalID reports whether id was generated by NewLocalID.
func IsLocalID(id string) bool {
	return strings.HasPrefix(id, localIDPrefix)
}

// NewClientID generates the device identifier sent in the X-Client-ID
// header. Generated once at init and persisted in the config collection.
func NewClientID() string {
	return uuid.NewString()
}
