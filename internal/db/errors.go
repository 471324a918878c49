package db

import "errors"

// ErrLocked is returned when a local edit targets a record frozen by a
// supervisor. Locked records must not be modified or re-queued locally.
var ErrLocked = errors.New("record is locked")
