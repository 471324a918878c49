package cmd

import "errors"

// errSilent marks a failure whose details were already printed; the
// command exits non-zero without cobra repeating the message.
var errSilent = errors.New("command failed")
