package database

import "errors"

// ErrNotReady is returned by the startup hook when the server cannot be
// reached within the configured connection timeout.
var ErrNotReady = errors.New("database not ready")
