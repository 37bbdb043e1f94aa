package client

import (
	"errors"

	clierr "github.com/mycelian/portfolio-client/internal/errors"
)

// ErrNotAuthenticated is returned when an operation needs a signed-in
// session and there is none.
var ErrNotAuthenticated = errors.New("not authenticated")

// IsIrrecoverable reports whether retrying err without changing the
// request is pointless (4xx other than 408/429).
func IsIrrecoverable(err error) bool { return clierr.IsIrrecoverable(err) }

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int { return clierr.StatusCode(err) }
