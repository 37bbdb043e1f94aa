// Package kv provides the durable, string-keyed namespace that persisted
// state containers serialise into. Each container owns exactly one key;
// writes to different keys are independent and unordered.
package kv

import (
	"errors"
	"fmt"
	"strings"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

var (
	// ErrInvalidKey is returned for empty keys or keys that would escape the namespace.
	ErrInvalidKey = errors.New("invalid key")
	// ErrUnknownBackend is returned by Open for an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown state backend")
)

// Namespace is a small durable key-value store.
//
// Get reports ok=false for a missing key; that is not an error.
type Namespace interface {
	Get(key string) (value []byte, ok bool, err error)
	Put(key string, value []byte) error
	Delete(key string) error
	Close() error
}

// Open returns the namespace for backend. location is a directory for the
// file backend and a database path for sqlite; it is ignored for memory.
func Open(backend, location string) (Namespace, error) {
	switch backend {
	case BackendMemory:
		return NewMemory(), nil
	case BackendFile:
		return NewFileDir(location)
	case BackendSQLite:
		return OpenSQLite(location)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

func validateKey(key string) error {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
