// Package kv stores string values under short string keys.
//
// It is the persistence port for the task list and reminder bookkeeping: each
// key holds one complete JSON document that is read at startup and rewritten
// in full on every change.
package kv

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/beemnet-bee/BeeSmartToDo/internal/paths"
)

// Store is a string-keyed blob store.
type Store interface {
	// Get returns the value for key. ok is false when the key has never been written.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Put replaces the value for key.
	Put(ctx context.Context, key, value string) error
	// Update reads key, passes the current value to fn and stores what fn
	// returns. No other Update or Put on key, in this process or another,
	// runs in between. If fn returns an error nothing is written and that
	// error is returned.
	Update(ctx context.Context, key string, fn UpdateFunc) error
	Close() error
}

// UpdateFunc computes the new value for a key from its current value. ok is
// false when the key has never been written.
type UpdateFunc func(value string, ok bool) (string, error)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

var (
	// ErrInvalidKey is returned for keys that are not simple names.
	ErrInvalidKey = errors.New("invalid key")

	// ErrClosed is returned when using a store after Close.
	ErrClosed = errors.New("store is closed")

	// ErrUnknownBackend is returned by Open for an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown storage backend")
)

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidateKey checks that key can be used as a file name and table key.
func ValidateKey(key string) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// Open opens the store for backend. An empty path selects the default
// location under the state directory.
func Open(backend, path string) (Store, error) {
	switch backend {
	case "", BackendFile:
		dir, err := paths.ResolveWithDefault(path, paths.DefaultStateDir)
		if err != nil {
			return nil, err
		}
		return NewFileStore(dir), nil
	case BackendSQLite:
		dbPath, err := paths.ResolveWithDefault(path, func() (string, error) {
			dir, err := paths.DefaultStateDir()
			if err != nil {
				return "", err
			}
			return filepath.Join(dir, "beesmart.db"), nil
		})
		if err != nil {
			return nil, err
		}
		return OpenSQLite(dbPath)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}
