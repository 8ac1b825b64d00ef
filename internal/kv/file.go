package kv

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"syscall"
)

// FileStore keeps each key in its own JSON file inside a directory.
// Writes go through a temp file and rename under an exclusive flock, so a
// reader in another process never observes a partial document.
type FileStore struct {
	dir string

	mu     sync.Mutex
	closed bool
}

// NewFileStore creates a file store rooted at dir. The directory is created
// on first write.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Dir returns the directory backing the store.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) valuePath(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *FileStore) lockPath(key string) string {
	return filepath.Join(s.dir, key+".lock")
}

// Get reads the value for key. A missing file is reported as ok=false.
func (s *FileStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := s.check(ctx, key); err != nil {
		return "", false, err
	}
	return s.read(key)
}

// Put writes value for key atomically. Identical content is not rewritten.
func (s *FileStore) Put(ctx context.Context, key, value string) error {
	if err := s.check(ctx, key); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	return s.withLock(key, func() error {
		return s.write(key, value)
	})
}

// Update reads, modifies, and writes key while holding its lock file.
func (s *FileStore) Update(ctx context.Context, key string, fn UpdateFunc) error {
	if err := s.check(ctx, key); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	return s.withLock(key, func() error {
		current, ok, err := s.read(key)
		if err != nil {
			return err
		}
		value, err := fn(current, ok)
		if err != nil {
			return err
		}
		return s.write(key, value)
	})
}

func (s *FileStore) read(key string) (string, bool, error) {
	data, err := os.ReadFile(s.valuePath(key))
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", key, err)
	}
	return string(data), true, nil
}

// write must be called with the key's lock held.
func (s *FileStore) write(key, value string) error {
	data := []byte(value)
	path := s.valuePath(key)
	if existing, err := os.ReadFile(path); err == nil {
		if bytes.Equal(existing, data) {
			return nil
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("read %s: %w", key, err)
	}

	tmpFile, err := os.CreateTemp(s.dir, filepath.Base(path)+".tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	name := tmpFile.Name()
	_, err = tmpFile.Write(data)
	if err1 := tmpFile.Close(); err1 != nil && err == nil {
		err = err1
	}
	if err != nil {
		os.Remove(name)
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return fmt.Errorf("rename %s: %w", key, err)
	}
	return nil
}

// Close marks the store closed. Later calls fail with ErrClosed.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *FileStore) check(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ErrClosed
	}
	return ValidateKey(key)
}

func (s *FileStore) withLock(key string, fn func() error) error {
	lockFile, err := os.OpenFile(s.lockPath(key), os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	defer lockFile.Close()

	if err := syscall.Flock(int(lockFile.Fd()), syscall.LOCK_EX); err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	defer syscall.Flock(int(lockFile.Fd()), syscall.LOCK_UN)

	return fn()
}
