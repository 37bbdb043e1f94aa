package kv

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	envStateDir = "PORTFOLIO_STATE_DIR" // override for tests
	dirName     = ".portfolio-client"   // default under $HOME
)

// FileDir stores each key as <dir>/<key>.json.
//
// Writes go to a temp file in the same directory and are renamed into
// place, so a reader never observes a half-written record.
type FileDir struct {
	dir string
}

// DefaultDir returns the directory used when no location is configured
// (~/.portfolio-client, or $PORTFOLIO_STATE_DIR when set).
func DefaultDir() (string, error) {
	if custom := os.Getenv(envStateDir); custom != "" {
		return custom, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine user home: %w", err)
	}
	return filepath.Join(home, dirName), nil
}

// NewFileDir creates dir with 0700 permissions if needed. An empty dir
// selects DefaultDir.
func NewFileDir(dir string) (*FileDir, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &FileDir{dir: dir}, nil
}

// Dir returns the backing directory.
func (f *FileDir) Dir() string { return f.dir }

func (f *FileDir) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

func (f *FileDir) Get(key string) ([]byte, bool, error) {
	if err := validateKey(key); err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (f *FileDir) Put(key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(f.dir, "."+key+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, f.path(key)); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

func (f *FileDir) Delete(key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	err := os.Remove(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Close is a no-op; every Put is already on disk.
func (f *FileDir) Close() error { return nil }
