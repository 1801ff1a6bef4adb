package session

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps one file per key under Dir. Keys are hex-encoded into
// file names so they can never escape the directory.
type FileStore struct {
	Dir string

	mu sync.Mutex
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Clean(dir), 0o750); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{Dir: filepath.Clean(dir)}, nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.Dir, hex.EncodeToString([]byte(id))+".json")
}

func (s *FileStore) Get(_ context.Context, id string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := os.ReadFile(s.path(id)) // #nosec G304 -- file name is hex of the key, under Dir
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

// Put replaces the whole record through a temp file and rename.
func (s *FileStore) Put(_ context.Context, id string, v []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	final := s.path(id)
	tmp, err := os.CreateTemp(s.Dir, ".save-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(v); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), final)
}

func (s *FileStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(s.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (s *FileStore) NewID() string {
	return newID()
}
