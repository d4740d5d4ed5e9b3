package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Snapshot persists one value of type T as an indented JSON file. Writes go
// to a temp file that is renamed over the target, so readers never observe a
// half-written snapshot.
type Snapshot[T any] struct {
	mu   sync.Mutex
	path string
}

// NewSnapshot prepares dataDir and returns a snapshot stored at dataDir/filename.
func NewSnapshot[T any](dataDir, filename string) (*Snapshot[T], error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Snapshot[T]{path: filepath.Join(dataDir, filename)}, nil
}

func (s *Snapshot[T]) Path() string { return s.path }

// Load returns the stored value, or the zero T when nothing was saved yet.
func (s *Snapshot[T]) Load() (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var v T
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return v, nil
	}
	if err != nil {
		return v, err
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(&v); err != nil {
		return v, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return v, nil
}

func (s *Snapshot[T]) Save(v T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, s.path)
}
