package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileStore keeps one indented JSON file per session in a directory.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStore creates dir (mode 0700) if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("session dir is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Path returns the store directory.
func (f *FileStore) Path() string { return f.dir }

func (f *FileStore) path(id string) string {
	return filepath.Join(f.dir, id+".json")
}

func (f *FileStore) Get(_ context.Context, id string) (*Session, error) {
	if !ValidID(id) {
		return nil, ErrNotFound
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.read(f.path(id))
}

func (f *FileStore) read(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", filepath.Base(path), err)
	}
	return &s, nil
}

func (f *FileStore) Put(_ context.Context, s *Session) error {
	if !ValidID(s.ID) {
		return fmt.Errorf("invalid session id %q", s.ID)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.WriteFile(f.path(s.ID), data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

func (f *FileStore) Delete(_ context.Context, id string) error {
	if !ValidID(id) {
		return ErrNotFound
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	err := os.Remove(f.path(id))
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// List reads every session file. Files that fail to decode are skipped.
func (f *FileStore) List(_ context.Context) ([]*Session, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("read session dir: %w", err)
	}
	var out []*Session
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") || !ValidID(strings.TrimSuffix(name, ".json")) {
			continue
		}
		s, err := f.read(filepath.Join(f.dir, name))
		if err != nil {
			continue
		}
		out = append(out, s)
	}
	sortByUpdated(out)
	return out, nil
}

func (f *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)
