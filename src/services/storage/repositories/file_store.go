package repositories

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"ragchat/src/models"
)

// FileStore keeps every key in a single JSON object on disk.
// The whole file is rewritten on each mutation.
type FileStore struct {
	mu   sync.Mutex
	file string
	data map[string]string
}

// NewFileStore loads (or lazily creates) the store at file.
func NewFileStore(file string) (*FileStore, error) {
	s := &FileStore{file: file, data: map[string]string{}}
	raw, err := os.ReadFile(file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, &models.StorageError{Message: "failed to read storage file", Err: err}
	}
	if len(raw) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, &models.StorageError{Message: "failed to parse storage file", Err: err}
	}
	return s, nil
}

func (s *FileStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, had := s.data[key]
	s.data[key] = value
	if err := s.flush(); err != nil {
		if had {
			s.data[key] = prev
		} else {
			delete(s.data, key)
		}
		return err
	}
	return nil
}

func (s *FileStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.data[key]
	if !ok {
		return nil
	}
	delete(s.data, key)
	if err := s.flush(); err != nil {
		s.data[key] = prev
		return err
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// flush writes to a temp file and renames it so a crash never leaves half a file.
func (s *FileStore) flush() error {
	if err := os.MkdirAll(filepath.Dir(s.file), 0755); err != nil {
		return &models.StorageError{Message: "failed to create storage directory", Err: err}
	}
	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return &models.StorageError{Message: "failed to marshal storage", Err: err}
	}
	tmp := s.file + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return &models.StorageError{Message: "failed to write storage file", Err: err}
	}
	if err := os.Rename(tmp, s.file); err != nil {
		return &models.StorageError{Message: "failed to replace storage file", Err: err}
	}
	return nil
}
