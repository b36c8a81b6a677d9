package session

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"ragchat/src/models"
	"ragchat/src/services/storage"
)

// Store holds the ordered session list, most recent first, and mirrors it
// into the key-value store under storage.KeyChatHistories.
type Store struct {
	mu       sync.RWMutex
	sessions []models.ChatSession
	kv       storage.KeyValueStore
	logger   *slog.Logger
}

// NewStore creates an empty store. kv may be nil, in which case nothing is mirrored.
func NewStore(kv storage.KeyValueStore, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{kv: kv, logger: logger}
}

// Replace swaps the whole list.
func (s *Store) Replace(list []models.ChatSession) {
	cp := make([]models.ChatSession, len(list))
	for i := range list {
		cp[i] = list[i].Clone()
	}
	s.mu.Lock()
	s.sessions = cp
	s.mu.Unlock()
}

// Prepend inserts a session at the head of the list.
func (s *Store) Prepend(sess models.ChatSession) {
	s.mu.Lock()
	s.sessions = append([]models.ChatSession{sess.Clone()}, s.sessions...)
	s.mu.Unlock()
}

// Find returns a copy of the session with id.
func (s *Store) Find(id models.ChatID) (models.ChatSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.index(id); i >= 0 {
		return s.sessions[i].Clone(), true
	}
	return models.ChatSession{}, false
}

// Contains reports whether id is in the list.
func (s *Store) Contains(id models.ChatID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index(id) >= 0
}

// SetMessages caches a fetched history on the session.
func (s *Store) SetMessages(id models.ChatID, msgs []models.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.sessions[i].Messages = append([]models.Message(nil), msgs...)
	return true
}

// Append adds messages to the session and bumps its timestamp.
func (s *Store) Append(id models.ChatID, at time.Time, msgs ...models.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.sessions[i].Messages = append(s.sessions[i].Messages, msgs...)
	s.sessions[i].UpdatedAt = at
	return true
}

// Snapshot returns a deep copy of the list.
func (s *Store) Snapshot() []models.ChatSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ChatSession, len(s.sessions))
	for i := range s.sessions {
		out[i] = s.sessions[i].Clone()
	}
	return out
}

// First returns the id of the head session, or "" when empty.
func (s *Store) First() models.ChatID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.sessions) == 0 {
		return ""
	}
	return s.sessions[0].ID
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Store) index(id models.ChatID) int {
	for i := range s.sessions {
		if s.sessions[i].ID == id {
			return i
		}
	}
	return -1
}

// Persist writes the mirror. Failures are logged and returned; callers
// in the chat flow ignore them.
func (s *Store) Persist() error {
	if s.kv == nil {
		return nil
	}
	s.mu.RLock()
	data, err := json.Marshal(s.sessions)
	s.mu.RUnlock()
	if err != nil {
		s.logger.Error("failed to encode chat mirror", "error", err)
		return &models.StorageError{Message: "failed to encode chat histories", Err: err}
	}
	if err := s.kv.Set(storage.KeyChatHistories, string(data)); err != nil {
		s.logger.Error("failed to persist chat mirror", "error", err)
		return err
	}
	return nil
}

// LoadMirror reads the persisted sessions without touching the in-memory list.
// A missing or unreadable mirror yields an empty list.
func (s *Store) LoadMirror() ([]models.ChatSession, error) {
	if s.kv == nil {
		return nil, nil
	}
	raw, ok, err := s.kv.Get(storage.KeyChatHistories)
	if err != nil || !ok {
		return nil, err
	}
	var list []models.ChatSession
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		s.logger.Warn("discarding unreadable chat mirror", "error", err)
		return nil, &models.StorageError{Message: "failed to decode chat histories", Err: err}
	}
	return list, nil
}
