package repository

import (
	"fmt"
	"sync"

	"nightbid/internal/auctionerrors"
	model "nightbid/internal/models"
)

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=repository

// SessionStore defines the session snapshot persistence interface. The
// engine treats the store as write-behind: a failed save is logged, never
// blocks a committed mutation.
type SessionStore interface {
	SaveSession(sess model.Session) error
	GetSession(sessionID string) (model.Session, error)
	ListActiveSessions() ([]model.Session, error)
	DeleteSession(sessionID string) error
}

// MemoryStore is a concurrency-safe in-memory implementation of SessionStore.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]model.Session // key: sessionID
}

// NewMemoryStore creates a new in-memory store instance.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]model.Session),
	}
}

// SaveSession stores a deep copy of the session snapshot.
func (s *MemoryStore) SaveSession(sess model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sess.SessionID] = sess.Clone()
	return nil
}

// GetSession returns a deep copy of a stored session.
func (s *MemoryStore) GetSession(sessionID string) (model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return model.Session{}, fmt.Errorf("get session %s: %w", sessionID, auctionerrors.ErrSessionNotFound)
	}
	return sess.Clone(), nil
}

// ListActiveSessions returns copies of all sessions still in active status.
func (s *MemoryStore) ListActiveSessions() ([]model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var active []model.Session
	for _, sess := range s.sessions {
		if sess.Status == model.StatusActive {
			active = append(active, sess.Clone())
		}
	}
	return active, nil
}

// DeleteSession removes a session snapshot.
func (s *MemoryStore) DeleteSession(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return fmt.Errorf("delete session %s: %w", sessionID, auctionerrors.ErrSessionNotFound)
	}
	delete(s.sessions, sessionID)
	return nil
}
