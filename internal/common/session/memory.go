// internal/common/session/memory.go
package session

import (
	"context"
	"sync"
	"time"

	"mic-ai-service/internal/models"
)

// MemoryStore is a process-local Store. Nothing survives a restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.ChatSession
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*models.ChatSession),
		now:      time.Now,
	}
}

func (s *MemoryStore) GetOrCreate(ctx context.Context, id string) (*models.ChatSession, error) {
	if id == "" {
		return nil, ErrEmptySessionID
	}

	s.mu.RLock()
	sess, ok := s.sessions[id]
	if ok {
		out := sess.Clone()
		s.mu.RUnlock()
		return out, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getOrCreateLocked(id).Clone(), nil
}

func (s *MemoryStore) Append(ctx context.Context, id string, turns ...models.Turn) error {
	if id == "" {
		return ErrEmptySessionID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreateLocked(id)
	sess.History = append(sess.History, turns...)
	return nil
}

func (s *MemoryStore) Trim(ctx context.Context, id string, keep int) error {
	if id == "" {
		return ErrEmptySessionID
	}
	if keep < 0 {
		keep = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok || len(sess.History) <= keep {
		return nil
	}
	sess.History = append([]models.Turn(nil), sess.History[len(sess.History)-keep:]...)
	return nil
}

// Len returns the number of known sessions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *MemoryStore) getOrCreateLocked(id string) *models.ChatSession {
	sess, ok := s.sessions[id]
	if !ok {
		sess = &models.ChatSession{
			ID:        id,
			History:   []models.Turn{},
			CreatedAt: s.now().UTC(),
		}
		s.sessions[id] = sess
	}
	return sess
}
