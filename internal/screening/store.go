package screening

import (
	"context"
	"sort"
	"sync"

	"github.com/fairyhunter13/ai-talent-screener/internal/domain"
)

// MemoryStore is a process-local domain.SessionStore.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.ScreeningSession
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: map[string]domain.ScreeningSession{}}
}

// Get implements domain.SessionStore.
func (s *MemoryStore) Get(_ context.Context, id string) (domain.ScreeningSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return domain.ScreeningSession{}, domain.ErrNotFound
	}
	return cloneSession(sess), nil
}

// Put implements domain.SessionStore.
func (s *MemoryStore) Put(_ context.Context, sess domain.ScreeningSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = cloneSession(sess)
	return nil
}

// Delete implements domain.SessionStore. Deleting a missing id is a no-op.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// List implements domain.SessionStore, ordered by session id.
func (s *MemoryStore) List(_ context.Context) ([]domain.ScreeningSession, error) {
	s.mu.RLock()
	out := make([]domain.ScreeningSession, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, cloneSession(sess))
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func cloneSession(s domain.ScreeningSession) domain.ScreeningSession {
	s.Questions = append([]domain.ScreeningQuestion(nil), s.Questions...)
	s.Responses = append([]domain.ScreeningResponse(nil), s.Responses...)
	return s
}
