package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"rentflow/internal/domain"
	"rentflow/internal/repository"
)

// sessionRepository keeps sessions as encoded JSON so callers never share
// state with the store, the same as the Redis backend.
type sessionRepository struct {
	mu       sync.RWMutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]storedSession
}

type storedSession struct {
	data      []byte
	expiresAt time.Time
}

// NewSessionRepository returns a process-local store. A zero ttl keeps
// sessions until deleted.
func NewSessionRepository(ttl time.Duration) repository.SessionRepository {
	return &sessionRepository{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]storedSession),
	}
}

func (r *sessionRepository) Create(ctx context.Context, session *domain.BookingSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[session.ID]; ok && !r.expired(s) {
		return fmt.Errorf("booking session %s already exists", session.ID)
	}
	return r.put(session)
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*domain.BookingSession, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok || r.expired(s) {
		return nil, repository.ErrSessionNotFound
	}
	var session domain.BookingSession
	if err := json.Unmarshal(s.data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode booking session: %w", err)
	}
	return &session, nil
}

func (r *sessionRepository) Save(ctx context.Context, session *domain.BookingSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[session.ID]; !ok || r.expired(s) {
		return repository.ErrSessionNotFound
	}
	return r.put(session)
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return repository.ErrSessionNotFound
	}
	delete(r.sessions, id)
	return nil
}

func (r *sessionRepository) put(session *domain.BookingSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode booking session: %w", err)
	}
	s := storedSession{data: data}
	if r.ttl > 0 {
		s.expiresAt = r.now().Add(r.ttl)
	}
	r.sessions[session.ID] = s
	return nil
}

func (r *sessionRepository) expired(s storedSession) bool {
	return !s.expiresAt.IsZero() && r.now().After(s.expiresAt)
}
