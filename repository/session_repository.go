package repository

import (
	"context"
	"sync"
	"time"

	"github.com/mamaepingo/voice-eval/domain"
)

// sessionRepository is an in-process session store. Sessions are ephemeral
// by contract, so a locked map with lazy expiry sweeps is the whole story.
type sessionRepository struct {
	mu       sync.Mutex
	sessions map[string]*domain.SessionState
	ttl      time.Duration
}

func NewSessionRepository(ttl time.Duration) domain.SessionRepository {
	return &sessionRepository{
		sessions: make(map[string]*domain.SessionState),
		ttl:      ttl,
	}
}

func (r *sessionRepository) Get(_ context.Context, id string) (*domain.SessionState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	state.LastSeen = time.Now()
	return state.Clone(), nil
}

func (r *sessionRepository) Put(_ context.Context, state *domain.SessionState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, s := range r.sessions {
		if r.expired(s) {
			delete(r.sessions, id)
		}
	}

	state.LastSeen = time.Now()
	r.sessions[state.ID] = state.Clone()
	return nil
}

// Update serializes transitions on one session: fn mutates the stored state
// while the store lock is held, so overlapping requests bearing the same
// token cannot interleave on the cursor or the evaluations map.
func (r *sessionRepository) Update(_ context.Context, id string, fn func(*domain.SessionState) error) (*domain.SessionState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	if err := fn(state); err != nil {
		return nil, err
	}
	state.LastSeen = time.Now()
	return state.Clone(), nil
}

// lookup must be called with the lock held.
func (r *sessionRepository) lookup(id string) (*domain.SessionState, error) {
	state, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if r.expired(state) {
		delete(r.sessions, id)
		return nil, domain.ErrSessionNotFound
	}
	return state, nil
}

func (r *sessionRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

func (r *sessionRepository) expired(state *domain.SessionState) bool {
	return r.ttl > 0 && time.Since(state.LastSeen) > r.ttl
}
