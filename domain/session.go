package domain

import (
	"context"
	"time"
)

// SessionState is per-session ephemeral state: the catalog snapshot taken at
// session start, the cursor into it, and a local mirror of this session's
// submitted scores. Held server-side, never persisted.
type SessionState struct {
	ID           string
	CurrentIndex int
	Catalog      []AudioItem
	Evaluations  map[string]int
	CreatedAt    time.Time
	LastSeen     time.Time
}

// Complete reports whether every item has been visited (cursor == catalog
// length). Not terminal: Previous and Reset both escape it.
func (s *SessionState) Complete() bool {
	return s.CurrentIndex >= len(s.Catalog)
}

// Current returns the item under the cursor, false once complete.
func (s *SessionState) Current() (AudioItem, bool) {
	if s.Complete() {
		return AudioItem{}, false
	}
	return s.Catalog[s.CurrentIndex], true
}

// FindItem looks up a catalog item by anonymous id.
func (s *SessionState) FindItem(anonymousID string) (AudioItem, bool) {
	for _, item := range s.Catalog {
		if item.AnonymousID == anonymousID {
			return item, true
		}
	}
	return AudioItem{}, false
}

// Clone copies the state so callers never share the stored instance. The
// catalog snapshot is immutable after Start and stays shared.
func (s *SessionState) Clone() *SessionState {
	c := *s
	c.Evaluations = make(map[string]int, len(s.Evaluations))
	for id, score := range s.Evaluations {
		c.Evaluations[id] = score
	}
	return &c
}

// SessionRepository stores live sessions keyed by session id. Get and Put
// exchange copies; all mutation of a stored session goes through Update so
// concurrent requests on one session id serialize instead of racing.
type SessionRepository interface {
	Get(ctx context.Context, id string) (*SessionState, error)
	Put(ctx context.Context, state *SessionState) error

	// Update runs fn on the stored session under the store lock and
	// returns a copy of the result. An error from fn leaves the stored
	// state untouched by contract (fn must mutate only after its last
	// possible failure).
	Update(ctx context.Context, id string, fn func(*SessionState) error) (*SessionState, error)

	Delete(ctx context.Context, id string) error
}

// SessionUsecase drives the per-session rating state machine. Every
// transition returns the updated state.
type SessionUsecase interface {
	// Start builds a fresh catalog and opens a new session over it.
	Start(ctx context.Context) (*SessionState, error)

	Get(ctx context.Context, id string) (*SessionState, error)

	// Submit records a score for the current item and advances the cursor.
	// A failed write leaves the cursor in place so the rating is not lost.
	Submit(ctx context.Context, id string, score int, userAgent string) (*SessionState, error)

	// Skip advances without recording a score.
	Skip(ctx context.Context, id string) (*SessionState, error)

	// Previous steps the cursor back; from the completed state it returns
	// to the last item for review.
	Previous(ctx context.Context, id string) (*SessionState, error)

	// Next advances only when the current item already has a recorded score.
	Next(ctx context.Context, id string) (*SessionState, error)

	// Reset discards the session and starts over with a fresh session id
	// and a freshly built, freshly shuffled catalog.
	Reset(ctx context.Context, id string) (*SessionState, error)
}
