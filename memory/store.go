package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/zero-day-ai/kgchat/llm"
)

// Common errors returned by history stores.
var (
	// ErrInvalidSession is returned when a session identifier is empty.
	ErrInvalidSession = errors.New("memory: session id required")

	// ErrStorageFailed wraps failures of the underlying storage backend.
	ErrStorageFailed = errors.New("memory: storage operation failed")
)

// DefaultMaxTurns caps the number of turns retained per session. Older turns
// are discarded first.
const DefaultMaxTurns = 20

// Store provides access to per-session conversation history.
//
// Implementations must be safe for concurrent use; one Store is shared by
// every request in the process.
type Store interface {
	// History returns the session's turns, oldest first. An unknown session
	// yields an empty history, not an error.
	History(ctx context.Context, sessionID string) ([]llm.Turn, error)

	// Append adds turns to the end of the session's history, creating the
	// session if needed and discarding the oldest turns beyond the cap.
	Append(ctx context.Context, sessionID string, turns ...llm.Turn) error

	// Clear removes the session's history. Clearing an unknown session is a
	// no-op.
	Clear(ctx context.Context, sessionID string) error

	// Close releases any backend resources.
	Close() error
}

// InMemoryStore keeps session history in process memory. Suitable for
// single-node deployments and tests; history is lost on restart.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]llm.Turn
	maxTurns int
}

// NewInMemoryStore creates an in-process store. maxTurns caps retained turns
// per session; zero or negative selects the default cap.
func NewInMemoryStore(maxTurns int) *InMemoryStore {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &InMemoryStore{
		sessions: make(map[string][]llm.Turn),
		maxTurns: maxTurns,
	}
}

// History returns a copy of the session's turns, oldest first.
func (s *InMemoryStore) History(_ context.Context, sessionID string) ([]llm.Turn, error) {
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	turns := s.sessions[sessionID]
	out := make([]llm.Turn, len(turns))
	copy(out, turns)
	return out, nil
}

// Append adds turns to the session, trimming to the cap.
func (s *InMemoryStore) Append(_ context.Context, sessionID string, turns ...llm.Turn) error {
	if sessionID == "" {
		return ErrInvalidSession
	}
	if len(turns) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	history := append(s.sessions[sessionID], turns...)
	if len(history) > s.maxTurns {
		history = history[len(history)-s.maxTurns:]
	}
	s.sessions[sessionID] = history
	return nil
}

// Clear removes the session's history.
func (s *InMemoryStore) Clear(_ context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrInvalidSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	return nil
}

// Close is a no-op for the in-process store.
func (s *InMemoryStore) Close() error {
	return nil
}
