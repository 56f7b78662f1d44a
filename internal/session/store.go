package session

import "context"

// Store persists sessions. Implementations must be safe for concurrent use
// and must apply UpdateState mutations one at a time per session.
type Store interface {
	Put(ctx context.Context, s *Session) error
	// Get returns ErrNotFound for unknown IDs.
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	// UpdateState applies fn to the session's state and persists the result.
	// The state is left unchanged when fn returns an error.
	UpdateState(ctx context.Context, id string, fn func(s *Session, st *State) error) (State, error)
	// Cleanup drops sessions idle past the store's TTL and returns their IDs.
	Cleanup(ctx context.Context) ([]string, error)
	Close() error
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*SQLiteStore)(nil)
)
