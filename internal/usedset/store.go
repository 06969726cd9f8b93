package usedset

import "context"

// Store tracks which card indices have already been dealt to a session.
// Implementations must treat unknown sessions as empty, not as errors, and
// must make Add and Clear idempotent.
type Store interface {
	// Used returns the set of indices already dealt to the session.
	Used(ctx context.Context, sessionID string) (map[int]struct{}, error)

	// Add records an index as dealt. Adding a present index is a no-op.
	Add(ctx context.Context, sessionID string, index int) error

	// Clear forgets all usage for the session.
	Clear(ctx context.Context, sessionID string) error
}
