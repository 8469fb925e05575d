package ports

import "context"

// IdempotencyStore remembers which todo a create request produced.
type IdempotencyStore interface {
	// Lookup returns the todo id stored for key, or "" when none is stored.
	Lookup(ctx context.Context, key string) (string, error)
	Remember(ctx context.Context, key, todoID string) error
}
