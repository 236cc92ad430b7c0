package draft

import "context"

// LocalStore is the synchronous key-value store that survives restarts.
// Get returns repository.ErrNotFound for an absent key.
type LocalStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}
