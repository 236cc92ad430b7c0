package partition

import "context"

// Repository provides remote persistence for partitions.
type Repository interface {
	List(ctx context.Context, family Family, userID string) ([]Partition, error)
	Create(ctx context.Context, family Family, name, userID string) (*Partition, error)
	Rename(ctx context.Context, family Family, userID, id, name string) error
	Delete(ctx context.Context, family Family, userID, id string, policy DeletePolicy) error
}

// LocalStore is the synchronous key-value store that survives restarts.
// Get returns repository.ErrNotFound for an absent key.
type LocalStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}
