package tab

import (
	"context"

	"github.com/rpggio/tabsync/internal/domain/partition"
)

// Repository provides persistence for tabs. An empty ownerID in List means every owner.
type Repository interface {
	Create(ctx context.Context, family partition.Family, t *partition.Partition) error
	Get(ctx context.Context, family partition.Family, ownerID, id string) (*partition.Partition, error)
	List(ctx context.Context, family partition.Family, ownerID string) ([]partition.Partition, error)
	Rename(ctx context.Context, family partition.Family, ownerID, id, name string) error
	Delete(ctx context.Context, family partition.Family, ownerID, id string, policy partition.DeletePolicy) error
	CountOrphans(ctx context.Context, family partition.Family, ownerID string) (int, error)
	Adopt(ctx context.Context, family partition.Family, ownerID, id string) (int, error)
}
