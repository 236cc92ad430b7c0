package orphan

import (
	"context"

	"github.com/rpggio/tabsync/internal/domain/partition"
)

// Repository provides remote access to unassigned records.
type Repository interface {
	CountOrphans(ctx context.Context, family partition.Family, userID string) (int, error)
	Adopt(ctx context.Context, family partition.Family, userID, partitionID string) (int, error)
}
