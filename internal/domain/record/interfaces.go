package record

import (
	"context"

	"github.com/rpggio/tabsync/internal/domain/partition"
)

// Repository provides persistence for records.
type Repository interface {
	Create(ctx context.Context, rec *Record) error
	Get(ctx context.Context, family partition.Family, ownerID, id string) (*Record, error)
	Update(ctx context.Context, rec *Record) error
	Delete(ctx context.Context, family partition.Family, ownerID, id string) error
	List(ctx context.Context, opts ListRecordsOptions) ([]Record, error)
	Names(ctx context.Context, opts ListRecordsOptions) ([]NameCount, error)
}

// TabRepository checks that a referenced partition exists.
type TabRepository interface {
	Get(ctx context.Context, family partition.Family, ownerID, id string) (*partition.Partition, error)
}
