package record

import "github.com/rpggio/tabsync/internal/domain/partition"

// ListRecordsOptions provides filtering options for listing records.
// A nil TabID lists every record of the owner, orphans included.
type ListRecordsOptions struct {
	Family  partition.Family
	OwnerID string
	TabID   *string
	Limit   int
	Offset  int
}

// NamesOptions narrows the name index.
type NamesOptions struct {
	ListRecordsOptions
	Query string
	Limit int
}
