package viewsync

import (
	"context"
	"errors"
)

var (
	// ErrSuperseded is returned to a caller whose refetch batch was overtaken by a
	// newer mutation or partition switch; its results were dropped.
	ErrSuperseded = errors.New("refetch superseded by a newer request")
	// ErrMissingFetcher indicates Fetchers without a primary list fetcher.
	ErrMissingFetcher = errors.New("list fetcher is required")
)

// Fetcher loads one view for a partition. An empty partitionID means unscoped.
type Fetcher func(ctx context.Context, partitionID string) (any, error)

// Fetchers are the caller-supplied loaders for each view. Only List is required.
type Fetchers struct {
	List    Fetcher
	Summary Fetcher
	Stats   Fetcher
	Names   Fetcher
}

// Slice names one view of the ViewState.
type Slice string

const (
	SliceList    Slice = "list"
	SliceSummary Slice = "summary"
	SliceStats   Slice = "stats"
	SliceNames   Slice = "names"
)

// ViewState is what the UI renders for the active partition.
type ViewState struct {
	PartitionID string
	List        any
	Summary     any
	Stats       any
	Names       any
	// Loading is true from the start of a batch until it settles.
	Loading bool
	// Err holds the primary fetch failure of the last settled batch.
	Err error
}

// Empty reports whether no view data is held.
func (v ViewState) Empty() bool {
	return v.List == nil && v.Summary == nil && v.Stats == nil && v.Names == nil
}

func (v *ViewState) set(slice Slice, value any) {
	switch slice {
	case SliceList:
		v.List = value
	case SliceSummary:
		v.Summary = value
	case SliceStats:
		v.Stats = value
	case SliceNames:
		v.Names = value
	}
}
