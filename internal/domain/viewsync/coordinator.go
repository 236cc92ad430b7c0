package viewsync

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ActivePointer persists the active partition selection.
type ActivePointer interface {
	SetActive(ctx context.Context, partitionID string) error
}

// PointerFunc adapts a function to ActivePointer.
type PointerFunc func(ctx context.Context, partitionID string) error

func (f PointerFunc) SetActive(ctx context.Context, partitionID string) error {
	return f(ctx, partitionID)
}

// Coordinator refetches every dependent view after a mutation or partition switch.
//
// Each refetch is a batch tagged with a generation and the partition it was issued
// for. Results are applied only while their batch is the newest and its partition
// is still active, so a slow batch can never paint one partition's data under
// another's label.
type Coordinator struct {
	pointer  ActivePointer
	logger   *slog.Logger
	onChange func(ViewState)

	// switchMu orders switches so the pointer saves land in stamp order.
	switchMu sync.Mutex

	mu     sync.Mutex
	gen    uint64
	active string
	view   ViewState
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithOnChange registers a listener called with every published ViewState.
// It runs with the coordinator locked and must not call back into it.
func WithOnChange(fn func(ViewState)) Option {
	return func(c *Coordinator) { c.onChange = fn }
}

// NewCoordinator creates a coordinator persisting switches through pointer.
func NewCoordinator(pointer ActivePointer, logger *slog.Logger, opts ...Option) *Coordinator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := &Coordinator{pointer: pointer, logger: logger}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// View returns the current ViewState.
func (c *Coordinator) View() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// Active returns the partition the coordinator is showing.
func (c *Coordinator) Active() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Clear drops all view state and forgets the active partition. Any batch in flight
// is superseded.
func (c *Coordinator) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.active = ""
	c.publish(ViewState{})
}

// AfterMutation refetches the views of the active partition. The list is fetched
// first; summary, stats and names then run concurrently. It returns once all of
// them have settled.
func (c *Coordinator) AfterMutation(ctx context.Context, partitionID string, f Fetchers) error {
	if f.List == nil {
		return ErrMissingFetcher
	}

	c.mu.Lock()
	if partitionID != c.active {
		c.mu.Unlock()
		return ErrSuperseded
	}
	c.gen++
	gen := c.gen
	view := c.view
	view.Loading = true
	c.publish(view)
	c.mu.Unlock()

	return c.refetch(ctx, gen, partitionID, f)
}

// AfterPartitionSwitch blanks the views, persists partitionID as active and
// refetches. The previous partition's data is never visible after this returns
// control to the scheduler. Of overlapping switches, the last one stamped is the
// one persisted.
func (c *Coordinator) AfterPartitionSwitch(ctx context.Context, partitionID string, f Fetchers) error {
	if f.List == nil {
		return ErrMissingFetcher
	}

	gen, err := c.switchTo(ctx, partitionID)
	if err != nil {
		return err
	}
	return c.refetch(ctx, gen, partitionID, f)
}

func (c *Coordinator) switchTo(ctx context.Context, partitionID string) (uint64, error) {
	c.switchMu.Lock()
	defer c.switchMu.Unlock()

	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.active = partitionID
	c.publish(ViewState{PartitionID: partitionID, Loading: true})
	c.mu.Unlock()

	if err := c.pointer.SetActive(ctx, partitionID); err != nil {
		c.mu.Lock()
		if c.current(gen, partitionID) {
			c.publish(ViewState{PartitionID: partitionID, Err: err})
		}
		c.mu.Unlock()
		return 0, fmt.Errorf("switching partition: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.current(gen, partitionID) {
		return 0, ErrSuperseded
	}
	return gen, nil
}

func (c *Coordinator) refetch(ctx context.Context, gen uint64, partitionID string, f Fetchers) error {
	list, err := f.List(ctx, partitionID)

	c.mu.Lock()
	if !c.current(gen, partitionID) {
		c.mu.Unlock()
		return ErrSuperseded
	}
	if err != nil {
		c.publish(ViewState{PartitionID: partitionID, Err: err})
		c.mu.Unlock()
		return fmt.Errorf("fetching %s: %w", SliceList, err)
	}
	view := c.view
	view.PartitionID = partitionID
	view.List = list
	view.Err = nil
	c.publish(view)
	c.mu.Unlock()

	var g errgroup.Group
	secondaries := []struct {
		slice Slice
		fetch Fetcher
	}{
		{SliceSummary, f.Summary},
		{SliceStats, f.Stats},
		{SliceNames, f.Names},
	}
	for _, s := range secondaries {
		if s.fetch == nil {
			continue
		}
		g.Go(func() error {
			value, err := s.fetch(ctx, partitionID)

			c.mu.Lock()
			defer c.mu.Unlock()
			if !c.current(gen, partitionID) {
				return nil
			}
			if err != nil {
				// The slice keeps its last known value.
				c.logger.Warn("secondary view fetch failed", "view", s.slice, "partition_id", partitionID, "error", err)
				return nil
			}
			view := c.view
			view.set(s.slice, value)
			c.publish(view)
			return nil
		})
	}
	_ = g.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.current(gen, partitionID) {
		return ErrSuperseded
	}
	view = c.view
	view.Loading = false
	c.publish(view)
	return nil
}

func (c *Coordinator) current(gen uint64, partitionID string) bool {
	return gen == c.gen && partitionID == c.active
}

func (c *Coordinator) publish(view ViewState) {
	c.view = view
	if c.onChange != nil {
		c.onChange(view)
	}
}
