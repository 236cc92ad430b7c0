package draft

import (
	"context"
	"sync"
	"time"
)

// Autosaver coalesces form updates into at most one draft write per interval.
// The write always carries the latest update.
type Autosaver struct {
	drafts   *Service
	key      string
	interval time.Duration

	// wmu serializes writes so Stop can wait for one in flight.
	wmu sync.Mutex

	mu      sync.Mutex
	pending FormShape
	dirty   bool
	timer   *time.Timer
	stopped bool
	writes  int
	lastErr error
}

// NewAutosaver creates an autosaver writing to key. A non-positive interval
// uses DefaultAutosaveInterval.
func (s *Service) NewAutosaver(key string, interval time.Duration) *Autosaver {
	if interval <= 0 {
		interval = DefaultAutosaveInterval
	}
	return &Autosaver{drafts: s, key: key, interval: interval}
}

// Update records the latest form content and schedules a write if none is pending.
func (a *Autosaver) Update(payload FormShape) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return
	}
	a.pending = clone(payload)
	a.dirty = true
	if a.timer == nil {
		a.timer = time.AfterFunc(a.interval, a.fire)
	}
}

// Flush writes any pending update now.
func (a *Autosaver) Flush(ctx context.Context) error {
	a.wmu.Lock()
	defer a.wmu.Unlock()

	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	if a.stopped || !a.dirty {
		a.mu.Unlock()
		return nil
	}
	payload := a.pending
	a.dirty = false
	a.mu.Unlock()

	return a.write(ctx, payload)
}

// Stop drops any pending update and waits for a write in progress to finish.
func (a *Autosaver) Stop() {
	a.mu.Lock()
	a.stopped = true
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.pending = nil
	a.dirty = false
	a.mu.Unlock()

	a.wmu.Lock()
	a.wmu.Unlock()
}

// Writes returns how many drafts have been written.
func (a *Autosaver) Writes() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.writes
}

// Err returns the error of the last write, if any.
func (a *Autosaver) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr
}

func (a *Autosaver) fire() {
	a.wmu.Lock()
	defer a.wmu.Unlock()

	a.mu.Lock()
	a.timer = nil
	if a.stopped || !a.dirty {
		a.mu.Unlock()
		return
	}
	payload := a.pending
	a.dirty = false
	a.mu.Unlock()

	if err := a.write(context.Background(), payload); err != nil {
		a.drafts.logger.Warn("autosave failed", "key", a.key, "error", err)
	}
}

func (a *Autosaver) write(ctx context.Context, payload FormShape) error {
	err := a.drafts.Save(ctx, a.key, payload)

	a.mu.Lock()
	a.lastErr = err
	if err == nil {
		a.writes++
	}
	a.mu.Unlock()
	return err
}
