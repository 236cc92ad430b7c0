package partition

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/rpggio/tabsync/internal/repository"
)

// Service owns the partition list and the active pointer for each scope.
type Service struct {
	repo   Repository
	store  LocalStore
	logger *slog.Logger

	mu     sync.Mutex
	lists  map[Scope][]Partition
	active map[Scope]string
}

// NewService creates a new partition service.
func NewService(repo Repository, store LocalStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		repo:   repo,
		store:  store,
		logger: logger,
		lists:  make(map[Scope][]Partition),
		active: make(map[Scope]string),
	}
}

// List fetches the partitions of the scope and caches them.
func (s *Service) List(ctx context.Context, scope Scope) ([]Partition, error) {
	if err := scope.validate(); err != nil {
		return nil, err
	}

	list, err := s.repo.List(ctx, scope.Family, scope.UserID)
	if err != nil {
		return nil, fmt.Errorf("listing partitions: %w", err)
	}

	s.mu.Lock()
	s.lists[scope] = append([]Partition(nil), list...)
	s.mu.Unlock()

	return append([]Partition(nil), list...), nil
}

// Partitions returns the cached list from the last List call.
func (s *Service) Partitions(scope Scope) []Partition {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Partition(nil), s.lists[scope]...)
}

// Get returns a cached partition by ID.
func (s *Service) Get(scope Scope, id string) (Partition, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := indexOf(s.lists[scope], id)
	if idx < 0 {
		return Partition{}, false
	}
	return s.lists[scope][idx], true
}

// Create creates a partition and makes it the active one.
func (s *Service) Create(ctx context.Context, scope Scope, name string) (*Partition, error) {
	if err := scope.validate(); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}

	p, err := s.repo.Create(ctx, scope.Family, name, scope.UserID)
	if err != nil {
		return nil, fmt.Errorf("creating partition: %w", err)
	}

	s.mu.Lock()
	s.lists[scope] = append(s.lists[scope], *p)
	s.mu.Unlock()

	if err := s.persistActive(ctx, scope, p.ID); err != nil {
		return nil, err
	}

	s.logger.Info("partition created", "family", scope.Family, "partition_id", p.ID)
	return p, nil
}

// Rename renames a partition. Renaming to the current name is a no-op.
func (s *Service) Rename(ctx context.Context, scope Scope, id, name string) error {
	if err := scope.validate(); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidName
	}
	if current, ok := s.Get(scope, id); ok && current.Name == name {
		return nil
	}

	if err := s.repo.Rename(ctx, scope.Family, scope.UserID, id, name); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPartitionNotFound
		}
		return fmt.Errorf("renaming partition: %w", err)
	}

	s.mu.Lock()
	if idx := indexOf(s.lists[scope], id); idx >= 0 {
		s.lists[scope][idx].Name = name
	}
	s.mu.Unlock()
	return nil
}

// Delete removes a partition. The caller must have obtained user confirmation.
// It returns the active partition ID after the delete; "" means none is selected.
func (s *Service) Delete(ctx context.Context, scope Scope, id string, policy DeletePolicy) (string, error) {
	if err := scope.validate(); err != nil {
		return "", err
	}
	if !policy.Valid() {
		return "", ErrInvalidPolicy
	}

	if err := s.repo.Delete(ctx, scope.Family, scope.UserID, id, policy); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return "", ErrPartitionNotFound
		case errors.Is(err, repository.ErrConflict):
			return "", ErrPartitionInUse
		}
		return "", fmt.Errorf("deleting partition: %w", err)
	}

	s.mu.Lock()
	list := s.lists[scope]
	if idx := indexOf(list, id); idx >= 0 {
		list = append(list[:idx:idx], list[idx+1:]...)
		s.lists[scope] = list
	}
	wasActive := s.active[scope] == id
	next := s.active[scope]
	if wasActive {
		next = ""
		if len(list) > 0 {
			next = list[0].ID
		}
	}
	s.mu.Unlock()

	if !wasActive {
		return next, nil
	}
	if next == "" {
		return "", s.ClearActive(ctx, scope)
	}
	if err := s.persistActive(ctx, scope, next); err != nil {
		return "", err
	}
	return next, nil
}

// SetActive persists the active pointer. It does not fetch anything.
func (s *Service) SetActive(ctx context.Context, scope Scope, id string) error {
	if err := scope.validate(); err != nil {
		return err
	}
	if _, ok := s.Get(scope, id); !ok {
		return ErrPartitionNotFound
	}
	return s.persistActive(ctx, scope, id)
}

// ClearActive removes the active pointer entirely.
func (s *Service) ClearActive(ctx context.Context, scope Scope) error {
	s.mu.Lock()
	delete(s.active, scope)
	s.mu.Unlock()

	if err := s.store.Remove(ctx, scope.ActiveKey()); err != nil {
		return fmt.Errorf("clearing active partition: %w", err)
	}
	return nil
}

// Active returns the in-memory active partition ID, "" if none.
func (s *Service) Active(scope Scope) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active[scope]
}

// RestoreActive fetches the live list and validates the persisted pointer against it,
// falling back to the first partition or to none. The result is never a dangling ID.
func (s *Service) RestoreActive(ctx context.Context, scope Scope) (string, error) {
	list, err := s.List(ctx, scope)
	if err != nil {
		return "", err
	}

	stored, err := s.readActive(ctx, scope)
	if err != nil {
		return "", err
	}

	chosen := ""
	switch {
	case stored != "" && indexOf(list, stored) >= 0:
		chosen = stored
	case len(list) > 0:
		chosen = list[0].ID
	}

	if chosen != stored {
		s.logger.Info("active partition restored with fallback", "family", scope.Family, "stored", stored, "chosen", chosen)
	}
	if chosen == "" {
		return "", s.ClearActive(ctx, scope)
	}
	if err := s.persistActive(ctx, scope, chosen); err != nil {
		return "", err
	}
	return chosen, nil
}

func (s *Service) persistActive(ctx context.Context, scope Scope, id string) error {
	data, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("encoding active partition: %w", err)
	}
	if err := s.store.Set(ctx, scope.ActiveKey(), data); err != nil {
		return fmt.Errorf("persisting active partition: %w", err)
	}

	s.mu.Lock()
	s.active[scope] = id
	s.mu.Unlock()
	return nil
}

func (s *Service) readActive(ctx context.Context, scope Scope) (string, error) {
	data, err := s.store.Get(ctx, scope.ActiveKey())
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading active partition: %w", err)
	}

	var id string
	if err := json.Unmarshal(data, &id); err != nil {
		s.logger.Warn("ignoring unreadable active partition pointer", "key", scope.ActiveKey(), "error", err)
		return "", nil
	}
	return id, nil
}

func indexOf(list []Partition, id string) int {
	for i, p := range list {
		if p.ID == id {
			return i
		}
	}
	return -1
}
