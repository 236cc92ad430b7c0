// Package tab is the server side of partitions: it owns tab rows and the
// assignment of records to them.
package tab

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rpggio/tabsync/internal/domain/partition"
	"github.com/rpggio/tabsync/internal/repository"
)

// RoleAdmin lists the tabs of every owner.
const RoleAdmin = "admin"

// DefaultPolicy applies when a delete names no policy.
const DefaultPolicy = partition.PolicyDelete

// Service handles tab operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new tab service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, logger: logger}
}

// Create creates a new tab.
func (s *Service) Create(ctx context.Context, family partition.Family, ownerID, name string) (*partition.Partition, error) {
	name = strings.TrimSpace(name)
	if !family.Valid() || ownerID == "" || name == "" {
		return nil, ErrInvalidInput
	}

	t := &partition.Partition{
		ID:        uuid.NewString(),
		Name:      name,
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, family, t); err != nil {
		return nil, fmt.Errorf("creating tab: %w", err)
	}

	s.logger.Info("tab created", "family", family, "owner", ownerID, "tab_id", t.ID)
	return t, nil
}

// Get fetches a tab by ID.
func (s *Service) Get(ctx context.Context, family partition.Family, ownerID, id string) (*partition.Partition, error) {
	t, err := s.repo.Get(ctx, family, ownerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTabNotFound
		}
		return nil, fmt.Errorf("getting tab: %w", err)
	}
	return t, nil
}

// List returns the owner's tabs, oldest first. The admin role sees every owner's tabs.
func (s *Service) List(ctx context.Context, family partition.Family, ownerID, role string) ([]partition.Partition, error) {
	if !family.Valid() || ownerID == "" {
		return nil, ErrInvalidInput
	}
	if role == RoleAdmin {
		ownerID = ""
	}
	tabs, err := s.repo.List(ctx, family, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing tabs: %w", err)
	}
	return tabs, nil
}

// Rename renames a tab.
func (s *Service) Rename(ctx context.Context, family partition.Family, ownerID, id, name string) (*partition.Partition, error) {
	name = strings.TrimSpace(name)
	if !family.Valid() || ownerID == "" || name == "" {
		return nil, ErrInvalidInput
	}
	if err := s.repo.Rename(ctx, family, ownerID, id, name); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTabNotFound
		}
		return nil, fmt.Errorf("renaming tab: %w", err)
	}
	return s.Get(ctx, family, ownerID, id)
}

// Delete removes a tab and handles its records according to policy. An empty
// policy means DefaultPolicy.
func (s *Service) Delete(ctx context.Context, family partition.Family, ownerID, id string, policy partition.DeletePolicy) error {
	if policy == "" {
		policy = DefaultPolicy
	}
	if !family.Valid() || ownerID == "" || !policy.Valid() {
		return ErrInvalidInput
	}

	if err := s.repo.Delete(ctx, family, ownerID, id, policy); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return ErrTabNotFound
		case errors.Is(err, repository.ErrConflict):
			return ErrTabInUse
		}
		return fmt.Errorf("deleting tab: %w", err)
	}

	s.logger.Info("tab deleted", "family", family, "owner", ownerID, "tab_id", id, "policy", policy)
	return nil
}

// CountOrphans counts the owner's records without a tab.
func (s *Service) CountOrphans(ctx context.Context, family partition.Family, ownerID string) (int, error) {
	if !family.Valid() || ownerID == "" {
		return 0, ErrInvalidInput
	}
	n, err := s.repo.CountOrphans(ctx, family, ownerID)
	if err != nil {
		return 0, fmt.Errorf("counting orphans: %w", err)
	}
	return n, nil
}

// Adopt assigns every orphan of the owner to the tab in one transaction.
func (s *Service) Adopt(ctx context.Context, family partition.Family, ownerID, id string) (int, error) {
	if !family.Valid() || ownerID == "" {
		return 0, ErrInvalidInput
	}
	n, err := s.repo.Adopt(ctx, family, ownerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrTabNotFound
		}
		return 0, fmt.Errorf("adopting orphans: %w", err)
	}

	s.logger.Info("orphans adopted", "family", family, "owner", ownerID, "tab_id", id, "count", n)
	return n, nil
}
