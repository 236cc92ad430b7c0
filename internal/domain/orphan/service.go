package orphan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rpggio/tabsync/internal/domain/partition"
	"github.com/rpggio/tabsync/internal/repository"
)

// Service reconciles records that predate partitioning.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new orphan service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, logger: logger}
}

// AdoptResult reports how many orphans moved into the target partition.
type AdoptResult struct {
	AdoptedCount int `json:"adopted_count"`
}

// CountOrphans returns the number of records with no partition. Read only.
func (s *Service) CountOrphans(ctx context.Context, scope partition.Scope) (int, error) {
	if !scope.Family.Valid() || scope.UserID == "" {
		return 0, ErrInvalidInput
	}
	n, err := s.repo.CountOrphans(ctx, scope.Family, scope.UserID)
	if err != nil {
		return 0, fmt.Errorf("counting orphans: %w", err)
	}
	return n, nil
}

// Adopt moves every orphan of the family into targetID in a single request.
// The caller must confirm first and refetch all views afterwards.
func (s *Service) Adopt(ctx context.Context, scope partition.Scope, targetID string) (*AdoptResult, error) {
	if !scope.Family.Valid() || scope.UserID == "" || strings.TrimSpace(targetID) == "" {
		return nil, ErrInvalidInput
	}

	n, err := s.repo.Adopt(ctx, scope.Family, scope.UserID, targetID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTargetNotFound
		}
		return nil, fmt.Errorf("adopting orphans: %w", err)
	}

	s.logger.Info("orphans adopted", "family", scope.Family, "partition_id", targetID, "count", n)
	return &AdoptResult{AdoptedCount: n}, nil
}
