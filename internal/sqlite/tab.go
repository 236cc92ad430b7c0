package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rpggio/tabsync/internal/domain/partition"
	"github.com/rpggio/tabsync/internal/repository"
)

// TabRepository persists partitions for the reference server
type TabRepository struct {
	db *DB
}

// NewTabRepository creates a new TabRepository
func NewTabRepository(db *DB) *TabRepository {
	return &TabRepository{db: db}
}

// Create inserts a tab
func (r *TabRepository) Create(ctx context.Context, family partition.Family, tab *partition.Partition) error {
	query := `
		INSERT INTO tabs (id, family, owner, name, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		tab.ID,
		string(family),
		tab.OwnerID,
		tab.Name,
		tab.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create tab: %w", err)
	}

	return nil
}

// Get retrieves a tab owned by ownerID
func (r *TabRepository) Get(ctx context.Context, family partition.Family, ownerID, id string) (*partition.Partition, error) {
	query := `
		SELECT id, owner, name, created_at
		FROM tabs
		WHERE id = ? AND family = ? AND owner = ?
	`

	var tab partition.Partition
	err := r.db.QueryRowContext(ctx, query, id, string(family), ownerID).Scan(
		&tab.ID,
		&tab.OwnerID,
		&tab.Name,
		&tab.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tab: %w", err)
	}

	return &tab, nil
}

// List returns the owner's tabs, oldest first. An empty ownerID lists every owner's tabs.
func (r *TabRepository) List(ctx context.Context, family partition.Family, ownerID string) ([]partition.Partition, error) {
	query := `
		SELECT id, owner, name, created_at
		FROM tabs
		WHERE family = ? AND (? = '' OR owner = ?)
		ORDER BY created_at ASC, rowid ASC
	`

	rows, err := r.db.QueryContext(ctx, query, string(family), ownerID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tabs: %w", err)
	}
	defer rows.Close()

	tabs := []partition.Partition{}
	for rows.Next() {
		var tab partition.Partition
		if err := rows.Scan(&tab.ID, &tab.OwnerID, &tab.Name, &tab.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tab: %w", err)
		}
		tabs = append(tabs, tab)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tab rows: %w", err)
	}

	return tabs, nil
}

// Rename changes a tab's name
func (r *TabRepository) Rename(ctx context.Context, family partition.Family, ownerID, id, name string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tabs SET name = ? WHERE id = ? AND family = ? AND owner = ?`,
		name, id, string(family), ownerID)
	if err != nil {
		return fmt.Errorf("failed to rename tab: %w", err)
	}
	return requireRow(result)
}

// Delete removes a tab, handling its records according to policy
func (r *TabRepository) Delete(ctx context.Context, family partition.Family, ownerID, id string, policy partition.DeletePolicy) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tabs WHERE id = ? AND family = ? AND owner = ?`,
		id, string(family), ownerID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to look up tab: %w", err)
	}
	if exists == 0 {
		return repository.ErrNotFound
	}

	switch policy {
	case partition.PolicyDelete:
		if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE tab_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete tab records: %w", err)
		}
	case partition.PolicyDetach:
		if _, err := tx.ExecContext(ctx, `UPDATE records SET tab_id = NULL WHERE tab_id = ?`, id); err != nil {
			return fmt.Errorf("failed to detach tab records: %w", err)
		}
	case partition.PolicyRestrict:
		var n int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM records WHERE tab_id = ?`, id).Scan(&n); err != nil {
			return fmt.Errorf("failed to count tab records: %w", err)
		}
		if n > 0 {
			return repository.ErrConflict
		}
	default:
		return repository.ErrInvalidInput
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM tabs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete tab: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// CountOrphans counts the owner's records that have no tab
func (r *TabRepository) CountOrphans(ctx context.Context, family partition.Family, ownerID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM records WHERE family = ? AND owner = ? AND tab_id IS NULL`,
		string(family), ownerID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count orphans: %w", err)
	}
	return n, nil
}

// Adopt atomically moves every orphan of the owner into the tab and returns how many moved
func (r *TabRepository) Adopt(ctx context.Context, family partition.Family, ownerID, id string) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tabs WHERE id = ? AND family = ? AND owner = ?`,
		id, string(family), ownerID).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("failed to look up tab: %w", err)
	}
	if exists == 0 {
		return 0, repository.ErrNotFound
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE records SET tab_id = ? WHERE family = ? AND owner = ? AND tab_id IS NULL`,
		id, string(family), ownerID)
	if err != nil {
		return 0, fmt.Errorf("failed to adopt orphans: %w", err)
	}

	adopted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return int(adopted), nil
}

func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
