package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rpggio/tabsync/internal/domain/partition"
	"github.com/rpggio/tabsync/internal/domain/record"
	"github.com/rpggio/tabsync/internal/repository"
)

const recordColumns = `id, family, owner, tab_id, name, amount, currency, occurred_at, note, created_at, modified_at`

// RecordRepository implements record.Repository for SQLite
type RecordRepository struct {
	db *DB
}

// NewRecordRepository creates a new RecordRepository
func NewRecordRepository(db *DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// Create creates a new record
func (r *RecordRepository) Create(ctx context.Context, rec *record.Record) error {
	query := `INSERT INTO records (` + recordColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		rec.ID,
		string(rec.Family),
		rec.OwnerID,
		nullString(rec.TabID),
		rec.Name,
		rec.Amount,
		rec.Currency,
		rec.OccurredAt,
		rec.Note,
		rec.CreatedAt,
		rec.ModifiedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrNotFound
		}
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create record: %w", err)
	}
	return nil
}

// Get retrieves a record by ID
func (r *RecordRepository) Get(ctx context.Context, family partition.Family, ownerID, id string) (*record.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records WHERE id = ? AND family = ? AND owner = ?`

	rec, err := scanRecord(r.db.QueryRowContext(ctx, query, id, string(family), ownerID))
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return rec, nil
}

// Update replaces a record's mutable fields
func (r *RecordRepository) Update(ctx context.Context, rec *record.Record) error {
	query := `
		UPDATE records
		SET tab_id = ?, name = ?, amount = ?, currency = ?, occurred_at = ?, note = ?, modified_at = ?
		WHERE id = ? AND family = ? AND owner = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		nullString(rec.TabID),
		rec.Name,
		rec.Amount,
		rec.Currency,
		rec.OccurredAt,
		rec.Note,
		rec.ModifiedAt,
		rec.ID,
		string(rec.Family),
		rec.OwnerID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("failed to update record: %w", err)
	}
	return requireRow(result)
}

// Delete removes a record
func (r *RecordRepository) Delete(ctx context.Context, family partition.Family, ownerID, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM records WHERE id = ? AND family = ? AND owner = ?`,
		id, string(family), ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return requireRow(result)
}

// List returns records matching opts, newest first
func (r *RecordRepository) List(ctx context.Context, opts record.ListRecordsOptions) ([]record.Record, error) {
	where, args := scopeFilter(opts)
	query := `SELECT ` + recordColumns + ` FROM records WHERE ` + where +
		` ORDER BY occurred_at DESC, rowid DESC`

	if opts.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, opts.Limit, opts.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	records := []record.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, *rec)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating record rows: %w", err)
	}
	return records, nil
}

// Names returns the distinct record names in scope with their use counts
func (r *RecordRepository) Names(ctx context.Context, opts record.ListRecordsOptions) ([]record.NameCount, error) {
	where, args := scopeFilter(opts)
	query := `SELECT name, COUNT(*) FROM records WHERE ` + where + ` GROUP BY name ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list names: %w", err)
	}
	defer rows.Close()

	names := []record.NameCount{}
	for rows.Next() {
		var nc record.NameCount
		if err := rows.Scan(&nc.Name, &nc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan name: %w", err)
		}
		names = append(names, nc)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating name rows: %w", err)
	}
	return names, nil
}

func scopeFilter(opts record.ListRecordsOptions) (string, []any) {
	conds := []string{"family = ?", "owner = ?"}
	args := []any{string(opts.Family), opts.OwnerID}
	if opts.TabID != nil {
		conds = append(conds, "tab_id = ?")
		args = append(args, *opts.TabID)
	}
	return strings.Join(conds, " AND "), args
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*record.Record, error) {
	var rec record.Record
	var family string
	var tabID sql.NullString

	err := row.Scan(
		&rec.ID,
		&family,
		&rec.OwnerID,
		&tabID,
		&rec.Name,
		&rec.Amount,
		&rec.Currency,
		&rec.OccurredAt,
		&rec.Note,
		&rec.CreatedAt,
		&rec.ModifiedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Family = partition.Family(family)
	if tabID.Valid {
		id := tabID.String
		rec.TabID = &id
	}
	return &rec, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
