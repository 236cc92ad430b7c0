package record

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rpggio/tabsync/internal/domain/partition"
	"github.com/rpggio/tabsync/internal/repository"
)

const (
	defaultNameLimit = 20
	topNamesLimit    = 5
)

// Service handles record business logic for the reference server.
type Service struct {
	records Repository
	tabs    TabRepository
	logger  *slog.Logger
}

// NewService creates a new record service.
func NewService(records Repository, tabs TabRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		records: records,
		tabs:    tabs,
		logger:  logger,
	}
}

// CreateRequest describes a record creation request.
type CreateRequest struct {
	Family     partition.Family
	OwnerID    string
	TabID      *string
	Name       string
	Amount     decimal.Decimal
	Currency   string
	OccurredAt time.Time
	Note       string
}

// UpdateRequest describes a partial record update. Nil fields are left unchanged.
type UpdateRequest struct {
	Family     partition.Family
	OwnerID    string
	ID         string
	TabID      *string
	Name       *string
	Amount     *decimal.Decimal
	Currency   *string
	OccurredAt *time.Time
	Note       *string
}

// Create creates a new record, checking that its partition exists.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Record, error) {
	if err := ValidateCreateInput(req); err != nil {
		return nil, err
	}
	if req.TabID != nil {
		if err := s.ensureTab(ctx, req.Family, req.OwnerID, *req.TabID); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	occurred := req.OccurredAt
	if occurred.IsZero() {
		occurred = now
	}

	rec := &Record{
		ID:         uuid.NewString(),
		Family:     req.Family,
		OwnerID:    req.OwnerID,
		TabID:      req.TabID,
		Name:       strings.TrimSpace(req.Name),
		Amount:     req.Amount,
		Currency:   req.Currency,
		OccurredAt: occurred.UTC(),
		Note:       req.Note,
		CreatedAt:  now,
		ModifiedAt: now,
	}

	if err := s.records.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("creating record: %w", err)
	}
	s.logger.Debug("record created", "family", rec.Family, "record_id", rec.ID)
	return rec, nil
}

// Get fetches a record by ID.
func (s *Service) Get(ctx context.Context, family partition.Family, ownerID, id string) (*Record, error) {
	rec, err := s.records.Get(ctx, family, ownerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("getting record: %w", err)
	}
	return rec, nil
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, req UpdateRequest) (*Record, error) {
	if err := ValidateUpdateInput(req); err != nil {
		return nil, err
	}

	current, err := s.Get(ctx, req.Family, req.OwnerID, req.ID)
	if err != nil {
		return nil, err
	}

	updated := *current
	if req.TabID != nil {
		if err := s.ensureTab(ctx, req.Family, req.OwnerID, *req.TabID); err != nil {
			return nil, err
		}
		updated.TabID = req.TabID
	}
	if req.Name != nil {
		updated.Name = strings.TrimSpace(*req.Name)
	}
	if req.Amount != nil {
		updated.Amount = *req.Amount
	}
	if req.Currency != nil {
		updated.Currency = *req.Currency
	}
	if req.OccurredAt != nil {
		updated.OccurredAt = req.OccurredAt.UTC()
	}
	if req.Note != nil {
		updated.Note = *req.Note
	}
	updated.ModifiedAt = time.Now().UTC()

	if err := s.records.Update(ctx, &updated); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("updating record: %w", err)
	}
	return &updated, nil
}

// Delete removes a record.
func (s *Service) Delete(ctx context.Context, family partition.Family, ownerID, id string) error {
	if err := s.records.Delete(ctx, family, ownerID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRecordNotFound
		}
		return fmt.Errorf("deleting record: %w", err)
	}
	s.logger.Debug("record deleted", "family", family, "record_id", id)
	return nil
}

// List returns records, newest first.
func (s *Service) List(ctx context.Context, opts ListRecordsOptions) ([]Record, error) {
	if !opts.Family.Valid() || opts.OwnerID == "" {
		return nil, ErrInvalidInput
	}
	return s.records.List(ctx, opts)
}

// Summary totals the records per currency.
func (s *Service) Summary(ctx context.Context, opts ListRecordsOptions) (*Summary, error) {
	opts.Limit, opts.Offset = 0, 0
	recs, err := s.List(ctx, opts)
	if err != nil {
		return nil, err
	}

	byCurrency := map[string]*CurrencyTotal{}
	for _, rec := range recs {
		t, ok := byCurrency[rec.Currency]
		if !ok {
			t = &CurrencyTotal{Currency: rec.Currency}
			byCurrency[rec.Currency] = t
		}
		t.Count++
		t.Total = t.Total.Add(rec.Amount)
		if rec.Amount.IsNegative() {
			t.Outflow = t.Outflow.Add(rec.Amount.Neg())
		} else {
			t.Inflow = t.Inflow.Add(rec.Amount)
		}
	}

	summary := &Summary{TabID: opts.TabID, Count: len(recs), Totals: []CurrencyTotal{}}
	for _, t := range byCurrency {
		summary.Totals = append(summary.Totals, *t)
	}
	sort.Slice(summary.Totals, func(i, j int) bool {
		return summary.Totals[i].Currency < summary.Totals[j].Currency
	})
	return summary, nil
}

// Stats describes the distribution of the records.
func (s *Service) Stats(ctx context.Context, opts ListRecordsOptions) (*Stats, error) {
	opts.Limit, opts.Offset = 0, 0
	recs, err := s.List(ctx, opts)
	if err != nil {
		return nil, err
	}

	stats := &Stats{TabID: opts.TabID, Count: len(recs), TopNames: []NameCount{}}
	if len(recs) == 0 {
		return stats, nil
	}

	total := decimal.Zero
	counts := map[string]int{}
	first, last := recs[0].OccurredAt, recs[0].OccurredAt
	stats.Largest, stats.Smallest = recs[0].Amount, recs[0].Amount
	for _, rec := range recs {
		total = total.Add(rec.Amount)
		stats.Largest = decimal.Max(stats.Largest, rec.Amount)
		stats.Smallest = decimal.Min(stats.Smallest, rec.Amount)
		if rec.OccurredAt.Before(first) {
			first = rec.OccurredAt
		}
		if rec.OccurredAt.After(last) {
			last = rec.OccurredAt
		}
		counts[rec.Name]++
	}
	stats.Average = total.Div(decimal.NewFromInt(int64(len(recs)))).Round(2)
	stats.FirstAt, stats.LastAt = &first, &last

	for name, n := range counts {
		stats.TopNames = append(stats.TopNames, NameCount{Name: name, Count: n})
	}
	sort.Slice(stats.TopNames, func(i, j int) bool {
		a, b := stats.TopNames[i], stats.TopNames[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Name < b.Name
	})
	if len(stats.TopNames) > topNamesLimit {
		stats.TopNames = stats.TopNames[:topNamesLimit]
	}
	return stats, nil
}

// Names returns the distinct record names for autocompletion. With a query the
// names are ranked by closeness to it and distant names are dropped.
func (s *Service) Names(ctx context.Context, opts NamesOptions) (*NameIndex, error) {
	if !opts.Family.Valid() || opts.OwnerID == "" {
		return nil, ErrInvalidInput
	}

	counts, err := s.records.Names(ctx, opts.ListRecordsOptions)
	if err != nil {
		return nil, fmt.Errorf("listing names: %w", err)
	}
	names := make([]string, 0, len(counts))
	for _, c := range counts {
		names = append(names, c.Name)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultNameLimit
	}
	ranked := RankNames(names, opts.Query)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return &NameIndex{TabID: opts.TabID, Names: ranked}, nil
}

// RankNames orders names for a typed query: prefix matches first, then substring
// matches, then near misses by edit distance. An empty query sorts alphabetically.
func RankNames(names []string, query string) []string {
	query = strings.ToLower(strings.TrimSpace(query))

	type scored struct {
		name  string
		score int
	}
	var out []scored
	for _, name := range names {
		lower := strings.ToLower(name)
		switch {
		case query == "":
			out = append(out, scored{name, 0})
		case strings.HasPrefix(lower, query):
			out = append(out, scored{name, 0})
		case strings.Contains(lower, query):
			out = append(out, scored{name, 1})
		default:
			// Compare against the head of the name so long names are not penalized
			// for what the user has not typed yet.
			head := []rune(lower)
			if n := len([]rune(query)); len(head) > n {
				head = head[:n]
			}
			d := levenshtein.ComputeDistance(query, string(head))
			if d > maxDistance(query) {
				continue
			}
			out = append(out, scored{name, 1 + d})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score < out[j].score
		}
		return strings.ToLower(out[i].name) < strings.ToLower(out[j].name)
	})

	ranked := make([]string, len(out))
	for i, s := range out {
		ranked[i] = s.name
	}
	return ranked
}

func maxDistance(query string) int {
	if d := len(query) / 3; d > 1 {
		return d
	}
	return 1
}

func (s *Service) ensureTab(ctx context.Context, family partition.Family, ownerID, tabID string) error {
	if _, err := s.tabs.Get(ctx, family, ownerID, tabID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTabNotFound
		}
		return fmt.Errorf("loading tab: %w", err)
	}
	return nil
}
