package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rpggio/tabsync/internal/domain/partition"
	"github.com/rpggio/tabsync/internal/domain/record"
	"github.com/rpggio/tabsync/internal/domain/viewsync"
)

// Records accesses the record endpoints of one family for one user.
type Records struct {
	c        *Client
	family   partition.Family
	username string
}

// Records returns the record endpoints for family, acting as username.
func (c *Client) Records(family partition.Family, username string) *Records {
	return &Records{c: c, family: family, username: username}
}

// RecordInput is the body of record create and update requests. On update,
// nil fields are left unchanged.
type RecordInput struct {
	Username   string           `json:"username,omitempty"`
	TabID      *string          `json:"tab_id,omitempty"`
	Name       *string          `json:"name,omitempty"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	Currency   *string          `json:"currency,omitempty"`
	OccurredAt *time.Time       `json:"occurred_at,omitempty"`
	Note       *string          `json:"note,omitempty"`
}

func (r *Records) path() string {
	return "/" + string(r.family) + "s"
}

// query scopes a request to partitionID; "" leaves it unscoped.
func (r *Records) query(partitionID string) url.Values {
	q := url.Values{"username": {r.username}}
	if partitionID != "" {
		q.Set("tab_id", partitionID)
	}
	return q
}

// List fetches the records of a partition, newest first.
func (r *Records) List(ctx context.Context, partitionID string) ([]record.Record, error) {
	var out []record.Record
	if err := r.c.do(ctx, http.MethodGet, r.path(), r.query(partitionID), nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []record.Record{}
	}
	return out, nil
}

// Get fetches one record.
func (r *Records) Get(ctx context.Context, id string) (*record.Record, error) {
	var out record.Record
	q := url.Values{"username": {r.username}}
	if err := r.c.do(ctx, http.MethodGet, r.path()+"/"+url.PathEscape(id), q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create creates a record.
func (r *Records) Create(ctx context.Context, in RecordInput) (*record.Record, error) {
	in.Username = r.username
	var out record.Record
	if err := r.c.do(ctx, http.MethodPost, r.path(), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update applies a partial update.
func (r *Records) Update(ctx context.Context, id string, in RecordInput) (*record.Record, error) {
	in.Username = r.username
	var out record.Record
	if err := r.c.do(ctx, http.MethodPut, r.path()+"/"+url.PathEscape(id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a record.
func (r *Records) Delete(ctx context.Context, id string) error {
	q := url.Values{"username": {r.username}}
	return r.c.do(ctx, http.MethodDelete, r.path()+"/"+url.PathEscape(id), q, nil, nil)
}

// Summary fetches the per-currency totals of a partition.
func (r *Records) Summary(ctx context.Context, partitionID string) (*record.Summary, error) {
	var out record.Summary
	if err := r.c.do(ctx, http.MethodGet, r.path()+"/summary", r.query(partitionID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Stats fetches the statistics of a partition.
func (r *Records) Stats(ctx context.Context, partitionID string) (*record.Stats, error) {
	var out record.Stats
	if err := r.c.do(ctx, http.MethodGet, r.path()+"/stats", r.query(partitionID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Names fetches the autocomplete names of a partition, ranked against query.
func (r *Records) Names(ctx context.Context, partitionID, query string, limit int) (*record.NameIndex, error) {
	q := r.query(partitionID)
	if query != "" {
		q.Set("q", query)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out record.NameIndex
	if err := r.c.do(ctx, http.MethodGet, r.path()+"/names", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Fetchers adapts the record endpoints to the view coordinator.
func (r *Records) Fetchers() viewsync.Fetchers {
	return viewsync.Fetchers{
		List: func(ctx context.Context, id string) (any, error) {
			return r.List(ctx, id)
		},
		Summary: func(ctx context.Context, id string) (any, error) {
			return r.Summary(ctx, id)
		},
		Stats: func(ctx context.Context, id string) (any, error) {
			return r.Stats(ctx, id)
		},
		Names: func(ctx context.Context, id string) (any, error) {
			return r.Names(ctx, id, "", 0)
		},
	}
}
