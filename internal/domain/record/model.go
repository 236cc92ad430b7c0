package record

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rpggio/tabsync/internal/domain/partition"
)

// Record is one entry of a resource family: a bank transaction or a portfolio entry
type Record struct {
	ID         string           `json:"id"`
	Family     partition.Family `json:"family"`
	OwnerID    string           `json:"username"`
	TabID      *string          `json:"tab_id"`
	Name       string           `json:"name"`
	Amount     decimal.Decimal  `json:"amount"`
	Currency   string           `json:"currency"`
	OccurredAt time.Time        `json:"occurred_at"`
	Note       string           `json:"note,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	ModifiedAt time.Time        `json:"modified_at"`
}

// Orphan reports whether the record has no partition.
func (r Record) Orphan() bool {
	return r.TabID == nil
}

// CurrencyTotal aggregates the amounts of one currency
type CurrencyTotal struct {
	Currency string          `json:"currency"`
	Count    int             `json:"count"`
	Total    decimal.Decimal `json:"total"`
	Inflow   decimal.Decimal `json:"inflow"`
	Outflow  decimal.Decimal `json:"outflow"`
}

// Summary is the aggregate view of a partition
type Summary struct {
	TabID  *string         `json:"tab_id"`
	Count  int             `json:"count"`
	Totals []CurrencyTotal `json:"totals"`
}

// NameCount is how often a name occurs
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Stats describes the distribution of a partition's records. Amounts are taken
// as recorded, without currency conversion.
type Stats struct {
	TabID    *string         `json:"tab_id"`
	Count    int             `json:"count"`
	Average  decimal.Decimal `json:"average"`
	Largest  decimal.Decimal `json:"largest"`
	Smallest decimal.Decimal `json:"smallest"`
	FirstAt  *time.Time      `json:"first_at,omitempty"`
	LastAt   *time.Time      `json:"last_at,omitempty"`
	TopNames []NameCount     `json:"top_names"`
}

// NameIndex feeds name autocompletion
type NameIndex struct {
	TabID *string  `json:"tab_id"`
	Names []string `json:"names"`
}
