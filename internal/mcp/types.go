package mcp

import (
	"time"

	"github.com/rpggio/tabsync/internal/domain/partition"
	"github.com/rpggio/tabsync/internal/domain/record"
	"github.com/rpggio/tabsync/internal/domain/viewsync"
)

type ListTabsParams struct{}

type CreateTabParams struct {
	Name string `json:"name" jsonschema:"display name of the new tab"`
}

type RenameTabParams struct {
	ID   string `json:"id" jsonschema:"tab ID"`
	Name string `json:"name" jsonschema:"new display name"`
}

type SwitchTabParams struct {
	ID string `json:"id" jsonschema:"ID of a listed tab"`
}

type CountOrphansParams struct{}

type AdoptOrphansParams struct {
	TabID string `json:"tab_id" jsonschema:"tab that receives every orphan"`
}

type GetViewParams struct{}

type TabInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	Active    bool   `json:"active"`
}

type ListTabsResponse struct {
	Family string    `json:"family"`
	Tabs   []TabInfo `json:"tabs"`
	Active string    `json:"active,omitempty"`
}

type TabResponse struct {
	Tab TabInfo `json:"tab"`
}

type CountOrphansResponse struct {
	Count int `json:"count"`
}

type AdoptOrphansResponse struct {
	TabID   string `json:"tab_id"`
	Adopted int    `json:"adopted"`
}

type RecordInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Amount     string `json:"amount"`
	Currency   string `json:"currency"`
	OccurredAt string `json:"occurred_at"`
	Note       string `json:"note,omitempty"`
}

type TotalInfo struct {
	Currency string `json:"currency"`
	Count    int    `json:"count"`
	Total    string `json:"total"`
	Inflow   string `json:"inflow"`
	Outflow  string `json:"outflow"`
}

type StatsInfo struct {
	Count    int      `json:"count"`
	Average  string   `json:"average,omitempty"`
	Largest  string   `json:"largest,omitempty"`
	Smallest string   `json:"smallest,omitempty"`
	FirstAt  string   `json:"first_at,omitempty"`
	LastAt   string   `json:"last_at,omitempty"`
	TopNames []string `json:"top_names,omitempty"`
}

// ViewResponse is the rendered view of the active tab.
type ViewResponse struct {
	TabID   string       `json:"tab_id,omitempty"`
	Loading bool         `json:"loading"`
	Error   string       `json:"error,omitempty"`
	Records []RecordInfo `json:"records"`
	Totals  []TotalInfo  `json:"totals"`
	Stats   *StatsInfo   `json:"stats,omitempty"`
	Names   []string     `json:"names"`
}

func tabInfo(p partition.Partition, active string) TabInfo {
	return TabInfo{
		ID:        p.ID,
		Name:      p.Name,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
		Active:    p.ID == active,
	}
}

func viewResponse(v viewsync.ViewState) ViewResponse {
	resp := ViewResponse{
		TabID:   v.PartitionID,
		Loading: v.Loading,
		Records: []RecordInfo{},
		Totals:  []TotalInfo{},
		Names:   []string{},
	}
	if v.Err != nil {
		resp.Error = v.Err.Error()
	}

	if recs, ok := v.List.([]record.Record); ok {
		for _, rec := range recs {
			resp.Records = append(resp.Records, RecordInfo{
				ID:         rec.ID,
				Name:       rec.Name,
				Amount:     rec.Amount.String(),
				Currency:   rec.Currency,
				OccurredAt: rec.OccurredAt.Format(time.RFC3339),
				Note:       rec.Note,
			})
		}
	}
	if summary, ok := v.Summary.(*record.Summary); ok && summary != nil {
		for _, t := range summary.Totals {
			resp.Totals = append(resp.Totals, TotalInfo{
				Currency: t.Currency,
				Count:    t.Count,
				Total:    t.Total.String(),
				Inflow:   t.Inflow.String(),
				Outflow:  t.Outflow.String(),
			})
		}
	}
	if stats, ok := v.Stats.(*record.Stats); ok && stats != nil {
		info := &StatsInfo{Count: stats.Count}
		if stats.Count > 0 {
			info.Average = stats.Average.String()
			info.Largest = stats.Largest.String()
			info.Smallest = stats.Smallest.String()
		}
		if stats.FirstAt != nil {
			info.FirstAt = stats.FirstAt.Format(time.RFC3339)
		}
		if stats.LastAt != nil {
			info.LastAt = stats.LastAt.Format(time.RFC3339)
		}
		for _, nc := range stats.TopNames {
			info.TopNames = append(info.TopNames, nc.Name)
		}
		resp.Stats = info
	}
	if names, ok := v.Names.(*record.NameIndex); ok && names != nil {
		resp.Names = append(resp.Names, names.Names...)
	}
	return resp
}
