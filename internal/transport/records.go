package transport

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/rpggio/tabsync/internal/domain/partition"
	"github.com/rpggio/tabsync/internal/domain/record"
)

type recordRequest struct {
	Username   string           `json:"username,omitempty"`
	TabID      *string          `json:"tab_id,omitempty"`
	Name       *string          `json:"name,omitempty"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	Currency   *string          `json:"currency,omitempty"`
	OccurredAt *time.Time       `json:"occurred_at,omitempty"`
	Note       *string          `json:"note,omitempty"`
}

// listOptions reads the owner and tab_id scope of a record query. A missing
// tab_id means every record of the owner.
func listOptions(r *http.Request, family partition.Family) (record.ListRecordsOptions, error) {
	ownerID, err := owner(r, "")
	if err != nil {
		return record.ListRecordsOptions{}, err
	}
	q := r.URL.Query()
	opts := record.ListRecordsOptions{Family: family, OwnerID: ownerID}
	if q.Has("tab_id") {
		tabID := q.Get("tab_id")
		opts.TabID = &tabID
	}
	if opts.Limit, err = intParam(q.Get("limit")); err != nil {
		return opts, err
	}
	if opts.Offset, err = intParam(q.Get("offset")); err != nil {
		return opts, err
	}
	return opts, nil
}

func intParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errBadRequest
	}
	return n, nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func (s *Server) listRecords(family partition.Family) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := listOptions(r, family)
		if err != nil {
			writeError(w, s.logger, err)
			return
		}
		recs, err := s.records.List(r.Context(), opts)
		if err != nil {
			writeError(w, s.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, recs)
	}
}

func (s *Server) createRecord(family partition.Family) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req recordRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, s.logger, err)
			return
		}
		ownerID, err := owner(r, req.Username)
		if err != nil {
			writeError(w, s.logger, err)
			return
		}
		if req.Name == nil || req.Amount == nil || req.Currency == nil {
			writeError(w, s.logger, record.ErrInvalidInput)
			return
		}

		created, err := s.records.Create(r.Context(), record.CreateRequest{
			Family:     family,
			OwnerID:    ownerID,
			TabID:      req.TabID,
			Name:       *req.Name,
			Amount:     *req.Amount,
			Currency:   *req.Currency,
			OccurredAt: deref(req.OccurredAt),
			Note:       deref(req.Note),
		})
		if err != nil {
			writeError(w, s.logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func (s *Server) getRecord(family partition.Family) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := owner(r, "")
		if err != nil {
			writeError(w, s.logger, err)
			return
		}
		rec, err := s.records.Get(r.Context(), family, ownerID, chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, s.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

func (s *Server) updateRecord(family partition.Family) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req recordRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, s.logger, err)
			return
		}
		ownerID, err := owner(r, req.Username)
		if err != nil {
			writeError(w, s.logger, err)
			return
		}

		updated, err := s.records.Update(r.Context(), record.UpdateRequest{
			Family:     family,
			OwnerID:    ownerID,
			ID:         chi.URLParam(r, "id"),
			TabID:      req.TabID,
			Name:       req.Name,
			Amount:     req.Amount,
			Currency:   req.Currency,
			OccurredAt: req.OccurredAt,
			Note:       req.Note,
		})
		if err != nil {
			writeError(w, s.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func (s *Server) deleteRecord(family partition.Family) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := owner(r, "")
		if err != nil {
			writeError(w, s.logger, err)
			return
		}
		if err := s.records.Delete(r.Context(), family, ownerID, chi.URLParam(r, "id")); err != nil {
			writeError(w, s.logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) summary(family partition.Family) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := listOptions(r, family)
		if err != nil {
			writeError(w, s.logger, err)
			return
		}
		out, err := s.records.Summary(r.Context(), opts)
		if err != nil {
			writeError(w, s.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func (s *Server) stats(family partition.Family) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := listOptions(r, family)
		if err != nil {
			writeError(w, s.logger, err)
			return
		}
		out, err := s.records.Stats(r.Context(), opts)
		if err != nil {
			writeError(w, s.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func (s *Server) names(family partition.Family) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := listOptions(r, family)
		if err != nil {
			writeError(w, s.logger, err)
			return
		}
		limit, err := intParam(r.URL.Query().Get("limit"))
		if err != nil {
			writeError(w, s.logger, err)
			return
		}
		opts.Limit = 0
		out, err := s.records.Names(r.Context(), record.NamesOptions{
			ListRecordsOptions: opts,
			Query:              r.URL.Query().Get("q"),
			Limit:              limit,
		})
		if err != nil {
			writeError(w, s.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}
