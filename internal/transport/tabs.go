package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rpggio/tabsync/internal/domain/partition"
)

type tabRequest struct {
	Name     string `json:"name"`
	Username string `json:"username,omitempty"`
}

type adoptRequest struct {
	Username string `json:"username,omitempty"`
}

func (s *Server) listTabs(family partition.Family) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := owner(r, "")
		if err != nil {
			writeError(w, s.logger, err)
			return
		}
		tabs, err := s.tabs.List(r.Context(), family, ownerID, r.URL.Query().Get("role"))
		if err != nil {
			writeError(w, s.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, tabs)
	}
}

func (s *Server) createTab(family partition.Family) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req tabRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, s.logger, err)
			return
		}
		ownerID, err := owner(r, req.Username)
		if err != nil {
			writeError(w, s.logger, err)
			return
		}
		created, err := s.tabs.Create(r.Context(), family, ownerID, req.Name)
		if err != nil {
			writeError(w, s.logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func (s *Server) renameTab(family partition.Family) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req tabRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, s.logger, err)
			return
		}
		ownerID, err := owner(r, req.Username)
		if err != nil {
			writeError(w, s.logger, err)
			return
		}
		renamed, err := s.tabs.Rename(r.Context(), family, ownerID, chi.URLParam(r, "id"), req.Name)
		if err != nil {
			writeError(w, s.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, renamed)
	}
}

func (s *Server) deleteTab(family partition.Family) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := owner(r, "")
		if err != nil {
			writeError(w, s.logger, err)
			return
		}
		policy := partition.DeletePolicy(r.URL.Query().Get("policy"))
		if err := s.tabs.Delete(r.Context(), family, ownerID, chi.URLParam(r, "id"), policy); err != nil {
			writeError(w, s.logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) countOrphans(family partition.Family) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := owner(r, "")
		if err != nil {
			writeError(w, s.logger, err)
			return
		}
		n, err := s.tabs.CountOrphans(r.Context(), family, ownerID)
		if err != nil {
			writeError(w, s.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"count": n})
	}
}

func (s *Server) adoptOrphans(family partition.Family) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req adoptRequest
		if r.ContentLength != 0 {
			if err := decodeJSON(r, &req); err != nil {
				writeError(w, s.logger, err)
				return
			}
		}
		ownerID, err := owner(r, req.Username)
		if err != nil {
			writeError(w, s.logger, err)
			return
		}
		n, err := s.tabs.Adopt(r.Context(), family, ownerID, chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, s.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"adopted": n})
	}
}
