package transport

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rpggio/tabsync/internal/domain/partition"
	"github.com/rpggio/tabsync/internal/domain/record"
	"github.com/rpggio/tabsync/internal/domain/tab"
)

var (
	errBadRequest = errors.New("malformed request")
	errNoOwner    = errors.New("username is required")
	errForbidden  = errors.New("username does not match credentials")
)

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiError struct {
	status int
	code   string
}

// mapError maps domain errors to HTTP status and error code. Unknown errors map to nil.
func mapError(err error) *apiError {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, errNoOwner),
		errors.Is(err, tab.ErrInvalidInput),
		errors.Is(err, record.ErrInvalidInput),
		errors.Is(err, partition.ErrInvalidName):
		return &apiError{http.StatusBadRequest, "INVALID_INPUT"}
	case errors.Is(err, tab.ErrTabNotFound), errors.Is(err, record.ErrTabNotFound):
		return &apiError{http.StatusNotFound, "TAB_NOT_FOUND"}
	case errors.Is(err, record.ErrRecordNotFound):
		return &apiError{http.StatusNotFound, "RECORD_NOT_FOUND"}
	case errors.Is(err, tab.ErrTabInUse):
		return &apiError{http.StatusConflict, "TAB_IN_USE"}
	case errors.Is(err, ErrUnauthorized):
		return &apiError{http.StatusUnauthorized, "UNAUTHORIZED"}
	case errors.Is(err, errForbidden):
		return &apiError{http.StatusForbidden, "FORBIDDEN"}
	}
	return nil
}

func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	if mapped := mapError(err); mapped != nil {
		writeErrorBody(w, mapped.status, mapped.code, err.Error())
		return
	}
	logger.Error("request failed", "error", err)
	writeErrorBody(w, http.StatusInternalServerError, "INTERNAL", "internal error")
}

func writeErrorBody(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorBody{Code: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errBadRequest
	}
	return nil
}
