package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/rpggio/tabsync/internal/repository"
)

// Service persists new-entry drafts in the local store.
type Service struct {
	store  LocalStore
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new draft service.
func NewService(store LocalStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{store: store, logger: logger, now: time.Now}
}

// Save writes the payload under key, replacing any earlier draft.
// The payload is stored as Sanitize returns it.
func (s *Service) Save(ctx context.Context, key string, payload FormShape) error {
	if strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}

	d := Draft{
		ScopeKey: key,
		Payload:  Sanitize(payload),
		SavedAt:  s.now(),
	}
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encoding draft: %w", err)
	}
	if err := s.store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("saving draft: %w", err)
	}
	return nil
}

// Load returns the stored draft, or nil if there is none.
func (s *Service) Load(ctx context.Context, key string) (*Draft, error) {
	if strings.TrimSpace(key) == "" {
		return nil, ErrInvalidKey
	}

	data, err := s.store.Get(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading draft: %w", err)
	}

	var d Draft
	if err := json.Unmarshal(data, &d); err != nil {
		s.logger.Warn("ignoring unreadable draft", "key", key, "error", err)
		return nil, nil
	}
	if d.Payload == nil {
		d.Payload = FormShape{}
	}
	return &d, nil
}

// LoadIfAny returns the draft payload for key, or nil if there is none.
// Whether to resume it is the caller's decision.
func (s *Service) LoadIfAny(ctx context.Context, key string) (FormShape, error) {
	d, err := s.Load(ctx, key)
	if err != nil || d == nil {
		return nil, err
	}
	return d.Payload, nil
}

// Discard removes the draft. Discarding a missing draft is not an error.
func (s *Service) Discard(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if err := s.store.Remove(ctx, key); err != nil {
		return fmt.Errorf("discarding draft: %w", err)
	}
	return nil
}

// IsDirty compares current against the baseline snapshot field by field.
// A missing field and a blank one are treated alike.
func IsDirty(current, baseline FormShape) bool {
	cur, base := normalize(current), normalize(baseline)

	keys := make(map[string]struct{}, len(cur)+len(base))
	for k := range cur {
		keys[k] = struct{}{}
	}
	for k := range base {
		keys[k] = struct{}{}
	}

	for k := range keys {
		a, b := cur[k], base[k]
		if isBlank(a) && isBlank(b) {
			continue
		}
		if !reflect.DeepEqual(a, b) {
			return true
		}
	}
	return false
}

// HasContent is the dirtiness test for new-entry forms: any required field is non-blank.
// With no required fields, any non-blank field counts.
func HasContent(current FormShape, required []string) bool {
	if len(required) == 0 {
		for _, v := range current {
			if !isBlank(v) {
				return true
			}
		}
		return false
	}
	for _, field := range required {
		if !isBlank(current[field]) {
			return true
		}
	}
	return false
}

// Sanitize returns a copy of payload without values that cannot be serialized
// (open files and other streams, functions, channels), in the form a stored
// draft loads back as: numbers become float64, slices []any, structs and maps
// map[string]any.
func Sanitize(payload FormShape) FormShape {
	kept := strip(payload)
	data, err := json.Marshal(kept)
	if err != nil {
		return kept
	}
	out := FormShape{}
	if err := json.Unmarshal(data, &out); err != nil {
		return kept
	}
	return out
}

func strip(payload FormShape) FormShape {
	out := make(FormShape, len(payload))
	for k, v := range payload {
		if clean, ok := sanitizeValue(v); ok {
			out[k] = clean
		}
	}
	return out
}

func sanitizeValue(v any) (any, bool) {
	switch t := v.(type) {
	case nil, string, bool, float64, float32, int, int64, int32, json.Number:
		return v, true
	case io.Reader, io.Writer, io.Closer:
		return nil, false
	case FormShape:
		return map[string]any(strip(t)), true
	case map[string]any:
		return map[string]any(strip(t)), true
	case []any:
		out := make([]any, 0, len(t))
		for _, item := range t {
			if clean, ok := sanitizeValue(item); ok {
				out = append(out, clean)
			}
		}
		return out, true
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Complex64, reflect.Complex128:
		return nil, false
	}
	if _, err := json.Marshal(v); err != nil {
		return nil, false
	}
	return v, true
}

// normalize brings the form into JSON form so that 1 and 1.0 compare equal.
func normalize(form FormShape) map[string]any {
	return map[string]any(Sanitize(form))
}

func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}

func clone(form FormShape) FormShape {
	out := make(FormShape, len(form))
	for k, v := range form {
		out[k] = v
	}
	return out
}
