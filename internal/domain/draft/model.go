package draft

import (
	"fmt"
	"time"

	"github.com/rpggio/tabsync/internal/domain/partition"
)

// DefaultAutosaveInterval bounds how often an autosaver writes.
const DefaultAutosaveInterval = time.Second

// FormShape is the field map of a form as the UI holds it.
type FormShape map[string]any

// Mode distinguishes new-entry forms from edits of an existing record.
type Mode string

// ModeNew is the mode of a create form.
const ModeNew Mode = "new"

// EditMode is the mode of a form editing recordID.
func EditMode(recordID string) Mode {
	return Mode("edit-" + recordID)
}

// Draft is a persisted, not yet submitted form snapshot
type Draft struct {
	ScopeKey string    `json:"scope_key"`
	Payload  FormShape `json:"payload"`
	SavedAt  time.Time `json:"saved_at"`
}

// ScopeKey derives the local store key for a form. An empty partitionID means
// no partition is selected.
func ScopeKey(family partition.Family, mode Mode, partitionID string) string {
	if partitionID == "" {
		partitionID = "none"
	}
	return fmt.Sprintf("draft:%s:%s:%s", family, mode, partitionID)
}

// NewEntryKey is ScopeKey for the create form of the active partition.
func NewEntryKey(family partition.Family, partitionID string) string {
	return ScopeKey(family, ModeNew, partitionID)
}
