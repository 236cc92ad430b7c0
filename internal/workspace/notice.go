package workspace

import (
	"errors"

	"github.com/rpggio/tabsync/internal/domain/draft"
	"github.com/rpggio/tabsync/internal/domain/orphan"
	"github.com/rpggio/tabsync/internal/domain/partition"
	"github.com/rpggio/tabsync/internal/domain/viewsync"
	"github.com/rpggio/tabsync/internal/repository"
)

// NoticeKind says where a failure is shown.
type NoticeKind string

const (
	// NoticeInline sits next to the offending input; nothing was attempted.
	NoticeInline NoticeKind = "inline"
	// NoticeBanner is a single dismissible message; the action was not applied.
	NoticeBanner NoticeKind = "banner"
)

// Notice is the user-visible form of an error.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Code    string     `json:"code"`
	Message string     `json:"message"`
	// Relist is set when the partition list was refreshed because a target vanished.
	Relist bool `json:"relist,omitempty"`
}

func (n *Notice) Error() string {
	return n.Code + ": " + n.Message
}

// MapError turns an error from a workspace operation into a Notice. It returns
// nil for nil errors and for superseded refetches, which are not failures.
func MapError(err error) *Notice {
	if err == nil || errors.Is(err, viewsync.ErrSuperseded) {
		return nil
	}

	var notice *Notice
	if errors.As(err, &notice) {
		return notice
	}

	switch {
	case errors.Is(err, partition.ErrInvalidName):
		return &Notice{Kind: NoticeInline, Code: "VALIDATION", Message: "Tab name must not be empty."}
	case errors.Is(err, partition.ErrInvalidScope),
		errors.Is(err, partition.ErrInvalidPolicy),
		errors.Is(err, orphan.ErrInvalidInput),
		errors.Is(err, ErrInvalidForm),
		errors.Is(err, repository.ErrInvalidInput):
		return &Notice{Kind: NoticeInline, Code: "VALIDATION", Message: err.Error()}
	case errors.Is(err, partition.ErrPartitionNotFound),
		errors.Is(err, orphan.ErrTargetNotFound):
		return &Notice{Kind: NoticeBanner, Code: "NOT_FOUND", Message: "That tab no longer exists. The tab list was refreshed.", Relist: true}
	case errors.Is(err, repository.ErrNotFound):
		return &Notice{Kind: NoticeBanner, Code: "NOT_FOUND", Message: "That entry no longer exists. The view was refreshed.", Relist: true}
	case errors.Is(err, partition.ErrPartitionInUse), errors.Is(err, repository.ErrConflict):
		return &Notice{Kind: NoticeBanner, Code: "IN_USE", Message: "The tab still has entries. Move or delete them first."}
	case errors.Is(err, repository.ErrUnauthorized):
		return &Notice{Kind: NoticeBanner, Code: "UNAUTHORIZED", Message: "Your session is not authorized."}
	case errors.Is(err, draft.ErrInvalidTransition), errors.Is(err, draft.ErrFormClosed):
		return &Notice{Kind: NoticeInline, Code: "FORM", Message: err.Error()}
	case errors.Is(err, ErrNoActivePartition):
		return &Notice{Kind: NoticeInline, Code: "NO_TAB", Message: "Create or select a tab first."}
	case errors.Is(err, repository.ErrNetwork):
		return &Notice{Kind: NoticeBanner, Code: "NETWORK", Message: "The request did not complete. Nothing was changed; try again."}
	}
	return &Notice{Kind: NoticeBanner, Code: "NETWORK", Message: err.Error()}
}
