package record

import (
	"regexp"
	"strings"
)

var currencyCode = regexp.MustCompile(`^[A-Z]{3}$`)

// ValidateCreateInput validates fields required to create a record.
func ValidateCreateInput(req CreateRequest) error {
	if !req.Family.Valid() {
		return ErrInvalidInput
	}
	if strings.TrimSpace(req.OwnerID) == "" {
		return ErrInvalidInput
	}
	if strings.TrimSpace(req.Name) == "" {
		return ErrInvalidInput
	}
	if !currencyCode.MatchString(req.Currency) {
		return ErrInvalidInput
	}
	if req.TabID != nil && strings.TrimSpace(*req.TabID) == "" {
		return ErrInvalidInput
	}
	return nil
}

// ValidateUpdateInput validates a partial update.
func ValidateUpdateInput(req UpdateRequest) error {
	if !req.Family.Valid() || req.OwnerID == "" || req.ID == "" {
		return ErrInvalidInput
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return ErrInvalidInput
	}
	if req.Currency != nil && !currencyCode.MatchString(*req.Currency) {
		return ErrInvalidInput
	}
	return nil
}
