package partition

import (
	"fmt"
	"time"
)

// Family names a resource collection that can be partitioned into tabs.
type Family string

const (
	FamilyTransaction Family = "transaction"
	FamilyPortfolio   Family = "portfolio"
)

// Families lists every supported resource family.
var Families = []Family{FamilyTransaction, FamilyPortfolio}

// Valid reports whether f is a supported family.
func (f Family) Valid() bool {
	for _, known := range Families {
		if f == known {
			return true
		}
	}
	return false
}

// Partition is a named tab scoping a subset of a family's records
type Partition struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// Scope identifies whose partitions of which family are being managed.
type Scope struct {
	Family Family
	UserID string
}

func (s Scope) validate() error {
	if !s.Family.Valid() || s.UserID == "" {
		return ErrInvalidScope
	}
	return nil
}

// ActiveKey is the local store key holding the active partition pointer for the scope.
func (s Scope) ActiveKey() string {
	return fmt.Sprintf("active_tab:%s:%s", s.Family, s.UserID)
}

// DeletePolicy decides what happens to records that reference a deleted partition.
type DeletePolicy string

const (
	// PolicyDelete removes the partition together with its records.
	PolicyDelete DeletePolicy = "delete"
	// PolicyDetach keeps the records as orphans.
	PolicyDetach DeletePolicy = "detach"
	// PolicyRestrict refuses to delete a partition that still has records.
	PolicyRestrict DeletePolicy = "restrict"
)

// Valid reports whether p is a known policy.
func (p DeletePolicy) Valid() bool {
	switch p {
	case PolicyDelete, PolicyDetach, PolicyRestrict:
		return true
	}
	return false
}
