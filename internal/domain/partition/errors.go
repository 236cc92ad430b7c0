package partition

import "errors"

var (
	// ErrPartitionNotFound indicates the partition doesn't exist (or no longer exists).
	ErrPartitionNotFound = errors.New("partition not found")
	// ErrInvalidName indicates an empty or whitespace-only partition name.
	ErrInvalidName = errors.New("partition name must not be empty")
	// ErrInvalidScope indicates an unknown family or missing user.
	ErrInvalidScope = errors.New("invalid partition scope")
	// ErrInvalidPolicy indicates an unknown delete policy.
	ErrInvalidPolicy = errors.New("invalid delete policy")
	// ErrPartitionInUse indicates a restricted delete of a partition that still has records.
	ErrPartitionInUse = errors.New("partition still has records")
)
