package simfunc

import "errors"

var (
	ErrNoProvider         = errors.New("embedding provider is required for text scoring")
	ErrNoStore            = errors.New("checkpoint store is not configured")
	ErrCheckpointNotFound = errors.New("checkpoint not found")
	ErrInputTooLong       = errors.New("input exceeds the provider token limit")
	ErrInvalidCount       = errors.New("n must be positive")
	ErrEmptyText          = errors.New("text cannot be empty")
)
