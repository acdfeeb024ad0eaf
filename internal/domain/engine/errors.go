package engine

import "errors"

// Sentinel errors for engine configuration.
var (
	ErrInvalidScorePattern = errors.New("invalid score pattern")
	ErrInvalidConfig       = errors.New("invalid engine configuration")
)
