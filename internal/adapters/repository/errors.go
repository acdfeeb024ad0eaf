package repository

import "errors"

// Sentinel kinds for alert store errors.
var (
	ErrNotFound     = errors.New("alert not found")
	ErrInvalidLimit = errors.New("invalid alert limit")
	ErrInvalidAlert = errors.New("invalid alert")
)
