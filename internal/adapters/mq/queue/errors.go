package queue

import "errors"

// Sentinel errors returned by Enqueue.
var (
	ErrFull    = errors.New("queue full")
	ErrClosed  = errors.New("queue closed")
	ErrPending = errors.New("fixture already queued")
)
