package worker

import "errors"

// ErrPanic wraps a recovered handler panic.
var ErrPanic = errors.New("worker: handler panicked")
