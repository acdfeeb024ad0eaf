package notify

import crerr "github.com/cockroachdb/errors"

// Sentinel kinds for dispatch failures.
var (
	ErrDispatchFailed = crerr.New("alert dispatch failed")
	ErrSinkRejected   = crerr.New("alert sink rejected message")
)
