package provider

import crerr "github.com/cockroachdb/errors"

// Sentinel kinds for provider failures. Returned errors are marked with
// these so callers can use errors.Is across wrapping.
var (
	ErrProviderUnavailable = crerr.New("sports data provider unavailable")
	ErrQuotaExhausted      = crerr.New("provider request quota exhausted")
	ErrCircuitOpen         = crerr.New("provider circuit open")
	ErrInvalidResponse     = crerr.New("invalid provider response")

	// errTransient marks failures that count against the circuit breaker.
	errTransient = crerr.New("transient provider failure")
)
