package analyzer

import "errors"

// ErrFetchFailed marks failures to load statistics or events for a fixture.
var ErrFetchFailed = errors.New("analyzer: fetch fixture data")
