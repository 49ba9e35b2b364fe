package controlplane

import "errors"

// Sentinel errors for control plane operations.
var (
	ErrNoHistory   = errors.New("run history is disabled")
	ErrFetchFailed = errors.New("fetching snapshot failed")
	ErrBadProject  = errors.New("project owner and number are required")
	ErrNoConnector = errors.New("no command connector configured")
)
