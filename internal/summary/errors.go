package summary

import "errors"

// Sentinel errors for summary operations.
var (
	ErrInvalidSummary = errors.New("summary is not valid")
	ErrPostFailed     = errors.New("posting summary failed")
	ErrEmptyIssueURL  = errors.New("issue URL is required")
)
