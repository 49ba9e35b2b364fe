package main

import "errors"

// ErrViolations signals a non-compliant board to the exit code mapping.
var ErrViolations = errors.New("governance rules violated")
