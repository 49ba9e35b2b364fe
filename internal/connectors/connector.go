// Package connectors defines the connector interface for taskgov's
// external tools.
package connectors

import (
	"context"
	"io"
)

// ExecResult holds the result of a command execution.
type ExecResult struct {
	Command  string   `json:"command"`
	Args     []string `json:"args"`
	ExitCode int      `json:"exit_code"`
	Stdout   string   `json:"stdout"`
	Stderr   string   `json:"stderr"`
}

// Success reports whether the command exited cleanly.
func (r *ExecResult) Success() bool {
	return r.ExitCode == 0
}

// Connector defines the interface for executing commands.
type Connector interface {
	// Name returns the connector identifier.
	Name() string

	// Execute runs a command and returns the result. stdin may be nil.
	Execute(ctx context.Context, cmd string, args []string, stdin io.Reader) (*ExecResult, error)

	// IsAllowed checks if a command is allowed to execute.
	IsAllowed(cmd string, args []string) bool
}
