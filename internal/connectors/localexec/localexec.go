// Package localexec provides a local command executor with an allowlist.
package localexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/fentz26/taskgov/internal/connectors"
)

// ErrNotAllowed is returned for commands outside the allowlist.
var ErrNotAllowed = errors.New("command not allowed")

// Allowlist maps a binary to the subcommand prefixes it may run.
type Allowlist map[string][][]string

// DefaultAllowlist covers the GitHub CLI calls taskgov makes.
var DefaultAllowlist = Allowlist{
	"gh": {
		{"project", "item-list"},
		{"issue", "comment"},
		{"issue", "list"},
		{"auth", "status"},
		{"api"},
	},
}

// DefaultReadOnly lists prefixes whose remaining arguments must all be
// positional. "gh api" without flags can only issue a GET.
var DefaultReadOnly = Allowlist{
	"gh": {{"api"}},
}

// LocalExec implements the Connector interface for local command execution.
type LocalExec struct {
	workDir  string
	allowed  Allowlist
	readOnly Allowlist
}

// New creates a new LocalExec connector using DefaultAllowlist.
func New(workDir string) *LocalExec {
	l := NewWithAllowlist(workDir, DefaultAllowlist)
	l.readOnly = DefaultReadOnly
	return l
}

// NewWithAllowlist creates a connector restricted to allowed.
func NewWithAllowlist(workDir string, allowed Allowlist) *LocalExec {
	return &LocalExec{workDir: workDir, allowed: allowed}
}

// Name returns the connector identifier.
func (l *LocalExec) Name() string {
	return "localexec"
}

// IsAllowed checks if a command is in the allowlist. args must start with
// one of the command's allowed subcommand prefixes.
func (l *LocalExec) IsAllowed(cmd string, args []string) bool {
	prefixes, ok := l.allowed[cmd]
	if !ok {
		return false
	}

	if len(args) == 0 {
		return false
	}

	allowed := false
	for _, prefix := range prefixes {
		if hasPrefix(args, prefix) {
			allowed = true
			break
		}
	}
	if !allowed {
		return false
	}

	for _, prefix := range l.readOnly[cmd] {
		if !hasPrefix(args, prefix) {
			continue
		}
		for _, a := range args[len(prefix):] {
			if strings.HasPrefix(a, "-") {
				return false
			}
		}
	}
	return true
}

func hasPrefix(args, prefix []string) bool {
	if len(prefix) == 0 || len(args) < len(prefix) {
		return false
	}
	for i, p := range prefix {
		if args[i] != p {
			return false
		}
	}
	return true
}

// Execute runs a command if it's in the allowlist. A non-zero exit is
// reported through ExitCode, not as an error.
func (l *LocalExec) Execute(ctx context.Context, cmd string, args []string, stdin io.Reader) (*connectors.ExecResult, error) {
	if !l.IsAllowed(cmd, args) {
		return nil, fmt.Errorf("%w: %s %s", ErrNotAllowed, cmd, strings.Join(args, " "))
	}

	execCmd := exec.CommandContext(ctx, cmd, args...)
	if l.workDir != "" {
		execCmd.Dir = l.workDir
	}
	if stdin != nil {
		execCmd.Stdin = stdin
	}

	var stdout, stderr bytes.Buffer
	execCmd.Stdout = &stdout
	execCmd.Stderr = &stderr

	err := execCmd.Run()

	exitCode := 0
	if err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			exitCode = exitError.ExitCode()
		} else {
			return nil, fmt.Errorf("exec error: %w", err)
		}
	}

	return &connectors.ExecResult{
		Command:  cmd,
		Args:     args,
		ExitCode: exitCode,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}, nil
}
