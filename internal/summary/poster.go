package summary

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fentz26/taskgov/internal/connectors"
	"github.com/fentz26/taskgov/internal/logging"
)

// Action describes what Upsert did.
type Action string

const (
	ActionEdited  Action = "edited"
	ActionCreated Action = "created"
)

// Poster publishes summaries as issue comments through the gh CLI.
type Poster struct {
	conn   connectors.Connector
	logger *zap.Logger
}

// NewPoster creates a poster that runs gh through conn.
func NewPoster(conn connectors.Connector, logger *zap.Logger) *Poster {
	return &Poster{conn: conn, logger: logging.OrNop(logger)}
}

// Upsert edits the caller's last comment on the issue, or adds a new one
// when there is nothing to edit.
func (p *Poster) Upsert(ctx context.Context, issueURL, body string) (Action, error) {
	if strings.TrimSpace(issueURL) == "" {
		return "", ErrEmptyIssueURL
	}

	res, err := p.conn.Execute(ctx, "gh",
		[]string{"issue", "comment", issueURL, "--edit-last", "--body-file", "-"},
		strings.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPostFailed, err)
	}
	if res.Success() {
		p.logger.Info("summary comment edited", zap.String("issue", issueURL))
		return ActionEdited, nil
	}

	p.logger.Debug("edit-last failed, creating comment",
		zap.String("issue", issueURL),
		zap.Int("exit_code", res.ExitCode),
		zap.String("stderr", strings.TrimSpace(res.Stderr)))

	res, err = p.conn.Execute(ctx, "gh",
		[]string{"issue", "comment", issueURL, "--body-file", "-"},
		strings.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPostFailed, err)
	}
	if !res.Success() {
		return "", fmt.Errorf("%w: gh exited %d: %s", ErrPostFailed, res.ExitCode, strings.TrimSpace(res.Stderr))
	}

	p.logger.Info("summary comment created", zap.String("issue", issueURL))
	return ActionCreated, nil
}
