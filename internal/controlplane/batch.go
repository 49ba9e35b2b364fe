package controlplane

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/fentz26/taskgov/internal/audit"
	"github.com/fentz26/taskgov/internal/inventory"
	"github.com/fentz26/taskgov/internal/scheduler"
	"github.com/fentz26/taskgov/internal/summary"
)

// ActionFacts is the audit action for fact sheet generation.
const ActionFacts = "inventory.facts"

// FactsRequest configures a facts pass.
type FactsRequest struct {
	OutDir string
	// IssueTitle, when set, is searched for in each repository to fill the
	// issue_url column of the run list.
	IssueTitle string
	// Meta enables the gh api lookups for default branch, last push and
	// branch samples.
	Meta        bool
	MaxBranches int
	// Template opens each request file; the built-in prompt when empty.
	Template string
}

// Facts writes per-repository fact sheets and the run list.
func (s *Service) Facts(ctx context.Context, req FactsRequest) ([]inventory.Entry, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	var issues map[string]string
	if req.IssueTitle != "" {
		issues, err = s.ResolveIssues(ctx, inventory.Repositories(snap), req.IssueTitle)
		if err != nil {
			return nil, err
		}
	}

	var meta map[string]inventory.RepoMeta
	if req.Meta {
		meta, err = s.ResolveMeta(ctx, inventory.Repositories(snap), req.MaxBranches)
		if err != nil {
			return nil, err
		}
	}

	entries, err := inventory.Write(req.OutDir, snap, inventory.WriteOptions{
		Issues:   issues,
		Meta:     meta,
		Template: req.Template,
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, ActionFacts, req, audit.OutcomeSuccess, fmt.Sprintf("%d repositories", len(entries)))
	s.logger.Info("facts written", zap.String("out", req.OutDir), zap.Int("repositories", len(entries)))
	return entries, nil
}

// ResolveIssues looks up the first issue titled title in each repository.
// Repositories without a match are absent from the result; lookup errors
// are logged and skipped.
func (s *Service) ResolveIssues(ctx context.Context, repos []string, title string) (map[string]string, error) {
	if s.connector == nil {
		return nil, ErrNoConnector
	}

	var mu sync.Mutex
	found := make(map[string]string, len(repos))
	jobs := make([]scheduler.Job, 0, len(repos))
	for _, repo := range repos {
		repo := repo
		jobs = append(jobs, scheduler.Job{ID: repo, Run: func(ctx context.Context) error {
			url, err := s.findIssue(ctx, repo, title)
			if err != nil || url == "" {
				return err
			}
			mu.Lock()
			found[repo] = url
			mu.Unlock()
			return nil
		}})
	}

	for _, r := range s.scheduler().Dispatch(ctx, jobs) {
		if errors.Is(r.Err, context.Canceled) || errors.Is(r.Err, context.DeadlineExceeded) {
			return nil, r.Err
		}
	}
	return found, nil
}

func (s *Service) findIssue(ctx context.Context, repo, title string) (string, error) {
	args := []string{
		"issue", "list",
		"-R", repo,
		"--search", fmt.Sprintf("in:title %q", title),
		"--state", "all",
		"--json", "url,title",
		"--jq", ".[0].url",
	}
	res, err := s.connector.Execute(ctx, "gh", args, nil)
	if err != nil {
		return "", err
	}
	if !res.Success() {
		return "", fmt.Errorf("gh exited %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	url := strings.TrimSpace(res.Stdout)
	if !strings.HasPrefix(url, "http") {
		return "", nil
	}
	return url, nil
}

// ResolveMeta reads repository metadata through gh api, one scheduler job
// per repository. Failed lookups leave the affected fields unknown.
func (s *Service) ResolveMeta(ctx context.Context, repos []string, maxBranches int) (map[string]inventory.RepoMeta, error) {
	if s.connector == nil {
		return nil, ErrNoConnector
	}
	if maxBranches <= 0 {
		maxBranches = inventory.DefaultMaxBranches
	}

	var mu sync.Mutex
	found := make(map[string]inventory.RepoMeta, len(repos))
	jobs := make([]scheduler.Job, 0, len(repos))
	for _, repo := range repos {
		repo := repo
		jobs = append(jobs, scheduler.Job{ID: repo, Run: func(ctx context.Context) error {
			meta, err := s.repoMeta(ctx, repo, maxBranches)
			mu.Lock()
			found[repo] = meta
			mu.Unlock()
			return err
		}})
	}

	for _, r := range s.scheduler().Dispatch(ctx, jobs) {
		if errors.Is(r.Err, context.Canceled) || errors.Is(r.Err, context.DeadlineExceeded) {
			return nil, r.Err
		}
	}
	return found, nil
}

// repoMeta returns whatever it could read; err reports the first failure.
func (s *Service) repoMeta(ctx context.Context, repo string, maxBranches int) (inventory.RepoMeta, error) {
	now := s.now()

	var meta inventory.RepoMeta
	data, err := s.ghAPI(ctx, inventory.RepoEndpoint(repo))
	if err == nil {
		meta, err = inventory.DecodeRepo(data, now)
	}
	if err != nil {
		return meta, fmt.Errorf("repository %s: %w", repo, err)
	}

	data, err = s.ghAPI(ctx, inventory.BranchesEndpoint(repo))
	if err != nil {
		return meta, fmt.Errorf("branches of %s: %w", repo, err)
	}
	names, err := inventory.DecodeBranches(data)
	if err != nil {
		return meta, fmt.Errorf("branches of %s: %w", repo, err)
	}

	var firstErr error
	for _, name := range inventory.SelectBranches(names, meta.Branch(), maxBranches) {
		sample := inventory.BranchSample{Name: name}
		data, err := s.ghAPI(ctx, inventory.CommitEndpoint(repo, name))
		if err == nil {
			sample, err = inventory.DecodeCommit(name, data, now)
		}
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("commit %s of %s: %w", name, repo, err)
		}
		meta.Branches = append(meta.Branches, sample)
	}
	return meta, firstErr
}

func (s *Service) ghAPI(ctx context.Context, endpoint string) ([]byte, error) {
	res, err := s.connector.Execute(ctx, "gh", []string{"api", endpoint}, nil)
	if err != nil {
		return nil, err
	}
	if !res.Success() {
		return nil, fmt.Errorf("gh api exited %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return []byte(res.Stdout), nil
}

// PostOutcome reports what happened to one run list entry.
type PostOutcome struct {
	Repository string
	Action     summary.Action
	Skipped    string
	Err        error
}

// PostAll posts every generated summary named in the run list to its
// tracking issue. Entries without an issue or a summary file are skipped.
func (s *Service) PostAll(ctx context.Context, entries []inventory.Entry) []PostOutcome {
	outcomes := make([]PostOutcome, len(entries))
	var (
		jobs  []scheduler.Job
		index []int
	)

	for i, e := range entries {
		outcomes[i].Repository = e.Repository
		if e.IssueURL == "" {
			outcomes[i].Skipped = "no tracking issue"
			continue
		}
		body, err := os.ReadFile(e.OutputPath)
		if errors.Is(err, os.ErrNotExist) {
			outcomes[i].Skipped = "no summary"
			continue
		}
		if err != nil {
			outcomes[i].Err = err
			continue
		}

		i, e := i, e
		index = append(index, i)
		jobs = append(jobs, scheduler.Job{ID: e.Repository, Run: func(ctx context.Context) error {
			action, err := s.PostSummary(ctx, e.IssueURL, string(body))
			outcomes[i].Action = action
			return err
		}})
	}

	for j, r := range s.scheduler().Dispatch(ctx, jobs) {
		outcomes[index[j]].Err = r.Err
	}
	return outcomes
}

func (s *Service) scheduler() *scheduler.Scheduler {
	name := "localexec"
	if s.connector != nil {
		name = s.connector.Name()
	}
	return scheduler.New(s.settings.Scheduler, name, s.logger)
}
