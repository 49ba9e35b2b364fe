package inventory

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Repository metadata defaults.
const (
	DefaultBranchName  = "main"
	DefaultMaxBranches = 5
	unknownValue       = "?"
	shortSHALen        = 7
)

// RepoMeta is what the fact sheet shows about a repository beyond its
// board items. The zero value renders as unknown.
type RepoMeta struct {
	DefaultBranch string
	// LastPushDays is nil when the push time is unknown.
	LastPushDays *int
	Branches     []BranchSample
}

// BranchSample is the head commit of one sampled branch.
type BranchSample struct {
	Name    string
	AgeDays *int
	SHA     string
}

// Line renders the sample as a fact sheet bullet.
func (b BranchSample) Line() string {
	age, sha := unknownValue, unknownValue
	if b.AgeDays != nil {
		age = strconv.Itoa(*b.AgeDays)
	}
	if b.SHA != "" {
		sha = b.SHA
	}
	return fmt.Sprintf("- %s age=%s sha=%s", b.Name, age, sha)
}

// Branch returns the default branch, falling back to DefaultBranchName.
func (m RepoMeta) Branch() string {
	if m.DefaultBranch == "" {
		return DefaultBranchName
	}
	return m.DefaultBranch
}

// RepoEndpoint, BranchesEndpoint and CommitEndpoint are the gh api paths
// metadata is read from.
func RepoEndpoint(repo string) string { return "repos/" + repo }

func BranchesEndpoint(repo string) string {
	return "repos/" + repo + "/branches?per_page=100&page=1"
}

func CommitEndpoint(repo, branch string) string {
	return "repos/" + repo + "/commits/" + branch
}

type repoResponse struct {
	DefaultBranch string `json:"default_branch"`
	PushedAt      string `json:"pushed_at"`
}

type branchResponse struct {
	Name string `json:"name"`
}

type commitResponse struct {
	SHA    string `json:"sha"`
	Commit struct {
		Committer struct {
			Date string `json:"date"`
		} `json:"committer"`
		Author struct {
			Date string `json:"date"`
		} `json:"author"`
	} `json:"commit"`
}

// DecodeRepo reads the default branch and push age from a
// repos/<owner>/<repo> response.
func DecodeRepo(data []byte, now time.Time) (RepoMeta, error) {
	var r repoResponse
	if err := json.Unmarshal(data, &r); err != nil {
		return RepoMeta{}, fmt.Errorf("decode repository: %w", err)
	}
	return RepoMeta{
		DefaultBranch: r.DefaultBranch,
		LastPushDays:  daysSince(r.PushedAt, now),
	}, nil
}

// DecodeBranches returns the branch names of a branches response in
// API order.
func DecodeBranches(data []byte) ([]string, error) {
	var bs []branchResponse
	if err := json.Unmarshal(data, &bs); err != nil {
		return nil, fmt.Errorf("decode branches: %w", err)
	}
	names := make([]string, 0, len(bs))
	for _, b := range bs {
		if b.Name != "" {
			names = append(names, b.Name)
		}
	}
	return names, nil
}

// DecodeCommit builds the sample for branch from a commits/<branch>
// response. The committer date wins over the author date.
func DecodeCommit(branch string, data []byte, now time.Time) (BranchSample, error) {
	var c commitResponse
	if err := json.Unmarshal(data, &c); err != nil {
		return BranchSample{Name: branch}, fmt.Errorf("decode commit: %w", err)
	}
	date := c.Commit.Committer.Date
	if date == "" {
		date = c.Commit.Author.Date
	}
	sha := c.SHA
	if len(sha) > shortSHALen {
		sha = sha[:shortSHALen]
	}
	return BranchSample{Name: branch, AgeDays: daysSince(date, now), SHA: sha}, nil
}

// SelectBranches picks at most max branches, the default branch first
// when it exists, then the others in API order.
func SelectBranches(names []string, defaultBranch string, max int) []string {
	var out []string
	for _, n := range names {
		if n == defaultBranch {
			out = append(out, n)
			break
		}
	}
	for _, n := range names {
		if len(out) >= max {
			break
		}
		if n != defaultBranch {
			out = append(out, n)
		}
	}
	return out
}

// daysSince returns whole days between an RFC 3339 timestamp and now,
// rounded down, or nil when the timestamp is missing or malformed.
func daysSince(ts string, now time.Time) *int {
	if ts == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return nil
	}
	days := int(math.Floor(now.Sub(t).Hours() / 24))
	return &days
}
