// Package inventory groups snapshot items by repository and writes per-repo
// fact sheets plus a run list for summary authors.
package inventory

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fentz26/taskgov/internal/fsutil"
	"github.com/fentz26/taskgov/internal/governance"
	"github.com/fentz26/taskgov/internal/models"
)

// Layout of the output directory.
const (
	FactsDir     = "facts"
	RequestsDir  = "requests"
	GeneratedDir = "generated"
	RunlistFile  = "runlist.tsv"
	DefaultType  = "Item"
	NoItemsLine  = "- (none)"
)

// DefaultPromptTemplate opens every request file unless a template file is
// configured.
//
//go:embed templates/inventory_prompt.md
var DefaultPromptTemplate string

// ErrBadRunlist is returned for run lists that do not match RunlistHeader.
var ErrBadRunlist = errors.New("malformed runlist")

// Group is the set of items that belong to one owner/repo.
type Group struct {
	Repository string
	Items      []models.TaskItem
}

// GroupByRepository buckets items by repository, sorted by name. Items
// without an owner/repo reference are skipped. Item order within a group
// follows the snapshot.
func GroupByRepository(items []models.TaskItem) []Group {
	index := map[string]int{}
	var groups []Group
	for _, it := range items {
		repo := strings.TrimSpace(it.Repository)
		if !strings.Contains(repo, "/") {
			continue
		}
		i, ok := index[repo]
		if !ok {
			i = len(groups)
			index[repo] = i
			groups = append(groups, Group{Repository: repo})
		}
		groups[i].Items = append(groups[i].Items, it)
	}
	sort.Slice(groups, func(a, b int) bool { return groups[a].Repository < groups[b].Repository })
	return groups
}

// Facts is the signal summary for one repository.
type Facts struct {
	Repository         string
	Meta               RepoMeta
	Lines              []string
	Unknown            int
	Blocked            int
	BlockedMissingNext int
	Doing              int
}

// BuildFacts derives the fact sheet for g. Signal counts use the same
// status label as the item lines, so an unrecognised status such as
// "In Review" is listed as is and counted in no signal.
func BuildFacts(g Group, meta RepoMeta) Facts {
	f := Facts{Repository: g.Repository, Meta: meta}
	for _, it := range g.Items {
		f.Lines = append(f.Lines, itemLine(it))
		switch statusLabel(it) {
		case models.StatusUnknown.String():
			f.Unknown++
		case models.StatusBlocked.String():
			f.Blocked++
			if !governance.HasNextAction(it.Body) {
				f.BlockedMissingNext++
			}
		case models.StatusDoing.String():
			f.Doing++
		}
	}
	return f
}

// statusLabel is the raw board status, or Unknown when blank.
func statusLabel(it models.TaskItem) string {
	if status := strings.TrimSpace(it.RawStatus); status != "" {
		return status
	}
	return models.StatusUnknown.String()
}

func itemLine(it models.TaskItem) string {
	typ := strings.TrimSpace(it.Type)
	if typ == "" {
		typ = DefaultType
	}
	line := fmt.Sprintf("- [%s] %s (%s)", statusLabel(it), strings.TrimSpace(it.Title), typ)
	if url := strings.TrimSpace(it.URL); url != "" {
		line += " " + url
	}
	return line
}

// Markdown renders the fact sheet.
func (f Facts) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Repo: %s\n", f.Repository)
	fmt.Fprintf(&b, "Default branch: %s\n", f.Meta.Branch())
	if f.Meta.LastPushDays != nil {
		fmt.Fprintf(&b, "Last push (days): %d\n", *f.Meta.LastPushDays)
	} else {
		b.WriteString("Last push (days): n/a\n")
	}

	b.WriteString("\nBranch samples:\n")
	if len(f.Meta.Branches) == 0 {
		b.WriteString(BranchSample{Name: f.Meta.Branch()}.Line() + "\n")
	}
	for _, br := range f.Meta.Branches {
		b.WriteString(br.Line() + "\n")
	}

	b.WriteString("\nProject items (this repo):\n")
	if len(f.Lines) == 0 {
		b.WriteString(NoItemsLine + "\n")
	}
	for _, l := range f.Lines {
		b.WriteString(l + "\n")
	}
	b.WriteString("\nSignals:\n")
	fmt.Fprintf(&b, "- Unknown items count: %d\n", f.Unknown)
	fmt.Fprintf(&b, "- Blocked items count: %d (Next missing: %d)\n", f.Blocked, f.BlockedMissingNext)
	fmt.Fprintf(&b, "- Doing items count: %d\n", f.Doing)
	return b.String()
}

// Request is the text handed to a summary author: the prompt template
// followed by the fact sheet.
func Request(template string, facts Facts) string {
	return strings.TrimRight(template, " \t\r\n") + "\n\n" + facts.Markdown()
}

// SafeName turns owner/repo into a file name stem.
func SafeName(repo string) string {
	return strings.ReplaceAll(repo, "/", "__")
}

// Repositories returns the distinct owner/repo names in snap, sorted.
func Repositories(snap *models.Snapshot) []string {
	var out []string
	for _, g := range GroupByRepository(snap.Items) {
		out = append(out, g.Repository)
	}
	return out
}

// Entry is one row of the run list.
type Entry struct {
	Repository  string
	IssueURL    string
	FactsPath   string
	RequestPath string
	OutputPath  string
}

// WriteOptions carries the per-repository lookups that go into Write.
// Every field may be empty.
type WriteOptions struct {
	// Issues maps a repository to its tracking issue URL.
	Issues map[string]string
	// Meta maps a repository to its metadata; missing entries render as
	// unknown.
	Meta map[string]RepoMeta
	// Template opens each request file; DefaultPromptTemplate when empty.
	Template string
}

// Write renders, per repository, a fact sheet under outDir/facts and a
// request under outDir/requests, then the run list at outDir/runlist.tsv.
// OutputPath names where the repository's summary is expected; it is not
// created.
func Write(outDir string, snap *models.Snapshot, opts WriteOptions) ([]Entry, error) {
	template := opts.Template
	if template == "" {
		template = DefaultPromptTemplate
	}

	var entries []Entry
	for _, g := range GroupByRepository(snap.Items) {
		safe := SafeName(g.Repository)
		e := Entry{
			Repository:  g.Repository,
			IssueURL:    opts.Issues[g.Repository],
			FactsPath:   filepath.Join(outDir, FactsDir, safe+".md"),
			RequestPath: filepath.Join(outDir, RequestsDir, safe+".txt"),
			OutputPath:  filepath.Join(outDir, GeneratedDir, safe+".md"),
		}
		facts := BuildFacts(g, opts.Meta[g.Repository])
		if err := fsutil.WriteAtomic(e.FactsPath, []byte(facts.Markdown()), 0644); err != nil {
			return nil, fmt.Errorf("write facts for %s: %w", g.Repository, err)
		}
		if err := fsutil.WriteAtomic(e.RequestPath, []byte(Request(template, facts)), 0644); err != nil {
			return nil, fmt.Errorf("write request for %s: %w", g.Repository, err)
		}
		entries = append(entries, e)
	}

	if err := fsutil.WriteAtomic(filepath.Join(outDir, RunlistFile), []byte(Runlist(entries)), 0644); err != nil {
		return nil, fmt.Errorf("write runlist: %w", err)
	}
	return entries, nil
}

// RunlistHeader is the first row of runlist.tsv.
const RunlistHeader = "repo\tissue_url\tfacts_path\trequest_path\toutput_path"

const runlistColumns = 5

// Runlist renders entries as a tab-separated table with a header row.
func Runlist(entries []Entry) string {
	var b strings.Builder
	b.WriteString(RunlistHeader + "\n")
	for _, e := range entries {
		b.WriteString(strings.Join([]string{e.Repository, e.IssueURL, e.FactsPath, e.RequestPath, e.OutputPath}, "\t") + "\n")
	}
	return b.String()
}

// ReadRunlist loads a run list written by Write.
func ReadRunlist(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read runlist: %w", err)
	}
	return ParseRunlist(string(data))
}

// ParseRunlist decodes runlist text. Blank lines are ignored.
func ParseRunlist(text string) ([]Entry, error) {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != RunlistHeader {
		return nil, ErrBadRunlist
	}

	var entries []Entry
	for i, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) != runlistColumns {
			return nil, fmt.Errorf("%w: line %d has %d columns", ErrBadRunlist, i+2, len(cols))
		}
		entries = append(entries, Entry{
			Repository:  cols[0],
			IssueURL:    cols[1],
			FactsPath:   cols[2],
			RequestPath: cols[3],
			OutputPath:  cols[4],
		})
	}
	return entries, nil
}
