// Package summary validates and publishes the short-form inventory summary
// that accompanies each repository fact sheet.
package summary

import (
	"fmt"
	"strings"
)

// Heading is the required top-level heading of a summary.
const Heading = "## Inventory Summary"

// BulletGlyph is the leading glyph that may not start a line.
const BulletGlyph = "・"

// Fields lists the required fields in display order.
var Fields = []string{"Classification", "Evidence", "Next-action", "Notes"}

// Problem is one validation finding. Line is 1-based; zero means the
// finding applies to the whole document.
type Problem struct {
	Line    int
	Message string
}

func (p Problem) String() string {
	if p.Line == 0 {
		return p.Message
	}
	return fmt.Sprintf("line %d: %s", p.Line, p.Message)
}

// Result is the outcome of Check.
type Result struct {
	Normalized string
	Stripped   []int
	Problems   []Problem
}

// OK reports whether the normalized summary passed validation.
func (r Result) OK() bool {
	return len(r.Problems) == 0
}

// Err returns ErrInvalidSummary wrapped with the first problem, or nil.
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidSummary, r.Problems[0])
}

// Normalize strips a leading bullet glyph from every line that starts
// with one.
func Normalize(text string) string {
	out, _ := normalize(text)
	return out
}

func normalize(text string) (string, []int) {
	lines := strings.Split(text, "\n")
	var stripped []int
	for i, l := range lines {
		if strings.HasPrefix(l, BulletGlyph) {
			lines[i] = strings.TrimPrefix(l, BulletGlyph)
			stripped = append(stripped, i+1)
		}
	}
	return strings.Join(lines, "\n"), stripped
}

// Validate checks text as is. The heading must be present once, each
// field must appear exactly once as a "- Field:" line, and no line may
// start with the bullet glyph.
func Validate(text string) []Problem {
	var problems []Problem
	headings := 0
	seen := make(map[string][]int, len(Fields))

	for i, raw := range strings.Split(text, "\n") {
		n := i + 1
		line := strings.TrimRight(raw, " \t\r")
		if strings.HasPrefix(line, BulletGlyph) {
			problems = append(problems, Problem{Line: n, Message: "line starts with " + BulletGlyph})
		}
		if line == Heading {
			headings++
			continue
		}
		if f, ok := fieldName(line); ok {
			seen[f] = append(seen[f], n)
		}
	}

	switch {
	case headings == 0:
		problems = append(problems, Problem{Message: "missing heading " + Heading})
	case headings > 1:
		problems = append(problems, Problem{Message: "heading " + Heading + " appears more than once"})
	}
	for _, f := range Fields {
		lines := seen[f]
		switch {
		case len(lines) == 0:
			problems = append(problems, Problem{Message: "missing field " + f})
		case len(lines) > 1:
			problems = append(problems, Problem{Line: lines[1], Message: "duplicate field " + f})
		}
	}
	return problems
}

// fieldName extracts the field from a "- Field: value" line.
func fieldName(line string) (string, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(line), "-")
	if !ok {
		return "", false
	}
	rest = strings.TrimSpace(rest)
	for _, f := range Fields {
		if strings.HasPrefix(rest, f+":") {
			return f, true
		}
	}
	return "", false
}

// Check normalizes text and validates the result. Stripped lists the lines
// whose leading glyph was removed.
func Check(text string) Result {
	normalized, stripped := normalize(text)
	return Result{
		Normalized: normalized,
		Stripped:   stripped,
		Problems:   Validate(normalized),
	}
}
