// Package governance classifies board items and checks them against the
// rulebook. Everything here is a pure function of the snapshot.
package governance

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/fentz26/taskgov/internal/models"
)

var kindTag = regexp.MustCompile(`(?i)^\[(Investigate|Decide|Implement|Verify)\]\s*`)

// Classify returns the kind declared by a leading "[Kind]" tag. The tag must
// open the title; a tag further into the text does not count.
func Classify(title string) models.Kind {
	m := kindTag.FindStringSubmatch(strings.TrimLeftFunc(title, unicode.IsSpace))
	if m == nil {
		return models.KindUnknown
	}
	return canonicalKind(m[1])
}

func canonicalKind(tag string) models.Kind {
	switch strings.ToLower(tag) {
	case "investigate":
		return models.KindInvestigate
	case "decide":
		return models.KindDecide
	case "implement":
		return models.KindImplement
	case "verify":
		return models.KindVerify
	default:
		return models.KindUnknown
	}
}
