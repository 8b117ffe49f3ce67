// File path: internal/extract/address.go
package extract

import (
	"regexp"
	"strings"
)

var (
	bracketChars = strings.NewReplacer("[", "", "]", "", "(", "", ")", "")
	dashRuns     = regexp.MustCompile(`\s+-\s+(?:-\s+)?`)
	spaceRuns    = regexp.MustCompile(`\s{2,}`)
)

// NormalizeAddress cleans a free-text address: brackets are stripped,
// "space-dash-space" runs (single or doubled) collapse into ", ", repeated
// whitespace collapses to one space. Idempotent.
func NormalizeAddress(raw string) string {
	s := bracketChars.Replace(raw)
	s = dashRuns.ReplaceAllString(s, ", ")
	s = spaceRuns.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
