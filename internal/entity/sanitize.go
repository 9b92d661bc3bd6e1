// internal/entity/sanitize.go
//
// Universal first-pass input sanitization.
//
// Every submitted value, regardless of field kind, passes through Sanitize
// before kind-specific validation: markup is stripped, and whitespace runs
// are collapsed to single spaces with the ends trimmed.  The literal string
// "0" survives this pass, so a stored zero is never mistaken for an empty
// submission.

package entity

import (
	"regexp"
	"strings"
)

var tagRe = regexp.MustCompile(`<[^>]*>`)

// Sanitize strips markup and normalizes whitespace.
func Sanitize(raw string) string {
	s := tagRe.ReplaceAllString(raw, "")
	return strings.Join(strings.Fields(s), " ")
}
