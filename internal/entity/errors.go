// internal/entity/errors.go
//
// Validation errors and their round-trip encoding.
//
// Context
//   A rejected field save produces a small numeric code registered against
//   the owning type's error table.  A batch of saves may reject several
//   fields; the whole set travels through one redirect query parameter as a
//   sorted, de-duplicated, comma-joined list (`errors=2,5`).  The decoder
//   drops anything it cannot parse, so a tampered parameter degrades to
//   fewer messages rather than an error.
//
// Style
//   Full sentences, two spaces after periods, Oxford commas.

package entity

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ValidationError reports one rejected field save.  The previously stored
// value is left untouched when this is returned.
type ValidationError struct {
	Type  string
	Field string
	Code  int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("entity: %s.%s rejected (code %d)", e.Type, e.Field, e.Code)
}

// EncodeCodes serializes a code set for a redirect query parameter.  The
// result is sorted and de-duplicated; an empty set encodes to "".
func EncodeCodes(codes []int) string {
	if len(codes) == 0 {
		return ""
	}
	seen := make(map[int]struct{}, len(codes))
	uniq := make([]int, 0, len(codes))
	for _, c := range codes {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		uniq = append(uniq, c)
	}
	sort.Ints(uniq)

	parts := make([]string, len(uniq))
	for i, c := range uniq {
		parts[i] = strconv.Itoa(c)
	}
	return strings.Join(parts, ",")
}

// DecodeCodes parses the query-parameter form back into a code set.
// Unparsable segments are ignored.
func DecodeCodes(s string) []int {
	if s == "" {
		return nil
	}
	var codes []int
	for _, part := range strings.Split(s, ",") {
		c, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		codes = append(codes, c)
	}
	return codes
}

// Messages resolves a decoded code set against a type's error table, one
// message per code found in the table.
func Messages(t *Type, codes []int) []string {
	var out []string
	for _, c := range codes {
		if m, ok := t.Errors[c]; ok {
			out = append(out, m)
		}
	}
	return out
}
