// internal/entity/kind.go
//
// Closed enum of field kinds and the per-kind strategy table.
//
// Context
//   Each Kind bundles three functions: save (validate + transform raw
//   input), edit (reshape a stored value for an input control), and display
//   (format a stored value for the public detail block).  Keeping the three
//   in one table, rather than switches scattered across get and save paths,
//   makes it impossible to add a kind and forget one of its behaviours.
//
// Storage conventions
//   • date      – stored ISO `YYYY-MM-DD` so values sort lexically.
//   • postcode  – stored compact and uppercased, `9999AA`.
//   • phone     – stored as the national compact form, ten digits with a
//     leading zero.
//   • year, number – stored as decimal strings.
//
// Style
//   Full sentences, two spaces after periods, Oxford commas.

package entity

import (
	"strconv"
	"strings"
	"time"
)

// Kind identifies the semantic type of a metadata field.
type Kind int

const (
	KindText Kind = iota
	KindNumber
	KindYear
	KindDate
	KindPostcode
	KindPhone
	KindAddressNumber
	KindAddressAddition
)

// ParseKind maps a definition string onto a Kind.  Unrecognized strings
// fall back to KindText, mirroring the generic-text fallback the field
// contract promises.
func ParseKind(s string) Kind {
	switch s {
	case "text":
		return KindText
	case "number":
		return KindNumber
	case "year":
		return KindYear
	case "date":
		return KindDate
	case "postcode":
		return KindPostcode
	case "phone":
		return KindPhone
	case "address-number":
		return KindAddressNumber
	case "address-addition":
		return KindAddressAddition
	default:
		return KindText
	}
}

// String returns the definition name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindYear:
		return "year"
	case KindDate:
		return "date"
	case KindPostcode:
		return "postcode"
	case KindPhone:
		return "phone"
	case KindAddressNumber:
		return "address-number"
	case KindAddressAddition:
		return "address-addition"
	default:
		return "text"
	}
}

// -----------------------------------------------------------------------------
// Strategy table
// -----------------------------------------------------------------------------

// strategy groups the three per-kind behaviours.  A nil function means the
// identity transform.
type strategy struct {
	save    func(e *Engine, val string) (string, bool)
	edit    func(e *Engine, raw string) string
	display func(e *Engine, f Field, raw string, view View) string
}

// strategies is keyed by every Kind; keep it exhaustive when adding kinds.
var strategies = map[Kind]strategy{
	KindText: {},
	KindNumber: {
		save: saveNumber,
	},
	KindYear: {
		save: saveYear,
	},
	KindDate: {
		save:    saveDate,
		edit:    editDate,
		display: displayDate,
	},
	KindPostcode: {
		save:    savePostcode,
		display: displayPostcode,
	},
	KindPhone: {
		save:    savePhone,
		display: displayPhone,
	},
	KindAddressNumber: {
		save: saveNumber,
	},
	KindAddressAddition: {
		save: saveAddition,
	},
}

// -----------------------------------------------------------------------------
// Save transforms
// -----------------------------------------------------------------------------

// saveNumber coerces to a non-negative integer.  Unparsable input coerces
// to zero rather than erroring, matching absint semantics.
func saveNumber(_ *Engine, val string) (string, bool) {
	n, err := strconv.Atoi(val)
	if err != nil {
		return "0", true
	}
	if n < 0 {
		n = -n
	}
	return strconv.Itoa(n), true
}

// saveYear accepts integers within [base year, current year] inclusive.
func saveYear(e *Engine, val string) (string, bool) {
	y, err := strconv.Atoi(val)
	if err != nil {
		return "", false
	}
	if y < e.org.BaseYear || y > time.Now().Year() {
		return "", false
	}
	return strconv.Itoa(y), true
}

// saveDate parses `YYYY/MM/DD` input and stores ISO `YYYY-MM-DD`, chosen
// because the ISO form sorts lexically.
func saveDate(_ *Engine, val string) (string, bool) {
	t, err := time.Parse("2006/01/02", val)
	if err != nil {
		return "", false
	}
	return t.Format("2006-01-02"), true
}

// savePostcode uppercases, strips internal whitespace, and requires four
// digits followed by two letters at the start of the string.  Trailing
// characters beyond the six are tolerated on purpose.
func savePostcode(_ *Engine, val string) (string, bool) {
	s := strings.ToUpper(strings.Join(strings.Fields(val), ""))
	if !postcodePrefixOK(s) {
		return "", false
	}
	return s, true
}

func postcodePrefixOK(s string) bool {
	if len(s) < 6 {
		return false
	}
	for i := 0; i < 4; i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	for i := 4; i < 6; i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}

// savePhone strips everything but digits, rewrites the international prefix
// to the national form, and requires exactly ten digits.  The compact form
// is stored; separators belong to display formatting.
func savePhone(e *Engine, val string) (string, bool) {
	var b strings.Builder
	for _, r := range val {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	d := b.String()

	cc := e.org.CountryCode
	if strings.HasPrefix(d, cc) && len(d) == len(cc)+9 {
		d = "0" + d[len(cc):]
	}
	if len(d) != 10 || d[0] != '0' {
		return "", false
	}
	return d, true
}

// saveAddition uppercases and otherwise follows the generic text path.
func saveAddition(_ *Engine, val string) (string, bool) {
	return strings.ToUpper(val), true
}

// -----------------------------------------------------------------------------
// Edit transforms
// -----------------------------------------------------------------------------

// editDate reshapes the stored ISO date into the `YYYY/MM/DD` input form.
// Unparsable stored values yield the empty string, never an error.
func editDate(_ *Engine, raw string) string {
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return ""
	}
	return t.Format("2006/01/02")
}

// -----------------------------------------------------------------------------
// Display transforms
// -----------------------------------------------------------------------------

// displayDate renders the stored ISO date per the configured locale.
func displayDate(e *Engine, _ Field, raw string, _ View) string {
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return ""
	}
	months := monthNames[localeKey(e.org.Locale)]
	return strconv.Itoa(t.Day()) + " " + months[t.Month()-1] + " " + strconv.Itoa(t.Year())
}

// displayPostcode inserts a space after the fourth character, `9999 AA`.
func displayPostcode(_ *Engine, _ Field, raw string, _ View) string {
	if len(raw) < 5 {
		return raw
	}
	return raw[:4] + " " + raw[4:]
}

// displayPhone rewrites the national prefix to the international form and
// wraps the number in a clickable link.  Desktop viewers get a `tel:`
// scheme; mobile viewers get `callto:`.
func displayPhone(e *Engine, _ Field, raw string, view View) string {
	if len(raw) != 10 || raw[0] != '0' {
		return raw
	}

	intl := "+" + e.org.CountryCode + raw[1:]
	scheme := "tel:"
	if view.Mobile {
		scheme = "callto:"
	}

	label := raw
	if p := e.dialPrefix(raw); p != "" {
		label = p + "-" + raw[len(p):]
	}

	return `<a href="` + scheme + intl + `">` + label + `</a>`
}

// dialPrefix returns the longest configured area prefix (or the mobile
// prefix) matching the stored number, or "" when none matches.
func (e *Engine) dialPrefix(num string) string {
	best := ""
	if strings.HasPrefix(num, e.org.MobilePrefix) {
		best = e.org.MobilePrefix
	}
	for _, p := range e.org.AreaPrefixes {
		if strings.HasPrefix(num, p) && len(p) > len(best) {
			best = p
		}
	}
	return best
}

// -----------------------------------------------------------------------------
// Locale tables
// -----------------------------------------------------------------------------

// localeKey collapses locale tags onto a month-table key.
func localeKey(locale string) string {
	if strings.HasPrefix(strings.ToLower(locale), "nl") {
		return "nl"
	}
	return "en"
}

var monthNames = map[string][12]string{
	"en": {"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December"},
	"nl": {"januari", "februari", "maart", "april", "mei", "juni",
		"juli", "augustus", "september", "oktober", "november", "december"},
}
