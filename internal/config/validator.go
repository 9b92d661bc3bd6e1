// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// `internal/config/loader.go` calls `validateStruct` immediately after it
// unmarshals the merged Koanf tree into a `Config` instance.  Any tag
// mismatch or validation error aborts startup, ensuring the binary never
// runs with partial, malformed, or missing configuration.
//
// Besides the built-in rules (`required`, `numeric`, `min`), one custom
// rule is registered: `dialprefix` checks that the mobile prefix and every
// area prefix are digit strings starting with "0", which the phone-field
// normalizer depends on.
//
// Notes
// -----
//   • Oxford commas, two spaces after periods.

package config

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

//
// validator instance (package-level singleton)
//

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New()
	_ = val.RegisterValidation("dialprefix", func(fl validator.FieldLevel) bool {
		return isDialPrefix(fl.Field().String())
	})
	return val
}

// isDialPrefix reports whether s is a national dial prefix: at least two
// digits and a leading zero.
func isDialPrefix(s string) bool {
	if len(s) < 2 || !strings.HasPrefix(s, "0") {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

//
// public API
//

// validateStruct returns the first validation error, or nil on success.
func validateStruct(c *Config) error {
	return v.Struct(c)
}
