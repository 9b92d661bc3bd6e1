// internal/config/model.go
//
// Typed configuration model for the entity service.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                          – dotenv values,
//   • `conf/global.yaml`                       – primary static file,
//   • `ENTITY_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client *before* unmarshalling, so the model never
// stores Vault URIs—only plain strings.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`—Koanf ignores `yaml` tags
//     unless configured otherwise.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.  No em-dash.

package config

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
	ForceHTTPS bool   `koanf:"force_https"`
}

//
// Database section
//

// Database holds the DSN template and its secret.
//
// The *template* (`DSN`) is kept in YAML so operators can tweak host, port,
// or flags without touching Vault.  The *secret* portion (`Password`) is
// stored in Vault and injected at runtime, keeping credentials out of flat
// files and git history.
type Database struct {
	DSN      string `koanf:"dsn"      validate:"required"`
	Password string `koanf:"password" validate:"required"`
}

//
// Org section
//

// Org carries organization-wide constants that drive field validation and
// display formatting.
//
//   - BaseYear      – founding year; `year` fields must be ≥ BaseYear.
//   - CountryCode   – international dial code without "+" (e.g., "31").
//   - MobilePrefix  – national mobile prefix (e.g., "06").
//   - AreaPrefixes  – landline area codes that get a display separator.
//   - Locale        – BCP-47-ish locale tag used for date display
//     ("nl_NL" renders Dutch month names, anything else English).
type Org struct {
	BaseYear     int      `koanf:"base_year"     validate:"required,min=1800"`
	CountryCode  string   `koanf:"country_code"  validate:"required,numeric"`
	MobilePrefix string   `koanf:"mobile_prefix" validate:"required,dialprefix"`
	AreaPrefixes []string `koanf:"area_prefixes" validate:"dive,dialprefix"`
	Locale       string   `koanf:"locale"`
}

//
// Geo section
//

// Geo points at an optional MaxMind database.  When the path is empty the
// request-info middleware skips geolocation entirely.
type Geo struct {
	DBPath string `koanf:"db_path"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime—never set in YAML or env.  The loader
// discovers `Root` (repo root or ENTITY_ROOT override) so later code can
// build absolute file paths.
type Paths struct {
	Root string // ENTITY_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Database Database `koanf:"database"`
	Org      Org      `koanf:"org"`
	Geo      Geo      `koanf:"geo"`
	Paths    Paths    `koanf:"-"` // not loaded from config files
}
