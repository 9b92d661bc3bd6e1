//
//  internal/requestinfo/requestinfo.go
//
//  Lightweight types and helpers that collect per-request viewer metadata
//  (user-agent fingerprint, mobile flag, elevated-access flag, IP +
//  geolocation, URL, and timestamp).  These structs are inert.  They
//  contain no pointers to database handles or large buffers, so they are
//  safe to log or JSON-encode.
//
//  The Viewer replaces ambient "current request" state: the entity engine,
//  the archive gate, and the display composer all receive what they need
//  from here as explicit values.
//
//  Dependencies
//  • github.com/avct/uasurfer          (UA parsing)
//  • github.com/oschwald/geoip2-golang (MaxMind lookup, optional)
//

package requestinfo

import (
	"context"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	surfer "github.com/avct/uasurfer"
	"github.com/oschwald/geoip2-golang"
)

//
//  -----------------------------
//  Struct definitions
//  -----------------------------
//

// UA holds the parsed user-agent properties the entity surface cares
// about.  Device will be one of: "Desktop", "Mobile", "Tablet", or
// "Other".
type UA struct {
	Raw     string // Entire User-Agent header
	Browser string // "Chrome", "Firefox", "Safari", etc.
	Version string // "124.0.6367"
	OS      string // "Mac OS X", "Windows", "Android", etc.
	Device  string // "Desktop", "Mobile", "Tablet", "Other"
	IsBot   bool   // True if UA matches crawler signatures
}

// Geo holds IP-based geolocation hints.  Best-effort; empty when the
// MaxMind database is absent or has no match.
type Geo struct {
	IP         net.IP // Original client address (not X-Forwarded-For chain)
	CountryISO string // "NL", "BE", "DE", ...
	City       string // "Rotterdam", "Delft", ...
}

// Viewer is attached to the request context and threaded explicitly into
// the entity engine and the archive gate.
type Viewer struct {
	UA        UA
	Geo       Geo
	Mobile    bool // phone or wearable client; drives the phone link scheme
	Elevated  bool // viewer holds an elevated role; opens archived records
	URL       *url.URL
	Timestamp time.Time
}

//
//  -----------------------------
//  Package-level state
//  -----------------------------
//

// geoReader is a singleton MaxMind handle.  Safe for concurrent reads,
// which is all we ever perform.  Nil when geolocation is not configured.
var geoReader *geoip2.Reader

// InitGeo opens the GeoLite2-City database at startup.  An empty path
// leaves geolocation disabled.
func InitGeo(dbPath string) error {
	if dbPath == "" {
		return nil
	}
	r, err := geoip2.Open(dbPath)
	if err != nil {
		return err
	}
	geoReader = r
	return nil
}

//
//  -----------------------------
//  Public helper: FromContext
//  -----------------------------
//

type ctxKey struct{} // unexported, collision-proof

// WithViewer returns a new context carrying v.  Exposed so tests can seed
// a request without running the full middleware.
func WithViewer(ctx context.Context, v *Viewer) context.Context {
	return context.WithValue(ctx, ctxKey{}, v)
}

// FromContext returns the pointer previously stored by Enrich.  It returns
// nil if the middleware has not run.
func FromContext(ctx context.Context) *Viewer {
	v, _ := ctx.Value(ctxKey{}).(*Viewer)
	return v
}

//
//  -----------------------------
//  Internal helpers
//  -----------------------------
//

// parseUA converts a raw header into our UA struct using uasurfer.
func parseUA(raw string) UA {
	u := surfer.Parse(raw)

	info := UA{
		Raw:     raw,
		Browser: u.Browser.Name.String(),
		Version: versionToString(u.Browser.Version),
		OS:      u.OS.Name.String(),
		IsBot:   u.IsBot(),
	}

	switch u.DeviceType {
	case surfer.DeviceComputer:
		info.Device = "Desktop"
	case surfer.DeviceTablet:
		info.Device = "Tablet"
	case surfer.DevicePhone, surfer.DeviceWearable:
		info.Device = "Mobile"
	default:
		info.Device = "Other"
	}

	return info
}

// versionToString renders a semantic version in dotted form while trimming
// trailing zeros, e.g. 17.0.0 → "17", 17.3.0 → "17.3", 17.3.1 → "17.3.1".
func versionToString(v surfer.Version) string {
	if v.Major == 0 && v.Minor == 0 && v.Patch == 0 {
		return ""
	}
	if v.Patch != 0 {
		return strconv.Itoa(v.Major) + "." + strconv.Itoa(v.Minor) + "." + strconv.Itoa(v.Patch)
	}
	if v.Minor != 0 {
		return strconv.Itoa(v.Major) + "." + strconv.Itoa(v.Minor)
	}
	return strconv.Itoa(v.Major)
}

// lookupGeo returns best-effort Geo data using the global reader.
func lookupGeo(ip net.IP) Geo {
	if geoReader == nil || ip == nil {
		return Geo{IP: ip}
	}
	rec, err := geoReader.City(ip)
	if err != nil {
		return Geo{IP: ip}
	}
	return Geo{
		IP:         ip,
		CountryISO: rec.Country.IsoCode,
		City:       rec.City.Names["en"],
	}
}

// clientIP extracts the remote address without its port.
func clientIP(remoteAddr string) net.IP {
	host := remoteAddr
	if i := strings.LastIndexByte(remoteAddr, ':'); i != -1 {
		host = remoteAddr[:i]
	}
	return net.ParseIP(strings.Trim(host, "[]"))
}
