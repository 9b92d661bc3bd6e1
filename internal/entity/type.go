// internal/entity/type.go
//
// Entity types and their field registries.
//
// Context
//   A Type models one recurring entity kind of the organization (the
//   rotating board, a chapter, a house).  It is constructed once at boot
//   from a static definition in internal/org, owns an ordered field
//   registry, and carries the human error table that validation codes
//   resolve against.  Insertion order of fields drives column and input
//   rendering order, so the registry preserves it.
//
// Style
//   Full sentences, two spaces after periods, Oxford commas.

package entity

import (
	"fmt"
	"regexp"

	"go.uber.org/zap"
)

// nameRe restricts type names to lowercase alphanumerics and underscores.
var nameRe = regexp.MustCompile(`^[a-z0-9_]+$`)

// Type is one entity type.  Immutable after boot except for nothing at
// all; the lazily-resolved parent reference lives in internal/ancestry.
type Type struct {
	Name       string // Unique key, `^[a-z0-9_]+$`.
	Collection string // Backing record-collection name.
	Singular   string // Human-readable singular label.
	Plural     string // Human-readable plural label.
	HasArchive bool   // True when records may carry the archived state.

	fields []Field
	index  map[string]int

	// Errors maps validation codes onto human-readable messages.  Field
	// names inside messages are wrapped in <strong> by convention.
	Errors map[int]string
}

// NewType validates the name and returns an empty type.  Construction
// fails on a name outside the restricted character set.
func NewType(name, collection, singular, plural string) (*Type, error) {
	if !nameRe.MatchString(name) {
		return nil, fmt.Errorf("entity: invalid type name %q", name)
	}
	return &Type{
		Name:       name,
		Collection: collection,
		Singular:   singular,
		Plural:     plural,
		index:      make(map[string]int),
		Errors:     make(map[int]string),
	}, nil
}

// RegisterField appends a descriptor to the registry.  It fails on a key
// collision.  A PairWith reference must name a field registered earlier;
// a forward reference is tolerated but logged, because rendering of the
// paired input will silently omit the addition field.
func (t *Type) RegisterField(f Field) error {
	if f.Key == "" {
		return fmt.Errorf("entity: type %s: field missing key", t.Name)
	}
	if _, dup := t.index[f.Key]; dup {
		return fmt.Errorf("entity: type %s: duplicate field key %q", t.Name, f.Key)
	}
	if f.Column == "" {
		f.Column = f.Label
	}
	if f.Store == "" {
		f.Store = f.Key
	}
	if f.PairWith != "" {
		if _, ok := t.index[f.PairWith]; !ok {
			zap.S().Warnw("pair_with references a field not yet registered",
				"type", t.Name, "field", f.Key, "pair_with", f.PairWith)
		}
	}

	t.index[f.Key] = len(t.fields)
	t.fields = append(t.fields, f)
	return nil
}

// Field returns the descriptor for key.  The boolean is false when the key
// is unknown.
func (t *Type) Field(key string) (Field, bool) {
	i, ok := t.index[key]
	if !ok {
		return Field{}, false
	}
	return t.fields[i], true
}

// Fields returns all descriptors in insertion order.  Callers must treat
// the slice as read-only.
func (t *Type) Fields() []Field {
	return t.fields
}

// Message resolves a validation code against the error table.  Unknown
// codes yield a generic message instead of an empty string.
func (t *Type) Message(code int) string {
	if m, ok := t.Errors[code]; ok {
		return m
	}
	return "Invalid input."
}
