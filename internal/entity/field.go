// internal/entity/field.go
//
// Metadata field descriptors.
//
// Context
//   Every entity type owns an ordered list of Field descriptors.  A Field
//   says where the raw value lives (a meta key, or the record's dedicated
//   ordering slot), which Kind governs its parsing and formatting, and how
//   the admin list and detail views label it.  Descriptors are defined once
//   at boot by internal/org and never mutated afterwards.
//
// Style
//   Comments follow the house guide: full sentences, two spaces after
//   periods, Oxford commas.

package entity

// Field describes a single metadata field of an entity type.  Validation
// and formatting behaviour is driven entirely by Kind via the strategy
// table in kind.go.
type Field struct {
	Key      string // Unique within the owning type.  Required.
	Label    string // Human-readable label for detail views.  Required.
	Column   string // Column title for admin list tables.  Defaults to Label.
	Store    string // Storage name: meta key, or OrderingSlot for the dedicated slot.
	Kind     Kind   // Semantic kind.  Unrecognized kinds behave as text.
	Display  bool   // True when the field appears in the public detail block.
	PairWith string // Key of an address-addition field shown inline, optional.
	ErrorCode int   // Code reported against the type's error table on rejection.
}

// OrderingSlot is the well-known storage name that maps a field onto the
// record's dedicated ordering attribute instead of the meta store.
const OrderingSlot = "ordering"
