// Package schema defines the shape of a scouting form: sections, fields,
// field types and per-type configuration, plus the positional layout used
// to encode submissions for transfer.
package schema

import (
	"strings"
)

// FieldID is the stable identity key for a field. It must be unique across
// the whole schema, not just within a section, because persisted form values
// and encoded records are keyed by it.
type FieldID int

// FieldType enumerates the closed set of field variants. Value decoding and
// validation dispatch exhaustively on this type; adding a variant means
// touching each switch that consumes it.
type FieldType string

const (
	FieldText           FieldType = "text"
	FieldCounter        FieldType = "counter"
	FieldDropdown       FieldType = "dropdown"
	FieldCheckbox       FieldType = "checkbox"
	FieldNumber         FieldType = "number"
	FieldSlider         FieldType = "slider"
	FieldTimer          FieldType = "timer"
	FieldGrid           FieldType = "grid"
	FieldMultipleChoice FieldType = "multiplechoice"
	// FieldFiller renders nothing and never participates in validation
	// or data collection.
	FieldFiller FieldType = "filler"
)

// Types lists every field type in declaration order.
func Types() []FieldType {
	return []FieldType{
		FieldText, FieldCounter, FieldDropdown, FieldCheckbox, FieldNumber,
		FieldSlider, FieldTimer, FieldGrid, FieldMultipleChoice, FieldFiller,
	}
}

// Valid reports whether t is one of the known field types.
func (t FieldType) Valid() bool {
	switch t {
	case FieldText, FieldCounter, FieldDropdown, FieldCheckbox, FieldNumber,
		FieldSlider, FieldTimer, FieldGrid, FieldMultipleChoice, FieldFiller:
		return true
	}
	return false
}

// FieldProps is the type-dependent configuration bag for a field. Only the
// entries relevant to the field's type are consulted.
type FieldProps struct {
	Default      any      `json:"default,omitempty"`
	Options      []string `json:"options,omitempty"`      // dropdown, multiplechoice
	Min          *float64 `json:"min,omitempty"`          // counter, number, slider
	Max          *float64 `json:"max,omitempty"`          // counter, number, slider
	Multiline    bool     `json:"multiline,omitempty"`    // text
	SelectsRange bool     `json:"selectsRange,omitempty"` // slider
	Step         float64  `json:"step,omitempty"`         // slider
	Rows         int      `json:"rows,omitempty"`         // grid
	Cols         int      `json:"cols,omitempty"`         // grid
	CellLabel    string   `json:"cellLabel,omitempty"`    // grid
	Label        string   `json:"label,omitempty"`
}

// Field is a single form component.
type Field struct {
	ID       FieldID    `json:"id"`
	Name     string     `json:"name"`
	Type     FieldType  `json:"type"`
	Required bool       `json:"required,omitempty"`
	Props    FieldProps `json:"props,omitempty"`
}

// Section is an ordered list of fields grouped under a heading.
type Section struct {
	Title  string  `json:"title"`
	Fields []Field `json:"fields"`
}

// Schema is a named, ordered collection of sections.
type Schema struct {
	Name     string    `json:"name"`
	Sections []Section `json:"sections"`
}

// FieldCount returns the total number of fields across all sections.
func (s *Schema) FieldCount() int {
	n := 0
	for _, sec := range s.Sections {
		n += len(sec.Fields)
	}
	return n
}

// LayoutEntry is one field's position in a schema's flattened field order.
type LayoutEntry struct {
	Field   Field
	Section string
	// Index is the absolute field index: the 0-based position of the field
	// when all sections' fields are concatenated in schema order.
	Index int
}

// FieldLayout is the positional layout of a schema, computed once and passed
// wherever positional encode/decode or axis lookup happens. The layout is
// only meaningful for the exact section/field ordering it was computed from:
// reordering a schema invalidates the field alignment of previously encoded
// records. That limitation is deliberate and matches the wire format.
type FieldLayout struct {
	entries []LayoutEntry
	byID    map[FieldID]int
}

// NewLayout flattens the schema's sections into an absolute field order.
func NewLayout(s *Schema) *FieldLayout {
	l := &FieldLayout{byID: make(map[FieldID]int)}
	idx := 0
	for _, sec := range s.Sections {
		for _, f := range sec.Fields {
			l.entries = append(l.entries, LayoutEntry{Field: f, Section: sec.Title, Index: idx})
			if _, dup := l.byID[f.ID]; !dup {
				l.byID[f.ID] = idx
			}
			idx++
		}
	}
	return l
}

// Len returns the number of fields in the layout.
func (l *FieldLayout) Len() int { return len(l.entries) }

// Entries returns all layout entries in absolute index order.
func (l *FieldLayout) Entries() []LayoutEntry { return l.entries }

// At returns the entry at absolute field index i.
func (l *FieldLayout) At(i int) LayoutEntry { return l.entries[i] }

// IndexOf returns the absolute index of the field with the given id.
func (l *FieldLayout) IndexOf(id FieldID) (int, bool) {
	i, ok := l.byID[id]
	return i, ok
}

// Resolve maps a field reference of the form "Section Title - Field Name" to
// its layout entry. A bare reference with no " - " separator (the legacy
// form) matches the first field with that name in any section. Scan order is
// section order then field order; the first match wins.
func (l *FieldLayout) Resolve(ref string) (LayoutEntry, bool) {
	if ref == "" {
		return LayoutEntry{}, false
	}
	section, name := SplitFieldRef(ref)
	for _, e := range l.entries {
		if e.Field.Name != name {
			continue
		}
		if section == "" || e.Section == section {
			return e, true
		}
	}
	return LayoutEntry{}, false
}

// SplitFieldRef splits a "Section Title - Field Name" reference. Anything
// that does not split into exactly two parts is treated as a bare field name
// with no section qualifier.
func SplitFieldRef(ref string) (section, name string) {
	parts := strings.Split(ref, " - ")
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return "", ref
}

// FieldRef builds the canonical "Section Title - Field Name" reference for a
// layout entry.
func (e LayoutEntry) FieldRef() string {
	return e.Section + " - " + e.Field.Name
}
