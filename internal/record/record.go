// Package record maps sparse field-id keyed form data onto the dense
// positional arrays used for transfer, and parses the string encodings that
// several field types use at rest.
//
// A record's data array is positional: data[i] holds the value for absolute
// field index i of the schema the record was captured against. Chart axis
// lookups resolve fields by section/field name instead, which survives
// schema reordering while positional arrays do not. Reordering a schema
// after data has been collected therefore silently misaligns old records;
// callers guard against cross-schema confusion with the schema hash, not
// against reordering of the same schema.
package record

import (
	"github.com/farmhand-data/scout.report/internal/schema"
)

// Value is a single field value. Its concrete type depends on the field
// type: bool for checkboxes, string for text/dropdown/timer/grid, float64
// for numeric fields, []float64 for range sliders. Values decoded from JSON
// arrive as bool, string, float64, []any or nil.
type Value = any

// Record is a decoded scouting submission.
type Record struct {
	ID         string  `json:"id,omitempty"`
	SchemaHash string  `json:"schemaHash"`
	DeviceID   int     `json:"deviceId,omitempty"`
	Data       []Value `json:"data"`
}

// Encode walks the layout in absolute index order and emits the value for
// each field id at its positional slot. Fields absent from valuesByID encode
// as nil. The output length always equals the layout's field count.
func Encode(layout *schema.FieldLayout, valuesByID map[schema.FieldID]Value) []Value {
	data := make([]Value, layout.Len())
	for _, e := range layout.Entries() {
		if v, ok := valuesByID[e.Field.ID]; ok {
			data[e.Index] = v
		}
	}
	return data
}

// Decode is the inverse of Encode: it assigns data[i] to the field id at
// absolute index i. A data array shorter than the layout (a record from an
// older schema revision) decodes cleanly with the missing trailing fields
// absent from the result.
func Decode(layout *schema.FieldLayout, data []Value) map[schema.FieldID]Value {
	values := make(map[schema.FieldID]Value, len(data))
	for _, e := range layout.Entries() {
		if e.Index >= len(data) {
			break
		}
		values[e.Field.ID] = data[e.Index]
	}
	return values
}

// ValueAt returns the record's value at the given absolute field index, or
// nil if the data array does not reach it.
func (r *Record) ValueAt(index int) Value {
	if index < 0 || index >= len(r.Data) {
		return nil
	}
	return r.Data[index]
}
