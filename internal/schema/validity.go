package schema

import "strings"

// FieldInvalid reports whether a field's current value fails its "required"
// contract. It is the single validity rule for every field type.
//
// Only four emptiness conditions exist: the empty string, an unchecked
// checkbox, a nil number, and a grid with no checked cells. Counter, slider,
// timer and dropdown values have no semantic-emptiness check beyond string
// equality to "" — a counter at 0, a slider range of [0,0] and the dropdown
// placeholder all satisfy a required field. The string literal "[]" is a
// perfectly valid text value; only grid values are parsed for emptiness.
func FieldInvalid(required bool, t FieldType, v any) bool {
	if !required {
		return false
	}
	if s, ok := v.(string); ok && s == "" {
		return true
	}
	switch t {
	case FieldCheckbox:
		if b, ok := v.(bool); ok && !b {
			return true
		}
	case FieldNumber:
		if v == nil {
			return true
		}
	case FieldGrid:
		if s, ok := v.(string); ok && gridEmpty(s) {
			return true
		}
	}
	return false
}

// gridEmpty reports whether a grid value string has no checked indices. A
// value with no bracketed index list at all counts as empty.
func gridEmpty(s string) bool {
	open := strings.IndexByte(s, '[')
	end := strings.LastIndexByte(s, ']')
	if open == -1 || end < open {
		return true
	}
	return strings.TrimSpace(s[open+1:end]) == ""
}
