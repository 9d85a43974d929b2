package schema

import "fmt"

const (
	defaultSliderMin = 0
	defaultSliderMax = 25
	defaultGridRows  = 3
	defaultGridCols  = 3

	// DropdownPlaceholder is the unselected state of a dropdown or
	// multiple-choice field. It intentionally survives into collected data
	// when a non-required field is never touched.
	DropdownPlaceholder = "Select an option..."
)

// EmptyValue computes a field's empty-state value: what the form shows (and
// validates) before the user has entered anything and no persisted value
// exists. A configured props.default always wins.
func EmptyValue(f Field) any {
	if f.Props.Default != nil {
		return f.Props.Default
	}
	switch f.Type {
	case FieldCheckbox:
		return false
	case FieldText:
		return ""
	case FieldDropdown, FieldMultipleChoice:
		return DropdownPlaceholder
	case FieldNumber:
		return nil
	case FieldCounter:
		return float64(0)
	case FieldSlider:
		min := float64(defaultSliderMin)
		max := float64(defaultSliderMax)
		if f.Props.Min != nil {
			min = *f.Props.Min
		}
		if f.Props.Max != nil {
			max = *f.Props.Max
		}
		if f.Props.SelectsRange {
			return []float64{min, max}
		}
		return min
	case FieldTimer:
		return "0.0"
	case FieldGrid:
		rows, cols := f.GridSize()
		return fmt.Sprintf("%dx%d:[]", rows, cols)
	}
	// filler and unknown types have no value
	return nil
}

// GridSize returns the configured grid dimensions, falling back to 3x3.
func (f Field) GridSize() (rows, cols int) {
	rows, cols = defaultGridRows, defaultGridCols
	if f.Props.Rows > 0 {
		rows = f.Props.Rows
	}
	if f.Props.Cols > 0 {
		cols = f.Props.Cols
	}
	return rows, cols
}
