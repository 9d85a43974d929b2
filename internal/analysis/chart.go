// Package analysis transforms collections of decoded scouting records into
// chart-ready series: grouping, aggregation, range expansion and the
// chart-type-specific decompositions the rendering layer consumes.
package analysis

// ChartType selects the output shape of an aggregation.
type ChartType string

const (
	Bar     ChartType = "bar"
	Line    ChartType = "line"
	Pie     ChartType = "pie"
	Scatter ChartType = "scatter"
	BoxPlot ChartType = "boxplot"
	HeatMap ChartType = "heatmap"
)

// Aggregation is the function applied to each group's collected values.
type Aggregation string

const (
	Sum     Aggregation = "sum"
	Average Aggregation = "average"
	Count   Aggregation = "count"
	Min     Aggregation = "min"
	Max     Aggregation = "max"
)

// SortMode orders chart output by aggregate value (bar), group median
// (boxplot) or per-series mean (line/scatter). None preserves the order in
// which groups were first encountered.
type SortMode string

const (
	SortNone       SortMode = "none"
	SortAscending  SortMode = "ascending"
	SortDescending SortMode = "descending"
)

// Chart is a saved chart configuration. Axis and groupBy references are
// "Section Title - Field Name" strings; the legacy form is a bare field
// name matched against any section.
type Chart struct {
	ID                  string      `json:"id"`
	Name                string      `json:"name"`
	Type                ChartType   `json:"type"`
	XAxis               string      `json:"xAxis"`
	YAxis               string      `json:"yAxis,omitempty"`
	GroupBy             string      `json:"groupBy,omitempty"`
	Aggregation         Aggregation `json:"aggregation,omitempty"`
	SortMode            SortMode    `json:"sortMode,omitempty"`
	LinearInterpolation bool        `json:"linearInterpolation,omitempty"`
	ColorScheme         string      `json:"colorScheme,omitempty"`
}

// Slice is one bar or pie slice: a group key and its aggregated value.
type Slice struct {
	ID    string  `json:"id"`
	Value float64 `json:"value"`
}

// GroupedBars is the categorical-Y bar shape: one row per distinct Y value
// with one numeric column per subgroup key.
type GroupedBars struct {
	// Keys are the subgroup column keys, sorted numerically where possible.
	Keys []string     `json:"keys"`
	Rows []GroupedRow `json:"rows"`
}

// GroupedRow is one category row of a GroupedBars result.
type GroupedRow struct {
	Category string             `json:"category"`
	Counts   map[string]float64 `json:"counts"`
}

// SeriesPoint is one point of a line, scatter or heatmap series. X is a
// float64 when the group key parses as a number, otherwise a string.
type SeriesPoint struct {
	X any     `json:"x"`
	Y float64 `json:"y"`
}

// Series is a named sequence of points.
type Series struct {
	ID     string        `json:"id"`
	Points []SeriesPoint `json:"points"`
}

// BoxPoint is a single contributing value of a boxplot group. Points are
// deliberately not pre-aggregated; quartile computation happens downstream.
type BoxPoint struct {
	Group string  `json:"group"`
	Value float64 `json:"value"`
}

// ValueRange is the padded min/max attached to boxplot output for axis
// scaling.
type ValueRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// HeatDims records the grid dimensions a heatmap result was built against.
type HeatDims struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// Result is the chart-ready output of Aggregate. Exactly the fields
// relevant to the chart type are populated; an unresolvable configuration
// yields a Result that IsEmpty. Heatmap output reuses Series: one series
// per group, one point per canonical "row,col" cell.
type Result struct {
	Type     ChartType    `json:"type"`
	Slices   []Slice      `json:"slices,omitempty"`
	Grouped  *GroupedBars `json:"grouped,omitempty"`
	Series   []Series     `json:"series,omitempty"`
	Box      []BoxPoint   `json:"box,omitempty"`
	BoxRange *ValueRange  `json:"boxRange,omitempty"`
	HeatDims *HeatDims    `json:"heatDims,omitempty"`
}

// IsEmpty reports whether the result carries no chart data at all.
func (r Result) IsEmpty() bool {
	return len(r.Slices) == 0 && r.Grouped == nil && len(r.Series) == 0 && len(r.Box) == 0
}
