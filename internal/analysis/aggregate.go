package analysis

import (
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/farmhand-data/scout.report/internal/record"
	"github.com/farmhand-data/scout.report/internal/schema"
)

// Field names with engine-level meaning: line charts auto-group one series
// per team when scouting match schemas, and categorical bar/pie output
// subgroups by team.
const (
	teamNumberField  = "Team Number"
	matchNumberField = "Match Number"
)

// Aggregate turns a chart configuration and a set of decoded records into
// chart-ready output. It is pure: safe to invoke repeatedly and redundantly
// on every input change. Configuration errors (an unresolvable X axis, a
// heatmap without a grid Y field) yield an empty result, never an error;
// per-value parse failures drop the offending value from its aggregate.
//
// Records tagged with a schema hash different from s's hash are excluded;
// records with no hash are assumed to belong to s.
func Aggregate(chart Chart, records []record.Record, s *schema.Schema) Result {
	res := Result{Type: chart.Type}
	if s == nil || len(records) == 0 {
		return res
	}

	layout := schema.NewLayout(s)

	xe, ok := layout.Resolve(chart.XAxis)
	if !ok {
		return res
	}
	// An unresolvable Y axis behaves exactly like no Y axis: each record
	// contributes the constant 1, supporting count-style charts.
	var ye *schema.LayoutEntry
	if chart.YAxis != "" {
		if e, found := layout.Resolve(chart.YAxis); found {
			ye = &e
		}
	}

	if hash, err := s.Hash(); err == nil {
		records = filterBySchemaHash(records, hash)
	}

	switch chart.Type {
	case HeatMap:
		return aggregateHeatmap(chart, records, layout, xe, ye)
	case BoxPlot:
		grouped := collectSimple(records, xe, ye)
		return aggregateBoxplot(chart, grouped, ye)
	case Line, Scatter:
		ge := resolveGroupBy(chart, layout, xe)
		if ge != nil {
			nested := collectGrouped(records, xe, ye, ge)
			return aggregateGroupedSeries(chart, nested, ye)
		}
		grouped := collectSimple(records, xe, ye)
		return aggregateSimpleSeries(chart, grouped, ye)
	default: // bar, pie
		return aggregateSlices(chart, records, layout, xe, ye)
	}
}

func filterBySchemaHash(records []record.Record, hash string) []record.Record {
	kept := make([]record.Record, 0, len(records))
	for _, r := range records {
		if r.SchemaHash == "" || r.SchemaHash == hash {
			kept = append(kept, r)
		}
	}
	return kept
}

// resolveGroupBy determines the grouping field for line/scatter charts. An
// explicit groupBy wins when it carries a section qualifier; otherwise line
// charts (always) and scatter charts (only when X is literally the match
// number field) fall back to grouping by the team number field if the
// schema has one, producing one series per team.
func resolveGroupBy(chart Chart, layout *schema.FieldLayout, xe schema.LayoutEntry) *schema.LayoutEntry {
	if chart.GroupBy != "" {
		parts := strings.Split(chart.GroupBy, " - ")
		if len(parts) == 2 {
			for _, e := range layout.Entries() {
				if e.Field.Name == parts[1] && e.Section == parts[0] {
					entry := e
					return &entry
				}
			}
		}
		return nil
	}
	if chart.Type == Line || (chart.Type == Scatter && xe.Field.Name == matchNumberField) {
		for _, e := range layout.Entries() {
			if e.Field.Name == teamNumberField {
				entry := e
				return &entry
			}
		}
	}
	return nil
}

// xGroupKey stringifies an X value into its group key. Checkbox values go
// through boolean coercion first so 1, "true" and true collapse to the same
// key.
func xGroupKey(xe schema.LayoutEntry, v record.Value) string {
	if xe.Field.Type == schema.FieldCheckbox {
		return strconv.FormatBool(record.Truthy(v))
	}
	return record.Stringify(v)
}

// decodeY decodes a record's raw Y value per the Y field's type. With no Y
// field every record contributes the constant 1; with one, a nil value is
// dropped. The second return is false when the value must be dropped from
// the aggregate.
func decodeY(ye *schema.LayoutEntry, raw record.Value) (record.Value, bool) {
	if ye == nil {
		return float64(1), true
	}
	if raw == nil {
		return nil, false
	}
	if isRangeSlider(ye) {
		if r, ok := record.ParseRange(raw); ok {
			return r, true
		}
		return nil, false
	}
	switch ye.Field.Type {
	case schema.FieldTimer:
		return record.ParseTimer(record.Stringify(raw)), true
	case schema.FieldGrid:
		return float64(record.GridCellCount(record.Stringify(raw))), true
	case schema.FieldCheckbox:
		if record.Truthy(raw) {
			return float64(1), true
		}
		return float64(0), true
	case schema.FieldText, schema.FieldDropdown:
		return record.Stringify(raw), true
	default:
		if n, ok := record.ToNumber(raw); ok {
			return n, true
		}
		return nil, false
	}
}

func isRangeSlider(ye *schema.LayoutEntry) bool {
	return ye != nil && ye.Field.Type == schema.FieldSlider && ye.Field.Props.SelectsRange
}

// isCategorical reports whether the Y field holds free-form categorical
// strings, which forces count aggregation regardless of configuration.
func isCategorical(ye *schema.LayoutEntry) bool {
	return ye != nil && (ye.Field.Type == schema.FieldText || ye.Field.Type == schema.FieldDropdown)
}

// groupedValues is a string-keyed multimap preserving first-encounter key
// order, the natural output order when no sort mode applies.
type groupedValues struct {
	keys []string
	m    map[string][]record.Value
}

func newGroupedValues() *groupedValues {
	return &groupedValues{m: make(map[string][]record.Value)}
}

func (g *groupedValues) add(key string, v record.Value) {
	if _, ok := g.m[key]; !ok {
		g.keys = append(g.keys, key)
	}
	g.m[key] = append(g.m[key], v)
}

// collectSimple buckets each record's decoded Y value under its X group
// key. Records with no X value are skipped entirely.
func collectSimple(records []record.Record, xe schema.LayoutEntry, ye *schema.LayoutEntry) *groupedValues {
	g := newGroupedValues()
	for _, r := range records {
		xv := r.ValueAt(xe.Index)
		if xv == nil {
			continue
		}
		yv, ok := decodeYValue(r, ye)
		if !ok {
			continue
		}
		g.add(xGroupKey(xe, xv), yv)
	}
	return g
}

func decodeYValue(r record.Record, ye *schema.LayoutEntry) (record.Value, bool) {
	if ye == nil {
		return float64(1), true
	}
	return decodeY(ye, r.ValueAt(ye.Index))
}

// nestedGroups buckets values two levels deep: group key, then X key.
type nestedGroups struct {
	keys []string
	m    map[string]*groupedValues
}

func collectGrouped(records []record.Record, xe schema.LayoutEntry, ye, ge *schema.LayoutEntry) *nestedGroups {
	n := &nestedGroups{m: make(map[string]*groupedValues)}
	for _, r := range records {
		xv := r.ValueAt(xe.Index)
		if xv == nil {
			continue
		}
		gv := r.ValueAt(ge.Index)
		if gv == nil {
			continue
		}
		yv, ok := decodeYValue(r, ye)
		if !ok {
			continue
		}
		groupKey := record.Stringify(gv)
		inner, exists := n.m[groupKey]
		if !exists {
			inner = newGroupedValues()
			n.m[groupKey] = inner
			n.keys = append(n.keys, groupKey)
		}
		inner.add(xGroupKey(xe, xv), yv)
	}
	return n
}

// aggregateValues applies the aggregation function to a group's collected
// values. Categorical groups always count, regardless of configuration.
// Count includes every collected value; the numeric aggregations consider
// only the values that coerce to numbers and yield 0 when none do. An unset
// aggregation averages.
func aggregateValues(agg Aggregation, categorical bool, values []record.Value) float64 {
	if categorical {
		return float64(len(values))
	}
	if agg == "" {
		agg = Average
	}
	var nums []float64
	for _, v := range values {
		if n, ok := record.ToNumber(v); ok {
			nums = append(nums, n)
		}
	}
	if agg == Count {
		return float64(len(values))
	}
	if len(nums) == 0 {
		return 0
	}
	switch agg {
	case Sum:
		return floatsSum(nums)
	case Average:
		return stat.Mean(nums, nil)
	case Min:
		m := nums[0]
		for _, n := range nums[1:] {
			if n < m {
				m = n
			}
		}
		return m
	case Max:
		m := nums[0]
		for _, n := range nums[1:] {
			if n > m {
				m = n
			}
		}
		return m
	}
	return 0
}

func floatsSum(nums []float64) float64 {
	s := 0.0
	for _, n := range nums {
		s += n
	}
	return s
}

// numericOrKey converts a group key to a float64 X value when it parses as
// a finite number, keeping the string otherwise so categorical X axes sort
// lexicographically.
func numericOrKey(key string) any {
	if f, err := strconv.ParseFloat(key, 64); err == nil {
		return f
	}
	return key
}

func lessX(a, b any) bool {
	af, aok := record.ToNumber(a)
	bf, bok := record.ToNumber(b)
	if aok && bok {
		return af < bf
	}
	return record.Stringify(a) < record.Stringify(b)
}

// median is the sorted-array midpoint, averaging the two middle elements
// for even counts.
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return stat.Quantile(0.5, stat.LinInterp, sorted, nil)
}

func sortNumericAware(keys []string) {
	sort.SliceStable(keys, func(i, j int) bool {
		a, errA := strconv.ParseFloat(keys[i], 64)
		b, errB := strconv.ParseFloat(keys[j], 64)
		if errA == nil && errB == nil {
			return a < b
		}
		return keys[i] < keys[j]
	})
}
