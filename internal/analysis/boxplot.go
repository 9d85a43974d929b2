package analysis

import (
	"sort"

	"github.com/farmhand-data/scout.report/internal/record"
	"github.com/farmhand-data/scout.report/internal/schema"
)

// aggregateBoxplot emits flat {group, value} points with no pre-aggregation;
// quartile computation belongs to the renderer. Range-slider values expand
// into every discrete step between their endpoints so a [0,10] range with
// step 5 contributes the points 0, 5 and 10. The attached value range pads
// the overall span by 5% on each side, at least one unit, for axis scaling.
func aggregateBoxplot(chart Chart, g *groupedValues, ye *schema.LayoutEntry) Result {
	res := Result{Type: BoxPlot}

	step := 1.0
	if isRangeSlider(ye) && ye.Field.Props.Step > 0 {
		step = ye.Field.Props.Step
	}

	groupPoints := make(map[string][]float64, len(g.keys))
	var all []float64
	for _, key := range g.keys {
		for _, v := range g.m[key] {
			for _, f := range boxValues(v, step) {
				groupPoints[key] = append(groupPoints[key], f)
				all = append(all, f)
			}
		}
	}
	if len(all) == 0 {
		return res
	}

	keys := make([]string, 0, len(g.keys))
	for _, key := range g.keys {
		if len(groupPoints[key]) > 0 {
			keys = append(keys, key)
		}
	}
	sortGroupsByMedian(keys, groupPoints, chart.SortMode)

	for _, key := range keys {
		for _, f := range groupPoints[key] {
			res.Box = append(res.Box, BoxPoint{Group: key, Value: f})
		}
	}
	res.BoxRange = paddedRange(all)
	return res
}

// boxValues flattens one collected Y value into its contributing points. A
// range tuple expands stepwise inclusive of both ends, normalizing a
// reversed pair first; anything else contributes its numeric coercion or
// nothing.
func boxValues(v record.Value, step float64) []float64 {
	if r, ok := v.([2]float64); ok {
		lo, hi := r[0], r[1]
		if lo > hi {
			lo, hi = hi, lo
		}
		var out []float64
		for x := lo; x <= hi+step/1e6; x += step {
			out = append(out, x)
		}
		return out
	}
	if f, ok := record.ToNumber(v); ok {
		return []float64{f}
	}
	return nil
}

// sortGroupsByMedian reorders group keys by the median of their values.
// None keeps encounter order.
func sortGroupsByMedian(keys []string, points map[string][]float64, mode SortMode) {
	if mode != SortAscending && mode != SortDescending {
		return
	}
	medians := make(map[string]float64, len(keys))
	for _, key := range keys {
		medians[key] = median(points[key])
	}
	sort.SliceStable(keys, func(i, j int) bool {
		if mode == SortAscending {
			return medians[keys[i]] < medians[keys[j]]
		}
		return medians[keys[i]] > medians[keys[j]]
	})
}

func paddedRange(values []float64) *ValueRange {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	pad := (hi - lo) * 0.05
	if pad < 1 {
		pad = 1
	}
	return &ValueRange{Min: lo - pad, Max: hi + pad}
}
