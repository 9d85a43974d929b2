package analysis

import (
	"fmt"
	"sort"

	"github.com/farmhand-data/scout.report/internal/record"
	"github.com/farmhand-data/scout.report/internal/schema"
)

// aggregateSlices builds bar and pie output. The normal path groups by X
// key and aggregates Y per group. A categorical Y field combined with a
// team number field in the schema switches to the subgrouped shape: bars
// become one row per distinct Y value with a column per team, pie becomes
// one slice per (Y value, team) pair.
func aggregateSlices(chart Chart, records []record.Record, layout *schema.FieldLayout, xe schema.LayoutEntry, ye *schema.LayoutEntry) Result {
	res := Result{Type: chart.Type}

	if isCategorical(ye) {
		if te, ok := findFieldByName(layout, teamNumberField); ok {
			if chart.Type == Bar {
				res.Grouped = categoricalBars(records, ye, te)
			} else {
				res.Slices = categoricalPieSlices(records, ye, te)
			}
			return res
		}
	}

	g := collectSimple(records, xe, ye)
	for _, key := range g.keys {
		res.Slices = append(res.Slices, Slice{
			ID:    key,
			Value: aggregateValues(chart.Aggregation, isCategorical(ye), g.m[key]),
		})
	}
	if chart.Type == Bar {
		sortSlices(res.Slices, chart.SortMode)
	}
	return res
}

func findFieldByName(layout *schema.FieldLayout, name string) (schema.LayoutEntry, bool) {
	for _, e := range layout.Entries() {
		if e.Field.Name == name {
			return e, true
		}
	}
	return schema.LayoutEntry{}, false
}

// categoricalBars counts records per (Y value, team) pair. Rows keep the
// first-encounter order of Y values; the team column keys sort numerically.
// Records without a team value count under the "Unknown" column.
func categoricalBars(records []record.Record, ye *schema.LayoutEntry, te schema.LayoutEntry) *GroupedBars {
	var order []string
	rows := make(map[string]*GroupedRow)
	teamSet := make(map[string]bool)

	for _, r := range records {
		yv := r.ValueAt(ye.Index)
		if yv == nil {
			continue
		}
		category := record.Stringify(yv)
		team := teamKey(r.ValueAt(te.Index))
		row, ok := rows[category]
		if !ok {
			row = &GroupedRow{Category: category, Counts: make(map[string]float64)}
			rows[category] = row
			order = append(order, category)
		}
		row.Counts[team]++
		teamSet[team] = true
	}
	if len(order) == 0 {
		return nil
	}

	keys := make([]string, 0, len(teamSet))
	for team := range teamSet {
		keys = append(keys, team)
	}
	sortNumericAware(keys)

	out := &GroupedBars{Keys: keys, Rows: make([]GroupedRow, 0, len(order))}
	for _, category := range order {
		out.Rows = append(out.Rows, *rows[category])
	}
	return out
}

func teamKey(tv record.Value) string {
	if tv == nil {
		return "Unknown"
	}
	return record.Stringify(tv)
}

// categoricalPieSlices emits one slice per (Y value, team) pair, labeled
// "{value} - Team {team}", in first-encounter order. A missing team value
// labels as team "Unknown".
func categoricalPieSlices(records []record.Record, ye *schema.LayoutEntry, te schema.LayoutEntry) []Slice {
	var order []string
	counts := make(map[string]float64)

	for _, r := range records {
		yv := r.ValueAt(ye.Index)
		if yv == nil {
			continue
		}
		label := fmt.Sprintf("%s - Team %s", record.Stringify(yv), teamKey(r.ValueAt(te.Index)))
		if _, ok := counts[label]; !ok {
			order = append(order, label)
		}
		counts[label]++
	}

	slices := make([]Slice, 0, len(order))
	for _, label := range order {
		slices = append(slices, Slice{ID: label, Value: counts[label]})
	}
	return slices
}

func sortSlices(slices []Slice, mode SortMode) {
	switch mode {
	case SortAscending:
		sort.SliceStable(slices, func(i, j int) bool { return slices[i].Value < slices[j].Value })
	case SortDescending:
		sort.SliceStable(slices, func(i, j int) bool { return slices[i].Value > slices[j].Value })
	}
}
