package analysis

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/farmhand-data/scout.report/internal/schema"
)

// aggregateSimpleSeries builds the single-series line/scatter shape: one
// point per X group, aggregated with the configured function, sorted
// ascending by X.
func aggregateSimpleSeries(chart Chart, g *groupedValues, ye *schema.LayoutEntry) Result {
	res := Result{Type: chart.Type}
	if len(g.keys) == 0 {
		return res
	}
	res.Series = []Series{buildSeries(seriesLabel(chart), chart, g, ye)}
	return res
}

// aggregateGroupedSeries emits one series per group key, each built and
// sorted like the simple shape. With no sort mode the series keep
// first-encounter order; ascending and descending order them by the mean of
// their point Y values.
func aggregateGroupedSeries(chart Chart, n *nestedGroups, ye *schema.LayoutEntry) Result {
	res := Result{Type: chart.Type}
	for _, key := range n.keys {
		res.Series = append(res.Series, buildSeries(key, chart, n.m[key], ye))
	}
	sortSeriesByMean(res.Series, chart.SortMode)
	return res
}

func sortSeriesByMean(series []Series, mode SortMode) {
	if mode != SortAscending && mode != SortDescending {
		return
	}
	means := make(map[string]float64, len(series))
	for _, s := range series {
		ys := make([]float64, len(s.Points))
		for j, p := range s.Points {
			ys[j] = p.Y
		}
		if len(ys) > 0 {
			means[s.ID] = stat.Mean(ys, nil)
		}
	}
	sort.SliceStable(series, func(i, j int) bool {
		if mode == SortAscending {
			return means[series[i].ID] < means[series[j].ID]
		}
		return means[series[i].ID] > means[series[j].ID]
	})
}

func buildSeries(id string, chart Chart, g *groupedValues, ye *schema.LayoutEntry) Series {
	points := make([]SeriesPoint, 0, len(g.keys))
	for _, key := range g.keys {
		points = append(points, SeriesPoint{
			X: numericOrKey(key),
			Y: aggregateValues(chart.Aggregation, isCategorical(ye), g.m[key]),
		})
	}
	sort.SliceStable(points, func(i, j int) bool { return lessX(points[i].X, points[j].X) })
	return Series{ID: id, Points: points}
}

// seriesLabel names the single series of an ungrouped chart after the chart
// itself, falling back to a generic label for unnamed charts.
func seriesLabel(chart Chart) string {
	if chart.Name != "" {
		return chart.Name
	}
	return "data"
}
