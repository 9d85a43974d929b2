package analysis

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/farmhand-data/scout.report/internal/record"
	"github.com/farmhand-data/scout.report/internal/schema"
)

func matchSchema(t *testing.T) *schema.Schema {
	t.Helper()
	return &schema.Schema{
		Name: "Match Scouting",
		Sections: []schema.Section{
			{
				Title: "Prematch",
				Fields: []schema.Field{
					{ID: 0, Name: "Team Number", Type: schema.FieldNumber},
					{ID: 1, Name: "Match Number", Type: schema.FieldNumber},
				},
			},
			{
				Title: "Teleop",
				Fields: []schema.Field{
					{ID: 2, Name: "Score", Type: schema.FieldCounter},
					{ID: 3, Name: "Climb", Type: schema.FieldDropdown, Props: schema.FieldProps{Options: []string{"None", "Low", "High"}}},
					{ID: 4, Name: "Cycle Time", Type: schema.FieldTimer},
					{ID: 5, Name: "Pickup Zone", Type: schema.FieldGrid, Props: schema.FieldProps{Rows: 2, Cols: 2}},
					{ID: 6, Name: "Range", Type: schema.FieldSlider, Props: schema.FieldProps{SelectsRange: true, Step: 5}},
				},
			},
		},
	}
}

func rec(t *testing.T, s *schema.Schema, data ...record.Value) record.Record {
	t.Helper()
	hash, err := s.Hash()
	if err != nil {
		t.Fatalf("hash schema: %v", err)
	}
	return record.Record{SchemaHash: hash, Data: data}
}

func TestAggregateBarAverage(t *testing.T) {
	s := matchSchema(t)
	records := []record.Record{
		rec(t, s, float64(118), float64(1), float64(10), nil, nil, nil, nil),
		rec(t, s, float64(118), float64(2), float64(20), nil, nil, nil, nil),
		rec(t, s, float64(254), float64(1), float64(5), nil, nil, nil, nil),
	}
	got := Aggregate(Chart{
		Type:        Bar,
		XAxis:       "Team Number",
		YAxis:       "Score",
		Aggregation: Average,
	}, records, s)

	want := []Slice{{ID: "118", Value: 15}, {ID: "254", Value: 5}}
	if diff := cmp.Diff(want, got.Slices); diff != "" {
		t.Errorf("slices mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateBarSortDescending(t *testing.T) {
	s := matchSchema(t)
	records := []record.Record{
		rec(t, s, float64(118), float64(1), float64(10), nil, nil, nil, nil),
		rec(t, s, float64(254), float64(1), float64(30), nil, nil, nil, nil),
		rec(t, s, float64(973), float64(1), float64(20), nil, nil, nil, nil),
	}
	got := Aggregate(Chart{
		Type:        Bar,
		XAxis:       "Team Number",
		YAxis:       "Score",
		Aggregation: Sum,
		SortMode:    SortDescending,
	}, records, s)

	want := []Slice{{ID: "254", Value: 30}, {ID: "973", Value: 20}, {ID: "118", Value: 10}}
	if diff := cmp.Diff(want, got.Slices); diff != "" {
		t.Errorf("slices mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateUnresolvableXAxisEmpty(t *testing.T) {
	s := matchSchema(t)
	records := []record.Record{
		rec(t, s, float64(118), float64(1), float64(10), nil, nil, nil, nil),
	}
	got := Aggregate(Chart{Type: Bar, XAxis: "No Such Field", YAxis: "Score"}, records, s)
	if !got.IsEmpty() {
		t.Errorf("expected empty result for unresolvable x axis, got %+v", got)
	}
}

func TestAggregateCategoricalForcesCount(t *testing.T) {
	// Without a team number field the subgrouped shape cannot engage, so
	// the plain slice path must count despite the configured sum.
	s := &schema.Schema{
		Name: "Pit Scouting",
		Sections: []schema.Section{{
			Title: "Pit",
			Fields: []schema.Field{
				{ID: 0, Name: "Match Number", Type: schema.FieldNumber},
				{ID: 1, Name: "Climb", Type: schema.FieldDropdown},
			},
		}},
	}
	records := []record.Record{
		rec(t, s, float64(1), "High"),
		rec(t, s, float64(1), "High"),
		rec(t, s, float64(2), "Low"),
	}
	got := Aggregate(Chart{
		Type:        Bar,
		XAxis:       "Match Number",
		YAxis:       "Climb",
		Aggregation: Sum,
	}, records, s)

	want := []Slice{{ID: "1", Value: 2}, {ID: "2", Value: 1}}
	if diff := cmp.Diff(want, got.Slices); diff != "" {
		t.Errorf("slices mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateCategoricalBarSubgroupsByTeam(t *testing.T) {
	s := matchSchema(t)
	records := []record.Record{
		rec(t, s, float64(118), float64(1), nil, "High", nil, nil, nil),
		rec(t, s, float64(254), float64(1), nil, "High", nil, nil, nil),
		rec(t, s, float64(118), float64(2), nil, "Low", nil, nil, nil),
	}
	got := Aggregate(Chart{
		Type:        Bar,
		XAxis:       "Match Number",
		YAxis:       "Climb",
		Aggregation: Sum,
	}, records, s)

	want := &GroupedBars{
		Keys: []string{"118", "254"},
		Rows: []GroupedRow{
			{Category: "High", Counts: map[string]float64{"118": 1, "254": 1}},
			{Category: "Low", Counts: map[string]float64{"118": 1}},
		},
	}
	if diff := cmp.Diff(want, got.Grouped); diff != "" {
		t.Errorf("grouped bars mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateCategoricalBarBucketsMissingTeamAsUnknown(t *testing.T) {
	s := matchSchema(t)
	records := []record.Record{
		rec(t, s, float64(118), float64(1), nil, "High", nil, nil, nil),
		rec(t, s, nil, float64(1), nil, "High", nil, nil, nil),
	}
	got := Aggregate(Chart{
		Type:        Bar,
		XAxis:       "Match Number",
		YAxis:       "Climb",
		Aggregation: Sum,
	}, records, s)

	want := &GroupedBars{
		Keys: []string{"118", "Unknown"},
		Rows: []GroupedRow{
			{Category: "High", Counts: map[string]float64{"118": 1, "Unknown": 1}},
		},
	}
	if diff := cmp.Diff(want, got.Grouped); diff != "" {
		t.Errorf("grouped bars mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateCategoricalPieLabels(t *testing.T) {
	s := matchSchema(t)
	records := []record.Record{
		rec(t, s, float64(118), float64(1), nil, "High", nil, nil, nil),
		rec(t, s, float64(118), float64(2), nil, "High", nil, nil, nil),
		rec(t, s, float64(254), float64(1), nil, "Low", nil, nil, nil),
		rec(t, s, nil, float64(2), nil, "Low", nil, nil, nil),
	}
	got := Aggregate(Chart{Type: Pie, XAxis: "Match Number", YAxis: "Climb"}, records, s)

	want := []Slice{
		{ID: "High - Team 118", Value: 2},
		{ID: "Low - Team 254", Value: 1},
		{ID: "Low - Team Unknown", Value: 1},
	}
	if diff := cmp.Diff(want, got.Slices); diff != "" {
		t.Errorf("slices mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateLineGroupsByTeamNumber(t *testing.T) {
	s := matchSchema(t)
	records := []record.Record{
		rec(t, s, float64(254), float64(2), float64(8), nil, nil, nil, nil),
		rec(t, s, float64(118), float64(1), float64(10), nil, nil, nil, nil),
		rec(t, s, float64(118), float64(2), float64(20), nil, nil, nil, nil),
	}
	got := Aggregate(Chart{
		Type:        Line,
		XAxis:       "Match Number",
		YAxis:       "Score",
		Aggregation: Sum,
	}, records, s)

	want := []Series{
		{ID: "254", Points: []SeriesPoint{{X: float64(2), Y: 8}}},
		{ID: "118", Points: []SeriesPoint{{X: float64(1), Y: 10}, {X: float64(2), Y: 20}}},
	}
	if diff := cmp.Diff(want, got.Series); diff != "" {
		t.Errorf("series mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateLineSortsSeriesByMean(t *testing.T) {
	s := matchSchema(t)
	records := []record.Record{
		rec(t, s, float64(118), float64(1), float64(10), nil, nil, nil, nil),
		rec(t, s, float64(118), float64(2), float64(20), nil, nil, nil, nil),
		rec(t, s, float64(254), float64(1), float64(8), nil, nil, nil, nil),
	}
	got := Aggregate(Chart{
		Type:        Line,
		XAxis:       "Match Number",
		YAxis:       "Score",
		Aggregation: Sum,
		SortMode:    SortAscending,
	}, records, s)

	// Team 118 averages 15 per match, team 254 averages 8, so ascending
	// puts 254 first despite 118 being encountered first.
	want := []Series{
		{ID: "254", Points: []SeriesPoint{{X: float64(1), Y: 8}}},
		{ID: "118", Points: []SeriesPoint{{X: float64(1), Y: 10}, {X: float64(2), Y: 20}}},
	}
	if diff := cmp.Diff(want, got.Series); diff != "" {
		t.Errorf("series mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateScatterUngroupedUnlessMatchNumberX(t *testing.T) {
	s := matchSchema(t)
	records := []record.Record{
		rec(t, s, float64(118), float64(1), float64(10), nil, nil, nil, nil),
		rec(t, s, float64(254), float64(2), float64(5), nil, nil, nil, nil),
	}
	got := Aggregate(Chart{
		Type:        Scatter,
		XAxis:       "Score",
		YAxis:       "Match Number",
		Aggregation: Sum,
	}, records, s)

	if len(got.Series) != 1 {
		t.Fatalf("expected a single series, got %d", len(got.Series))
	}
	want := []SeriesPoint{{X: float64(5), Y: 2}, {X: float64(10), Y: 1}}
	if diff := cmp.Diff(want, got.Series[0].Points); diff != "" {
		t.Errorf("points mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateUngroupedSeriesNamedAfterChart(t *testing.T) {
	s := matchSchema(t)
	records := []record.Record{
		rec(t, s, float64(118), float64(1), float64(10), nil, nil, nil, nil),
	}
	chart := Chart{Name: "Scoring Trend", Type: Scatter, XAxis: "Score", YAxis: "Match Number"}

	got := Aggregate(chart, records, s)
	if len(got.Series) != 1 || got.Series[0].ID != "Scoring Trend" {
		t.Errorf("series = %+v, want one series named after the chart", got.Series)
	}

	chart.Name = ""
	got = Aggregate(chart, records, s)
	if len(got.Series) != 1 || got.Series[0].ID != "data" {
		t.Errorf("series = %+v, want the fallback name for an unnamed chart", got.Series)
	}
}

func TestAggregateTimerYDecodesToSeconds(t *testing.T) {
	s := matchSchema(t)
	records := []record.Record{
		rec(t, s, float64(118), float64(1), nil, nil, "1:30.5", nil, nil),
		rec(t, s, float64(118), float64(2), nil, nil, "4.5", nil, nil),
	}
	got := Aggregate(Chart{
		Type:        Bar,
		XAxis:       "Team Number",
		YAxis:       "Cycle Time",
		Aggregation: Sum,
	}, records, s)

	want := []Slice{{ID: "118", Value: 95}}
	if diff := cmp.Diff(want, got.Slices); diff != "" {
		t.Errorf("slices mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateNoYAxisCounts(t *testing.T) {
	s := matchSchema(t)
	records := []record.Record{
		rec(t, s, float64(118), float64(1), nil, nil, nil, nil, nil),
		rec(t, s, float64(118), float64(2), nil, nil, nil, nil, nil),
		rec(t, s, float64(254), float64(1), nil, nil, nil, nil, nil),
	}
	got := Aggregate(Chart{Type: Bar, XAxis: "Team Number", Aggregation: Sum}, records, s)

	want := []Slice{{ID: "118", Value: 2}, {ID: "254", Value: 1}}
	if diff := cmp.Diff(want, got.Slices); diff != "" {
		t.Errorf("slices mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateBoxplotRangeExpansion(t *testing.T) {
	s := matchSchema(t)
	records := []record.Record{
		rec(t, s, float64(118), float64(1), nil, nil, nil, nil, []float64{0, 10}),
	}
	got := Aggregate(Chart{Type: BoxPlot, XAxis: "Team Number", YAxis: "Range"}, records, s)

	want := []BoxPoint{
		{Group: "118", Value: 0},
		{Group: "118", Value: 5},
		{Group: "118", Value: 10},
	}
	if diff := cmp.Diff(want, got.Box); diff != "" {
		t.Errorf("box points mismatch (-want +got):\n%s", diff)
	}
	if got.BoxRange == nil {
		t.Fatal("expected a value range")
	}
	wantRange := &ValueRange{Min: -1, Max: 11}
	if diff := cmp.Diff(wantRange, got.BoxRange); diff != "" {
		t.Errorf("range mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateBoxplotSortsGroupsByMedian(t *testing.T) {
	s := matchSchema(t)
	records := []record.Record{
		rec(t, s, float64(118), float64(1), float64(30), nil, nil, nil, nil),
		rec(t, s, float64(118), float64(2), float64(40), nil, nil, nil, nil),
		rec(t, s, float64(254), float64(1), float64(10), nil, nil, nil, nil),
		rec(t, s, float64(254), float64(2), float64(20), nil, nil, nil, nil),
	}
	got := Aggregate(Chart{
		Type:     BoxPlot,
		XAxis:    "Team Number",
		YAxis:    "Score",
		SortMode: SortAscending,
	}, records, s)

	want := []BoxPoint{
		{Group: "254", Value: 10},
		{Group: "254", Value: 20},
		{Group: "118", Value: 30},
		{Group: "118", Value: 40},
	}
	if diff := cmp.Diff(want, got.Box); diff != "" {
		t.Errorf("box points mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateHeatmapCoversEveryCell(t *testing.T) {
	s := matchSchema(t)
	records := []record.Record{
		rec(t, s, float64(118), float64(1), nil, nil, nil, "2x2:[0,3]", nil),
		rec(t, s, float64(118), float64(2), nil, nil, nil, "2x2:[0]", nil),
		rec(t, s, float64(254), float64(1), nil, nil, nil, "2x2:[]", nil),
	}
	got := Aggregate(Chart{Type: HeatMap, XAxis: "Team Number", YAxis: "Pickup Zone"}, records, s)

	want := []Series{
		{ID: "118", Points: []SeriesPoint{
			{X: "0,0", Y: 2}, {X: "0,1", Y: 0}, {X: "1,0", Y: 0}, {X: "1,1", Y: 1},
		}},
		{ID: "254", Points: []SeriesPoint{
			{X: "0,0", Y: 0}, {X: "0,1", Y: 0}, {X: "1,0", Y: 0}, {X: "1,1", Y: 0},
		}},
	}
	if diff := cmp.Diff(want, got.Series); diff != "" {
		t.Errorf("series mismatch (-want +got):\n%s", diff)
	}
	if got.HeatDims == nil || got.HeatDims.Rows != 2 || got.HeatDims.Cols != 2 {
		t.Errorf("heat dims = %+v, want 2x2", got.HeatDims)
	}
}

func TestAggregateHeatmapOmitsGroupWithoutParseableGrid(t *testing.T) {
	s := matchSchema(t)
	records := []record.Record{
		rec(t, s, float64(118), float64(1), nil, nil, nil, "2x2:[0]", nil),
		rec(t, s, float64(254), float64(1), nil, nil, nil, "not a grid", nil),
	}
	got := Aggregate(Chart{Type: HeatMap, XAxis: "Team Number", YAxis: "Pickup Zone"}, records, s)

	want := []Series{
		{ID: "118", Points: []SeriesPoint{
			{X: "0,0", Y: 1}, {X: "0,1", Y: 0}, {X: "1,0", Y: 0}, {X: "1,1", Y: 0},
		}},
	}
	if diff := cmp.Diff(want, got.Series); diff != "" {
		t.Errorf("series mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateHeatmapRequiresGridY(t *testing.T) {
	s := matchSchema(t)
	records := []record.Record{
		rec(t, s, float64(118), float64(1), float64(10), nil, nil, nil, nil),
	}
	got := Aggregate(Chart{Type: HeatMap, XAxis: "Team Number", YAxis: "Score"}, records, s)
	if !got.IsEmpty() {
		t.Errorf("expected empty result for non-grid y field, got %+v", got)
	}
}

func TestAggregateExcludesForeignSchemaHash(t *testing.T) {
	s := matchSchema(t)
	foreign := rec(t, s, float64(999), float64(1), float64(100), nil, nil, nil, nil)
	foreign.SchemaHash = "deadbeef"
	records := []record.Record{
		rec(t, s, float64(118), float64(1), float64(10), nil, nil, nil, nil),
		foreign,
	}
	got := Aggregate(Chart{
		Type:        Bar,
		XAxis:       "Team Number",
		YAxis:       "Score",
		Aggregation: Sum,
	}, records, s)

	want := []Slice{{ID: "118", Value: 10}}
	if diff := cmp.Diff(want, got.Slices); diff != "" {
		t.Errorf("slices mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateDropsUnparseableNumericY(t *testing.T) {
	s := matchSchema(t)
	records := []record.Record{
		rec(t, s, float64(118), float64(1), "not a number", nil, nil, nil, nil),
		rec(t, s, float64(118), float64(2), float64(10), nil, nil, nil, nil),
	}
	got := Aggregate(Chart{
		Type:        Bar,
		XAxis:       "Team Number",
		YAxis:       "Score",
		Aggregation: Average,
	}, records, s)

	want := []Slice{{ID: "118", Value: 10}}
	if diff := cmp.Diff(want, got.Slices); diff != "" {
		t.Errorf("slices mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateSectionQualifiedAxis(t *testing.T) {
	s := matchSchema(t)
	records := []record.Record{
		rec(t, s, float64(118), float64(1), float64(10), nil, nil, nil, nil),
	}
	got := Aggregate(Chart{
		Type:        Bar,
		XAxis:       "Prematch - Team Number",
		YAxis:       "Teleop - Score",
		Aggregation: Sum,
	}, records, s)

	want := []Slice{{ID: "118", Value: 10}}
	if diff := cmp.Diff(want, got.Slices); diff != "" {
		t.Errorf("slices mismatch (-want +got):\n%s", diff)
	}
}
