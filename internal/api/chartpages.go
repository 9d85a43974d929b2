package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/stat"

	"github.com/farmhand-data/scout.report/internal/analysis"
	"github.com/farmhand-data/scout.report/internal/store"
)

// viridisColors is the color ramp used for heatmap and density visual maps.
var viridisColors = []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}

// handleChartPage renders a saved chart as a standalone HTML page. This is
// an inspection surface (no auth) for checking aggregations without the
// app UI.
func (s *Server) handleChartPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/charts/")
	if id == "" || strings.Contains(id, "/") {
		s.writeJSONError(w, http.StatusNotFound, "Chart not found")
		return
	}

	c, err := s.db.GetChart(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.writeJSONError(w, http.StatusNotFound, "Chart not found")
		return
	}
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError,
			fmt.Sprintf("Failed to get chart: %v", err))
		return
	}

	result, sc, err := s.aggregateChart(r, c)
	if errors.Is(err, errNoActiveSchema) {
		s.writeJSONError(w, http.StatusNotFound, "No active schema")
		return
	}
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	subtitle := fmt.Sprintf("schema=%s x=%s", sc.Name, c.XAxis)
	if c.YAxis != "" {
		subtitle += " y=" + c.YAxis
	}

	var buf bytes.Buffer
	switch c.Type {
	case analysis.Bar:
		err = renderBar(&buf, c, result, subtitle)
	case analysis.Line:
		err = renderLine(&buf, c, result, subtitle)
	case analysis.Pie:
		err = renderPie(&buf, c, result, subtitle)
	case analysis.Scatter:
		err = renderScatter(&buf, c, result, subtitle)
	case analysis.BoxPlot:
		err = renderBoxPlot(&buf, c, result, subtitle)
	case analysis.HeatMap:
		err = renderHeatMap(&buf, c, result, subtitle)
	default:
		s.writeJSONError(w, http.StatusBadRequest,
			fmt.Sprintf("Unknown chart type %q", c.Type))
		return
	}
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError,
			fmt.Sprintf("Failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func pageInit(title string) opts.Initialization {
	return opts.Initialization{PageTitle: title, Theme: "dark", Width: "1200px", Height: "720px"}
}

func renderBar(buf *bytes.Buffer, c analysis.Chart, result analysis.Result, subtitle string) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(pageInit(c.Name)),
		charts.WithTitleOpts(opts.Title{Title: c.Name, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	if result.Grouped != nil {
		categories := make([]string, len(result.Grouped.Rows))
		for i, row := range result.Grouped.Rows {
			categories[i] = row.Category
		}
		bar.SetXAxis(categories)
		for _, key := range result.Grouped.Keys {
			data := make([]opts.BarData, len(result.Grouped.Rows))
			for i, row := range result.Grouped.Rows {
				data[i] = opts.BarData{Value: row.Counts[key]}
			}
			bar.AddSeries(key, data)
		}
		return bar.Render(buf)
	}

	x := make([]string, len(result.Slices))
	y := make([]opts.BarData, len(result.Slices))
	for i, sl := range result.Slices {
		x[i] = sl.ID
		y[i] = opts.BarData{Value: sl.Value}
	}
	bar.SetXAxis(x).AddSeries(seriesName(c), y,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
	)
	return bar.Render(buf)
}

func renderPie(buf *bytes.Buffer, c analysis.Chart, result analysis.Result, subtitle string) error {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(pageInit(c.Name)),
		charts.WithTitleOpts(opts.Title{Title: c.Name, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	data := make([]opts.PieData, len(result.Slices))
	for i, sl := range result.Slices {
		data[i] = opts.PieData{Name: sl.ID, Value: sl.Value}
	}
	pie.AddSeries(seriesName(c), data,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{b}: {c}"}),
	)
	return pie.Render(buf)
}

func renderLine(buf *bytes.Buffer, c analysis.Chart, result analysis.Result, subtitle string) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(pageInit(c.Name)),
		charts.WithTitleOpts(opts.Title{Title: c.Name, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	categories := seriesCategories(result.Series)
	line.SetXAxis(categories)
	for _, series := range result.Series {
		byX := make(map[string]float64, len(series.Points))
		for _, p := range series.Points {
			byX[fmt.Sprint(p.X)] = p.Y
		}
		data := make([]opts.LineData, len(categories))
		for i, cat := range categories {
			if y, ok := byX[cat]; ok {
				data[i] = opts.LineData{Value: y}
			} else {
				data[i] = opts.LineData{Value: nil}
			}
		}
		line.AddSeries(series.ID, data,
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(c.LinearInterpolation)}),
		)
	}
	return line.Render(buf)
}

func renderScatter(buf *bytes.Buffer, c analysis.Chart, result analysis.Result, subtitle string) error {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(pageInit(c.Name)),
		charts.WithTitleOpts(opts.Title{Title: c.Name, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: c.XAxis, NameLocation: "middle", NameGap: 25}),
	)
	for _, series := range result.Series {
		data := make([]opts.ScatterData, len(series.Points))
		for i, p := range series.Points {
			data[i] = opts.ScatterData{Value: []interface{}{p.X, p.Y}}
		}
		scatter.AddSeries(series.ID, data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}))
	}
	return scatter.Render(buf)
}

func renderBoxPlot(buf *bytes.Buffer, c analysis.Chart, result analysis.Result, subtitle string) error {
	groups, byGroup := boxGroups(result.Box)

	box := charts.NewBoxPlot()
	globals := []charts.GlobalOpts{
		charts.WithInitializationOpts(pageInit(c.Name)),
		charts.WithTitleOpts(opts.Title{Title: c.Name, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
	if result.BoxRange != nil {
		globals = append(globals, charts.WithYAxisOpts(opts.YAxis{
			Min: result.BoxRange.Min, Max: result.BoxRange.Max,
		}))
	}
	box.SetGlobalOptions(globals...)

	data := make([]opts.BoxPlotData, len(groups))
	for i, g := range groups {
		data[i] = opts.BoxPlotData{Value: fiveNumberSummary(byGroup[g])}
	}
	box.SetXAxis(groups).AddSeries(seriesName(c), data)
	return box.Render(buf)
}

// boxGroups splits flat boxplot points back into per-group value lists,
// preserving the group order of the aggregation.
func boxGroups(points []analysis.BoxPoint) ([]string, map[string][]float64) {
	var groups []string
	byGroup := make(map[string][]float64)
	for _, p := range points {
		if _, seen := byGroup[p.Group]; !seen {
			groups = append(groups, p.Group)
		}
		byGroup[p.Group] = append(byGroup[p.Group], p.Value)
	}
	return groups, byGroup
}

// fiveNumberSummary computes [min, Q1, median, Q3, max], the data shape
// echarts boxplot series consume.
func fiveNumberSummary(values []float64) []float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return []float64{
		sorted[0],
		stat.Quantile(0.25, stat.LinInterp, sorted, nil),
		stat.Quantile(0.5, stat.LinInterp, sorted, nil),
		stat.Quantile(0.75, stat.LinInterp, sorted, nil),
		sorted[len(sorted)-1],
	}
}

// renderHeatMap draws one grid per series (one per X group) on a single
// page, colored on a shared scale.
func renderHeatMap(buf *bytes.Buffer, c analysis.Chart, result analysis.Result, subtitle string) error {
	rows, cols := 3, 3
	if result.HeatDims != nil {
		rows, cols = result.HeatDims.Rows, result.HeatDims.Cols
	}

	xLabels := make([]string, cols)
	for i := range xLabels {
		xLabels[i] = fmt.Sprintf("col %d", i)
	}
	yLabels := make([]string, rows)
	for i := range yLabels {
		yLabels[i] = fmt.Sprintf("row %d", i)
	}

	maxCount := 0.0
	for _, series := range result.Series {
		for _, p := range series.Points {
			if p.Y > maxCount {
				maxCount = p.Y
			}
		}
	}
	if maxCount == 0 {
		maxCount = 1
	}

	page := components.NewPage()
	page.PageTitle = c.Name
	for _, series := range result.Series {
		hm := charts.NewHeatMap()
		hm.SetGlobalOptions(
			charts.WithInitializationOpts(opts.Initialization{Theme: "dark", Width: "600px", Height: "480px"}),
			charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("%s: %s", c.Name, series.ID), Subtitle: subtitle}),
			charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
			charts.WithXAxisOpts(opts.XAxis{Type: "category", Data: xLabels}),
			charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: yLabels}),
			charts.WithVisualMapOpts(opts.VisualMap{
				Show:       opts.Bool(true),
				Calculable: opts.Bool(true),
				Min:        0,
				Max:        float32(maxCount),
				InRange:    &opts.VisualMapInRange{Color: viridisColors},
			}),
		)

		data := make([]opts.HeatMapData, 0, len(series.Points))
		for _, p := range series.Points {
			row, col, ok := splitCellCoord(fmt.Sprint(p.X))
			if !ok {
				continue
			}
			data = append(data, opts.HeatMapData{Value: [3]interface{}{col, row, p.Y}})
		}
		hm.AddSeries(series.ID, data,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true)}),
		)
		page.AddCharts(hm)
	}
	return page.Render(buf)
}

// splitCellCoord parses a canonical "row,col" cell key.
func splitCellCoord(key string) (row, col int, ok bool) {
	if _, err := fmt.Sscanf(key, "%d,%d", &row, &col); err != nil {
		return 0, 0, false
	}
	return row, col, true
}

// seriesCategories collects the distinct X values across all series in
// sorted order, numerically where the values parse as numbers.
func seriesCategories(series []analysis.Series) []string {
	seen := make(map[string]struct{})
	var keys []string
	for _, s := range series {
		for _, p := range s.Points {
			k := fmt.Sprint(p.X)
			if _, dup := seen[k]; !dup {
				seen[k] = struct{}{}
				keys = append(keys, k)
			}
		}
	}
	sortNumericCategories(keys)
	return keys
}

func sortNumericCategories(keys []string) {
	sort.SliceStable(keys, func(i, j int) bool {
		a, errA := strconv.ParseFloat(keys[i], 64)
		b, errB := strconv.ParseFloat(keys[j], 64)
		if errA == nil && errB == nil {
			return a < b
		}
		if errA == nil {
			return true
		}
		if errB == nil {
			return false
		}
		return keys[i] < keys[j]
	})
}

func seriesName(c analysis.Chart) string {
	if c.YAxis != "" {
		return c.YAxis
	}
	return "count"
}
