package analysis

import (
	"strconv"

	"github.com/farmhand-data/scout.report/internal/record"
	"github.com/farmhand-data/scout.report/internal/schema"
)

// aggregateHeatmap counts, per X group, how many records checked each cell
// of a grid Y field. Every group's output covers the full row-major cross
// product of cell coordinates, with zero for cells that group never
// checked. A group exists only once one of its records carries a parseable
// grid value. Grid dimensions come from the first grid value that parses;
// when none do, the field's configured dimensions apply.
func aggregateHeatmap(chart Chart, records []record.Record, layout *schema.FieldLayout, xe schema.LayoutEntry, ye *schema.LayoutEntry) Result {
	res := Result{Type: HeatMap}
	if ye == nil || ye.Field.Type != schema.FieldGrid {
		return res
	}

	rows, cols := gridDims(records, ye)
	if rows <= 0 || cols <= 0 {
		return res
	}

	var order []string
	counts := make(map[string]map[string]float64)
	for _, r := range records {
		xv := r.ValueAt(xe.Index)
		if xv == nil {
			continue
		}
		g, ok := record.ParseGrid(record.Stringify(r.ValueAt(ye.Index)))
		if !ok {
			continue
		}
		key := xGroupKey(xe, xv)
		cells, ok := counts[key]
		if !ok {
			cells = make(map[string]float64)
			counts[key] = cells
			order = append(order, key)
		}
		for _, idx := range g.Checked {
			cells[record.CellCoord(idx, cols)]++
		}
	}
	if len(order) == 0 {
		return res
	}

	coords := make([]string, 0, rows*cols)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			coords = append(coords, strconv.Itoa(row)+","+strconv.Itoa(col))
		}
	}

	for _, key := range order {
		points := make([]SeriesPoint, 0, len(coords))
		for _, coord := range coords {
			points = append(points, SeriesPoint{X: coord, Y: counts[key][coord]})
		}
		res.Series = append(res.Series, Series{ID: key, Points: points})
	}
	res.HeatDims = &HeatDims{Rows: rows, Cols: cols}
	return res
}

// gridDims picks the dimensions of the heatmap's cell axis: the first
// parseable grid value in the data, else the schema's configured size.
func gridDims(records []record.Record, ye *schema.LayoutEntry) (rows, cols int) {
	for _, r := range records {
		raw := r.ValueAt(ye.Index)
		if raw == nil {
			continue
		}
		if g, ok := record.ParseGrid(record.Stringify(raw)); ok {
			return g.Rows, g.Cols
		}
	}
	return ye.Field.GridSize()
}
