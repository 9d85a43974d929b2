// Package export serializes decoded scouting records for reporting. Output
// is keyed by field name in schema field order, the shape spreadsheet
// users expect, rather than by the positional indices used on the wire.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/farmhand-data/scout.report/internal/record"
	"github.com/farmhand-data/scout.report/internal/schema"
)

// columns lists the exportable fields of a schema in absolute index order.
// Filler fields carry no data and are skipped.
func columns(layout *schema.FieldLayout) []schema.LayoutEntry {
	var cols []schema.LayoutEntry
	for _, e := range layout.Entries() {
		if e.Field.Type == schema.FieldFiller {
			continue
		}
		cols = append(cols, e)
	}
	return cols
}

// CSV writes one header row of field names followed by one row per record.
// Values render as their wire strings; missing values render empty.
func CSV(w io.Writer, s *schema.Schema, records []record.Record) error {
	layout := schema.NewLayout(s)
	cols := columns(layout)

	cw := csv.NewWriter(w)
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.Field.Name
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("export: write csv header: %w", err)
	}

	row := make([]string, len(cols))
	for _, r := range records {
		for i, c := range cols {
			row[i] = record.Stringify(r.ValueAt(c.Index))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("export: write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("export: flush csv: %w", err)
	}
	return nil
}

// JSON writes the records as an array of field-name-keyed objects.
func JSON(w io.Writer, s *schema.Schema, records []record.Record) error {
	layout := schema.NewLayout(s)
	cols := columns(layout)

	out := make([]map[string]record.Value, 0, len(records))
	for _, r := range records {
		obj := make(map[string]record.Value, len(cols))
		for _, c := range cols {
			obj[c.Field.Name] = r.ValueAt(c.Index)
		}
		out = append(out, obj)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("export: encode json: %w", err)
	}
	return nil
}
