package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/farmhand-data/scout.report/internal/record"
	"github.com/farmhand-data/scout.report/internal/schema"
)

func exportSchema(t *testing.T) *schema.Schema {
	t.Helper()
	return &schema.Schema{
		Name: "Match Scouting",
		Sections: []schema.Section{
			{
				Title: "Prematch",
				Fields: []schema.Field{
					{ID: 0, Name: "Team Number", Type: schema.FieldNumber},
					{ID: 1, Name: "", Type: schema.FieldFiller},
				},
			},
			{
				Title: "Teleop",
				Fields: []schema.Field{
					{ID: 2, Name: "Score", Type: schema.FieldCounter},
					{ID: 3, Name: "Mobility", Type: schema.FieldCheckbox},
				},
			},
		},
	}
}

func exportRecords() []record.Record {
	return []record.Record{
		{Data: []record.Value{float64(118), nil, float64(12), true}},
		{Data: []record.Value{float64(254), nil, float64(7), false}},
	}
}

func TestCSVLayout(t *testing.T) {
	var buf bytes.Buffer
	if err := CSV(&buf, exportSchema(t), exportRecords()); err != nil {
		t.Fatalf("CSV: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	want := []string{
		"Team Number,Score,Mobility",
		"118,12,true",
		"254,7,false",
	}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Errorf("csv mismatch (-want +got):\n%s", diff)
	}
}

func TestCSVShortRecord(t *testing.T) {
	var buf bytes.Buffer
	records := []record.Record{{Data: []record.Value{float64(118)}}}
	if err := CSV(&buf, exportSchema(t), records); err != nil {
		t.Fatalf("CSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if got, want := lines[1], "118,,"; got != want {
		t.Errorf("short record row = %q, want %q", got, want)
	}
}

func TestJSONKeyedByFieldName(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, exportSchema(t), exportRecords()); err != nil {
		t.Fatalf("JSON: %v", err)
	}

	var got []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal output: %v", err)
	}
	want := []map[string]any{
		{"Team Number": float64(118), "Score": float64(12), "Mobility": true},
		{"Team Number": float64(254), "Score": float64(7), "Mobility": false},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("json mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, Format("xml"), exportSchema(t), nil); err == nil {
		t.Error("unknown format accepted")
	}
}

func TestFileName(t *testing.T) {
	if got, want := FileName("Match Scouting!", FormatCSV), "Match_Scouting_export.csv"; got != want {
		t.Errorf("FileName = %q, want %q", got, want)
	}
}
