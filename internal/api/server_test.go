package api

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/farmhand-data/scout.report/internal/analysis"
	"github.com/farmhand-data/scout.report/internal/qr"
	"github.com/farmhand-data/scout.report/internal/record"
	"github.com/farmhand-data/scout.report/internal/schema"
	"github.com/farmhand-data/scout.report/internal/store"
	"github.com/farmhand-data/scout.report/internal/testutil"
)

func newTestServer(t *testing.T) (*Server, *store.DB) {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "scout.db"))
	testutil.AssertNoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewServer(db), db
}

func matchSchema() *schema.Schema {
	return &schema.Schema{
		Name: "Match Scouting",
		Sections: []schema.Section{
			{
				Title: "Prematch",
				Fields: []schema.Field{
					{ID: 0, Name: "Team Number", Type: schema.FieldNumber, Required: true},
					{ID: 1, Name: "Match Number", Type: schema.FieldNumber, Required: true},
				},
			},
			{
				Title: "Teleop",
				Fields: []schema.Field{
					{ID: 2, Name: "Score", Type: schema.FieldCounter},
				},
			},
		},
	}
}

// seedSchema stores and activates the fixture schema, returning its hash.
func seedSchema(t *testing.T, s *Server) string {
	t.Helper()
	req := testutil.NewJSONRequest(t, http.MethodPost, "/api/schema", matchSchema())
	rec := testutil.NewTestRecorder()
	s.ServeMux().ServeHTTP(rec, req)
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var resp map[string]string
	testutil.DecodeJSON(t, rec.Body, &resp)
	if resp["hash"] == "" {
		t.Fatal("schema upload returned no hash")
	}
	return resp["hash"]
}

func encodeRecordCode(t *testing.T, hash string, team, match, score float64) string {
	t.Helper()
	code, err := qr.EncodeRecord(record.Record{
		SchemaHash: hash,
		DeviceID:   3,
		Data:       []record.Value{team, match, score},
	})
	testutil.AssertNoError(t, err)
	return code
}

func TestSchemaUploadAndFetch(t *testing.T) {
	s, _ := newTestServer(t)
	seedSchema(t, s)

	req := testutil.NewTestRequest(http.MethodGet, "/api/schema")
	rec := testutil.NewTestRecorder()
	s.ServeMux().ServeHTTP(rec, req)
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var got schema.Schema
	testutil.DecodeJSON(t, rec.Body, &got)
	if got.Name != "Match Scouting" {
		t.Errorf("active schema name = %q, want Match Scouting", got.Name)
	}
}

func TestSchemaFetchWithoutActive(t *testing.T) {
	s, _ := newTestServer(t)

	req := testutil.NewTestRequest(http.MethodGet, "/api/schema")
	rec := testutil.NewTestRecorder()
	s.ServeMux().ServeHTTP(rec, req)
	testutil.AssertStatusCode(t, rec.Code, http.StatusNotFound)
}

func TestSchemaUploadRejectsUnknownFieldType(t *testing.T) {
	s, _ := newTestServer(t)

	bad := map[string]any{
		"name": "Broken",
		"sections": []map[string]any{
			{"title": "A", "fields": []map[string]any{
				{"id": 0, "name": "X", "type": "hologram"},
			}},
		},
	}
	req := testutil.NewJSONRequest(t, http.MethodPost, "/api/schema", bad)
	rec := testutil.NewTestRecorder()
	s.ServeMux().ServeHTTP(rec, req)
	testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)
}

func TestSchemaQRRoundTrip(t *testing.T) {
	s, _ := newTestServer(t)
	seedSchema(t, s)

	req := testutil.NewTestRequest(http.MethodGet, "/api/schema/qr")
	rec := testutil.NewTestRecorder()
	s.ServeMux().ServeHTTP(rec, req)
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var resp map[string]string
	testutil.DecodeJSON(t, rec.Body, &resp)
	decoded, err := qr.DecodeSchema(resp["code"])
	testutil.AssertNoError(t, err)
	if decoded.Name != "Match Scouting" {
		t.Errorf("decoded schema name = %q", decoded.Name)
	}
}

func TestImportAndListRecords(t *testing.T) {
	s, _ := newTestServer(t)
	hash := seedSchema(t, s)

	codes := []string{
		encodeRecordCode(t, hash, 118, 1, 12),
		encodeRecordCode(t, hash, 254, 1, 7),
	}
	req := testutil.NewJSONRequest(t, http.MethodPost, "/api/records", importRequest{Codes: codes})
	rec := testutil.NewTestRecorder()
	s.ServeMux().ServeHTTP(rec, req)
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var results []importResponse
	testutil.DecodeJSON(t, rec.Body, &results)
	if len(results) != 2 {
		t.Fatalf("import results = %d, want 2", len(results))
	}
	for _, r := range results {
		if r.Error != "" || r.ID == "" {
			t.Errorf("import result %d: id=%q error=%q", r.Index, r.ID, r.Error)
		}
	}

	req = testutil.NewTestRequest(http.MethodGet, "/api/records?schema_hash="+hash)
	rec = testutil.NewTestRecorder()
	s.ServeMux().ServeHTTP(rec, req)
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var listed []store.StoredRecord
	testutil.DecodeJSON(t, rec.Body, &listed)
	if len(listed) != 2 {
		t.Errorf("listed records = %d, want 2", len(listed))
	}
}

func TestImportIsolatesBadCodes(t *testing.T) {
	s, _ := newTestServer(t)
	hash := seedSchema(t, s)

	codes := []string{"not-a-code", encodeRecordCode(t, hash, 118, 1, 12)}
	req := testutil.NewJSONRequest(t, http.MethodPost, "/api/records", importRequest{Codes: codes})
	rec := testutil.NewTestRecorder()
	s.ServeMux().ServeHTTP(rec, req)
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var results []importResponse
	testutil.DecodeJSON(t, rec.Body, &results)
	if results[0].Error == "" {
		t.Error("bad code reported no error")
	}
	if results[1].Error != "" || results[1].ID == "" {
		t.Errorf("good code result: id=%q error=%q", results[1].ID, results[1].Error)
	}
}

func TestRecordArchiveAndDelete(t *testing.T) {
	s, db := newTestServer(t)
	hash := seedSchema(t, s)

	id, err := db.InsertRecord(context.Background(), record.Record{
		SchemaHash: hash,
		Data:       []record.Value{float64(118), float64(1), float64(12)},
	})
	testutil.AssertNoError(t, err)

	archived := true
	req := testutil.NewJSONRequest(t, http.MethodPatch, "/api/records/"+id, recordPatch{Archived: &archived})
	rec := testutil.NewTestRecorder()
	s.ServeMux().ServeHTTP(rec, req)
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	req = testutil.NewTestRequest(http.MethodGet, "/api/records?schema_hash="+hash)
	rec = testutil.NewTestRecorder()
	s.ServeMux().ServeHTTP(rec, req)
	var listed []store.StoredRecord
	testutil.DecodeJSON(t, rec.Body, &listed)
	if len(listed) != 0 {
		t.Errorf("archived record still listed: %d", len(listed))
	}

	req = testutil.NewTestRequest(http.MethodDelete, "/api/records/"+id)
	rec = testutil.NewTestRecorder()
	s.ServeMux().ServeHTTP(rec, req)
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	req = testutil.NewTestRequest(http.MethodGet, "/api/records/"+id)
	rec = testutil.NewTestRecorder()
	s.ServeMux().ServeHTTP(rec, req)
	testutil.AssertStatusCode(t, rec.Code, http.StatusNotFound)
}

func TestChartCRUDAndData(t *testing.T) {
	s, db := newTestServer(t)
	hash := seedSchema(t, s)

	for _, data := range [][]record.Value{
		{float64(118), float64(1), float64(10)},
		{float64(118), float64(2), float64(20)},
		{float64(254), float64(1), float64(5)},
	} {
		_, err := db.InsertRecord(context.Background(), record.Record{SchemaHash: hash, Data: data})
		testutil.AssertNoError(t, err)
	}

	chart := analysis.Chart{
		Name:        "Average Score",
		Type:        analysis.Bar,
		XAxis:       "Team Number",
		YAxis:       "Score",
		Aggregation: analysis.Average,
	}
	req := testutil.NewJSONRequest(t, http.MethodPost, "/api/charts", chart)
	rec := testutil.NewTestRecorder()
	s.ServeMux().ServeHTTP(rec, req)
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var saved analysis.Chart
	testutil.DecodeJSON(t, rec.Body, &saved)
	if saved.ID == "" {
		t.Fatal("saved chart has no id")
	}

	req = testutil.NewTestRequest(http.MethodGet, "/api/chart_data?chart_id="+saved.ID)
	rec = testutil.NewTestRecorder()
	s.ServeMux().ServeHTTP(rec, req)
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var result analysis.Result
	testutil.DecodeJSON(t, rec.Body, &result)
	if len(result.Slices) != 2 {
		t.Fatalf("slices = %d, want 2", len(result.Slices))
	}
	got := map[string]float64{}
	for _, sl := range result.Slices {
		got[sl.ID] = sl.Value
	}
	if got["118"] != 15 || got["254"] != 5 {
		t.Errorf("aggregated values = %v", got)
	}

	req = testutil.NewTestRequest(http.MethodDelete, "/api/charts/"+saved.ID)
	rec = testutil.NewTestRecorder()
	s.ServeMux().ServeHTTP(rec, req)
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	req = testutil.NewTestRequest(http.MethodGet, "/api/chart_data?chart_id="+saved.ID)
	rec = testutil.NewTestRecorder()
	s.ServeMux().ServeHTTP(rec, req)
	testutil.AssertStatusCode(t, rec.Code, http.StatusNotFound)
}

func TestChartPageRendersHTML(t *testing.T) {
	s, db := newTestServer(t)
	hash := seedSchema(t, s)

	_, err := db.InsertRecord(context.Background(), record.Record{
		SchemaHash: hash,
		Data:       []record.Value{float64(118), float64(1), float64(12)},
	})
	testutil.AssertNoError(t, err)

	saved, err := db.SaveChart(context.Background(), analysis.Chart{
		Name:  "Scores",
		Type:  analysis.Bar,
		XAxis: "Team Number",
		YAxis: "Score",
	})
	testutil.AssertNoError(t, err)

	req := testutil.NewTestRequest(http.MethodGet, "/charts/"+saved.ID)
	rec := testutil.NewTestRecorder()
	s.ServeMux().ServeHTTP(rec, req)
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q, want text/html", ct)
	}
	if !strings.Contains(rec.Body.String(), "echarts") {
		t.Error("rendered page does not embed echarts")
	}
}

func TestExportCSVDownload(t *testing.T) {
	s, db := newTestServer(t)
	hash := seedSchema(t, s)

	_, err := db.InsertRecord(context.Background(), record.Record{
		SchemaHash: hash,
		Data:       []record.Value{float64(118), float64(1), float64(12)},
	})
	testutil.AssertNoError(t, err)

	req := testutil.NewTestRequest(http.MethodGet, "/api/export?format=csv")
	rec := testutil.NewTestRecorder()
	s.ServeMux().ServeHTTP(rec, req)
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "Match_Scouting_export.csv") {
		t.Errorf("content disposition = %q", cd)
	}
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if lines[0] != "Team Number,Match Number,Score" {
		t.Errorf("csv header = %q", lines[0])
	}
	if len(lines) != 2 {
		t.Errorf("csv lines = %d, want 2", len(lines))
	}
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	s, _ := newTestServer(t)
	seedSchema(t, s)

	req := testutil.NewTestRequest(http.MethodGet, "/api/export?format=xml")
	rec := testutil.NewTestRecorder()
	s.ServeMux().ServeHTTP(rec, req)
	testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)
}

func TestMethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t)

	req := testutil.NewTestRequest(http.MethodPut, "/api/records")
	rec := testutil.NewTestRecorder()
	s.ServeMux().ServeHTTP(rec, req)
	testutil.AssertStatusCode(t, rec.Code, http.StatusMethodNotAllowed)
}

func TestStatusCodeColor(t *testing.T) {
	if got := statusCodeColor(200); !strings.Contains(got, "200") {
		t.Errorf("statusCodeColor(200) = %q", got)
	}
	if got := statusCodeColor(404); !strings.Contains(got, colorBoldRed) {
		t.Errorf("statusCodeColor(404) = %q, want bold red", got)
	}
}
