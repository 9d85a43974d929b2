package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/farmhand-data/scout.report/internal/export"
	"github.com/farmhand-data/scout.report/internal/record"
	"github.com/farmhand-data/scout.report/internal/store"
)

// handleExport streams the active schema's records as a CSV or JSON
// download. Archived records are excluded unless include_archived=true.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Content-Type", "application/json")
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	format := export.Format(r.URL.Query().Get("format"))
	if format == "" {
		format = export.FormatCSV
	}
	if format != export.FormatCSV && format != export.FormatJSON {
		w.Header().Set("Content-Type", "application/json")
		s.writeJSONError(w, http.StatusBadRequest,
			fmt.Sprintf("Unknown export format %q", format))
		return
	}

	sc, err := s.db.ActiveSchema(r.Context())
	if errors.Is(err, store.ErrNotFound) {
		w.Header().Set("Content-Type", "application/json")
		s.writeJSONError(w, http.StatusNotFound, "No active schema")
		return
	}
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		s.writeJSONError(w, http.StatusInternalServerError,
			fmt.Sprintf("Failed to get active schema: %v", err))
		return
	}

	hash, err := sc.Hash()
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		s.writeJSONError(w, http.StatusInternalServerError,
			fmt.Sprintf("Failed to hash schema: %v", err))
		return
	}

	includeArchived := r.URL.Query().Get("include_archived") == "true"
	stored, err := s.db.ListRecords(r.Context(), hash, includeArchived)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		s.writeJSONError(w, http.StatusInternalServerError,
			fmt.Sprintf("Failed to list records: %v", err))
		return
	}
	records := make([]record.Record, len(stored))
	for i, sr := range stored {
		records[i] = sr.Record
	}

	switch format {
	case export.FormatCSV:
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	case export.FormatJSON:
		w.Header().Set("Content-Type", "application/json")
	}
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.FileName(sc.Name, format)))

	if err := export.Write(w, format, sc, records); err != nil {
		// Headers are already out; the truncated body is the best signal left.
		fmt.Fprintf(w, "\nexport failed: %v\n", err)
	}
}
