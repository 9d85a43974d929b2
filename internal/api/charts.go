package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/farmhand-data/scout.report/internal/analysis"
	"github.com/farmhand-data/scout.report/internal/record"
	"github.com/farmhand-data/scout.report/internal/schema"
	"github.com/farmhand-data/scout.report/internal/store"
)

func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch r.Method {
	case http.MethodGet:
		charts, err := s.db.ListCharts(r.Context())
		if err != nil {
			s.writeJSONError(w, http.StatusInternalServerError,
				fmt.Sprintf("Failed to list charts: %v", err))
			return
		}
		if charts == nil {
			charts = []analysis.Chart{}
		}
		if err := json.NewEncoder(w).Encode(charts); err != nil {
			s.writeJSONError(w, http.StatusInternalServerError, "Failed to write charts")
		}
	case http.MethodPost:
		var c analysis.Chart
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			s.writeJSONError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if c.Type == "" || c.XAxis == "" {
			s.writeJSONError(w, http.StatusBadRequest, "Chart requires a type and an xAxis")
			return
		}
		saved, err := s.db.SaveChart(r.Context(), c)
		if err != nil {
			s.writeJSONError(w, http.StatusInternalServerError,
				fmt.Sprintf("Failed to save chart: %v", err))
			return
		}
		if err := json.NewEncoder(w).Encode(saved); err != nil {
			s.writeJSONError(w, http.StatusInternalServerError, "Failed to write chart")
		}
	default:
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *Server) handleChartByID(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	id := strings.TrimPrefix(r.URL.Path, "/api/charts/")
	if id == "" || strings.Contains(id, "/") {
		s.writeJSONError(w, http.StatusNotFound, "Chart not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
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
		if err := json.NewEncoder(w).Encode(c); err != nil {
			s.writeJSONError(w, http.StatusInternalServerError, "Failed to write chart")
		}
	case http.MethodDelete:
		err := s.db.DeleteChart(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			s.writeJSONError(w, http.StatusNotFound, "Chart not found")
			return
		}
		if err != nil {
			s.writeJSONError(w, http.StatusInternalServerError,
				fmt.Sprintf("Failed to delete chart: %v", err))
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "deleted"})
	default:
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleChartData runs a saved chart's aggregation against the stored
// records for the active schema.
func (s *Server) handleChartData(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	chartID := r.URL.Query().Get("chart_id")
	if chartID == "" {
		s.writeJSONError(w, http.StatusBadRequest, "Missing 'chart_id' parameter")
		return
	}

	c, err := s.db.GetChart(r.Context(), chartID)
	if errors.Is(err, store.ErrNotFound) {
		s.writeJSONError(w, http.StatusNotFound, "Chart not found")
		return
	}
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError,
			fmt.Sprintf("Failed to get chart: %v", err))
		return
	}

	result, _, err := s.aggregateChart(r, c)
	if errors.Is(err, errNoActiveSchema) {
		s.writeJSONError(w, http.StatusNotFound, "No active schema")
		return
	}
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := json.NewEncoder(w).Encode(result); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write chart data")
	}
}

var errNoActiveSchema = errors.New("no active schema")

// aggregateChart loads the active schema and its records and runs the
// chart's aggregation over them.
func (s *Server) aggregateChart(r *http.Request, c analysis.Chart) (analysis.Result, *schema.Schema, error) {
	sc, err := s.db.ActiveSchema(r.Context())
	if errors.Is(err, store.ErrNotFound) {
		return analysis.Result{Type: c.Type}, nil, errNoActiveSchema
	}
	if err != nil {
		return analysis.Result{}, nil, fmt.Errorf("Failed to get active schema: %v", err)
	}

	hash, err := sc.Hash()
	if err != nil {
		return analysis.Result{}, nil, fmt.Errorf("Failed to hash schema: %v", err)
	}

	stored, err := s.db.ListRecords(r.Context(), hash, false)
	if err != nil {
		return analysis.Result{}, nil, fmt.Errorf("Failed to list records: %v", err)
	}
	records := make([]record.Record, len(stored))
	for i, sr := range stored {
		records[i] = sr.Record
	}

	return analysis.Aggregate(c, records, sc), sc, nil
}
