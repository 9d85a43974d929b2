package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/farmhand-data/scout.report/internal/monitoring"
	"github.com/farmhand-data/scout.report/internal/qr"
	"github.com/farmhand-data/scout.report/internal/store"
)

type importRequest struct {
	Codes []string `json:"codes"`
}

type importResponse struct {
	Index int    `json:"index"`
	ID    string `json:"id,omitempty"`
	Error string `json:"error,omitempty"`
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch r.Method {
	case http.MethodGet:
		s.listRecords(w, r)
	case http.MethodPost:
		s.importRecords(w, r)
	default:
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *Server) listRecords(w http.ResponseWriter, r *http.Request) {
	schemaHash := r.URL.Query().Get("schema_hash")
	includeArchived := r.URL.Query().Get("include_archived") == "true"

	records, err := s.db.ListRecords(r.Context(), schemaHash, includeArchived)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError,
			fmt.Sprintf("Failed to list records: %v", err))
		return
	}
	if records == nil {
		records = []store.StoredRecord{}
	}

	if err := json.NewEncoder(w).Encode(records); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write records")
		return
	}
}

// importRecords decodes a batch of scanned QR payloads and stores each one
// that parses. Failures are reported per code so one bad scan does not
// reject the rest of the batch.
func (s *Server) importRecords(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Codes) == 0 {
		s.writeJSONError(w, http.StatusBadRequest, "No codes provided")
		return
	}

	results := qr.ImportRecords(req.Codes)
	out := make([]importResponse, len(results))
	for i, res := range results {
		out[i].Index = res.Index
		if res.Err != nil {
			monitoring.Debugf("import: code %d: %v", res.Index, res.Err)
			out[i].Error = res.Err.Error()
			continue
		}
		id, err := s.db.InsertRecord(r.Context(), res.Record)
		if err != nil {
			out[i].Error = fmt.Sprintf("store record: %v", err)
			continue
		}
		out[i].ID = id
	}

	if err := json.NewEncoder(w).Encode(out); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write import results")
		return
	}
}

type recordPatch struct {
	Archived *bool `json:"archived,omitempty"`
	Scanned  *bool `json:"scanned,omitempty"`
}

func (s *Server) handleRecordByID(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	id := strings.TrimPrefix(r.URL.Path, "/api/records/")
	if id == "" || strings.Contains(id, "/") {
		s.writeJSONError(w, http.StatusNotFound, "Record not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		rec, err := s.db.GetRecord(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			s.writeJSONError(w, http.StatusNotFound, "Record not found")
			return
		}
		if err != nil {
			s.writeJSONError(w, http.StatusInternalServerError,
				fmt.Sprintf("Failed to get record: %v", err))
			return
		}
		if err := json.NewEncoder(w).Encode(rec); err != nil {
			s.writeJSONError(w, http.StatusInternalServerError, "Failed to write record")
		}
	case http.MethodPatch:
		var patch recordPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			s.writeJSONError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if patch.Archived == nil && patch.Scanned == nil {
			s.writeJSONError(w, http.StatusBadRequest, "Nothing to update")
			return
		}
		if patch.Archived != nil {
			if err := s.recordFlagError(w, s.db.SetArchived(r.Context(), id, *patch.Archived)); err != nil {
				return
			}
		}
		if patch.Scanned != nil {
			if err := s.recordFlagError(w, s.db.SetScanned(r.Context(), id, *patch.Scanned)); err != nil {
				return
			}
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	case http.MethodDelete:
		err := s.db.DeleteRecord(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			s.writeJSONError(w, http.StatusNotFound, "Record not found")
			return
		}
		if err != nil {
			s.writeJSONError(w, http.StatusInternalServerError,
				fmt.Sprintf("Failed to delete record: %v", err))
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "deleted"})
	default:
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// recordFlagError maps a flag update failure onto the response and reports
// whether a response was already written.
func (s *Server) recordFlagError(w http.ResponseWriter, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		s.writeJSONError(w, http.StatusNotFound, "Record not found")
		return err
	}
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError,
			fmt.Sprintf("Failed to update record: %v", err))
		return err
	}
	return nil
}
