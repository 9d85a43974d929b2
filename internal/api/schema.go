package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/farmhand-data/scout.report/internal/qr"
	"github.com/farmhand-data/scout.report/internal/schema"
	"github.com/farmhand-data/scout.report/internal/store"
)

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch r.Method {
	case http.MethodGet:
		s.activeSchema(w, r)
	case http.MethodPost:
		s.uploadSchema(w, r)
	default:
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *Server) activeSchema(w http.ResponseWriter, r *http.Request) {
	sc, err := s.db.ActiveSchema(r.Context())
	if errors.Is(err, store.ErrNotFound) {
		s.writeJSONError(w, http.StatusNotFound, "No active schema")
		return
	}
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError,
			fmt.Sprintf("Failed to get active schema: %v", err))
		return
	}
	if err := json.NewEncoder(w).Encode(sc); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write schema")
	}
}

// uploadSchema stores the posted schema and makes it the active one. The
// body is either a raw schema document or a scanned schema QR payload
// wrapped as {"code": "..."}.
func (s *Server) uploadSchema(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sc, err := parseSchemaUpload(raw)
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(sc.Sections) == 0 {
		s.writeJSONError(w, http.StatusBadRequest, "Schema has no sections")
		return
	}
	for _, sec := range sc.Sections {
		for _, f := range sec.Fields {
			if !f.Type.Valid() {
				s.writeJSONError(w, http.StatusBadRequest,
					fmt.Sprintf("Unknown field type %q", f.Type))
				return
			}
		}
	}

	hash, err := s.db.SaveSchema(r.Context(), sc)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError,
			fmt.Sprintf("Failed to save schema: %v", err))
		return
	}
	if err := s.db.SetActiveSchema(r.Context(), hash); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError,
			fmt.Sprintf("Failed to activate schema: %v", err))
		return
	}

	json.NewEncoder(w).Encode(map[string]string{"hash": hash})
}

func parseSchemaUpload(raw json.RawMessage) (*schema.Schema, error) {
	var wrapped struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Code != "" {
		sc, err := qr.DecodeSchema(wrapped.Code)
		if err != nil {
			return nil, fmt.Errorf("Invalid schema code: %v", err)
		}
		return sc, nil
	}

	var sc schema.Schema
	if err := json.Unmarshal(raw, &sc); err != nil {
		return nil, errors.New("Invalid schema document")
	}
	return &sc, nil
}

// handleSchemaQR encodes the active schema as a transferable QR payload.
func (s *Server) handleSchemaQR(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	sc, err := s.db.ActiveSchema(r.Context())
	if errors.Is(err, store.ErrNotFound) {
		s.writeJSONError(w, http.StatusNotFound, "No active schema")
		return
	}
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError,
			fmt.Sprintf("Failed to get active schema: %v", err))
		return
	}

	code, err := qr.EncodeSchema(sc)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError,
			fmt.Sprintf("Failed to encode schema: %v", err))
		return
	}

	json.NewEncoder(w).Encode(map[string]string{"code": code})
}
