package qr

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/farmhand-data/scout.report/internal/record"
	"github.com/farmhand-data/scout.report/internal/schema"
)

// EncodeRecord wraps a submission's positional value array in a match
// payload.
func EncodeRecord(r record.Record) (string, error) {
	return Encode(TypeMatch, r.SchemaHash, r.DeviceID, r.Data)
}

// DecodeRecord unwraps a match payload into a Record. Payloads of any other
// type are rejected.
func DecodeRecord(s string) (record.Record, error) {
	d, err := Decode(s)
	if err != nil {
		return record.Record{}, err
	}
	if d.Type != TypeMatch {
		return record.Record{}, fmt.Errorf("qr: expected a match payload, got %s", d.Type)
	}
	var data []record.Value
	if err := json.Unmarshal(d.Data, &data); err != nil {
		return record.Record{}, fmt.Errorf("qr: match payload is not a value array: %w", err)
	}
	return record.Record{
		SchemaHash: d.SchemaHash,
		DeviceID:   d.DeviceID,
		Data:       data,
	}, nil
}

// EncodeSchema wraps a schema in a schema payload so another device can
// adopt the same form shape.
func EncodeSchema(s *schema.Schema) (string, error) {
	hash, err := s.Hash()
	if err != nil {
		return "", err
	}
	return Encode(TypeSchema, hash, 0, s)
}

// DecodeSchema unwraps a schema payload.
func DecodeSchema(payload string) (*schema.Schema, error) {
	d, err := Decode(payload)
	if err != nil {
		return nil, err
	}
	if d.Type != TypeSchema {
		return nil, fmt.Errorf("qr: expected a schema payload, got %s", d.Type)
	}
	var s schema.Schema
	if err := json.Unmarshal(d.Data, &s); err != nil {
		return nil, fmt.Errorf("qr: schema payload: %w", err)
	}
	return &s, nil
}

// ImportResult is the outcome of decoding one payload of a bulk import.
type ImportResult struct {
	Index  int
	Record record.Record
	Err    error
}

// ImportRecords decodes a batch of match payloads concurrently. Each
// payload succeeds or fails on its own; a bad payload never aborts its
// neighbours. Results are returned in input order.
func ImportRecords(payloads []string) []ImportResult {
	results := make([]ImportResult, len(payloads))
	var wg sync.WaitGroup
	for i, p := range payloads {
		wg.Add(1)
		go func(i int, p string) {
			defer wg.Done()
			r, err := DecodeRecord(p)
			results[i] = ImportResult{Index: i, Record: r, Err: err}
		}(i, p)
	}
	wg.Wait()
	return results
}
