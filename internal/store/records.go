package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/farmhand-data/scout.report/internal/record"
)

// ErrNotFound reports a lookup for a row that does not exist.
var ErrNotFound = errors.New("store: not found")

// StoredRecord is a record row with its storage metadata.
type StoredRecord struct {
	record.Record
	Archived bool `json:"archived"`
	Scanned  bool `json:"scanned"`
}

// InsertRecord stores a decoded submission. A record without an id is
// assigned one. Returns the stored id.
func (db *DB) InsertRecord(ctx context.Context, r record.Record) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	data, err := json.Marshal(r.Data)
	if err != nil {
		return "", fmt.Errorf("encode record data: %w", err)
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO records (id, schema_hash, device_id, data) VALUES (?, ?, ?, ?)`,
		r.ID, r.SchemaHash, r.DeviceID, string(data))
	if err != nil {
		return "", fmt.Errorf("insert record %s: %w", r.ID, err)
	}
	return r.ID, nil
}

// ListRecords returns stored records, newest first. A non-empty schemaHash
// restricts the result to records captured against that schema. Archived
// records are excluded unless includeArchived is set.
func (db *DB) ListRecords(ctx context.Context, schemaHash string, includeArchived bool) ([]StoredRecord, error) {
	query := `SELECT id, schema_hash, device_id, data, archived, scanned FROM records`
	var args []any
	var conds []string
	if schemaHash != "" {
		conds = append(conds, "schema_hash = ?")
		args = append(args, schemaHash)
	}
	if !includeArchived {
		conds = append(conds, "archived = 0")
	}
	for i, c := range conds {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += " ORDER BY created_at DESC, id"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var out []StoredRecord
	for rows.Next() {
		var sr StoredRecord
		var data string
		if err := rows.Scan(&sr.ID, &sr.SchemaHash, &sr.DeviceID, &data, &sr.Archived, &sr.Scanned); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if err := json.Unmarshal([]byte(data), &sr.Data); err != nil {
			return nil, fmt.Errorf("decode record %s data: %w", sr.ID, err)
		}
		out = append(out, sr)
	}
	return out, rows.Err()
}

// GetRecord returns one stored record by id.
func (db *DB) GetRecord(ctx context.Context, id string) (StoredRecord, error) {
	var sr StoredRecord
	var data string
	err := db.QueryRowContext(ctx, `
		SELECT id, schema_hash, device_id, data, archived, scanned FROM records WHERE id = ?`,
		id).Scan(&sr.ID, &sr.SchemaHash, &sr.DeviceID, &data, &sr.Archived, &sr.Scanned)
	if errors.Is(err, sql.ErrNoRows) {
		return StoredRecord{}, ErrNotFound
	}
	if err != nil {
		return StoredRecord{}, fmt.Errorf("get record %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(data), &sr.Data); err != nil {
		return StoredRecord{}, fmt.Errorf("decode record %s data: %w", id, err)
	}
	return sr, nil
}

// SetArchived flags or unflags a record as archived.
func (db *DB) SetArchived(ctx context.Context, id string, archived bool) error {
	return db.setRecordFlag(ctx, id, "archived", archived)
}

// SetScanned flags or unflags a record as scanned.
func (db *DB) SetScanned(ctx context.Context, id string, scanned bool) error {
	return db.setRecordFlag(ctx, id, "scanned", scanned)
}

func (db *DB) setRecordFlag(ctx context.Context, id, column string, on bool) error {
	// column is one of two compile-time constants, never user input.
	res, err := db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE records SET %s = ? WHERE id = ?`, column), on, id)
	if err != nil {
		return fmt.Errorf("set record %s %s: %w", id, column, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteRecord removes a stored record.
func (db *DB) DeleteRecord(ctx context.Context, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete record %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
