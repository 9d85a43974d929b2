package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/farmhand-data/scout.report/internal/schema"
)

// SaveSchema stores a schema keyed by its content hash. Saving an existing
// hash is a no-op; schema content is immutable under its hash.
func (db *DB) SaveSchema(ctx context.Context, s *schema.Schema) (string, error) {
	hash, err := s.Hash()
	if err != nil {
		return "", err
	}
	body, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encode schema: %w", err)
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO schemas (hash, body) VALUES (?, ?)
		ON CONFLICT(hash) DO NOTHING`,
		hash, string(body))
	if err != nil {
		return "", fmt.Errorf("save schema %s: %w", hash, err)
	}
	return hash, nil
}

// GetSchema returns the schema stored under hash.
func (db *DB) GetSchema(ctx context.Context, hash string) (*schema.Schema, error) {
	var body string
	err := db.QueryRowContext(ctx, `SELECT body FROM schemas WHERE hash = ?`, hash).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get schema %s: %w", hash, err)
	}
	var s schema.Schema
	if err := json.Unmarshal([]byte(body), &s); err != nil {
		return nil, fmt.Errorf("decode schema %s: %w", hash, err)
	}
	return &s, nil
}

// SetActiveSchema marks the schema under hash as the one new forms render.
// Any previously active schema is deactivated.
func (db *DB) SetActiveSchema(ctx context.Context, hash string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("set active schema: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE schemas SET active = 0 WHERE active = 1`); err != nil {
		return fmt.Errorf("deactivate schemas: %w", err)
	}
	res, err := tx.ExecContext(ctx, `UPDATE schemas SET active = 1 WHERE hash = ?`, hash)
	if err != nil {
		return fmt.Errorf("activate schema %s: %w", hash, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// ActiveSchema returns the currently active schema, or ErrNotFound when
// none is active.
func (db *DB) ActiveSchema(ctx context.Context) (*schema.Schema, error) {
	var body string
	err := db.QueryRowContext(ctx, `SELECT body FROM schemas WHERE active = 1`).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get active schema: %w", err)
	}
	var s schema.Schema
	if err := json.Unmarshal([]byte(body), &s); err != nil {
		return nil, fmt.Errorf("decode active schema: %w", err)
	}
	return &s, nil
}
