package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/farmhand-data/scout.report/internal/record"
)

// FormValues adapts the database to the form package's Store interface.
// Values are stored as JSON so every field value shape survives a round
// trip.
type FormValues struct {
	db *DB
}

// FormValues returns the form-value view of the database.
func (db *DB) FormValues() *FormValues {
	return &FormValues{db: db}
}

func (fv *FormValues) Get(ctx context.Context, key string) (record.Value, bool, error) {
	var body string
	err := fv.db.QueryRowContext(ctx,
		`SELECT value FROM form_values WHERE key = ?`, key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get form value %q: %w", key, err)
	}
	var v record.Value
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		return nil, false, fmt.Errorf("decode form value %q: %w", key, err)
	}
	return v, true, nil
}

func (fv *FormValues) Set(ctx context.Context, key string, v record.Value) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode form value %q: %w", key, err)
	}
	_, err = fv.db.ExecContext(ctx, `
		INSERT INTO form_values (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, string(body))
	if err != nil {
		return fmt.Errorf("set form value %q: %w", key, err)
	}
	return nil
}

func (fv *FormValues) Remove(ctx context.Context, key string) error {
	if _, err := fv.db.ExecContext(ctx,
		`DELETE FROM form_values WHERE key = ?`, key); err != nil {
		return fmt.Errorf("remove form value %q: %w", key, err)
	}
	return nil
}
