package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/farmhand-data/scout.report/internal/analysis"
)

// SaveChart stores a chart configuration, assigning an id when absent.
// Saving an existing id replaces the stored configuration.
func (db *DB) SaveChart(ctx context.Context, c analysis.Chart) (analysis.Chart, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	body, err := json.Marshal(c)
	if err != nil {
		return analysis.Chart{}, fmt.Errorf("encode chart: %w", err)
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO charts (id, config) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET config = excluded.config`,
		c.ID, string(body))
	if err != nil {
		return analysis.Chart{}, fmt.Errorf("save chart %s: %w", c.ID, err)
	}
	return c, nil
}

// GetChart returns one saved chart configuration by id.
func (db *DB) GetChart(ctx context.Context, id string) (analysis.Chart, error) {
	var body string
	err := db.QueryRowContext(ctx, `SELECT config FROM charts WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return analysis.Chart{}, ErrNotFound
	}
	if err != nil {
		return analysis.Chart{}, fmt.Errorf("get chart %s: %w", id, err)
	}
	var c analysis.Chart
	if err := json.Unmarshal([]byte(body), &c); err != nil {
		return analysis.Chart{}, fmt.Errorf("decode chart %s: %w", id, err)
	}
	c.ID = id
	return c, nil
}

// ListCharts returns all saved chart configurations in creation order.
func (db *DB) ListCharts(ctx context.Context) ([]analysis.Chart, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, config FROM charts ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list charts: %w", err)
	}
	defer rows.Close()

	var out []analysis.Chart
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("scan chart: %w", err)
		}
		var c analysis.Chart
		if err := json.Unmarshal([]byte(body), &c); err != nil {
			return nil, fmt.Errorf("decode chart %s: %w", id, err)
		}
		c.ID = id
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteChart removes a saved chart configuration.
func (db *DB) DeleteChart(ctx context.Context, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM charts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete chart %s: %w", id, err)
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
