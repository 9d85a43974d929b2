package form

import (
	"context"

	"github.com/farmhand-data/scout.report/internal/record"
)

// Store is the key-value persistence collaborator for in-progress form
// values. Keys are field ids rendered as strings; the same store carries
// composite keys for settings and archival flags, which this package does
// not touch.
type Store interface {
	// Get returns the stored value for key. The second return is false
	// when no value is stored.
	Get(ctx context.Context, key string) (record.Value, bool, error)
	Set(ctx context.Context, key string, v record.Value) error
	Remove(ctx context.Context, key string) error
}
