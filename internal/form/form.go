// Package form tracks the in-progress state of a scouting form: per-field
// values, touched and validity state, and the debounced write-through of
// edits to the persistence store.
package form

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/farmhand-data/scout.report/internal/record"
	"github.com/farmhand-data/scout.report/internal/schema"
	"github.com/farmhand-data/scout.report/internal/timeutil"
)

// DebounceDelay is the trailing-edge delay between the last edit to a field
// and its persisted write.
const DebounceDelay = 300 * time.Millisecond

// Form is the aggregate root for one rendered scouting form. It owns the
// invalid-field set; field controllers mutate it only through their own
// field id, so concurrent edits to different fields never conflict beyond
// last-writer-wins on the shared set.
type Form struct {
	store    Store
	clock    timeutil.Clock
	schema   *schema.Schema
	layout   *schema.FieldLayout
	debounce time.Duration

	mu          sync.Mutex
	invalid     map[schema.FieldID]struct{}
	submitted   bool
	controllers map[schema.FieldID]*FieldController
}

// Option adjusts a Form at construction.
type Option func(*Form)

// WithClock substitutes the clock driving debounce timers.
func WithClock(c timeutil.Clock) Option {
	return func(f *Form) { f.clock = c }
}

// WithDebounce overrides the debounce delay.
func WithDebounce(d time.Duration) Option {
	return func(f *Form) { f.debounce = d }
}

// New creates a Form for the given schema backed by the given store.
func New(s *schema.Schema, store Store, opts ...Option) *Form {
	f := &Form{
		store:       store,
		clock:       timeutil.NewRealClock(),
		schema:      s,
		layout:      schema.NewLayout(s),
		debounce:    DebounceDelay,
		invalid:     make(map[schema.FieldID]struct{}),
		controllers: make(map[schema.FieldID]*FieldController),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Schema returns the schema this form renders.
func (f *Form) Schema() *schema.Schema { return f.schema }

// Layout returns the positional layout of the form's schema.
func (f *Form) Layout() *schema.FieldLayout { return f.layout }

// Field returns the controller for the field with the given id, creating
// and loading it on first use. Loading reads the persisted value, falling
// back to the field's empty default on a miss or a read error.
func (f *Form) Field(ctx context.Context, id schema.FieldID) (*FieldController, error) {
	f.mu.Lock()
	if fc, ok := f.controllers[id]; ok {
		f.mu.Unlock()
		return fc, nil
	}
	idx, ok := f.layout.IndexOf(id)
	if !ok {
		f.mu.Unlock()
		return nil, &UnknownFieldError{ID: id}
	}
	entry := f.layout.At(idx)
	fc := &FieldController{form: f, entry: entry}
	f.controllers[id] = fc
	f.mu.Unlock()

	fc.load(ctx)
	return fc, nil
}

// Valid reports whether no field currently holds an invalid value.
func (f *Form) Valid() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.invalid) == 0
}

// InvalidFields returns the ids of currently invalid fields in ascending
// order.
func (f *Form) InvalidFields() []schema.FieldID {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]schema.FieldID, 0, len(f.invalid))
	for id := range f.invalid {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// SetSubmitted records that a submit was attempted, which surfaces error
// messaging on untouched invalid fields.
func (f *Form) SetSubmitted(submitted bool) {
	f.mu.Lock()
	f.submitted = submitted
	f.mu.Unlock()
}

// Submitted reports whether a submit has been attempted.
func (f *Form) Submitted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitted
}

// Values snapshots every loaded field's current value keyed by field id.
// Unloaded fields are absent; the record codec fills those slots with nil.
func (f *Form) Values() map[schema.FieldID]record.Value {
	f.mu.Lock()
	fcs := make(map[schema.FieldID]*FieldController, len(f.controllers))
	for id, fc := range f.controllers {
		fcs[id] = fc
	}
	f.mu.Unlock()

	out := make(map[schema.FieldID]record.Value, len(fcs))
	for id, fc := range fcs {
		fc.mu.Lock()
		if fc.loaded {
			out[id] = fc.value
		}
		fc.mu.Unlock()
	}
	return out
}

// Flush drains every field's pending debounced write immediately. Called
// before encoding the form into a record so the store and the in-memory
// state agree.
func (f *Form) Flush(ctx context.Context) {
	f.mu.Lock()
	fcs := make([]*FieldController, 0, len(f.controllers))
	for _, fc := range f.controllers {
		fcs = append(fcs, fc)
	}
	f.mu.Unlock()
	for _, fc := range fcs {
		fc.Flush(ctx)
	}
}

// Reset discards all persisted and in-memory values for the form's fields,
// returning each to its empty default.
func (f *Form) Reset(ctx context.Context) error {
	f.mu.Lock()
	fcs := make([]*FieldController, 0, len(f.controllers))
	for _, fc := range f.controllers {
		fcs = append(fcs, fc)
	}
	f.submitted = false
	f.mu.Unlock()

	var firstErr error
	for _, fc := range fcs {
		if err := fc.reset(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (f *Form) setInvalid(id schema.FieldID, invalid bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if invalid {
		f.invalid[id] = struct{}{}
	} else {
		delete(f.invalid, id)
	}
}
