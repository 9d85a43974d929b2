package form

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/farmhand-data/scout.report/internal/monitoring"
	"github.com/farmhand-data/scout.report/internal/record"
	"github.com/farmhand-data/scout.report/internal/schema"
	"github.com/farmhand-data/scout.report/internal/timeutil"
)

// UnknownFieldError reports a field id absent from the form's schema.
type UnknownFieldError struct {
	ID schema.FieldID
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("form: unknown field id %d", e.ID)
}

// FieldController owns one field's state: its current value, touched flag,
// validity, and the single pending debounced write. Validity and touched
// updates are synchronous with the triggering edit; persistence trails by
// the debounce delay and coalesces rapid edits to one write of the latest
// value.
type FieldController struct {
	form  *Form
	entry schema.LayoutEntry

	mu      sync.Mutex
	loaded  bool
	value   record.Value
	touched bool
	invalid bool
	pending *pendingWrite
}

// pendingWrite is the one outstanding debounced write slot. Each edit
// replaces the slot wholesale: the previous timer is stopped and its drain
// goroutine cancelled, so intermediate values never reach the store.
type pendingWrite struct {
	value  record.Value
	timer  timeutil.Timer
	cancel chan struct{}
}

// load fetches the persisted value, falling back to the field's empty
// default on a miss or read error, and reports initial validity upward.
func (fc *FieldController) load(ctx context.Context) {
	stored, ok, err := fc.form.store.Get(ctx, fc.key())
	if err != nil {
		monitoring.Logf("form: load field %d: %v", fc.entry.Field.ID, err)
		ok = false
	}

	fc.mu.Lock()
	if ok && stored != nil {
		fc.value = stored
	} else {
		fc.value = schema.EmptyValue(fc.entry.Field)
	}
	fc.loaded = true
	fc.refreshValidityLocked()
	fc.mu.Unlock()
}

// Value returns the field's current displayed value.
func (fc *FieldController) Value() record.Value {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.value
}

// Touched reports whether the user has edited the field.
func (fc *FieldController) Touched() bool {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.touched
}

// Invalid reports whether the field's current value fails its required
// contract.
func (fc *FieldController) Invalid() bool {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.invalid
}

// ShowError reports whether inline required-field messaging should render:
// the value is invalid and the field was touched or a submit was attempted.
func (fc *FieldController) ShowError() bool {
	fc.mu.Lock()
	invalid, touched := fc.invalid, fc.touched
	fc.mu.Unlock()
	return invalid && (touched || fc.form.Submitted())
}

// SetValue applies a user edit: touched and validity update synchronously,
// persistence is scheduled through the debounce slot.
func (fc *FieldController) SetValue(v record.Value) {
	fc.mu.Lock()
	fc.value = v
	fc.touched = true
	fc.loaded = true
	fc.refreshValidityLocked()
	fc.cancelPendingLocked()

	pw := &pendingWrite{
		value:  v,
		timer:  fc.form.clock.NewTimer(fc.form.debounce),
		cancel: make(chan struct{}),
	}
	fc.pending = pw
	fc.mu.Unlock()

	go fc.drain(pw)
}

func (fc *FieldController) drain(pw *pendingWrite) {
	select {
	case <-pw.timer.C():
	case <-pw.cancel:
		return
	}

	fc.mu.Lock()
	if fc.pending == pw {
		fc.pending = nil
	}
	fc.mu.Unlock()

	fc.write(context.Background(), pw.value)
}

// Flush persists the pending value immediately, if any.
func (fc *FieldController) Flush(ctx context.Context) {
	fc.mu.Lock()
	pw := fc.pending
	fc.cancelPendingLocked()
	fc.mu.Unlock()
	if pw != nil {
		fc.write(ctx, pw.value)
	}
}

// Close tears the controller down: the pending write is cancelled without
// flushing and the field's validity no longer blocks the form.
func (fc *FieldController) Close() {
	fc.mu.Lock()
	fc.cancelPendingLocked()
	fc.mu.Unlock()
	fc.form.setInvalid(fc.entry.Field.ID, false)
}

func (fc *FieldController) reset(ctx context.Context) error {
	fc.mu.Lock()
	fc.cancelPendingLocked()
	fc.value = schema.EmptyValue(fc.entry.Field)
	fc.touched = false
	fc.refreshValidityLocked()
	fc.mu.Unlock()

	if err := fc.form.store.Remove(ctx, fc.key()); err != nil {
		return fmt.Errorf("reset field %d: %w", fc.entry.Field.ID, err)
	}
	return nil
}

// write is fire-and-forget: a failed write leaves the in-memory value
// authoritative, a durability gap the caller accepts.
func (fc *FieldController) write(ctx context.Context, v record.Value) {
	if err := fc.form.store.Set(ctx, fc.key(), v); err != nil {
		monitoring.Logf("form: persist field %d: %v", fc.entry.Field.ID, err)
	}
}

// key is the store key for this field: its id as a decimal string.
func (fc *FieldController) key() string {
	return strconv.Itoa(int(fc.entry.Field.ID))
}

func (fc *FieldController) refreshValidityLocked() {
	fc.invalid = schema.FieldInvalid(fc.entry.Field.Required, fc.entry.Field.Type, fc.value)
	fc.form.setInvalid(fc.entry.Field.ID, fc.invalid)
}

func (fc *FieldController) cancelPendingLocked() {
	if fc.pending == nil {
		return
	}
	fc.pending.timer.Stop()
	close(fc.pending.cancel)
	fc.pending = nil
}
