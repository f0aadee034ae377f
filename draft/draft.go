// ABOUTME: Draft manager persisting debounced snapshots of unsaved forms
// ABOUTME: Offers restore-or-discard on re-entry and clears on save
package draft

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/harperreed/visitlog/ai"
	"github.com/harperreed/visitlog/logger"
	"github.com/harperreed/visitlog/store"
)

// DefaultDebounce is how long the tracker waits after the last edit
// before persisting a snapshot. The exact window is not load-bearing; it
// only has to avoid a write per keystroke.
const DefaultDebounce = time.Second

// Snapshot is a recoverable copy of an unsaved form: field values, any
// in-progress analysis result, when it was taken, and which record was
// being edited (empty TargetID means a new record).
type Snapshot struct {
	TargetID string            `json:"target_id"`
	Form     map[string]string `json:"form"`
	Analysis *ai.Analysis      `json:"analysis,omitempty"`
	SavedAt  time.Time         `json:"saved_at"`
}

// Tracker guards one form session. There is a single draft slot: a newer
// session's first debounced write overwrites whatever a previous session
// left behind.
type Tracker struct {
	store    *store.Store
	log      logger.Logger
	targetID string
	debounce time.Duration

	mu      sync.Mutex
	dirty   bool
	pending *Snapshot
	timer   *time.Timer
}

// NewTracker starts a session for the given record id ("" for a new
// record) with the default debounce window.
func NewTracker(st *store.Store, targetID string, log logger.Logger) *Tracker {
	return NewTrackerWithDebounce(st, targetID, log, DefaultDebounce)
}

// NewTrackerWithDebounce is NewTracker with an explicit window. Tests
// pass a short one.
func NewTrackerWithDebounce(st *store.Store, targetID string, log logger.Logger, debounce time.Duration) *Tracker {
	if log == nil {
		log = logger.Silent()
	}
	return &Tracker{store: st, log: log, targetID: targetID, debounce: debounce}
}

// Dirty reports whether the session has unsaved changes.
func (t *Tracker) Dirty() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dirty
}

// Pending returns a restorable snapshot left by an earlier session for
// the same target, or nil. Once this session is dirty there is nothing
// to offer: the slot now belongs to the current edit.
func (t *Tracker) Pending() (*Snapshot, error) {
	t.mu.Lock()
	dirty := t.dirty
	t.mu.Unlock()
	if dirty {
		return nil, nil
	}

	raw, err := t.store.LoadDraft()
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		// A corrupt snapshot is abandoned, not fatal.
		return nil, nil
	}
	if snap.TargetID != t.targetID {
		return nil, nil
	}
	return &snap, nil
}

// Update records the current form state and schedules a debounced
// snapshot write. The first call marks the session dirty.
func (t *Tracker) Update(form map[string]string, analysis *ai.Analysis) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.dirty = true
	t.pending = &Snapshot{
		TargetID: t.targetID,
		Form:     form,
		Analysis: analysis,
		SavedAt:  time.Now(),
	}

	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(t.debounce, func() {
		if err := t.Flush(); err != nil {
			t.log.Warn(fmt.Sprintf("draft snapshot write failed: %v", err))
		}
	})
}

// Flush writes the pending snapshot immediately. Only the most recent
// snapshot is retained; earlier pending writes are superseded.
func (t *Tracker) Flush() error {
	t.mu.Lock()
	snap := t.pending
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()

	if snap == nil {
		return nil
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode draft snapshot: %w", err)
	}
	return t.store.SaveDraft(raw)
}

// Restore loads the offered snapshot into the session and marks it
// dirty, exactly as if the user had re-typed the restored values.
func (t *Tracker) Restore() (*Snapshot, error) {
	snap, err := t.Pending()
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, fmt.Errorf("no draft to restore")
	}
	t.mu.Lock()
	t.dirty = true
	t.mu.Unlock()
	return snap, nil
}

// Discard deletes the offered snapshot and leaves the session clean.
func (t *Tracker) Discard() error {
	return t.store.DeleteDraft()
}

// ClearOnSave unconditionally deletes any snapshot after a successful
// save, whether or not one was ever written.
func (t *Tracker) ClearOnSave() error {
	t.mu.Lock()
	t.pending = nil
	t.dirty = false
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
	return t.store.DeleteDraft()
}

// Cancel abandons the session without touching the slot. With no unsaved
// changes the existing snapshot belongs to someone else; with unsaved
// changes the snapshot stays for the next session to offer.
func (t *Tracker) Cancel() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.pending = nil
	t.mu.Unlock()
}
