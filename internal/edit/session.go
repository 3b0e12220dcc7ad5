// Package edit holds the inline-edit state machine: at most one session is
// active at a time, and it ends by Commit or Cancel.
package edit

import "github.com/mesh-intelligence/datagrid/pkg/types"

// State is the machine state.
type State int

const (
	Idle State = iota
	Editing
)

func (s State) String() string {
	if s == Editing {
		return "editing"
	}
	return "idle"
}

// Session is one in-progress edit of the cell (Row, Field).
type Session struct {
	ID       uint64 // distinguishes sessions on the same cell
	Row      int    // base collection index
	Field    string
	Original types.Value
	Current  types.Value
	Options  []types.LookupOption
}

// Changed reports whether the live value differs from the original.
func (s Session) Changed() bool { return !s.Current.Equal(s.Original) }

// Machine enforces the single-session invariant. The zero value is idle.
type Machine struct {
	active *Session
	seq    uint64
}

// State returns Idle or Editing.
func (m *Machine) State() State {
	if m.active == nil {
		return Idle
	}
	return Editing
}

// Active returns a copy of the active session.
func (m *Machine) Active() (Session, bool) {
	if m.active == nil {
		return Session{}, false
	}
	return *m.active, true
}

// Begin starts editing (row, field). If a session is already active it is
// cancelled first and returned as cancelled.
func (m *Machine) Begin(row int, field string, original types.Value) (started Session, cancelled *Session) {
	if m.active != nil {
		prev, _ := m.Cancel()
		cancelled = &prev
	}
	m.seq++
	m.active = &Session{
		ID:       m.seq,
		Row:      row,
		Field:    field,
		Original: original,
		Current:  original,
	}
	return *m.active, cancelled
}

// Set replaces the live value of the active session.
func (m *Machine) Set(v types.Value) error {
	if m.active == nil {
		return types.ErrNoEditSession
	}
	m.active.Current = v
	return nil
}

// SetOptions attaches lookup options to session id. It reports false when
// that session is no longer active, so late option loads are dropped.
func (m *Machine) SetOptions(id uint64, opts []types.LookupOption) bool {
	if m.active == nil || m.active.ID != id {
		return false
	}
	m.active.Options = opts
	return true
}

// Commit ends the active session and returns it for the caller to apply.
func (m *Machine) Commit() (Session, error) {
	if m.active == nil {
		return Session{}, types.ErrNoEditSession
	}
	s := *m.active
	m.active = nil
	return s, nil
}

// Cancel ends the active session without applying it.
func (m *Machine) Cancel() (Session, bool) {
	if m.active == nil {
		return Session{}, false
	}
	s := *m.active
	m.active = nil
	return s, true
}

// Reindex moves the active session after the base collection changed
// shape. remap returns the new index of a row, or false if it is gone, in
// which case the session is cancelled.
func (m *Machine) Reindex(remap func(row int) (int, bool)) {
	if m.active == nil {
		return
	}
	row, ok := remap(m.active.Row)
	if !ok {
		m.active = nil
		return
	}
	m.active.Row = row
}

// EditState converts the active session to its public view form.
func (m *Machine) EditState() *types.EditState {
	if m.active == nil {
		return nil
	}
	return &types.EditState{
		Row:      m.active.Row,
		Field:    m.active.Field,
		Original: m.active.Original,
		Current:  m.active.Current,
		Options:  m.active.Options,
	}
}
