// Package history keeps snapshot-based undo and redo stacks for one editing
// session.
package history

import "screen-annotate/src/annotation"

// Manager holds the undo and redo stacks, oldest snapshot first. The zero value
// is ready to use and keeps unlimited history.
type Manager struct {
	undo  []annotation.Snapshot
	redo  []annotation.Snapshot
	limit int
}

// New returns a Manager keeping at most limit undo entries; limit <= 0 means
// unlimited.
func New(limit int) *Manager {
	if limit < 0 {
		limit = 0
	}
	return &Manager{limit: limit}
}

// Push records cur as the state to return to on the next Undo. It does not
// touch the redo stack; mutations call ClearRedo themselves.
func (m *Manager) Push(cur annotation.Snapshot) {
	m.undo = append(m.undo, cur)
	if m.limit > 0 && len(m.undo) > m.limit {
		m.undo = append([]annotation.Snapshot(nil), m.undo[len(m.undo)-m.limit:]...)
	}
}

// Record is Push followed by ClearRedo, the bookkeeping for a direct mutation.
func (m *Manager) Record(cur annotation.Snapshot) {
	m.Push(cur)
	m.ClearRedo()
}

// Undo pops the newest snapshot and moves cur onto the redo stack. ok is false,
// and nothing changes, when there is nothing to undo.
func (m *Manager) Undo(cur annotation.Snapshot) (annotation.Snapshot, bool) {
	prev, ok := pop(&m.undo)
	if !ok {
		return annotation.Snapshot{}, false
	}
	m.redo = append(m.redo, cur)
	return prev, true
}

// Redo pops the newest redo snapshot and records cur through Push so it can be
// undone again.
func (m *Manager) Redo(cur annotation.Snapshot) (annotation.Snapshot, bool) {
	next, ok := pop(&m.redo)
	if !ok {
		return annotation.Snapshot{}, false
	}
	m.Push(cur)
	return next, true
}

func (m *Manager) ClearRedo() { m.redo = nil }

// Reset drops both stacks.
func (m *Manager) Reset() {
	m.undo = nil
	m.redo = nil
}

func (m *Manager) CanUndo() bool  { return len(m.undo) > 0 }
func (m *Manager) CanRedo() bool  { return len(m.redo) > 0 }
func (m *Manager) UndoDepth() int { return len(m.undo) }
func (m *Manager) RedoDepth() int { return len(m.redo) }

func pop(stack *[]annotation.Snapshot) (annotation.Snapshot, bool) {
	s := *stack
	if len(s) == 0 {
		return annotation.Snapshot{}, false
	}
	top := s[len(s)-1]
	*stack = s[:len(s)-1]
	return top, true
}
