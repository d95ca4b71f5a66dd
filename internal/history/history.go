// Package history keeps bounded undo and redo stacks of whole-model
// snapshots. Restoring a snapshot replaces the model wholesale.
package history

// DefaultMaxEntries bounds the undo stack when no size is given.
const DefaultMaxEntries = 50

// Snapshot is a saved model state: the exported document plus the reference
// of the item selected when it was taken.
type Snapshot struct {
	Document  []byte
	Selection string
}

// History holds undo and redo stacks. The undo stack drops its oldest entry
// once it holds max snapshots.
type History struct {
	max       int
	undoStack []Snapshot
	redoStack []Snapshot
}

// New creates a history holding at most max undo entries.
func New(max int) *History {
	if max <= 0 {
		max = DefaultMaxEntries
	}
	return &History{max: max}
}

// Record pushes the state taken before a mutation and discards redo history.
func (h *History) Record(s Snapshot) {
	if len(h.undoStack) == h.max {
		copy(h.undoStack, h.undoStack[1:])
		h.undoStack = h.undoStack[:len(h.undoStack)-1]
	}
	h.undoStack = append(h.undoStack, s)
	h.redoStack = h.redoStack[:0]
}

// Undo pops the most recent snapshot, pushing current onto the redo stack.
// It reports false when there is nothing to undo.
func (h *History) Undo(current Snapshot) (Snapshot, bool) {
	if len(h.undoStack) == 0 {
		return Snapshot{}, false
	}
	last := len(h.undoStack) - 1
	s := h.undoStack[last]
	h.undoStack = h.undoStack[:last]
	h.redoStack = append(h.redoStack, current)
	return s, true
}

// Redo pops the most recently undone snapshot, pushing current back onto
// the undo stack.
func (h *History) Redo(current Snapshot) (Snapshot, bool) {
	if len(h.redoStack) == 0 {
		return Snapshot{}, false
	}
	last := len(h.redoStack) - 1
	s := h.redoStack[last]
	h.redoStack = h.redoStack[:last]
	h.undoStack = append(h.undoStack, current)
	return s, true
}

// Len returns the number of undo entries.
func (h *History) Len() int { return len(h.undoStack) }

// RedoLen returns the number of redo entries.
func (h *History) RedoLen() int { return len(h.redoStack) }

// Max returns the undo stack bound.
func (h *History) Max() int { return h.max }

// Clear drops both stacks.
func (h *History) Clear() {
	h.undoStack = nil
	h.redoStack = nil
}
