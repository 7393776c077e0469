package session

const defaultMaxDepth = 50

// History manages undo/redo stacks of workspace states.
type History struct {
	undoStack []State
	redoStack []State
	maxDepth  int
}

func NewHistory(maxDepth int) *History {
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}
	return &History{maxDepth: maxDepth}
}

// Push saves the state before a change and clears the redo stack.
func (h *History) Push(s State) {
	h.undoStack = append(h.undoStack, s)
	if len(h.undoStack) > h.maxDepth {
		h.undoStack = h.undoStack[len(h.undoStack)-h.maxDepth:]
	}
	h.redoStack = nil
}

// Undo returns the state to restore and moves current onto the redo stack.
func (h *History) Undo(current State) (State, bool) {
	if len(h.undoStack) == 0 {
		return State{}, false
	}
	last := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.redoStack = append(h.redoStack, current)
	return last, true
}

// Redo is the inverse of Undo.
func (h *History) Redo(current State) (State, bool) {
	if len(h.redoStack) == 0 {
		return State{}, false
	}
	last := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.undoStack = append(h.undoStack, current)
	return last, true
}

func (h *History) CanUndo() bool { return len(h.undoStack) > 0 }
func (h *History) CanRedo() bool { return len(h.redoStack) > 0 }

// Labels lists the undo stack from oldest to newest.
func (h *History) Labels() []string {
	labels := make([]string, len(h.undoStack))
	for i, s := range h.undoStack {
		labels[i] = s.Label
	}
	return labels
}
