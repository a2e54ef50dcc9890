package pixelpen

// History is the ordered log of commands applied to a document, with
// a cursor separating what is applied from what has been undone.
//
// The zero value is an empty history.
type History struct {
	commands []Command
	cursor   int
}

// Do applies c to the document and records it, discarding anything
// previously undone past the cursor in the same step. When c fails
// the document is untouched and nothing is recorded. A command that
// applies cleanly but reports no change is not recorded either, so a
// gesture that paints nothing does not cost an undo step.
//
// Do is the only way commands enter the log; applying a command
// directly would leave the history blind to it.
func (h *History) Do(doc *Document, c Command) error {
	changed, err := c.Apply(doc)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	h.commands = append(h.commands[:h.cursor], c)
	h.cursor++
	return nil
}

// Undo reverts the command before the cursor and reports whether
// there was one.
func (h *History) Undo(doc *Document) bool {
	if h.cursor == 0 {
		return false
	}
	h.cursor--
	h.commands[h.cursor].Revert(doc)
	return true
}

// Redo reapplies the command at the cursor and reports whether there
// was one. A command that applied once applies again; Redo panics if
// it does not, since that means the document was edited behind the
// history's back.
func (h *History) Redo(doc *Document) bool {
	if h.cursor == len(h.commands) {
		return false
	}
	if _, err := h.commands[h.cursor].Apply(doc); err != nil {
		panic("pixelpen: command failed on redo: " + err.Error())
	}
	h.cursor++
	return true
}

// CanUndo reports whether Undo would do anything.
func (h *History) CanUndo() bool {
	return h.cursor > 0
}

// CanRedo reports whether Redo would do anything.
func (h *History) CanRedo() bool {
	return h.cursor < len(h.commands)
}
