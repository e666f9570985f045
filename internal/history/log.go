// Package history records document mutations as reversible actions and
// replays them for undo and redo.
package history

import (
	"log/slog"
)

// Action is one reversible step. Redo performs the mutation again; Undo,
// when non-nil, reverses it. Actions with Cascades set are undone and
// redone together with adjacent groups that start with a cascading action of
// the same name.
type Action struct {
	Name     string
	Redo     func()
	Undo     func()
	Cascades bool
}

// group is the unit of undo: the actions pushed between an outermost
// RecordStart and RecordStop, or a single unbuffered push.
type group struct {
	actions []Action
}

func (g *group) first() Action {
	return g.actions[0]
}

// Log is an undo/redo stack with nested buffering and a bounded history. A new
// Log is disabled; pushes have no effect until Enable is called. It is not
// safe for concurrent use.
type Log struct {
	undo    []*group
	redo    []*group
	pending *group
	depth   int
	clean   *group
	max     int
	enabled bool
}

// New returns a disabled log keeping at most max groups.
func New(max int) *Log {
	if max < 1 {
		max = 1
	}
	return &Log{max: max}
}

func (l *Log) Enable()       { l.enabled = true }
func (l *Log) Disable()      { l.enabled = false }
func (l *Log) Enabled() bool { return l.enabled }

// Push records a. While buffering it joins the open group, otherwise it
// becomes a group of its own. Any redo history is discarded.
func (l *Log) Push(a Action) {
	if !l.enabled {
		return
	}
	if a.Redo == nil {
		panic("history: action " + a.Name + " has no redo function")
	}

	if l.pending != nil {
		l.pending.actions = append(l.pending.actions, a)
	} else {
		l.pushGroup(&group{actions: []Action{a}})
	}
	l.redo = nil
}

func (l *Log) pushGroup(g *group) {
	l.undo = append(l.undo, g)
	if len(l.undo) > l.max {
		evicted := l.undo[0]
		l.undo[0] = nil
		l.undo = l.undo[1:]
		if l.clean == evicted {
			// The clean state can no longer be reached by undoing.
			l.clean = &group{}
		}
	}
}

// RecordStart begins buffering pushes into a single group. Calls nest; the
// group is closed by the matching outermost RecordStop.
func (l *Log) RecordStart() {
	if l.depth == 0 {
		l.pending = &group{}
	}
	l.depth++
}

// RecordStop closes one level of buffering. At the outermost level the
// buffered actions, if any, are pushed as one group. Calling RecordStop
// without an open buffer panics.
func (l *Log) RecordStop() {
	if l.depth == 0 {
		panic("history: RecordStop called without RecordStart")
	}
	l.depth--
	if l.depth > 0 {
		return
	}

	g := l.pending
	l.pending = nil
	if len(g.actions) > 0 {
		l.pushGroup(g)
	}
}

// Recording reports whether pushes are currently buffered.
func (l *Log) Recording() bool {
	return l.depth > 0
}

func (l *Log) discardPending(op string) {
	if l.depth == 0 {
		return
	}
	slog.Warn("discard unfinished history group", "op", op, "actions", len(l.pending.actions), "depth", l.depth)
	l.pending = nil
	l.depth = 0
}

// Undo reverses the topmost group, then keeps going while the group just
// undone and the next one both start with a cascading action of the same
// name. It reports whether anything was undone.
func (l *Log) Undo() bool {
	l.discardPending("undo")
	if len(l.undo) == 0 {
		return false
	}

	was := l.enabled
	l.enabled = false
	defer func() { l.enabled = was }()

	for {
		g := l.undo[len(l.undo)-1]
		l.undo = l.undo[:len(l.undo)-1]

		for i := len(g.actions) - 1; i >= 0; i-- {
			a := g.actions[i]
			if a.Undo == nil {
				continue
			}
			slog.Debug("undo", "action", a.Name)
			a.Undo()
		}
		l.redo = append(l.redo, g)

		if len(l.undo) == 0 || !cascades(g, l.undo[len(l.undo)-1]) {
			return true
		}
	}
}

// Redo replays the topmost undone group in order, cascading under the same
// rule as Undo. It reports whether anything was redone.
func (l *Log) Redo() bool {
	l.discardPending("redo")
	if len(l.redo) == 0 {
		return false
	}

	was := l.enabled
	l.enabled = false
	defer func() { l.enabled = was }()

	for {
		g := l.redo[len(l.redo)-1]
		l.redo = l.redo[:len(l.redo)-1]

		for _, a := range g.actions {
			slog.Debug("redo", "action", a.Name)
			a.Redo()
		}
		l.undo = append(l.undo, g)

		if len(l.redo) == 0 || !cascades(g, l.redo[len(l.redo)-1]) {
			return true
		}
	}
}

func cascades(done, next *group) bool {
	a, b := done.first(), next.first()
	return a.Cascades && b.Cascades && a.Name == b.Name
}

// SetCleanState marks the current top of the undo stack as the saved state.
func (l *Log) SetCleanState() {
	l.clean = l.top()
}

// IsClean reports whether the undo stack is back at the state last marked by
// SetCleanState.
func (l *Log) IsClean() bool {
	return l.top() == l.clean
}

func (l *Log) top() *group {
	if len(l.undo) == 0 {
		return nil
	}
	return l.undo[len(l.undo)-1]
}

// Clear empties both stacks. The empty state becomes clean only if it was
// already marked so.
func (l *Log) Clear() {
	l.discardPending("clear")
	l.undo = nil
	l.redo = nil
}

// StackSize returns the number of undoable groups.
func (l *Log) StackSize() int { return len(l.undo) }

// RedoSize returns the number of redoable groups.
func (l *Log) RedoSize() int { return len(l.redo) }

// UndoName returns the name of the last action of the group Undo would
// reverse, for menu labels.
func (l *Log) UndoName() (string, bool) {
	if len(l.undo) == 0 {
		return "", false
	}
	g := l.undo[len(l.undo)-1]
	return g.actions[len(g.actions)-1].Name, true
}

// RedoName returns the name of the last action of the group Redo would
// replay.
func (l *Log) RedoName() (string, bool) {
	if len(l.redo) == 0 {
		return "", false
	}
	g := l.redo[len(l.redo)-1]
	return g.actions[len(g.actions)-1].Name, true
}
