package ledgers

import (
	"reflect"
	"slices"

	"github.com/reusee/tvk/faults"
	"github.com/reusee/tvk/marshals"
)

// Record is one undoable call. It is never mutated after creation.
type Record struct {
	Name string
	// Undo is nil when Irreversible is set; undoing such a record is a no-op.
	Undo         []any
	Redo         []any
	Irreversible bool
}

// Replayer re-issues a recorded call.
type Replayer interface {
	Replay(name string, params []any) error
}

type ReplayFunc func(name string, params []any) error

var _ Replayer = ReplayFunc(nil)

func (r ReplayFunc) Replay(name string, params []any) error {
	return r(name, params)
}

type Ledger struct {
	guard            Guard
	records          []Record
	cursor           int
	enabled          bool
	// generation changes on every Clear; calls begun before it are not recorded
	generation       int
	reentryException bool
	replayer         Replayer
	observers        []Observer
}

func New(replayer Replayer) *Ledger {
	return &Ledger{
		enabled:          true,
		reentryException: true,
		replayer:         replayer,
	}
}

func (l *Ledger) Observe(o Observer) {
	l.observers = append(l.observers, o)
}

func (l *Ledger) emit(kind EventKind, record Record) {
	for _, o := range l.observers {
		o(Event{
			Kind:   kind,
			Record: record,
			Cursor: l.cursor,
		})
	}
}

// Call tracks one non-exempt invocation between Begin and Commit or Abort.
type Call struct {
	ledger     *Ledger
	name       string
	log        bool
	generation int
	restore    func()
}

// Begin is called before the native body of a non-exempt function runs.
// A call nested in another logged call fails with a reentry error when the
// reentry exception is on, and runs unrecorded otherwise.
func (l *Ledger) Begin(name string) (*Call, error) {
	call := &Call{
		ledger:     l,
		name:       name,
		generation: l.generation,
		restore:    func() {},
	}
	if !l.enabled {
		return call, nil
	}
	switch l.guard.state {
	case Replaying:
	case Logging:
		if l.reentryException {
			return nil, faults.New(faults.KindReentry, name,
				"registered function called from inside another registered function; consider provenance.enableReentryException(false)")
		}
	default:
		call.log = true
		call.restore = l.guard.enter(Logging)
	}
	return call, nil
}

// Commit records the finished call. undo holds the parameters of the
// previous call of the same function, redo the ones just used.
// Nothing is recorded if the body disabled or cleared the ledger.
func (c *Call) Commit(undo, redo []any, irreversible bool) {
	defer c.restore()
	l := c.ledger
	if !c.log || !l.enabled || l.generation != c.generation {
		return
	}
	record := Record{
		Name:         c.name,
		Redo:         snapshot(redo),
		Irreversible: irreversible,
	}
	if !irreversible {
		record.Undo = snapshot(undo)
		if record.Undo == nil {
			record.Undo = []any{}
		}
	}
	if record.Redo == nil {
		record.Redo = []any{}
	}
	// discard the redo branch
	clear(l.records[l.cursor:])
	l.records = append(l.records[:l.cursor], record)
	l.cursor++
	l.emit(EventLogged, record)
}

// Abort ends a failed call without recording it.
func (c *Call) Abort() {
	c.restore()
}

func (l *Ledger) Undo() error {
	if l.guard.state != Idle {
		return faults.Wrap(faults.KindInvalidUndo, "", faults.New(faults.KindReentry, "", "undo issued during a call"))
	}
	if l.cursor == 0 {
		return faults.New(faults.KindInvalidUndo, "", "undo pointer at bottom of stack")
	}
	record := l.records[l.cursor-1]
	if !record.Irreversible {
		if err := l.replay(record.Name, record.Undo); err != nil {
			return faults.Wrap(faults.KindInvalidUndo, record.Name, err)
		}
	}
	l.cursor--
	l.emit(EventUndone, record)
	return nil
}

func (l *Ledger) Redo() error {
	if l.guard.state != Idle {
		return faults.Wrap(faults.KindInvalidRedo, "", faults.New(faults.KindReentry, "", "redo issued during a call"))
	}
	if l.cursor == len(l.records) {
		return faults.New(faults.KindInvalidRedo, "", "redo pointer at top of stack")
	}
	record := l.records[l.cursor]
	if err := l.replay(record.Name, record.Redo); err != nil {
		return faults.Wrap(faults.KindInvalidRedo, record.Name, err)
	}
	l.cursor++
	l.emit(EventRedone, record)
	return nil
}

func (l *Ledger) replay(name string, params []any) error {
	defer l.guard.enter(Replaying)()
	return l.replayer.Replay(name, slices.Clone(params))
}

// Note tells observers about an exempt top level call. The history is not touched.
func (l *Ledger) Note(name string, params []any) {
	if !l.enabled || l.guard.state != Idle {
		return
	}
	l.emit(EventNoted, Record{
		Name: name,
		Redo: snapshot(params),
	})
}

// Clear drops all history. It is not undoable.
func (l *Ledger) Clear() {
	clear(l.records)
	l.records = l.records[:0]
	l.cursor = 0
	l.generation++
	l.emit(EventCleared, Record{})
}

// SetEnabled(false) clears the history first.
func (l *Ledger) SetEnabled(enabled bool) {
	if !enabled && l.enabled {
		l.Clear()
	}
	l.enabled = enabled
}

func (l *Ledger) Enabled() bool {
	return l.enabled
}

func (l *Ledger) SetReentryException(on bool) {
	l.reentryException = on
}

func (l *Ledger) ReentryException() bool {
	return l.reentryException
}

func (l *Ledger) State() State {
	return l.guard.State()
}

func (l *Ledger) Cursor() int {
	return l.cursor
}

func (l *Ledger) Len() int {
	return len(l.records)
}

func (l *Ledger) Records() []Record {
	ret := make([]Record, len(l.records))
	for i, r := range l.records {
		ret[i] = r
		ret[i].Redo = snapshot(r.Redo)
		if r.Undo != nil {
			ret[i].Undo = snapshot(r.Undo)
		}
	}
	return ret
}

// snapshot copies params deeply enough that no slice is shared with the caller.
func snapshot(params []any) []any {
	if params == nil {
		return nil
	}
	ret := make([]any, len(params))
	for i, p := range params {
		if p != nil {
			p = marshals.Detach(reflect.ValueOf(p)).Interface()
		}
		ret[i] = p
	}
	return ret
}
