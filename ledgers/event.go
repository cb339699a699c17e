package ledgers

type EventKind uint8

const (
	EventLogged EventKind = iota + 1
	EventUndone
	EventRedone
	EventCleared
	// EventNoted is an unrecorded call that still matters for replaying a session, like object creation.
	EventNoted
)

func (k EventKind) String() string {
	switch k {
	case EventLogged:
		return "call"
	case EventUndone:
		return "undo"
	case EventRedone:
		return "redo"
	case EventCleared:
		return "clear"
	case EventNoted:
		return "note"
	}
	return "invalid"
}

type Event struct {
	Kind   EventKind
	Record Record
	// Cursor is the ledger cursor after the change.
	Cursor int
}

// ParseEventKind is the inverse of EventKind.String.
func ParseEventKind(s string) (EventKind, bool) {
	for k := EventLogged; k <= EventNoted; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

type Observer func(Event)
