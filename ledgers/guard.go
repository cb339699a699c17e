package ledgers

type State uint8

const (
	Idle State = iota
	Logging
	Replaying
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Logging:
		return "logging"
	case Replaying:
		return "replaying"
	}
	return "invalid"
}

// Guard is the reentrancy state of one bridge.
// Only one call is ever in flight, so it needs no synchronization.
type Guard struct {
	state State
}

func (g *Guard) State() State {
	return g.state
}

// enter switches to s and returns a func restoring the previous state.
func (g *Guard) enter(s State) func() {
	prev := g.state
	g.state = s
	return func() {
		g.state = prev
	}
}
