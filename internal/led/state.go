// Package led drives the single status indicator from the bridge readiness.
//
// Resolve, the pattern tables and Machine are pure; Signaler runs them
// against a real output with sleeps.
package led

// State is the operational status shown on the indicator.
type State int

const (
	StateBooting State = iota
	StateTransportDown
	StateLinkPartial
	StateTimeUnsynced
	StateOperational
	StateError
)

var stateNames = map[State]string{
	StateBooting:       "BOOTING",
	StateTransportDown: "TRANSPORT_DOWN",
	StateLinkPartial:   "LINK_PARTIAL",
	StateTimeUnsynced:  "TIME_UNSYNCED",
	StateOperational:   "OPERATIONAL",
	StateError:         "ERROR",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "UNKNOWN"
}

// Inputs are the readiness flags the display state is derived from.
type Inputs struct {
	Booting        bool
	TransportReady bool
	SessionReady   bool
	TimeReady      bool
	Error          bool
}

// Resolve maps inputs to a display state. Priority, highest first:
// Error, Booting, TransportDown, LinkPartial, TimeUnsynced, Operational.
func Resolve(in Inputs) State {
	switch {
	case in.Error:
		return StateError
	case in.Booting:
		return StateBooting
	case !in.TransportReady:
		return StateTransportDown
	case !in.SessionReady:
		return StateLinkPartial
	case !in.TimeReady:
		return StateTimeUnsynced
	default:
		return StateOperational
	}
}
