package led

import "time"

// cursor is a position inside a pattern.
type cursor struct {
	pattern Pattern
	step    int
	left    time.Duration // time remaining in the current step
}

func newCursor(p Pattern) cursor {
	return cursor{pattern: p, left: p[0].Dur}
}

func (c *cursor) level() bool {
	return c.pattern[c.step].On
}

// advance consumes d. A looping cursor wraps to the first step; a one-shot
// cursor reports true once its last step has been consumed.
func (c *cursor) advance(d time.Duration, loop bool) (done bool) {
	for d >= c.left {
		d -= c.left
		c.step++
		if c.step == len(c.pattern) {
			if !loop {
				return true
			}
			c.step = 0
		}
		c.left = c.pattern[c.step].Dur
	}
	c.left -= d
	return false
}

// Machine is the indicator state machine. It is not safe for concurrent
// use; Signaler owns one.
type Machine struct {
	state       State
	steady      cursor
	overlay     *cursor
	transportUp bool
}

// NewMachine starts in the booting pattern.
func NewMachine() *Machine {
	return &Machine{
		state:  StateBooting,
		steady: newCursor(PatternFor(StateBooting)),
	}
}

// Evaluate recomputes the display state from in. A state change restarts the
// steady pattern from its first step. A rising edge on transport readiness
// starts the transport-connected overlay. Reports whether the state changed.
func (m *Machine) Evaluate(in Inputs) bool {
	if in.TransportReady && !m.transportUp {
		m.Trigger(OverlayTransportConnected)
	}
	m.transportUp = in.TransportReady

	s := Resolve(in)
	if s == m.state {
		return false
	}
	m.state = s
	m.steady = newCursor(PatternFor(s))
	return true
}

// Trigger preempts the steady pattern with a one-shot overlay, replacing any
// overlay already playing.
func (m *Machine) Trigger(p Pattern) {
	if len(p) == 0 {
		return
	}
	c := newCursor(p)
	m.overlay = &c
}

// State returns the current display state.
func (m *Machine) State() State {
	return m.state
}

// InOverlay reports whether an overlay is playing.
func (m *Machine) InOverlay() bool {
	return m.overlay != nil
}

// Level returns the indicator level right now.
func (m *Machine) Level() bool {
	if m.overlay != nil {
		return m.overlay.level()
	}
	return m.steady.level()
}

// Remaining returns how long the current level holds.
func (m *Machine) Remaining() time.Duration {
	if m.overlay != nil {
		return m.overlay.left
	}
	return m.steady.left
}

// Advance moves time forward by d. The steady pattern does not advance while
// an overlay plays and restarts from its top when the overlay ends.
func (m *Machine) Advance(d time.Duration) {
	if m.overlay != nil {
		if m.overlay.advance(d, false) {
			m.overlay = nil
			m.steady = newCursor(PatternFor(m.state))
		}
		return
	}
	m.steady.advance(d, true)
}
