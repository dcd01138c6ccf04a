package led

import (
	"context"
	"log"
	"sync/atomic"
	"time"
)

// Output is a binary indicator.
type Output interface {
	Set(on bool) error
}

// DefaultInterval is the longest the signaler sleeps before re-evaluating.
const DefaultInterval = 100 * time.Millisecond

// Signaler runs the indicator state machine against an Output.
type Signaler struct {
	out      Output
	inputs   func() Inputs
	interval time.Duration

	// OnChange, if set, is called from Run on every display state change.
	OnChange func(State)

	// wait sleeps for d; returns false if ctx ended first.
	wait func(ctx context.Context, d time.Duration) bool

	pending atomic.Pointer[Pattern]
	state   atomic.Int32
}

// NewSignaler creates a signaler that reads inputs at most every interval.
func NewSignaler(out Output, inputs func() Inputs, interval time.Duration) *Signaler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	s := &Signaler{
		out:      out,
		inputs:   inputs,
		interval: interval,
		wait:     sleepCtx,
	}
	s.state.Store(int32(StateBooting))
	return s
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Trigger queues a one-shot overlay. Safe for concurrent use; the latest
// request wins if several arrive within one interval.
func (s *Signaler) Trigger(p Pattern) {
	s.pending.Store(&p)
}

// State returns the last resolved display state.
func (s *Signaler) State() State {
	return State(s.state.Load())
}

// Run drives the output until ctx is done, then turns it off.
func (s *Signaler) Run(ctx context.Context) error {
	m := NewMachine()
	failing := false
	first := true
	var level bool

	defer s.out.Set(false)

	for {
		if p := s.pending.Swap(nil); p != nil {
			m.Trigger(*p)
		}

		if m.Evaluate(s.inputs()) {
			st := m.State()
			s.state.Store(int32(st))
			log.Printf("led: state %s", st)
			if s.OnChange != nil {
				s.OnChange(st)
			}
		}

		if l := m.Level(); first || l != level {
			level = l
			first = false
			if err := s.out.Set(level); err != nil {
				if !failing {
					log.Printf("led: set output: %v", err)
				}
				failing = true
			} else {
				failing = false
			}
		}

		d := min(m.Remaining(), s.interval)
		if !s.wait(ctx, d) {
			return ctx.Err()
		}
		m.Advance(d)
	}
}
