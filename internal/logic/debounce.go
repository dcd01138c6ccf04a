package logic

import (
	"sync/atomic"
	"time"
)

// DebounceState tracks debounce progress for a single channel.
// Only Stable is safe to read from other goroutines.
type DebounceState struct {
	// Last sampled raw level
	Raw bool
	// Consecutive identical raw samples since the last raw change
	RunLength int
	// Time of the last raw transition
	LastChange time.Time

	stable atomic.Bool
}

// Stable returns the filtered level.
func (s *DebounceState) Stable() bool {
	return s.stable.Load()
}

// Filter debounces every channel. Update must only be called from one
// goroutine (the sampler); Stable and Logical may be called from anywhere.
type Filter struct {
	window      time.Duration
	stableCount int
	channels    [NumChannels]DebounceState
}

// NewFilter creates a filter that commits a raw level once it has been seen
// stableCount times in a row, all within window of the first of them.
// All channels start with raw and stable levels false.
func NewFilter(window time.Duration, stableCount int) *Filter {
	if stableCount < 1 {
		stableCount = 1
	}
	return &Filter{
		window:      window,
		stableCount: stableCount,
	}
}

// Update feeds one raw sample for ch taken at now.
//
// A raw change restarts the run. Identical samples extend the run only while
// still inside the window measured from the last raw change; once the window
// has elapsed without reaching the threshold the change is forgotten and the
// stable level stays where it was until the input changes again.
func (f *Filter) Update(ch Channel, raw bool, now time.Time) {
	s := &f.channels[ch]

	if raw != s.Raw {
		s.Raw = raw
		s.RunLength = 1
		s.LastChange = now
		return
	}

	if now.Sub(s.LastChange) >= f.window {
		return
	}

	s.RunLength++
	if s.RunLength >= f.stableCount && s.stable.Load() != s.Raw {
		s.stable.Store(s.Raw)
	}
}

// UpdateAll feeds one raw sample of every channel.
func (f *Filter) UpdateAll(levels RawLevels, now time.Time) {
	for _, ch := range Channels {
		f.Update(ch, levels[ch], now)
	}
}

// Stable returns the debounced raw level of ch.
func (f *Filter) Stable(ch Channel) bool {
	return f.channels[ch].Stable()
}

// Logical returns the logical state of ch. Inputs are wired through
// optocouplers: raw active means the burner or zone is OFF.
func (f *Filter) Logical(ch Channel) bool {
	return !f.Stable(ch)
}

// State returns the debounce state of ch for inspection in tests.
func (f *Filter) State(ch Channel) *DebounceState {
	return &f.channels[ch]
}

// Window returns the configured debounce window.
func (f *Filter) Window() time.Duration {
	return f.window
}

// StableCount returns the configured stability threshold.
func (f *Filter) StableCount() int {
	return f.stableCount
}
