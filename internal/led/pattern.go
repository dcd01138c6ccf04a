package led

import "time"

// Step holds the indicator at one level for a duration.
type Step struct {
	On  bool
	Dur time.Duration
}

// Pattern is an ordered sequence of steps. Steady-state patterns loop;
// overlays play once.
type Pattern []Step

// Duration returns the total length of one pass through the pattern.
func (p Pattern) Duration() time.Duration {
	var d time.Duration
	for _, s := range p {
		d += s.Dur
	}
	return d
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

// blinks returns n on/off pairs.
func blinks(n int, on, off time.Duration) Pattern {
	p := make(Pattern, 0, 2*n)
	for i := 0; i < n; i++ {
		p = append(p, Step{On: true, Dur: on}, Step{On: false, Dur: off})
	}
	return p
}

func join(parts ...Pattern) Pattern {
	var p Pattern
	for _, part := range parts {
		p = append(p, part...)
	}
	return p
}

func off(d time.Duration) Pattern { return Pattern{{On: false, Dur: d}} }

var patterns = map[State]Pattern{
	StateBooting:       blinks(1, ms(100), ms(100)),
	StateTransportDown: blinks(1, ms(500), ms(2500)),
	StateLinkPartial:   join(blinks(2, ms(250), ms(250)), off(ms(2000))),
	StateTimeUnsynced:  join(blinks(3, ms(200), ms(200)), off(ms(1800))),
	StateOperational:   blinks(1, ms(100), ms(5900)),
	// SOS: dots, dashes, dots.
	StateError: join(
		blinks(3, ms(150), ms(150)), off(ms(300)),
		blinks(3, ms(450), ms(150)), off(ms(300)),
		blinks(3, ms(150), ms(150)), off(ms(2000)),
	),
}

// PatternFor returns the looping pattern of a display state.
func PatternFor(s State) Pattern {
	if p, ok := patterns[s]; ok {
		return p
	}
	return patterns[StateError]
}

// One-shot overlays.
var (
	// OverlayTransportConnected is 10 flashes in 3 seconds.
	OverlayTransportConnected = blinks(10, ms(150), ms(150))
	// OverlayDemoMode is 5 quick flashes on entering demo mode.
	OverlayDemoMode = blinks(5, ms(100), ms(100))
	// OverlayLiveMode is 2 slow flashes on entering live mode.
	OverlayLiveMode = blinks(2, ms(500), ms(500))
)

// ModeOverlay returns the overlay for a mode change.
func ModeOverlay(demo bool) Pattern {
	if demo {
		return OverlayDemoMode
	}
	return OverlayLiveMode
}
