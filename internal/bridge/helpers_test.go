package bridge

import (
	"errors"
	"sync"
	"time"

	"github.com/sweeney/boilerstat/internal/gpio"
	"github.com/sweeney/boilerstat/internal/led"
	"github.com/sweeney/boilerstat/internal/logic"
	"github.com/sweeney/boilerstat/internal/status"
)

var epoch = time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC)

// fakeClock returns a function that yields start, start+step, start+2*step, ...
// on successive calls. Not safe for concurrent use.
func fakeClock(start time.Time, step time.Duration) Clock {
	n := 0
	return func() time.Time {
		t := start.Add(time.Duration(n) * step)
		n++
		return t
	}
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

// repeat returns n copies of sample.
func repeat(sample logic.RawLevels, n int) []logic.RawLevels {
	out := make([]logic.RawLevels, n)
	for i := range out {
		out[i] = sample
	}
	return out
}

// allRaw returns a sample with every input at the same raw level.
func allRaw(v bool) logic.RawLevels {
	var l logic.RawLevels
	for i := range l {
		l[i] = v
	}
	return l
}

// faultReader wraps a FakeReader and returns errors for a range of ReadRaw calls.
type faultReader struct {
	inner      *gpio.FakeReader
	call       int
	faultStart int // inclusive
	faultEnd   int // exclusive
}

func (r *faultReader) ReadRaw() (logic.RawLevels, error) {
	i := r.call
	r.call++
	if i >= r.faultStart && i < r.faultEnd {
		return logic.RawLevels{}, errors.New("gpio fault")
	}
	return r.inner.ReadRaw()
}

func (r *faultReader) Close() error { return r.inner.Close() }

// readyTracker returns a booted tracker with every readiness flag set.
func readyTracker() *status.Tracker {
	tr := status.NewTracker(epoch, status.Config{})
	tr.MarkBooted()
	tr.SetTransportReady(true)
	tr.SetSessionReady(true)
	tr.SetTimeReady(true)
	return tr
}

// fixedDemo always generates the same sample.
type fixedDemo struct {
	burner bool
	zones  [logic.NumZones]bool
	calls  int
}

func (d *fixedDemo) Generate() (bool, [logic.NumZones]bool) {
	d.calls++
	return d.burner, d.zones
}

// countingResetter counts Reset calls.
type countingResetter struct{ resets int }

func (r *countingResetter) Reset() { r.resets++ }

// overlayRecorder records triggered patterns.
type overlayRecorder struct {
	mu       sync.Mutex
	patterns []led.Pattern
}

func (o *overlayRecorder) Trigger(p led.Pattern) {
	o.mu.Lock()
	o.patterns = append(o.patterns, p)
	o.mu.Unlock()
}

func (o *overlayRecorder) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.patterns)
}
