// Package status holds the bridge's shared state cells and a thread-safe
// snapshot for HTTP and lifecycle events.
//
// Each readiness flag and the mode flag is an independent atomic value:
// readers never see a torn flag, but there is no cross-field snapshot
// guarantee and none is needed.
package status

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sweeney/boilerstat/internal/led"
	"github.com/sweeney/boilerstat/internal/logic"
)

// NetworkInfo contains network state as reported by pi-helper.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains bridge configuration for display.
type Config struct {
	PollMs       int64
	PublishMs    int64
	DebounceMs   int64
	StableCount  int
	Broker       string
	ReadingTopic string
	ControlTopic string
	HTTPAddr     string
}

// Counts tracks publish and control activity since startup.
type Counts struct {
	Published       int
	PublishFailed   int
	Skipped         int
	ControlMessages int
	ControlRejected int
}

// Snapshot is a point-in-time view of bridge state.
// It is a value type: safe to use after the lock is released.
type Snapshot struct {
	TransportReady bool
	SessionReady   bool
	TimeReady      bool
	ErrorFlagged   bool
	Demo           bool
	Display        led.State
	Channels       [logic.NumChannels]bool // logical levels
	LastReading    *logic.Reading
	Counts         Counts
	StartTime      time.Time
	Now            time.Time
	Network        *NetworkInfo
	Config         Config
}

// Uptime returns the duration since the bridge started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker owns the shared cells.
//
// Writers: the readiness poller owns transport/session/time, the control
// handler owns the demo flag, anyone may raise or clear the error flag.
type Tracker struct {
	transport atomic.Bool
	session   atomic.Bool
	timeOK    atomic.Bool
	errFlag   atomic.Bool
	demo      atomic.Bool
	booted    atomic.Bool

	mu     sync.RWMutex
	snap   Snapshot
	levels logic.LevelSource
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
			Display:   led.StateBooting,
		},
	}
}

// SetTransportReady records network association.
func (t *Tracker) SetTransportReady(v bool) { t.transport.Store(v) }

// TransportReady reports network association.
func (t *Tracker) TransportReady() bool { return t.transport.Load() }

// SetSessionReady records whether the MQTT session is established.
func (t *Tracker) SetSessionReady(v bool) { t.session.Store(v) }

// SessionReady reports whether the MQTT session is established.
func (t *Tracker) SessionReady() bool { return t.session.Load() }

// SetTimeReady records whether wall-clock time is trustworthy.
func (t *Tracker) SetTimeReady(v bool) { t.timeOK.Store(v) }

// TimeReady reports whether wall-clock time is trustworthy.
func (t *Tracker) TimeReady() bool { return t.timeOK.Load() }

// SetError raises or clears the error override. Last write wins.
func (t *Tracker) SetError(v bool) {
	if t.errFlag.Swap(v) == v {
		return
	}
	if v {
		log.Printf("status: error state SET")
	} else {
		log.Printf("status: error state CLEARED")
	}
}

// ErrorFlagged reports whether the error override is raised.
func (t *Tracker) ErrorFlagged() bool { return t.errFlag.Load() }

// SwapDemo sets demo mode and returns the previous value.
func (t *Tracker) SwapDemo(v bool) bool { return t.demo.Swap(v) }

// DemoEnabled reports whether demo mode is active.
func (t *Tracker) DemoEnabled() bool { return t.demo.Load() }

// MarkBooted ends the booting indicator pattern.
func (t *Tracker) MarkBooted() { t.booted.Store(true) }

// LEDInputs returns the inputs of the indicator state machine.
func (t *Tracker) LEDInputs() led.Inputs {
	return led.Inputs{
		Booting:        !t.booted.Load(),
		TransportReady: t.TransportReady(),
		SessionReady:   t.SessionReady(),
		TimeReady:      t.TimeReady(),
		Error:          t.ErrorFlagged(),
	}
}

// SetLevels registers the source of live logical channel levels.
func (t *Tracker) SetLevels(src logic.LevelSource) {
	t.mu.Lock()
	t.levels = src
	t.mu.Unlock()
}

// SetDisplayState records the indicator state.
func (t *Tracker) SetDisplayState(s led.State) {
	t.mu.Lock()
	t.snap.Display = s
	t.mu.Unlock()
}

// RecordPublished records a reading handed to the broker.
func (t *Tracker) RecordPublished(r logic.Reading) {
	t.mu.Lock()
	t.snap.LastReading = &r
	t.snap.Counts.Published++
	t.mu.Unlock()
}

// RecordPublishFailed records a reading the transport rejected.
func (t *Tracker) RecordPublishFailed() {
	t.mu.Lock()
	t.snap.Counts.PublishFailed++
	t.mu.Unlock()
}

// RecordSkipped records a publish cycle skipped for readiness.
func (t *Tracker) RecordSkipped() {
	t.mu.Lock()
	t.snap.Counts.Skipped++
	t.mu.Unlock()
}

// RecordControl records a control message and whether it was rejected.
func (t *Tracker) RecordControl(rejected bool) {
	t.mu.Lock()
	t.snap.Counts.ControlMessages++
	if rejected {
		t.snap.Counts.ControlRejected++
	}
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the bridge state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	levels := t.levels
	t.mu.RUnlock()

	if s.LastReading != nil {
		r := *s.LastReading
		s.LastReading = &r
	}
	if levels != nil {
		for _, ch := range logic.Channels {
			s.Channels[ch] = levels.Logical(ch)
		}
	}
	s.TransportReady = t.TransportReady()
	s.SessionReady = t.SessionReady()
	s.TimeReady = t.TimeReady()
	s.ErrorFlagged = t.ErrorFlagged()
	s.Demo = t.DemoEnabled()
	s.Now = time.Now()
	return s
}
