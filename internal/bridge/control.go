package bridge

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/sweeney/boilerstat/internal/led"
	"github.com/sweeney/boilerstat/internal/metrics"
	"github.com/sweeney/boilerstat/internal/status"
)

// Control message errors.
var (
	ErrMalformed       = errors.New("control: malformed payload")
	ErrMissingDemoMode = errors.New("control: missing demo_mode")
	ErrDemoModeType    = errors.New("control: demo_mode is not a boolean")
)

// Resetter discards generator state.
type Resetter interface {
	Reset()
}

// Overlayer plays a one-shot indicator pattern.
type Overlayer interface {
	Trigger(p led.Pattern)
}

// Controller applies inbound control messages.
type Controller struct {
	tracker *status.Tracker
	demo    Resetter
	display Overlayer
	metrics *metrics.Metrics
}

// NewController creates a controller. metrics may be nil.
func NewController(tracker *status.Tracker, demo Resetter, display Overlayer, m *metrics.Metrics) *Controller {
	return &Controller{
		tracker: tracker,
		demo:    demo,
		display: display,
		metrics: m,
	}
}

// ParseDemoMode extracts demo_mode from a control payload. Unknown fields
// are ignored.
func ParseDemoMode(payload []byte) (bool, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	raw, ok := fields["demo_mode"]
	if !ok {
		return false, ErrMissingDemoMode
	}
	var demo bool
	if string(raw) == "null" {
		return false, fmt.Errorf("%w: null", ErrDemoModeType)
	}
	if err := json.Unmarshal(raw, &demo); err != nil {
		return false, fmt.Errorf("%w: %s", ErrDemoModeType, raw)
	}
	return demo, nil
}

// Handle applies one control message. Errors are logged and returned; the
// mode is left unchanged on any error.
func (c *Controller) Handle(payload []byte) error {
	demo, err := ParseDemoMode(payload)
	if err != nil {
		log.Printf("control: rejected: %v", err)
		c.tracker.RecordControl(true)
		c.metrics.ControlMessage(metrics.ControlRejected)
		return err
	}
	c.tracker.RecordControl(false)

	if c.tracker.SwapDemo(demo) == demo {
		c.metrics.ControlMessage(metrics.ControlUnchanged)
		return nil
	}

	if demo {
		c.demo.Reset()
	}
	c.display.Trigger(led.ModeOverlay(demo))
	c.metrics.SetDemo(demo)
	c.metrics.ControlMessage(metrics.ControlApplied)
	log.Printf("control: mode changed to %s", status.ModeString(demo))
	return nil
}

// HandleMessage adapts Handle to a transport callback.
func (c *Controller) HandleMessage(payload []byte) {
	_ = c.Handle(payload)
}
