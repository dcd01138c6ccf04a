package bridge

import (
	"errors"
	"reflect"
	"testing"

	"github.com/sweeney/boilerstat/internal/led"
	"github.com/sweeney/boilerstat/internal/status"
)

func TestParseDemoMode(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    bool
		wantErr error
	}{
		{"enable", `{"demo_mode": true}`, true, nil},
		{"disable", `{"demo_mode": false}`, false, nil},
		{"unknown fields ignored", `{"demo_mode": true, "colour": "red"}`, true, nil},
		{"wrong type", `{"demo_mode": "yes"}`, false, ErrDemoModeType},
		{"number", `{"demo_mode": 1}`, false, ErrDemoModeType},
		{"null", `{"demo_mode": null}`, false, ErrDemoModeType},
		{"missing field", `{}`, false, ErrMissingDemoMode},
		{"not json", `demo on`, false, ErrMalformed},
		{"array", `[true]`, false, ErrMalformed},
		{"empty", ``, false, ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDemoMode([]byte(tt.payload))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error: got %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("demo_mode: got %v, want %v", got, tt.want)
			}
		})
	}
}

func newTestController() (*Controller, *status.Tracker, *countingResetter, *overlayRecorder) {
	tr := status.NewTracker(epoch, status.Config{})
	demo := &countingResetter{}
	display := &overlayRecorder{}
	return NewController(tr, demo, display, nil), tr, demo, display
}

func TestControllerEnterDemo(t *testing.T) {
	c, tr, demo, display := newTestController()

	if err := c.Handle([]byte(`{"demo_mode": true}`)); err != nil {
		t.Fatal(err)
	}
	if !tr.DemoEnabled() {
		t.Fatal("demo mode not enabled")
	}
	if demo.resets != 1 {
		t.Errorf("seed resets: got %d, want 1", demo.resets)
	}
	if display.count() != 1 || !reflect.DeepEqual(display.patterns[0], led.OverlayDemoMode) {
		t.Errorf("expected demo overlay, got %v", display.patterns)
	}
}

func TestControllerLeaveDemo(t *testing.T) {
	c, tr, demo, display := newTestController()
	tr.SwapDemo(true)

	if err := c.Handle([]byte(`{"demo_mode": false}`)); err != nil {
		t.Fatal(err)
	}
	if tr.DemoEnabled() {
		t.Fatal("demo mode still enabled")
	}
	if demo.resets != 0 {
		t.Errorf("leaving demo must not reset the seed, got %d resets", demo.resets)
	}
	if display.count() != 1 || !reflect.DeepEqual(display.patterns[0], led.OverlayLiveMode) {
		t.Errorf("expected live overlay, got %v", display.patterns)
	}
}

func TestControllerNoOpToggle(t *testing.T) {
	c, tr, demo, display := newTestController()
	tr.SwapDemo(true)

	if err := c.Handle([]byte(`{"demo_mode": true}`)); err != nil {
		t.Fatal(err)
	}
	if !tr.DemoEnabled() {
		t.Error("demo mode changed")
	}
	if demo.resets != 0 {
		t.Errorf("no-op toggle reset the seed")
	}
	if display.count() != 0 {
		t.Errorf("no-op toggle fired an overlay")
	}
	if got := tr.Snapshot().Counts.ControlMessages; got != 1 {
		t.Errorf("control messages: got %d, want 1", got)
	}
}

func TestControllerRejectsLeaveModeUnchanged(t *testing.T) {
	for _, payload := range []string{`{"demo_mode": "yes"}`, `{}`, `garbage`} {
		t.Run(payload, func(t *testing.T) {
			c, tr, demo, display := newTestController()

			if err := c.Handle([]byte(payload)); err == nil {
				t.Fatal("expected an error")
			}
			if tr.DemoEnabled() {
				t.Error("mode changed on bad payload")
			}
			if demo.resets != 0 || display.count() != 0 {
				t.Error("side effects on bad payload")
			}
			counts := tr.Snapshot().Counts
			if counts.ControlMessages != 1 || counts.ControlRejected != 1 {
				t.Errorf("counts: %+v", counts)
			}
		})
	}
}
