package bridge

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/sweeney/boilerstat/internal/gpio"
	"github.com/sweeney/boilerstat/internal/led"
	"github.com/sweeney/boilerstat/internal/logic"
	"github.com/sweeney/boilerstat/internal/mqtt"
	"github.com/sweeney/boilerstat/internal/status"
)

// TestBridgeFullFlow drives raw samples through the filter and out as a
// reading payload.
func TestBridgeFullFlow(t *testing.T) {
	// Raw high is "off". Burner and zone 2 are pulled low (on), the rest idle high.
	active := allRaw(true)
	active[logic.Burner] = false
	active[logic.Zone2] = false

	samples := append(repeat(allRaw(true), 3), repeat(active, 3)...)
	reader := gpio.NewFakeReader(samples)
	filter := logic.NewFilter(50*time.Millisecond, 3)
	tr := readyTracker()
	tr.SetLevels(filter)
	client := mqtt.NewFakeClient()

	sampler := NewSampler(reader, filter, tr, nil, fakeClock(epoch, 10*time.Millisecond))
	pub := NewPublisher(client, tr, filter, &fixedDemo{}, nil, fixedClock(epoch.Add(time.Second)))

	for i := 0; i < 3; i++ {
		if err := sampler.Sample(); err != nil {
			t.Fatal(err)
		}
	}
	idle, ok := pub.Cycle()
	if !ok {
		t.Fatal("expected idle reading")
	}
	if idle.Burner || idle.ActiveZones() != 0 {
		t.Errorf("idle reading should be all off: %+v", idle)
	}

	for i := 0; i < 3; i++ {
		if err := sampler.Sample(); err != nil {
			t.Fatal(err)
		}
	}
	if _, ok := pub.Cycle(); !ok {
		t.Fatal("expected active reading")
	}

	var got mqtt.ReadingPayload
	if err := json.Unmarshal(client.Payloads[1], &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	want := mqtt.ReadingPayload{Timestamp: "2026-02-02 22:18:13", Burner: 1, Zone2: 1}
	if got != want {
		t.Errorf("payload: got %+v, want %+v", got, want)
	}

	snap := tr.Snapshot()
	if !snap.Channels[logic.Burner] || !snap.Channels[logic.Zone2] || snap.Channels[logic.Zone1] {
		t.Errorf("snapshot channels: %v", snap.Channels)
	}
}

// TestBridgeBounceRejected verifies glitches shorter than the threshold
// never reach a reading.
func TestBridgeBounceRejected(t *testing.T) {
	bounce := allRaw(true)
	bounce[logic.Burner] = false

	samples := append(repeat(allRaw(true), 3), bounce, allRaw(true), bounce, allRaw(true), allRaw(true))
	reader := gpio.NewFakeReader(samples)
	filter := logic.NewFilter(50*time.Millisecond, 3)
	tr := readyTracker()
	client := mqtt.NewFakeClient()
	sampler := NewSampler(reader, filter, tr, nil, fakeClock(epoch, 10*time.Millisecond))
	pub := NewPublisher(client, tr, filter, &fixedDemo{}, nil, fixedClock(epoch))

	for range samples {
		_ = sampler.Sample()
	}
	r, ok := pub.Cycle()
	if !ok {
		t.Fatal("expected a reading")
	}
	if r.Burner {
		t.Error("bounce leaked into reading")
	}
}

// TestBridgeTransportDown verifies nothing is sent and the indicator shows
// the transport pattern.
func TestBridgeTransportDown(t *testing.T) {
	tr := status.NewTracker(epoch, status.Config{})
	tr.MarkBooted()
	client := mqtt.NewFakeClient()
	poller := NewReadinessPoller(tr, func() bool { return false }, client, func() bool { return true }, nil)
	demo := &fixedDemo{}
	pub := NewPublisher(client, tr, logic.NewFilter(50*time.Millisecond, 3), demo, nil, fixedClock(epoch))

	poller.Poll()
	if _, ok := pub.Cycle(); ok {
		t.Fatal("published without transport")
	}
	if len(client.PublishedReadings()) != 0 || demo.calls != 0 {
		t.Error("a reading was constructed or sent")
	}
	if got := led.Resolve(tr.LEDInputs()); got != led.StateTransportDown {
		t.Errorf("display: got %s, want %s", got, led.StateTransportDown)
	}
}

// TestBridgeControlSwitchesMode delivers a control message through the
// transport and checks the next reading comes from the generator.
func TestBridgeControlSwitchesMode(t *testing.T) {
	tr := readyTracker()
	client := mqtt.NewFakeClient()
	gen := logic.NewDemoGenerator(logic.DefaultDemoConfig())
	gen.NewSeed = func() uint32 { return 42 }
	display := &overlayRecorder{}
	ctl := NewController(tr, gen, display, nil)
	client.OnControl = ctl.HandleMessage
	pub := NewPublisher(client, tr, logic.NewFilter(50*time.Millisecond, 3), gen, nil, fixedClock(epoch))

	client.Deliver([]byte(`{"demo_mode": true}`))
	r, ok := pub.Cycle()
	if !ok {
		t.Fatal("expected a reading")
	}
	if !r.IsDemo {
		t.Error("expected demo reading")
	}
	if gen.Seed() != 42 {
		t.Errorf("seed: got %d, want 42", gen.Seed())
	}

	client.Deliver([]byte(`{"demo_mode": false}`))
	r, _ = pub.Cycle()
	if r.IsDemo {
		t.Error("expected live reading")
	}
	if display.count() != 2 {
		t.Errorf("overlays: got %d, want 2", display.count())
	}
}
