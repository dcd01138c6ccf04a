package logic

import (
	"testing"
	"time"
)

type fakeDemo struct {
	burner bool
	zones  [NumZones]bool
	calls  int
}

func (f *fakeDemo) Generate() (bool, [NumZones]bool) {
	f.calls++
	return f.burner, f.zones
}

func TestBuildReadingLiveInvertsStableLevels(t *testing.T) {
	f := NewFilter(50*time.Millisecond, 3)
	demo := &fakeDemo{}
	now := time.Date(2026, 2, 2, 22, 18, 12, 750_000_000, time.UTC)

	r := BuildReading(now, false, f, demo)

	if !r.Burner {
		t.Error("burner: stable false should read as on")
	}
	for i, on := range r.Zones {
		if !on {
			t.Errorf("zone %d: stable false should read as on", i+1)
		}
	}
	if r.IsDemo {
		t.Error("expected IsDemo=false")
	}
	if demo.calls != 0 {
		t.Error("demo source must not be used in live mode")
	}
	if got := r.FormattedTimestamp(); got != "2026-02-02 22:18:12" {
		t.Errorf("timestamp: got %q", got)
	}
}

func TestBuildReadingLiveMapsChannels(t *testing.T) {
	f := NewFilter(50*time.Millisecond, 1)
	for i := 0; i < 2; i++ {
		now := t0.Add(time.Duration(i) * 10 * time.Millisecond)
		f.Update(Zone2, true, now)
		f.Update(Zone5, true, now)
	}

	r := BuildReading(t0, false, f, nil)

	want := [NumZones]bool{true, false, true, true, false, true}
	if r.Zones != want {
		t.Errorf("zones: got %v, want %v", r.Zones, want)
	}
	if r.ActiveZones() != 4 {
		t.Errorf("ActiveZones: got %d, want 4", r.ActiveZones())
	}
}

func TestBuildReadingDemo(t *testing.T) {
	demo := &fakeDemo{burner: true, zones: [NumZones]bool{false, true, false, false, false, true}}
	loc := time.FixedZone("CET", 3600)
	now := time.Date(2026, 3, 1, 10, 0, 5, 999, loc)

	r := BuildReading(now, true, nil, demo)

	if !r.IsDemo {
		t.Error("expected IsDemo=true")
	}
	if !r.Burner || r.Zones != demo.zones {
		t.Errorf("reading does not carry demo values: %+v", r)
	}
	if got := r.FormattedTimestamp(); got != "2026-03-01 09:00:05" {
		t.Errorf("timestamp not UTC: got %q", got)
	}
	if r.Timestamp.Nanosecond() != 0 {
		t.Error("timestamp not truncated to the second")
	}
}
