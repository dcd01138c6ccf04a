package logic

import (
	"testing"
	"time"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

// feed sends samples for ch at 10ms spacing starting at start and returns
// the stable level observed after each sample.
func feed(f *Filter, ch Channel, start time.Time, samples []bool) []bool {
	out := make([]bool, len(samples))
	for i, raw := range samples {
		f.Update(ch, raw, start.Add(time.Duration(i)*10*time.Millisecond))
		out[i] = f.Stable(ch)
	}
	return out
}

func TestFilterInitialState(t *testing.T) {
	f := NewFilter(50*time.Millisecond, 3)
	for _, ch := range Channels {
		if f.Stable(ch) {
			t.Errorf("%s: expected stable=false at startup", ch)
		}
		if !f.Logical(ch) {
			t.Errorf("%s: expected logical=true at startup (inverted)", ch)
		}
	}
}

func TestFilterCommitsAtThreshold(t *testing.T) {
	f := NewFilter(50*time.Millisecond, 3)

	got := feed(f, Zone3, t0, []bool{true, true, true, true})
	want := []bool{false, false, true, true}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d: stable=%v, want %v", i, got[i], want[i])
		}
	}
	if s := f.State(Zone3); s.RunLength != 4 {
		t.Errorf("RunLength: got %d, want 4", s.RunLength)
	}
}

func TestFilterNoiseRejection(t *testing.T) {
	noise := [][]bool{
		{true, false, true, false, true, false},
		{true, true, false, true, true, false},
		{true, false, false, true, false},
	}
	for i, samples := range noise {
		f := NewFilter(50*time.Millisecond, 3)
		for j, s := range feed(f, Burner, t0, samples) {
			if s {
				t.Errorf("case %d sample %d: stable level changed on noise", i, j)
			}
		}
	}
}

func TestFilterFallingEdge(t *testing.T) {
	f := NewFilter(50*time.Millisecond, 3)
	feed(f, Zone1, t0, []bool{true, true, true})
	if !f.Stable(Zone1) {
		t.Fatal("expected stable=true after rising run")
	}

	got := feed(f, Zone1, t0.Add(time.Second), []bool{false, false, false})
	if !got[1] {
		t.Error("committed falling edge before threshold")
	}
	if got[2] {
		t.Error("expected stable=false after falling run")
	}
}

func TestFilterWindowExpiryForgetsTransition(t *testing.T) {
	f := NewFilter(50*time.Millisecond, 3)

	// Raw change at t0, then identical samples only after the window.
	f.Update(Zone2, true, t0)
	f.Update(Zone2, true, t0.Add(60*time.Millisecond))
	f.Update(Zone2, true, t0.Add(70*time.Millisecond))
	f.Update(Zone2, true, t0.Add(500*time.Millisecond))

	if f.Stable(Zone2) {
		t.Fatal("expected no commit once the window elapsed")
	}
	if s := f.State(Zone2); s.RunLength != 1 {
		t.Errorf("RunLength: got %d, want 1 (frozen after window)", s.RunLength)
	}

	// A fresh raw episode starts a new window.
	base := t0.Add(time.Second)
	feed(f, Zone2, base, []bool{false})
	got := feed(f, Zone2, base.Add(10*time.Millisecond), []bool{true, true, true})
	if !got[2] {
		t.Error("expected commit within a fresh window")
	}
}

func TestFilterThresholdMustFitInWindow(t *testing.T) {
	// 3 samples at 30ms spacing span 60ms which exceeds a 50ms window.
	f := NewFilter(50*time.Millisecond, 3)
	f.Update(Burner, true, t0)
	f.Update(Burner, true, t0.Add(30*time.Millisecond))
	f.Update(Burner, true, t0.Add(60*time.Millisecond))
	if f.Stable(Burner) {
		t.Error("stable level committed by samples outside the window")
	}
}

func TestFilterSingleCommitPerEpisode(t *testing.T) {
	f := NewFilter(50*time.Millisecond, 2)
	feed(f, Zone6, t0, []bool{true, true})
	if !f.Stable(Zone6) {
		t.Fatal("expected commit")
	}
	before := *f.State(Zone6)
	feed(f, Zone6, t0.Add(20*time.Millisecond), []bool{true, true})
	if !f.Stable(Zone6) {
		t.Error("repeated samples must not undo the commit")
	}
	if f.State(Zone6).LastChange != before.LastChange {
		t.Error("repeated samples must not move LastChange")
	}
}

func TestFilterChannelsIndependent(t *testing.T) {
	f := NewFilter(50*time.Millisecond, 3)
	for i := 0; i < 3; i++ {
		now := t0.Add(time.Duration(i) * 10 * time.Millisecond)
		var levels RawLevels
		levels[Zone4] = true
		f.UpdateAll(levels, now)
	}
	for _, ch := range Channels {
		want := ch == Zone4
		if f.Stable(ch) != want {
			t.Errorf("%s: stable=%v, want %v", ch, f.Stable(ch), want)
		}
		if f.Logical(ch) == want {
			t.Errorf("%s: logical level not inverted", ch)
		}
	}
}

func TestFilterClampsStableCount(t *testing.T) {
	f := NewFilter(50*time.Millisecond, 0)
	if f.StableCount() != 1 {
		t.Errorf("StableCount: got %d, want 1", f.StableCount())
	}
}

func TestChannelString(t *testing.T) {
	tests := []struct {
		ch   Channel
		want string
	}{
		{Burner, "burner"},
		{Zone1, "zone_1"},
		{Zone6, "zone_6"},
		{Channel(7), "unknown"},
		{Channel(-1), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.ch.String(); got != tt.want {
			t.Errorf("Channel(%d).String(): got %q, want %q", tt.ch, got, tt.want)
		}
	}
}
