package bridge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/boilerstat/internal/gpio"
	"github.com/sweeney/boilerstat/internal/logic"
	"github.com/sweeney/boilerstat/internal/status"
)

func TestSamplerCommitsStableLevel(t *testing.T) {
	reader := gpio.NewFakeReader(repeat(allRaw(true), 3))
	filter := logic.NewFilter(50*time.Millisecond, 3)
	tr := status.NewTracker(epoch, status.Config{})
	s := NewSampler(reader, filter, tr, nil, fakeClock(epoch, 10*time.Millisecond))

	for i := 0; i < 2; i++ {
		if err := s.Sample(); err != nil {
			t.Fatalf("sample %d: %v", i, err)
		}
	}
	if filter.Stable(logic.Burner) {
		t.Fatal("burner committed before threshold")
	}

	if err := s.Sample(); err != nil {
		t.Fatal(err)
	}
	for _, ch := range logic.Channels {
		if !filter.Stable(ch) {
			t.Errorf("%s: expected stable high after 3 samples", ch)
		}
		if filter.Logical(ch) {
			t.Errorf("%s: raw high should read as logical off", ch)
		}
	}
}

func TestSamplerReadErrorLeavesFilterAlone(t *testing.T) {
	inner := gpio.NewFakeReader(repeat(allRaw(true), 6))
	reader := &faultReader{inner: inner, faultStart: 1, faultEnd: 3}
	filter := logic.NewFilter(50*time.Millisecond, 3)
	tr := status.NewTracker(epoch, status.Config{})
	s := NewSampler(reader, filter, tr, nil, fakeClock(epoch, 10*time.Millisecond))

	errs := 0
	for i := 0; i < 5; i++ {
		if err := s.Sample(); err != nil {
			errs++
		}
	}
	if errs != 2 {
		t.Fatalf("expected 2 read errors, got %d", errs)
	}
	if s.Failures() != 0 {
		t.Errorf("failures should reset after recovery, got %d", s.Failures())
	}
	// Good samples land at t=0,10,20ms: three identical samples inside the window.
	if !filter.Stable(logic.Burner) {
		t.Error("expected burner to commit after recovery")
	}
	if tr.ErrorFlagged() {
		t.Error("short fault burst must not flag error")
	}
}

func TestSamplerEscalatesOnce(t *testing.T) {
	reader := gpio.NewFakeReader(repeat(allRaw(false), 1))
	reader.SetError(errors.New("chip gone"))
	tr := status.NewTracker(epoch, status.Config{})
	s := NewSampler(reader, logic.NewFilter(50*time.Millisecond, 3), tr, nil, fakeClock(epoch, 10*time.Millisecond))
	s.MaxFailures = 3

	for i := 0; i < 2; i++ {
		_ = s.Sample()
	}
	if tr.ErrorFlagged() {
		t.Fatal("error flagged before threshold")
	}
	_ = s.Sample()
	if !tr.ErrorFlagged() {
		t.Fatal("expected error flag after 3 consecutive failures")
	}

	// Cleared externally: the sampler does not raise it again for the same fault run.
	tr.SetError(false)
	for i := 0; i < 5; i++ {
		_ = s.Sample()
	}
	if tr.ErrorFlagged() {
		t.Error("sampler re-raised error flag")
	}
	if s.Failures() != 8 {
		t.Errorf("failures: got %d, want 8", s.Failures())
	}
}

func TestSamplerEscalationDisabled(t *testing.T) {
	reader := gpio.NewFakeReader(nil)
	tr := status.NewTracker(epoch, status.Config{})
	s := NewSampler(reader, logic.NewFilter(50*time.Millisecond, 3), tr, nil, fakeClock(epoch, 10*time.Millisecond))
	s.MaxFailures = 0

	for i := 0; i < 200; i++ {
		_ = s.Sample()
	}
	if tr.ErrorFlagged() {
		t.Error("escalation should be disabled")
	}
}

func TestSamplerRun(t *testing.T) {
	reader := gpio.NewFakeReader(repeat(allRaw(true), 4))
	filter := logic.NewFilter(50*time.Millisecond, 3)
	tr := status.NewTracker(epoch, status.Config{})
	s := NewSampler(reader, filter, tr, nil, fakeClock(epoch, 10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	tick := make(chan time.Time)
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx, tick) }()

	for i := 0; i < 3; i++ {
		tick <- time.Time{}
	}
	cancel()

	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Fatalf("Run returned %v, want context.Canceled", err)
	}
	if reader.Reads != 3 {
		t.Errorf("reads: got %d, want 3", reader.Reads)
	}
	if !filter.Stable(logic.Zone6) {
		t.Error("expected zone 6 to commit")
	}
}
