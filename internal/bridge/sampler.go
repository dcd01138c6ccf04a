package bridge

import (
	"context"
	"log"
	"time"

	"github.com/sweeney/boilerstat/internal/gpio"
	"github.com/sweeney/boilerstat/internal/logic"
	"github.com/sweeney/boilerstat/internal/metrics"
	"github.com/sweeney/boilerstat/internal/status"
)

// DefaultMaxReadFailures is the number of consecutive failed reads after
// which the sampler raises the error flag.
const DefaultMaxReadFailures = 100

// Sampler feeds raw GPIO levels into the debounce filter.
type Sampler struct {
	reader  gpio.Reader
	filter  *logic.Filter
	tracker *status.Tracker
	metrics *metrics.Metrics
	now     Clock

	// MaxFailures is the consecutive failure count that raises the error
	// flag. Zero disables escalation.
	MaxFailures int

	failures  int
	escalated bool
}

// NewSampler creates a sampler. metrics may be nil.
func NewSampler(reader gpio.Reader, filter *logic.Filter, tracker *status.Tracker, m *metrics.Metrics, now Clock) *Sampler {
	return &Sampler{
		reader:      reader,
		filter:      filter,
		tracker:     tracker,
		metrics:     m,
		now:         now,
		MaxFailures: DefaultMaxReadFailures,
	}
}

// Sample reads every input once and updates the filter.
func (s *Sampler) Sample() error {
	levels, err := s.reader.ReadRaw()
	if err != nil {
		s.failures++
		s.metrics.SampleError()
		if s.failures == 1 {
			log.Printf("sampler: gpio read error: %v", err)
		}
		if s.MaxFailures > 0 && s.failures >= s.MaxFailures && !s.escalated {
			s.escalated = true
			log.Printf("sampler: %d consecutive read failures, flagging error", s.failures)
			s.tracker.SetError(true)
		}
		return err
	}
	if s.failures > 0 {
		log.Printf("sampler: gpio recovered after %d failed reads", s.failures)
		s.failures = 0
	}
	s.filter.UpdateAll(levels, s.now())
	return nil
}

// Failures returns the current consecutive failure count.
func (s *Sampler) Failures() int {
	return s.failures
}

// Run samples on every tick until ctx is done.
func (s *Sampler) Run(ctx context.Context, tick <-chan time.Time) error {
	return loop(ctx, tick, func() { _ = s.Sample() })
}
