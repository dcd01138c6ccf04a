package bridge

import (
	"context"
	"log"
	"time"

	"github.com/sweeney/boilerstat/internal/logic"
	"github.com/sweeney/boilerstat/internal/metrics"
	"github.com/sweeney/boilerstat/internal/mqtt"
	"github.com/sweeney/boilerstat/internal/status"
)

// Skip reasons, in gate order.
const (
	SkipTransport = "transport"
	SkipSession   = "session"
	SkipTime      = "time"
)

// Publisher builds and sends one reading per publish cycle.
type Publisher struct {
	client  mqtt.Publisher
	tracker *status.Tracker
	live    logic.LevelSource
	demo    logic.DemoSource
	metrics *metrics.Metrics
	now     Clock

	lastSkip  string
	published int
}

// NewPublisher creates a publisher. metrics may be nil.
func NewPublisher(client mqtt.Publisher, tracker *status.Tracker, live logic.LevelSource, demo logic.DemoSource, m *metrics.Metrics, now Clock) *Publisher {
	return &Publisher{
		client:  client,
		tracker: tracker,
		live:    live,
		demo:    demo,
		metrics: m,
		now:     now,
	}
}

func (p *Publisher) gate() string {
	switch {
	case !p.tracker.TransportReady():
		return SkipTransport
	case !p.tracker.SessionReady():
		return SkipSession
	case !p.tracker.TimeReady():
		return SkipTime
	}
	return ""
}

// Cycle runs one publish cycle. It returns the reading that was sent, or
// false if the cycle was skipped or the send failed.
func (p *Publisher) Cycle() (logic.Reading, bool) {
	if reason := p.gate(); reason != "" {
		if reason != p.lastSkip {
			log.Printf("publish: skipping, %s not ready", reason)
			p.lastSkip = reason
		}
		p.tracker.RecordSkipped()
		p.metrics.PublishSkipped(reason)
		return logic.Reading{}, false
	}
	if p.lastSkip != "" {
		log.Printf("publish: ready")
		p.lastSkip = ""
	}

	r := logic.BuildReading(p.now(), p.tracker.DemoEnabled(), p.live, p.demo)
	if err := p.client.PublishReading(r); err != nil {
		log.Printf("publish: failed, reading dropped: %v", err)
		p.tracker.RecordPublishFailed()
		p.metrics.PublishFailed()
		return logic.Reading{}, false
	}

	p.tracker.RecordPublished(r)
	p.metrics.ReadingPublished(r)
	p.published++
	pl := mqtt.NewReadingPayload(r)
	log.Printf("[%d] Published at %s: burner=%d zones=%v demo=%v",
		p.published, pl.Timestamp, pl.Burner, pl.Zones(), pl.IsDemo)
	return r, true
}

// Run publishes on every tick until ctx is done.
func (p *Publisher) Run(ctx context.Context, tick <-chan time.Time) error {
	return loop(ctx, tick, func() { p.Cycle() })
}
