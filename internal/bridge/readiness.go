package bridge

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/sweeney/boilerstat/internal/metrics"
	"github.com/sweeney/boilerstat/internal/mqtt"
	"github.com/sweeney/boilerstat/internal/status"
)

// ReadinessPoller refreshes the readiness flags from their probes.
type ReadinessPoller struct {
	tracker   *status.Tracker
	transport func() bool
	session   mqtt.ConnectionStatus
	timeValid func() bool
	metrics   *metrics.Metrics

	kick chan struct{}

	mu   sync.Mutex
	last [3]bool
	seen bool
}

// NewReadinessPoller creates a poller. metrics may be nil.
func NewReadinessPoller(tracker *status.Tracker, transport func() bool, session mqtt.ConnectionStatus, timeValid func() bool, m *metrics.Metrics) *ReadinessPoller {
	return &ReadinessPoller{
		tracker:   tracker,
		transport: transport,
		session:   session,
		timeValid: timeValid,
		metrics:   m,
		kick:      make(chan struct{}, 1),
	}
}

// Poll probes once and stores the flags. Time is only ready while
// transport is. Safe to call alongside Run.
func (p *ReadinessPoller) Poll() {
	p.mu.Lock()
	defer p.mu.Unlock()

	transport := p.transport()
	session := transport && p.session != nil && p.session.IsConnected()
	timeOK := transport && p.timeValid()

	p.tracker.SetTransportReady(transport)
	p.tracker.SetSessionReady(session)
	p.tracker.SetTimeReady(timeOK)
	p.metrics.SetReadiness(transport, session, timeOK)

	cur := [3]bool{transport, session, timeOK}
	if !p.seen || cur != p.last {
		log.Printf("readiness: transport=%v session=%v time=%v", transport, session, timeOK)
		p.last = cur
		p.seen = true
	}
}

// Kick requests an immediate poll. It never blocks.
func (p *ReadinessPoller) Kick() {
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

// Run polls once immediately, then on every tick or kick until ctx is done.
func (p *ReadinessPoller) Run(ctx context.Context, tick <-chan time.Time) error {
	p.Poll()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick:
			p.Poll()
		case <-p.kick:
			p.Poll()
		}
	}
}
