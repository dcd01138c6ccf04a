// Package metrics exposes bridge activity as Prometheus collectors.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sweeney/boilerstat/internal/led"
	"github.com/sweeney/boilerstat/internal/logic"
)

// Control message outcomes.
const (
	ControlApplied   = "applied"
	ControlUnchanged = "unchanged"
	ControlRejected  = "rejected"
)

// Metrics holds the bridge collectors.
type Metrics struct {
	published    *prometheus.CounterVec
	failed       prometheus.Counter
	skipped      *prometheus.CounterVec
	control      *prometheus.CounterVec
	display      prometheus.Gauge
	demo         prometheus.Gauge
	ready        *prometheus.GaugeVec
	channels     *prometheus.GaugeVec
	sampleErrors prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "boilerstat_readings_published_total",
			Help: "Readings accepted by the broker, by mode.",
		}, []string{"mode"}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "boilerstat_publish_failures_total",
			Help: "Readings discarded because the transport rejected them.",
		}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "boilerstat_publish_skipped_total",
			Help: "Publish cycles skipped because a readiness gate was closed.",
		}, []string{"reason"}),
		control: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "boilerstat_control_messages_total",
			Help: "Control messages received, by outcome.",
		}, []string{"result"}),
		display: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "boilerstat_display_state",
			Help: "Current indicator state (0=BOOTING 1=TRANSPORT_DOWN 2=LINK_PARTIAL 3=TIME_UNSYNCED 4=OPERATIONAL 5=ERROR).",
		}),
		demo: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "boilerstat_demo_mode",
			Help: "1 while readings are simulated.",
		}),
		ready: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "boilerstat_ready",
			Help: "Readiness flags (1 = ready).",
		}, []string{"flag"}),
		channels: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "boilerstat_channel_on",
			Help: "Logical level of each input at the last publish cycle.",
		}, []string{"channel"}),
		sampleErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "boilerstat_sample_errors_total",
			Help: "Raw GPIO reads that failed.",
		}),
	}

	reg.MustRegister(m.published, m.failed, m.skipped, m.control, m.display,
		m.demo, m.ready, m.channels, m.sampleErrors)
	return m
}

func gauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// ReadingPublished counts a published reading.
func (m *Metrics) ReadingPublished(r logic.Reading) {
	if m == nil {
		return
	}
	mode := "live"
	if r.IsDemo {
		mode = "demo"
	}
	m.published.WithLabelValues(mode).Inc()
	m.channels.WithLabelValues(logic.Burner.String()).Set(gauge(r.Burner))
	for i, on := range r.Zones {
		m.channels.WithLabelValues(logic.ZoneChannel(i + 1).String()).Set(gauge(on))
	}
}

// PublishFailed counts a rejected reading.
func (m *Metrics) PublishFailed() {
	if m == nil {
		return
	}
	m.failed.Inc()
}

// PublishSkipped counts a skipped cycle.
func (m *Metrics) PublishSkipped(reason string) {
	if m == nil {
		return
	}
	m.skipped.WithLabelValues(reason).Inc()
}

// ControlMessage counts a control message outcome.
func (m *Metrics) ControlMessage(result string) {
	if m == nil {
		return
	}
	m.control.WithLabelValues(result).Inc()
}

// SetDisplayState records the indicator state.
func (m *Metrics) SetDisplayState(s led.State) {
	if m == nil {
		return
	}
	m.display.Set(float64(s))
}

// SetDemo records the operating mode.
func (m *Metrics) SetDemo(demo bool) {
	if m == nil {
		return
	}
	m.demo.Set(gauge(demo))
}

// SetReadiness records the readiness flags.
func (m *Metrics) SetReadiness(transport, session, timeOK bool) {
	if m == nil {
		return
	}
	m.ready.WithLabelValues("transport").Set(gauge(transport))
	m.ready.WithLabelValues("session").Set(gauge(session))
	m.ready.WithLabelValues("time").Set(gauge(timeOK))
}

// SampleError counts a failed raw read.
func (m *Metrics) SampleError() {
	if m == nil {
		return
	}
	m.sampleErrors.Inc()
}
