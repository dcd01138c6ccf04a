// Package mqtt provides MQTT publishing and control subscription with
// abstraction for testing.
package mqtt

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/sweeney/boilerstat/internal/logic"
)

// Default topics.
const (
	// TopicReading carries one reading per publish cycle.
	TopicReading = "boilerstat/reading"
	// TopicControl carries inbound mode-switch messages.
	TopicControl = "boilerstat/control"
	// TopicSystem carries lifecycle events (STARTUP, SHUTDOWN, OFFLINE).
	TopicSystem = "boilerstat/system"
)

// ErrNotConnected is returned when publishing without an MQTT session.
var ErrNotConnected = errors.New("mqtt: not connected")

// Publisher publishes readings and lifecycle events.
type Publisher interface {
	// PublishReading sends a reading, at most once. Returns error if the
	// broker rejects or the session is down (should not crash the process).
	PublishReading(r logic.Reading) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT session is established.
type ConnectionStatus interface {
	IsConnected() bool
}

// ReadingPayload is the wire format of a reading. The field set is a
// compatibility contract with the database logger.
type ReadingPayload struct {
	Timestamp string `json:"timestamp"`
	Burner    int    `json:"burner"`
	Zone1     int    `json:"zone_1"`
	Zone2     int    `json:"zone_2"`
	Zone3     int    `json:"zone_3"`
	Zone4     int    `json:"zone_4"`
	Zone5     int    `json:"zone_5"`
	Zone6     int    `json:"zone_6"`
	IsDemo    bool   `json:"is_demo"`
}

func bit(b bool) int {
	if b {
		return 1
	}
	return 0
}

// NewReadingPayload converts a reading to its wire form.
func NewReadingPayload(r logic.Reading) ReadingPayload {
	return ReadingPayload{
		Timestamp: r.FormattedTimestamp(),
		Burner:    bit(r.Burner),
		Zone1:     bit(r.Zones[0]),
		Zone2:     bit(r.Zones[1]),
		Zone3:     bit(r.Zones[2]),
		Zone4:     bit(r.Zones[3]),
		Zone5:     bit(r.Zones[4]),
		Zone6:     bit(r.Zones[5]),
		IsDemo:    r.IsDemo,
	}
}

// Zones returns the zone values in order.
func (p ReadingPayload) Zones() [logic.NumZones]int {
	return [logic.NumZones]int{p.Zone1, p.Zone2, p.Zone3, p.Zone4, p.Zone5, p.Zone6}
}

// FormatReading creates the JSON payload for a reading.
func FormatReading(r logic.Reading) ([]byte, error) {
	return json.Marshal(NewReadingPayload(r))
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "OFFLINE"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

// WillPayload is the retained last-will message the broker publishes if the
// bridge drops off without a clean SHUTDOWN.
func WillPayload(connectedAt time.Time) []byte {
	data, _ := FormatSystemPayload(SystemEvent{
		Timestamp: connectedAt,
		Event:     "OFFLINE",
		Reason:    "LWT",
	})
	return data
}
