package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/boilerstat/internal/logic"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string         `json:"event,omitempty"`
	Reason        string         `json:"reason,omitempty"`
	Mode          string         `json:"mode"`
	Display       string         `json:"display"`
	Ready         ReadyJSON      `json:"ready"`
	Channels      map[string]int `json:"channels"`
	LastReading   *ReadingJSON   `json:"last_reading,omitempty"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	StartTime     string         `json:"start_time"`
	Timestamp     string         `json:"timestamp"`
	MQTT          MQTTStatus     `json:"mqtt"`
	Counts        CountsJSON     `json:"counts"`
	Network       *NetworkJSON   `json:"network,omitempty"`
	Config        ConfigJSON     `json:"config"`
}

// ReadyJSON reports the readiness flags.
type ReadyJSON struct {
	Transport bool `json:"transport"`
	Session   bool `json:"session"`
	Time      bool `json:"time"`
	Error     bool `json:"error"`
}

// ReadingJSON is the last published reading.
type ReadingJSON struct {
	Timestamp string `json:"timestamp"`
	Burner    int    `json:"burner"`
	Zones     []int  `json:"zones"`
	IsDemo    bool   `json:"is_demo"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected    bool   `json:"connected"`
	Broker       string `json:"broker"`
	ReadingTopic string `json:"reading_topic"`
	ControlTopic string `json:"control_topic"`
}

// CountsJSON is the JSON representation of activity counts.
type CountsJSON struct {
	Published       int `json:"published"`
	PublishFailed   int `json:"publish_failed"`
	Skipped         int `json:"skipped"`
	ControlMessages int `json:"control_messages"`
	ControlRejected int `json:"control_rejected"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of bridge config.
type ConfigJSON struct {
	PollMs      int64  `json:"poll_ms"`
	PublishMs   int64  `json:"publish_ms"`
	DebounceMs  int64  `json:"debounce_ms"`
	StableCount int    `json:"stable_count"`
	HTTPAddr    string `json:"http_addr"`
}

// ModeString returns "DEMO" or "LIVE".
func ModeString(demo bool) string {
	if demo {
		return "DEMO"
	}
	return "LIVE"
}

func bit(b bool) int {
	if b {
		return 1
	}
	return 0
}

func buildInner(snap Snapshot) StatusInner {
	channels := make(map[string]int, logic.NumChannels)
	for _, ch := range logic.Channels {
		channels[ch.String()] = bit(snap.Channels[ch])
	}

	inner := StatusInner{
		Mode:    ModeString(snap.Demo),
		Display: snap.Display.String(),
		Ready: ReadyJSON{
			Transport: snap.TransportReady,
			Session:   snap.SessionReady,
			Time:      snap.TimeReady,
			Error:     snap.ErrorFlagged,
		},
		Channels:      channels,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT: MQTTStatus{
			Connected:    snap.SessionReady,
			Broker:       snap.Config.Broker,
			ReadingTopic: snap.Config.ReadingTopic,
			ControlTopic: snap.Config.ControlTopic,
		},
		Counts: CountsJSON{
			Published:       snap.Counts.Published,
			PublishFailed:   snap.Counts.PublishFailed,
			Skipped:         snap.Counts.Skipped,
			ControlMessages: snap.Counts.ControlMessages,
			ControlRejected: snap.Counts.ControlRejected,
		},
		Config: ConfigJSON{
			PollMs:      snap.Config.PollMs,
			PublishMs:   snap.Config.PublishMs,
			DebounceMs:  snap.Config.DebounceMs,
			StableCount: snap.Config.StableCount,
			HTTPAddr:    snap.Config.HTTPAddr,
		},
	}

	if r := snap.LastReading; r != nil {
		zones := make([]int, logic.NumZones)
		for i, on := range r.Zones {
			zones[i] = bit(on)
		}
		inner.LastReading = &ReadingJSON{
			Timestamp: r.FormattedTimestamp(),
			Burner:    bit(r.Burner),
			Zones:     zones,
			IsDemo:    r.IsDemo,
		}
	}
	return inner
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
