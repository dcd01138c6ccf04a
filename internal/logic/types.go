// Package logic contains pure business logic for the boiler and zone inputs.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// Channel identifies one of the logical inputs.
type Channel int

const (
	Burner Channel = iota
	Zone1
	Zone2
	Zone3
	Zone4
	Zone5
	Zone6
)

// NumChannels is the number of inputs (burner + six zones).
const NumChannels = 7

// NumZones is the number of heating zones.
const NumZones = 6

// Channels lists every channel in index order.
var Channels = [NumChannels]Channel{Burner, Zone1, Zone2, Zone3, Zone4, Zone5, Zone6}

var channelNames = [NumChannels]string{"burner", "zone_1", "zone_2", "zone_3", "zone_4", "zone_5", "zone_6"}

// String returns the wire name of the channel ("burner", "zone_1", ...).
func (c Channel) String() string {
	if c < 0 || int(c) >= NumChannels {
		return "unknown"
	}
	return channelNames[c]
}

// ZoneChannel returns the channel for a 1-indexed zone number.
func ZoneChannel(zone int) Channel {
	return Channel(zone)
}

// RawLevels is one raw sample of every input, indexed by Channel.
type RawLevels [NumChannels]bool

// TimestampLayout is the reading timestamp format (UTC, second precision).
const TimestampLayout = "2006-01-02 15:04:05"

// Reading is a single timestamped snapshot of burner and zone activity.
type Reading struct {
	Timestamp time.Time // UTC, truncated to the second
	Burner    bool
	Zones     [NumZones]bool // Zones[0] is zone 1
	IsDemo    bool
}

// FormattedTimestamp returns the timestamp in TimestampLayout.
func (r Reading) FormattedTimestamp() string {
	return r.Timestamp.UTC().Format(TimestampLayout)
}

// ActiveZones counts the zones that are on.
func (r Reading) ActiveZones() int {
	return countActive(r.Zones)
}

func countActive(zones [NumZones]bool) int {
	n := 0
	for _, on := range zones {
		if on {
			n++
		}
	}
	return n
}
