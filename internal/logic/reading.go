package logic

import "time"

// LevelSource exposes the logical level of each input.
type LevelSource interface {
	Logical(ch Channel) bool
}

// DemoSource produces simulated burner and zone states.
type DemoSource interface {
	Generate() (burner bool, zones [NumZones]bool)
}

// BuildReading assembles a reading stamped with now (UTC, truncated to the
// second). In demo mode the values come from demo, otherwise from the logical
// levels of live.
func BuildReading(now time.Time, demo bool, live LevelSource, sim DemoSource) Reading {
	r := Reading{
		Timestamp: now.UTC().Truncate(time.Second),
		IsDemo:    demo,
	}

	if demo {
		r.Burner, r.Zones = sim.Generate()
		return r
	}

	r.Burner = live.Logical(Burner)
	for i := range r.Zones {
		r.Zones[i] = live.Logical(ZoneChannel(i + 1))
	}
	return r
}
