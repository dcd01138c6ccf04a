// Package gpio provides GPIO input reading and indicator output with
// hardware abstraction.
// The real implementation uses Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import "github.com/sweeney/boilerstat/internal/logic"

// Reader reads raw GPIO input levels.
type Reader interface {
	// ReadRaw returns the raw level of every input, indexed by logic.Channel.
	// Levels are NOT inverted: true = line active (= logical OFF).
	ReadRaw() (logic.RawLevels, error)

	// Close releases GPIO resources.
	Close() error
}

// Output drives the status indicator.
type Output interface {
	// Set turns the indicator on or off. Active-low wiring is handled by
	// the implementation.
	Set(on bool) error

	// Close turns the indicator off and releases it.
	Close() error
}

// DefaultChip is the GPIO character device on a Raspberry Pi.
const DefaultChip = "gpiochip0"

// Pins holds BCM line offsets.
type Pins struct {
	Burner int
	Zones  [logic.NumZones]int
	LED    int // <0 disables the indicator
}

// DefaultPins returns the wiring of the reference board.
func DefaultPins() Pins {
	return Pins{
		Burner: 26,
		Zones:  [logic.NumZones]int{16, 20, 21, 5, 6, 13},
		LED:    19,
	}
}

// Inputs returns the input offsets in logic.Channel order.
func (p Pins) Inputs() []int {
	offsets := make([]int, 0, logic.NumChannels)
	offsets = append(offsets, p.Burner)
	offsets = append(offsets, p.Zones[:]...)
	return offsets
}

// IdleReader reports every input raw-active, i.e. burner and zones OFF.
// Used when running without input hardware.
type IdleReader struct{}

// ReadRaw returns all inputs active.
func (IdleReader) ReadRaw() (logic.RawLevels, error) {
	var levels logic.RawLevels
	for i := range levels {
		levels[i] = true
	}
	return levels, nil
}

// Close does nothing.
func (IdleReader) Close() error { return nil }

// Discard is an Output with no hardware behind it.
type Discard struct{}

// Set does nothing.
func (Discard) Set(bool) error { return nil }

// Close does nothing.
func (Discard) Close() error { return nil }
