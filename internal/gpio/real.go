//go:build linux

package gpio

import (
	"fmt"

	"github.com/sweeney/boilerstat/internal/logic"
	"github.com/warthog618/go-gpiocdev"
)

// RealReader reads GPIO from actual hardware using Linux GPIO character device.
type RealReader struct {
	chip  *gpiocdev.Chip
	lines *gpiocdev.Lines
	vals  []int
}

// NewRealReader requests the burner and zone lines on the named chip.
func NewRealReader(chipName string, pins Pins) (*RealReader, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	// Request lines as input with pull-down to match Pi boot defaults.
	// This ensures consistent behavior with external optocoupler modules.
	offsets := pins.Inputs()
	lines, err := chip.RequestLines(offsets, gpiocdev.AsInput, gpiocdev.WithPullDown)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request input pins %v: %w", offsets, err)
	}

	return &RealReader{
		chip:  chip,
		lines: lines,
		vals:  make([]int, len(offsets)),
	}, nil
}

// ReadRaw returns the raw level of every input. Not safe for concurrent use;
// only the sampler reads.
func (r *RealReader) ReadRaw() (logic.RawLevels, error) {
	var levels logic.RawLevels
	if err := r.lines.Values(r.vals); err != nil {
		return levels, fmt.Errorf("read input pins: %w", err)
	}
	for i, v := range r.vals {
		levels[i] = v == 1
	}
	return levels, nil
}

// Close releases GPIO resources.
// Reconfigures pins to input with pull-down (matching Pi boot defaults) before
// closing to ensure clean state for system shutdown/reboot.
func (r *RealReader) Close() error {
	var errs []error

	if r.lines != nil {
		if err := r.lines.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure input pins: %w", err))
		}
		if err := r.lines.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close input pins: %w", err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealOutput drives the status indicator line.
type RealOutput struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewRealOutput requests pin as an output, initially off. With activeLow the
// line is driven low to turn the indicator on.
func NewRealOutput(chipName string, pin int, activeLow bool) (*RealOutput, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	opts := []gpiocdev.LineReqOption{gpiocdev.AsOutput(0)}
	if activeLow {
		opts = append(opts, gpiocdev.AsActiveLow)
	}
	line, err := chip.RequestLine(pin, opts...)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request LED pin %d: %w", pin, err)
	}

	return &RealOutput{chip: chip, line: line}, nil
}

// Set turns the indicator on or off.
func (o *RealOutput) Set(on bool) error {
	v := 0
	if on {
		v = 1
	}
	if err := o.line.SetValue(v); err != nil {
		return fmt.Errorf("set LED pin: %w", err)
	}
	return nil
}

// Close turns the indicator off and returns the pin to an input with
// pull-down.
func (o *RealOutput) Close() error {
	var errs []error

	if o.line != nil {
		if err := o.line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("clear LED pin: %w", err))
		}
		if err := o.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure LED pin: %w", err))
		}
		if err := o.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close LED pin: %w", err))
		}
	}
	if o.chip != nil {
		if err := o.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
