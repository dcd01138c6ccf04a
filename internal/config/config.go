// Package config loads the bridge configuration from a YAML or TOML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/sweeney/boilerstat/internal/gpio"
	"github.com/sweeney/boilerstat/internal/logic"
	"github.com/sweeney/boilerstat/internal/mqtt"
)

// maxPin is the highest BCM line offset on a Raspberry Pi header chip.
const maxPin = 53

type Config struct {
	Broker          string    `yaml:"broker" toml:"broker"`
	ClientID        string    `yaml:"client_id" toml:"client_id"`
	Topics          Topics    `yaml:"topics" toml:"topics"`
	HTTPAddr        string    `yaml:"http_addr" toml:"http_addr"`
	Intervals       Intervals `yaml:"intervals" toml:"intervals"`
	Debounce        Debounce  `yaml:"debounce" toml:"debounce"`
	GPIO            GPIO      `yaml:"gpio" toml:"gpio"`
	MaxReadFailures int       `yaml:"max_read_failures" toml:"max_read_failures"`
	Demo            bool      `yaml:"demo" toml:"demo"`
	SimulateInputs  bool      `yaml:"simulate_inputs" toml:"simulate_inputs"`
}

type Topics struct {
	Reading string `yaml:"reading" toml:"reading"`
	Control string `yaml:"control" toml:"control"`
	System  string `yaml:"system" toml:"system"`
}

type Intervals struct {
	Poll      time.Duration `yaml:"poll" toml:"poll"`
	Publish   time.Duration `yaml:"publish" toml:"publish"`
	Readiness time.Duration `yaml:"readiness" toml:"readiness"`
	Signal    time.Duration `yaml:"signal" toml:"signal"`
}

type Debounce struct {
	Window      time.Duration `yaml:"window" toml:"window"`
	StableCount int           `yaml:"stable_count" toml:"stable_count"`
}

type GPIO struct {
	Chip         string              `yaml:"chip" toml:"chip"`
	Burner       int                 `yaml:"burner" toml:"burner"`
	Zones        [logic.NumZones]int `yaml:"zones" toml:"zones"`
	LED          int                 `yaml:"led" toml:"led"`
	LEDActiveLow bool                `yaml:"led_active_low" toml:"led_active_low"`
}

// Default returns the built-in configuration.
func Default() Config {
	pins := gpio.DefaultPins()
	return Config{
		Broker:   "tcp://192.168.1.200:1883",
		ClientID: "boilerstat",
		Topics: Topics{
			Reading: mqtt.TopicReading,
			Control: mqtt.TopicControl,
			System:  mqtt.TopicSystem,
		},
		HTTPAddr: ":80",
		Intervals: Intervals{
			Poll:      10 * time.Millisecond,
			Publish:   5 * time.Second,
			Readiness: 30 * time.Second,
			Signal:    100 * time.Millisecond,
		},
		Debounce: Debounce{
			Window:      50 * time.Millisecond,
			StableCount: 3,
		},
		GPIO: GPIO{
			Chip:   gpio.DefaultChip,
			Burner: pins.Burner,
			Zones:  pins.Zones,
			LED:    pins.LED,
		},
		MaxReadFailures: 100,
	}
}

// Load reads path over the defaults. The format follows the extension:
// .yaml/.yml or .toml.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		if _, err := toml.Decode(string(raw), &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	d := Default()
	if c.ClientID == "" {
		c.ClientID = d.ClientID
	}
	if c.Topics.Reading == "" {
		c.Topics.Reading = d.Topics.Reading
	}
	if c.Topics.Control == "" {
		c.Topics.Control = d.Topics.Control
	}
	if c.Topics.System == "" {
		c.Topics.System = d.Topics.System
	}
	if c.Intervals.Poll == 0 {
		c.Intervals.Poll = d.Intervals.Poll
	}
	if c.Intervals.Publish == 0 {
		c.Intervals.Publish = d.Intervals.Publish
	}
	if c.Intervals.Readiness == 0 {
		c.Intervals.Readiness = d.Intervals.Readiness
	}
	if c.Intervals.Signal == 0 {
		c.Intervals.Signal = d.Intervals.Signal
	}
	if c.Debounce.Window == 0 {
		c.Debounce.Window = d.Debounce.Window
	}
	if c.Debounce.StableCount == 0 {
		c.Debounce.StableCount = d.Debounce.StableCount
	}
	if c.GPIO.Chip == "" {
		c.GPIO.Chip = d.GPIO.Chip
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Broker == "" {
		return fmt.Errorf("broker is required")
	}
	if c.Topics.Reading == "" || c.Topics.Control == "" || c.Topics.System == "" {
		return fmt.Errorf("topics.reading, topics.control and topics.system are required")
	}
	for name, d := range map[string]time.Duration{
		"intervals.poll":      c.Intervals.Poll,
		"intervals.publish":   c.Intervals.Publish,
		"intervals.readiness": c.Intervals.Readiness,
		"intervals.signal":    c.Intervals.Signal,
		"debounce.window":     c.Debounce.Window,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %v", name, d)
		}
	}
	if c.Debounce.StableCount < 1 {
		return fmt.Errorf("debounce.stable_count must be at least 1, got %d", c.Debounce.StableCount)
	}
	if span := time.Duration(c.Debounce.StableCount-1) * c.Intervals.Poll; span >= c.Debounce.Window {
		return fmt.Errorf("debounce.window %v too short for %d samples every %v", c.Debounce.Window, c.Debounce.StableCount, c.Intervals.Poll)
	}
	if c.MaxReadFailures < 0 {
		return fmt.Errorf("max_read_failures must not be negative")
	}
	return c.GPIO.validate()
}

func (g GPIO) validate() error {
	used := map[int]string{}
	claim := func(name string, pin int) error {
		if pin < 0 || pin > maxPin {
			return fmt.Errorf("gpio.%s: pin %d out of range", name, pin)
		}
		if other, ok := used[pin]; ok {
			return fmt.Errorf("gpio.%s: pin %d already used by %s", name, pin, other)
		}
		used[pin] = name
		return nil
	}

	if err := claim("burner", g.Burner); err != nil {
		return err
	}
	for i, pin := range g.Zones {
		if err := claim(fmt.Sprintf("zones[%d]", i), pin); err != nil {
			return err
		}
	}
	if g.LED >= 0 {
		if err := claim("led", g.LED); err != nil {
			return err
		}
	}
	return nil
}

// Pins returns the pin assignment.
func (g GPIO) Pins() gpio.Pins {
	return gpio.Pins{Burner: g.Burner, Zones: g.Zones, LED: g.LED}
}
