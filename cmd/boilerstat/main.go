// Command boilerstat samples the burner and zone inputs of a heating
// controller and publishes periodic readings to MQTT.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/sweeney/boilerstat/internal/bridge"
	"github.com/sweeney/boilerstat/internal/config"
	"github.com/sweeney/boilerstat/internal/gpio"
	"github.com/sweeney/boilerstat/internal/led"
	"github.com/sweeney/boilerstat/internal/logic"
	"github.com/sweeney/boilerstat/internal/metrics"
	"github.com/sweeney/boilerstat/internal/mqtt"
	"github.com/sweeney/boilerstat/internal/status"
	"github.com/sweeney/boilerstat/internal/timesync"
	"github.com/sweeney/boilerstat/internal/web"
)

func main() {
	opts, err := parseArgs(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}

	if err := run(opts.cfg, opts.printState); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

type options struct {
	cfg        *config.Config
	printState bool
}

// parseArgs loads the optional config file and applies flags that were set
// explicitly on the command line over it.
func parseArgs(args []string) (*options, error) {
	d := config.Default()
	fs := flag.NewFlagSet("boilerstat", flag.ContinueOnError)

	configPath := fs.String("config", "", "YAML or TOML configuration file")
	broker := fs.String("broker", d.Broker, "MQTT broker address")
	clientID := fs.String("client-id", d.ClientID, "MQTT client ID prefix")
	httpAddr := fs.String("http", d.HTTPAddr, "HTTP status address (empty to disable)")
	poll := fs.Duration("poll", d.Intervals.Poll, "GPIO sampling interval")
	publish := fs.Duration("publish", d.Intervals.Publish, "Reading publish interval")
	window := fs.Duration("debounce", d.Debounce.Window, "Debounce window")
	stableCount := fs.Int("stable-count", d.Debounce.StableCount, "Identical samples needed to accept a level")
	chip := fs.String("chip", d.GPIO.Chip, "GPIO chip name")
	pinLED := fs.Int("pin-led", d.GPIO.LED, "BCM pin for the status LED (-1 disables)")
	demo := fs.Bool("demo", d.Demo, "Start in demo mode")
	simulate := fs.Bool("simulate-inputs", d.SimulateInputs, "Run without GPIO inputs (all inputs read OFF)")
	printState := fs.Bool("print-state", false, "Print current input state and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := d
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = *loaded
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "broker":
			cfg.Broker = *broker
		case "client-id":
			cfg.ClientID = *clientID
		case "http":
			cfg.HTTPAddr = *httpAddr
		case "poll":
			cfg.Intervals.Poll = *poll
		case "publish":
			cfg.Intervals.Publish = *publish
		case "debounce":
			cfg.Debounce.Window = *window
		case "stable-count":
			cfg.Debounce.StableCount = *stableCount
		case "chip":
			cfg.GPIO.Chip = *chip
		case "pin-led":
			cfg.GPIO.LED = *pinLED
		case "demo":
			cfg.Demo = *demo
		case "simulate-inputs":
			cfg.SimulateInputs = *simulate
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &options{cfg: &cfg, printState: *printState}, nil
}

func run(cfg *config.Config, printState bool) error {
	reader, err := openReader(cfg)
	if err != nil {
		return err
	}
	defer reader.Close()

	// Print state mode
	if printState {
		levels, err := reader.ReadRaw()
		if err != nil {
			return fmt.Errorf("read gpio: %w", err)
		}
		printLevels(os.Stdout, levels)
		return nil
	}

	output := openOutput(cfg)
	defer output.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	tracker := status.NewTracker(time.Now(), status.Config{
		PollMs:       cfg.Intervals.Poll.Milliseconds(),
		PublishMs:    cfg.Intervals.Publish.Milliseconds(),
		DebounceMs:   cfg.Debounce.Window.Milliseconds(),
		StableCount:  cfg.Debounce.StableCount,
		Broker:       cfg.Broker,
		ReadingTopic: cfg.Topics.Reading,
		ControlTopic: cfg.Topics.Control,
		HTTPAddr:     cfg.HTTPAddr,
	})
	if info := readNetworkInfo(); info != nil {
		tracker.SetNetwork(info)
	}

	filter := logic.NewFilter(cfg.Debounce.Window, cfg.Debounce.StableCount)
	tracker.SetLevels(filter)

	demo := logic.NewDemoGenerator(logic.DefaultDemoConfig())
	demo.OnSeed = func(seed uint32) { log.Printf("demo: seeded with %d", seed) }
	if cfg.Demo {
		tracker.SwapDemo(true)
	}
	m.SetDemo(cfg.Demo)

	signaler := led.NewSignaler(output, tracker.LEDInputs, cfg.Intervals.Signal)
	signaler.OnChange = func(s led.State) {
		tracker.SetDisplayState(s)
		m.SetDisplayState(s)
	}

	controller := bridge.NewController(tracker, demo, signaler, m)

	var (
		client  *mqtt.RealClient
		poller  *bridge.ReadinessPoller
		startup sync.Once
	)
	client = mqtt.NewRealClient(mqtt.Options{
		Broker:       cfg.Broker,
		ClientID:     cfg.ClientID,
		ReadingTopic: cfg.Topics.Reading,
		ControlTopic: cfg.Topics.Control,
		SystemTopic:  cfg.Topics.System,
		OnControl:    controller.HandleMessage,
		OnConnectionChange: func(connected bool) {
			poller.Kick()
			if connected {
				// paho handlers must not block on publish tokens.
				startup.Do(func() { go publishStartup(client, tracker, poller) })
			}
		},
	})
	poller = bridge.NewReadinessPoller(tracker, transportUp, client, timesync.NewChecker().Valid, m)
	client.Connect()
	defer client.Close()

	// Start HTTP status server
	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker, reg)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTPAddr)
	}

	sampler := bridge.NewSampler(reader, filter, tracker, m, time.Now)
	sampler.MaxFailures = cfg.MaxReadFailures
	publisher := bridge.NewPublisher(client, tracker, filter, demo, m, time.Now)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	every := func(d time.Duration) <-chan time.Time {
		t := time.NewTicker(d)
		go func() {
			<-gctx.Done()
			t.Stop()
		}()
		return t.C
	}

	g.Go(func() error { return sampler.Run(gctx, every(cfg.Intervals.Poll)) })
	g.Go(func() error { return publisher.Run(gctx, every(cfg.Intervals.Publish)) })
	g.Go(func() error { return poller.Run(gctx, every(cfg.Intervals.Readiness)) })
	g.Go(func() error { return signaler.Run(gctx) })
	tracker.MarkBooted()

	log.Printf("started: mode=%s poll=%v publish=%v debounce=%v/%d broker=%s",
		status.ModeString(cfg.Demo), cfg.Intervals.Poll, cfg.Intervals.Publish,
		cfg.Debounce.Window, cfg.Debounce.StableCount, cfg.Broker)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case s := <-sigCh:
		log.Printf("received %v, shutting down", s)
		publishShutdown(client, tracker, poller, signalName(s))
	case <-gctx.Done():
		log.Printf("task stopped, shutting down")
	}

	cancel()
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func openReader(cfg *config.Config) (gpio.Reader, error) {
	if cfg.SimulateInputs {
		log.Printf("gpio: simulating inputs, all channels read OFF")
		return gpio.IdleReader{}, nil
	}
	r, err := gpio.NewRealReader(cfg.GPIO.Chip, cfg.GPIO.Pins())
	if err != nil {
		return nil, fmt.Errorf("init gpio: %w", err)
	}
	return r, nil
}

// openOutput returns the status indicator. A missing indicator is not fatal.
func openOutput(cfg *config.Config) gpio.Output {
	if cfg.GPIO.LED < 0 || cfg.SimulateInputs {
		return gpio.Discard{}
	}
	o, err := gpio.NewRealOutput(cfg.GPIO.Chip, cfg.GPIO.LED, cfg.GPIO.LEDActiveLow)
	if err != nil {
		log.Printf("gpio: status led unavailable: %v", err)
		return gpio.Discard{}
	}
	return o
}

// refresher re-reads readiness before a lifecycle snapshot.
type refresher interface {
	Poll()
}

func publishStartup(pub mqtt.Publisher, tracker *status.Tracker, r refresher) {
	if r != nil {
		r.Poll()
	}
	snap := tracker.Snapshot()
	event := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := pub.PublishSystem(event); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}
}

func publishShutdown(pub mqtt.Publisher, tracker *status.Tracker, r refresher, reason string) {
	if r != nil {
		r.Poll()
	}
	snap := tracker.Snapshot()
	event := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "SHUTDOWN",
		Reason:     reason,
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "SHUTDOWN", reason),
	}
	if err := pub.PublishSystem(event); err != nil {
		log.Printf("failed to publish shutdown event: %v", err)
	} else {
		log.Printf("published shutdown event")
	}
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

// transportUp reports whether any interface that is up carries a routable
// address.
func transportUp() bool {
	ifaces, err := net.Interfaces()
	if err != nil {
		log.Printf("readiness: list interfaces: %v", err)
		return false
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		if routable(addrs) {
			return true
		}
	}
	return false
}

func routable(addrs []net.Addr) bool {
	for _, a := range addrs {
		var ip net.IP
		switch v := a.(type) {
		case *net.IPNet:
			ip = v.IP
		case *net.IPAddr:
			ip = v.IP
		}
		if ip == nil || ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsUnspecified() {
			continue
		}
		return true
	}
	return false
}

func stateString(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}

// printLevels writes the logical state of every input.
func printLevels(w io.Writer, raw logic.RawLevels) {
	parts := make([]string, 0, logic.NumChannels)
	for _, ch := range logic.Channels {
		// Raw high means the input is idle.
		parts = append(parts, fmt.Sprintf("%s: %s", ch, stateString(!raw[ch])))
	}
	fmt.Fprintln(w, strings.Join(parts, ", "))
}
