// Command connectivity-led probes internet reachability and drives a status LED.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/sweeney/connectivity-led/internal/config"
	"github.com/sweeney/connectivity-led/internal/indicator"
	"github.com/sweeney/connectivity-led/internal/logging"
	"github.com/sweeney/connectivity-led/internal/metrics"
	"github.com/sweeney/connectivity-led/internal/monitor"
	"github.com/sweeney/connectivity-led/internal/mqtt"
	"github.com/sweeney/connectivity-led/internal/probe"
	"github.com/sweeney/connectivity-led/internal/status"
	"github.com/sweeney/connectivity-led/internal/web"
)

func main() {
	os.Exit(realMain(os.Args[1:], os.Stdout, os.Stderr))
}

func realMain(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "connectivity-led: %v\n", err)
		return 1
	}

	log, closeLog, err := logging.New(logging.Options{
		File:    opts.cfg.Log.File,
		Verbose: opts.cfg.Log.Verbose,
		Console: stderr,
	})
	if err != nil {
		fmt.Fprintf(stderr, "connectivity-led: %v\n", err)
		return 1
	}
	defer closeLog()

	ctx, cancel := context.WithCancelCause(context.Background())
	defer cancel(nil)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer func() {
		signal.Stop(sigCh)
		close(sigCh)
	}()
	go watchSignals(sigCh, cancel)

	if opts.printState {
		return printState(ctx, opts.cfg, stdout, log)
	}

	if err := run(ctx, opts.cfg, log); err != nil {
		log.Error("fatal", zap.Error(err))
		return 1
	}
	return 0
}

// options is the result of parsing the command line.
type options struct {
	cfg        config.Config
	printState bool
}

// parseFlags loads the config file named by -config and applies any flags
// that were explicitly set on top of it, then validates the result.
func parseFlags(args []string, output io.Writer) (options, error) {
	def := config.DefaultConfig()

	fs := flag.NewFlagSet("connectivity-led", flag.ContinueOnError)
	fs.SetOutput(output)

	configPath := fs.String("config", config.DefaultPath, "YAML config file (missing file uses defaults)")
	target := fs.String("target", def.Probe.Target, "Host to probe")
	method := fs.String("method", string(def.Probe.Method), "Probe method: exec, icmp, tcp or dns")
	timeout := fs.Duration("timeout", def.Probe.Timeout, "Per-probe timeout")
	interval := fs.Duration("interval", def.Interval, "Probe interval")
	threshold := fs.Int("threshold", def.FailureThreshold, "Consecutive failures before DOWN")
	heartbeat := fs.Duration("heartbeat", def.Heartbeat, "Heartbeat interval (0 to disable)")
	backend := fs.String("backend", def.Indicator.Backend, "LED backend: gpio or sysfs")
	pin := fs.Int("pin", def.Indicator.GPIO.Pin, "GPIO line offset (BCM numbering) for the gpio backend")
	led := fs.String("led", def.Indicator.Sysfs.Path, "LED class directory for the sysfs backend")
	logFile := fs.String("log-file", def.Log.File, "Persistent log file (empty to disable)")
	verbose := fs.Bool("v", def.Log.Verbose, "Log every probe")
	broker := fs.String("broker", def.MQTT.Broker, "MQTT broker address (empty to disable)")
	httpAddr := fs.String("http", def.HTTP, "HTTP status address (empty to disable)")
	printState := fs.Bool("print-state", false, "Probe once, print UP or DOWN and exit")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return options{}, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "target":
			cfg.Probe.Target = *target
		case "method":
			cfg.Probe.Method = probe.Method(*method)
		case "timeout":
			cfg.Probe.Timeout = *timeout
		case "interval":
			cfg.Interval = *interval
		case "threshold":
			cfg.FailureThreshold = *threshold
		case "heartbeat":
			cfg.Heartbeat = *heartbeat
		case "backend":
			cfg.Indicator.Backend = *backend
		case "pin":
			cfg.Indicator.GPIO.Pin = *pin
		case "led":
			cfg.Indicator.Sysfs.Path = *led
		case "log-file":
			cfg.Log.File = *logFile
		case "v":
			cfg.Log.Verbose = *verbose
		case "broker":
			cfg.MQTT.Broker = *broker
		case "http":
			cfg.HTTP = *httpAddr
		}
	})

	if err := config.Validate(&cfg); err != nil {
		return options{}, fmt.Errorf("invalid config: %w", err)
	}
	return options{cfg: cfg, printState: *printState}, nil
}

func watchSignals(sigCh <-chan os.Signal, cancel context.CancelCauseFunc) {
	s, ok := <-sigCh
	if !ok {
		return
	}
	cancel(monitor.ShutdownReason(signalName(s)))
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

func newProber(cfg config.ProbeConfig) (probe.Prober, error) {
	return probe.New(probe.Options{
		Method:     cfg.Method,
		Target:     cfg.Target,
		Timeout:    cfg.Timeout,
		Port:       cfg.Port,
		DNSName:    cfg.DNSName,
		Privileged: cfg.Privileged,
	})
}

func newIndicator(cfg config.IndicatorConfig) (indicator.Indicator, error) {
	switch cfg.Backend {
	case config.BackendGPIO:
		g, err := indicator.NewGPIO(cfg.GPIO.Chip, cfg.GPIO.Pin, cfg.GPIO.ActiveLow)
		if err != nil {
			return nil, err
		}
		return g, nil
	case config.BackendSysfs:
		s, err := indicator.NewSysfs(cfg.Sysfs.Path, cfg.Sysfs.ManualTrigger, cfg.Sysfs.DefaultTrigger)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown indicator backend %q", cfg.Backend)
}

// indicatorHint suggests a fix for an indicator acquisition error. Only the
// sysfs backend reports ErrPermission; gpio failures surface as ErrClaim.
func indicatorHint(err error) string {
	if errors.Is(err, indicator.ErrPermission) {
		return "run as root (sysfs LED trigger/brightness not writable)"
	}
	return ""
}

// printState probes once and prints the raw result. The LED is not touched.
func printState(ctx context.Context, cfg config.Config, out io.Writer, log *zap.Logger) int {
	prober, err := newProber(cfg.Probe)
	if err != nil {
		log.Error("fatal", zap.Error(err))
		return 1
	}
	res := prober.Check(ctx)
	if res.OK {
		fmt.Fprintf(out, "UP (%s, %v)\n", prober, res.Latency.Round(time.Millisecond))
	} else {
		fmt.Fprintf(out, "DOWN (%s: %v)\n", prober, res.Err)
	}
	return 0
}

func run(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	log.Info("starting",
		zap.String("target", cfg.Probe.Target),
		zap.String("method", string(cfg.Probe.Method)),
		zap.Duration("timeout", cfg.Probe.Timeout),
		zap.Duration("interval", cfg.Interval),
		zap.Int("threshold", cfg.FailureThreshold),
		zap.Duration("heartbeat", cfg.Heartbeat),
		zap.String("backend", cfg.Indicator.Backend),
	)

	prober, err := newProber(cfg.Probe)
	if err != nil {
		return fmt.Errorf("init probe: %w", err)
	}

	ind, err := newIndicator(cfg.Indicator)
	if err != nil {
		if hint := indicatorHint(err); hint != "" {
			log.Error("cannot drive the LED", zap.String("hint", hint))
		}
		return fmt.Errorf("init indicator: %w", err)
	}
	defer func() {
		if err := ind.Close(); err != nil {
			log.Warn("close indicator", zap.Error(err))
		}
	}()
	log.Info("indicator initialised", zap.Stringer("indicator", ind))

	clk := clock.New()
	m := metrics.New()
	tracker := status.NewTracker(clk.Now(), status.Config{
		Target:      cfg.Probe.Target,
		Method:      string(cfg.Probe.Method),
		IntervalMs:  cfg.Interval.Milliseconds(),
		TimeoutMs:   cfg.Probe.Timeout.Milliseconds(),
		Threshold:   cfg.FailureThreshold,
		HeartbeatMs: cfg.Heartbeat.Milliseconds(),
		Indicator:   ind.String(),
		Broker:      cfg.MQTT.Broker,
		HTTPAddr:    cfg.HTTP,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	monOpts := monitor.Options{
		Prober:    prober,
		Indicator: ind,
		Logger:    log.Named("monitor"),
		Threshold: cfg.FailureThreshold,
		Heartbeat: cfg.Heartbeat,
		Clock:     clk,
		Tracker:   tracker,
		Metrics:   m,
		Network:   readNetworkInfo,
	}

	if cfg.MQTT.Broker != "" {
		publisher := mqtt.NewRealPublisher(cfg.MQTT.Broker, log.Named("mqtt"))
		defer publisher.Close()
		monOpts.Publisher = publisher
		monOpts.MQTTStatus = publisher
	}

	if cfg.HTTP != "" {
		srv := web.New(cfg.HTTP, tracker, m.Handler())
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("http server error", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
		log.Info("http status server listening", zap.String("addr", cfg.HTTP))
	}

	ticker := clk.Ticker(cfg.Interval)
	defer ticker.Stop()

	return monitor.New(monOpts).Run(ctx, ticker.C)
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
