package main

import (
	"context"
	"flag"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/itohio/boostgauge/pkg/api"
	"github.com/itohio/boostgauge/pkg/cluster"
	"github.com/itohio/boostgauge/pkg/config"
	"github.com/itohio/boostgauge/pkg/link"
	"github.com/itohio/boostgauge/pkg/metrics"
	"github.com/itohio/boostgauge/pkg/panel"
	"github.com/itohio/boostgauge/pkg/trend"
)

func main() {
	var (
		portFlag    = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag  = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag    = flag.Bool("mock", false, "Use simulated sensors instead of serial port")
		apiFlag     = flag.String("api", "", "Serve the REST API and metrics on this endpoint (e.g., :8080)")
		numericFlag = flag.Bool("numeric", false, "Show boost as a number only, without bars")
		debugFlag   = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}

	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}
	if *apiFlag != "" {
		cfg.API.Enabled = true
		cfg.API.Endpoint = *apiFlag
	}
	if *numericFlag {
		cfg.Gauge.NumericBoost = true
	}

	setupLogging(cfg.Log.Level, *debugFlag)

	// Create Fyne application
	application := app.NewWithID("com.itohio.boostgauge")

	window := application.NewWindow("Boost Gauge")
	window.Resize(fyne.NewSize(800, 640))
	window.CenterOnScreen()

	state := &appState{
		cfg:        cfg,
		configPath: *configFlag,
		window:     window,
		useMock:    *mockFlag,
		metrics:    metrics.New(),
		history:    trend.New(cfg.Trend),
	}

	state.gaugeWidget = panel.New(cfg.Gauge.DisplayWidth)
	state.trendWidget = panel.NewTrend(cfg.Trend.Window, cfg.Trend.MaxPoints)
	state.gaugeWidget.SetStatus(panel.Status{}.String())
	registerHistoryUpdates(state)

	if cfg.API.Enabled {
		state.api = api.New(state, state.metrics)
		state.api.Start(cfg.API.Endpoint)
	}

	toolbar := createToolbar(state)

	content := container.NewBorder(
		toolbar,
		nil,
		nil,
		nil,
		container.NewVSplit(state.gaugeWidget, state.trendWidget),
	)

	window.SetContent(content)
	window.SetOnClosed(func() {
		closeChain(state)
		if state.api != nil {
			if err := state.api.Shutdown(); err != nil {
				log.WithError(err).Warn("failed to stop API")
			}
		}
	})
	window.ShowAndRun()
}

func setupLogging(level string, debug bool) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.WithError(err).WithField("level", level).Warn("invalid log level, using info")
		lvl = log.InfoLevel
	}
	if debug {
		lvl = log.DebugLevel
	}
	log.SetLevel(lvl)
}

// chain tracks the running pipeline for graceful shutdown.
type chain struct {
	device  link.Device
	cluster *cluster.Cluster
	cancel  context.CancelFunc
	done    chan struct{} // Closed when the feed goroutine exits
}

// appState holds the application state.
type appState struct {
	cfg        *config.Config
	configPath string
	window     fyne.Window
	useMock    bool

	gaugeWidget *panel.GaugeWidget
	trendWidget *panel.TrendWidget
	connectBtn  *widget.Button
	resetBtn    *widget.Button

	metrics *metrics.Collector
	history *trend.History
	api     *api.API

	mu    sync.RWMutex
	chain *chain

	// Throttling for widget updates
	gaugeThrottle throttle
	trendThrottle throttle
}

// source names the sample source for the status line.
func (s *appState) source() string {
	if s.useMock {
		return "mock"
	}
	return s.cfg.Serial.Port
}

// currentCluster returns the running cluster or nil.
func (s *appState) currentCluster() *cluster.Cluster {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.chain == nil {
		return nil
	}
	return s.chain.cluster
}

// startChain connects the device and runs the pipeline until the device
// closes its sample channel or the chain is cancelled.
func startChain(state *appState, device link.Device) error {
	if err := device.Connect(); err != nil {
		return err
	}

	samples := device.Samples()

	// Prime the latch with the first sample so the oil window seeds from a
	// real reading.
	var first link.RawSample
	select {
	case s, ok := <-samples:
		if !ok {
			if err := device.Close(); err != nil {
				log.WithError(err).Warn("failed to close device")
			}
			return errors.New("device closed before the first sample")
		}
		first = s
	case <-time.After(2 * time.Second):
		log.Warn("no sample received yet, starting with an empty reading")
	}

	latch := link.NewLatch(first)
	c := cluster.New(state.cfg.Gauge, latch.Boost(), latch.Thermistor(), latch, state.gaugeWidget)
	c.OnFrame(state.metrics.Observe)
	c.OnFrame(state.history.Observe)
	c.OnFrame(func(cluster.Frame) { updateGauges(state) })

	ctx, cancel := context.WithCancel(context.Background())
	ch := &chain{
		device:  device,
		cluster: c,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	state.mu.Lock()
	state.chain = ch
	state.mu.Unlock()

	go func() {
		defer close(ch.done)
		if err := c.Feed(ctx, latch, samples); err != nil && ctx.Err() == nil {
			log.WithError(err).Error("pipeline stopped")
		}
		ticks, rollovers := c.Stats()
		log.WithFields(log.Fields{"ticks": ticks, "rollovers": rollovers}).Info("pipeline finished")
	}()

	return nil
}

// closeChain gracefully closes the running pipeline.
// Waits for the feed goroutine to finish.
func closeChain(state *appState) {
	state.mu.Lock()
	ch := state.chain
	state.chain = nil
	state.mu.Unlock()

	if ch == nil {
		return
	}

	ch.cancel()
	if err := ch.device.Close(); err != nil {
		log.WithError(err).Warn("failed to close device")
	}
	<-ch.done
}
