// Package cluster drives the gauge pipeline: each tick the scheduler decides
// which gauges are due, their sensors are read and converted, and the
// resulting outputs are handed to a Renderer.
package cluster

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/itohio/boostgauge/pkg/gauge"
	"github.com/itohio/boostgauge/pkg/link"
	"github.com/itohio/boostgauge/pkg/sample"
	"github.com/itohio/boostgauge/pkg/schedule"
)

const (
	taskBoost = "boost"
	taskOil   = "oil"
)

// AnalogInput is one ADC channel.
type AnalogInput interface {
	Read() sample.Raw
}

// Renderer draws gauge outputs. Implementations must not retain the outputs.
type Renderer interface {
	RenderBoost(out gauge.BoostOutput)
	RenderOil(out gauge.OilOutput)
}

// Frame is the result of one tick. Boost and Oil are nil when not due.
type Frame struct {
	Ticks      uint32             `json:"ticks"`
	Boost      *gauge.BoostOutput `json:"boost,omitempty"`
	Oil        *gauge.OilOutput   `json:"oil,omitempty"`
	Range      gauge.Range        `json:"range"`
	RolledOver bool               `json:"rolled_over"`
}

// Cluster owns the pipeline state. Tick is meant to be called from a single
// loop; the mutex only guards against snapshot and reset calls from other
// goroutines.
type Cluster struct {
	cfg      gauge.Config
	boost    AnalogInput
	oil      AnalogInput
	clock    schedule.Clock
	renderer Renderer

	mu        sync.Mutex
	window    *sample.Window
	rng       gauge.Range
	scheduler *schedule.Scheduler
	frame     Frame
	latest    Frame
	fault     bool
	ticks     uint64

	callbacks []func(Frame)
	cbMu      sync.RWMutex
}

// New creates a cluster and seeds the smoothing window from the first
// thermistor reading. renderer may be nil.
func New(cfg gauge.Config, boost, oil AnalogInput, clock schedule.Clock, renderer Renderer) *Cluster {
	cfg.Normalize()

	c := &Cluster{
		cfg:      cfg,
		boost:    boost,
		oil:      oil,
		clock:    clock,
		renderer: renderer,
		window:   sample.NewWindow(cfg.SampleWindowSize),
		rng:      gauge.NewRange(cfg.BoostSeed, cfg.VacuumSeed),
	}

	c.scheduler = schedule.New(
		&schedule.Task{Name: taskBoost, Period: uint32(cfg.BoostPeriod.Milliseconds()), Run: c.updateBoost},
		&schedule.Task{Name: taskOil, Period: uint32(cfg.OilPeriod.Milliseconds()), Run: c.updateOil},
	)

	raw := oil.Read()
	if f, err := c.oilFromRaw(raw); err == nil && f >= 0 {
		c.window.Seed(int(f))
	} else {
		c.fault = true
		log.WithField("raw", raw).Warn("oil temperature sensor fault at startup")
	}

	return c
}

// Tick runs one iteration of the pipeline and returns what it produced.
func (c *Cluster) Tick() Frame {
	c.mu.Lock()
	now := c.clock.NowMs()
	c.frame = Frame{Ticks: now}
	res := c.scheduler.Tick(now)
	c.frame.RolledOver = res.RolledOver
	c.frame.Range = c.rng
	c.latest.Ticks = now
	c.latest.Range = c.rng
	c.ticks++
	frame := c.frame
	c.mu.Unlock()

	if res.RolledOver {
		log.WithField("ticks", now).Info("tick counter rolled over, rescheduling gauges")
	}

	if c.renderer != nil {
		if frame.Boost != nil {
			c.renderer.RenderBoost(*frame.Boost)
		}
		if frame.Oil != nil {
			c.renderer.RenderOil(*frame.Oil)
		}
	}
	c.notifyCallbacks(frame)

	return frame
}

// Feed latches every received sample and ticks the pipeline once per sample.
// It returns when in is closed or ctx is done.
func (c *Cluster) Feed(ctx context.Context, latch *link.Latch, in <-chan link.RawSample) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case s, ok := <-in:
			if !ok {
				return nil
			}
			latch.Store(s)
			c.Tick()
		}
	}
}

// OnFrame registers a callback invoked after every tick.
// The callback should return quickly.
func (c *Cluster) OnFrame(cb func(Frame)) {
	c.cbMu.Lock()
	defer c.cbMu.Unlock()
	c.callbacks = append(c.callbacks, cb)
}

// Latest returns the most recent output of each gauge, whichever tick
// produced it. Boost and Oil are nil until the first refresh.
func (c *Cluster) Latest() Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latest
}

// Range returns the current boost range.
func (c *Cluster) Range() gauge.Range {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rng
}

// ResetRange restores the boost range seeds.
func (c *Cluster) ResetRange() gauge.Range {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rng.Reset()
	c.latest.Range = c.rng
	log.WithFields(log.Fields{
		"max_boost":  c.rng.MaxBoost,
		"max_vacuum": c.rng.MaxVacuum,
	}).Info("boost range reset")
	return c.rng
}

// Schedule returns the scheduler counters.
func (c *Cluster) Schedule() schedule.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scheduler.State()
}

// Stats returns the number of ticks processed and counter rollovers seen.
func (c *Cluster) Stats() (ticks uint64, rollovers int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ticks, c.scheduler.Rollovers()
}

// Config returns the effective gauge configuration.
func (c *Cluster) Config() gauge.Config {
	return c.cfg
}

// updateBoost runs under c.mu from the scheduler.
func (c *Cluster) updateBoost(uint32) {
	v := sample.BoostFromRaw(c.boost.Read(), c.cfg.BoostOffset)
	c.rng.Update(v)
	out := gauge.BuildBoost(v, c.rng, c.cfg)
	c.frame.Boost = &out
	c.latest.Boost = &out
}

// updateOil runs under c.mu from the scheduler.
func (c *Cluster) updateOil(uint32) {
	f, err := c.readOil()
	fault := err != nil || f < 0
	switch {
	case fault:
		// Faulty readings stay out of the average.
	case !c.window.Seeded():
		c.window.Seed(int(f))
	default:
		c.window.Push(int(f))
	}

	out := gauge.BuildOil(f, err != nil, c.window, c.cfg.Thresholds)
	c.frame.Oil = &out
	c.latest.Oil = &out

	if fault != c.fault {
		c.fault = fault
		if fault {
			log.WithError(err).Warn("oil temperature sensor fault")
		} else {
			log.WithField("temperature", f).Info("oil temperature sensor recovered")
		}
	}
}

func (c *Cluster) readOil() (float64, error) {
	return c.oilFromRaw(c.oil.Read())
}

func (c *Cluster) oilFromRaw(raw sample.Raw) (float64, error) {
	return sample.FahrenheitFromThermistor(raw, c.cfg.SeriesResistance, c.cfg.Steinhart)
}

func (c *Cluster) notifyCallbacks(f Frame) {
	c.cbMu.RLock()
	callbacks := make([]func(Frame), len(c.callbacks))
	copy(callbacks, c.callbacks)
	c.cbMu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(f)
		}
	}
}
