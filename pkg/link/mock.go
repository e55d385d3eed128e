package link

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/itohio/boostgauge/pkg/config"
	"github.com/itohio/boostgauge/pkg/gauge"
	"github.com/itohio/boostgauge/pkg/sample"
)

// Mock simulates an engine with boost and oil temperature senders.
type Mock struct {
	cfg   config.MockConfig
	gauge gauge.Config

	samples   chan RawSample
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool

	// Simulation state, advanced one sample at a time
	elapsed time.Duration
	ticks   uint64
}

// NewMock creates a new mocked device instance.
func NewMock(cfg *config.MockConfig, g gauge.Config) *Mock {
	if cfg == nil {
		cfg = &config.Default().Mock
	}
	g.Normalize()

	ctx, cancel := context.WithCancel(context.Background())

	return &Mock{
		cfg:     *cfg,
		gauge:   g,
		samples: make(chan RawSample, DefaultBufferSize),
		ctx:     ctx,
		cancel:  cancel,
		ticks:   uint64(cfg.StartTicks),
	}
}

// Connect starts generating samples.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return errors.New("already connected")
	}
	m.connected = true

	go m.generateSamples()

	return nil
}

// Close stops the mocked device.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return nil
	}

	m.cancel()
	m.connected = false
	close(m.samples)

	return nil
}

// Samples returns the channel for reading samples.
func (m *Mock) Samples() <-chan RawSample {
	return m.samples
}

// IsConnected returns whether the device is currently connected.
func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

func (m *Mock) generateSamples() {
	ticker := time.NewTicker(m.cfg.SampleRate)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.mu.RLock()
			if !m.connected {
				m.mu.RUnlock()
				return
			}
			s := m.next()
			select {
			case m.samples <- s:
			default:
				// Channel full, skip
			}
			m.mu.RUnlock()
		}
	}
}

// next advances the simulation by one sample period.
func (m *Mock) next() RawSample {
	modulus := uint64(m.cfg.TickModulus)
	if modulus == 0 {
		modulus = math.MaxUint32 + 1
	}

	s := RawSample{
		Timestamp:  time.Now(),
		Ticks:      uint32(m.ticks % modulus),
		Boost:      sample.RawFromBoost(m.boostAt(m.elapsed), m.gauge.BoostOffset),
		Thermistor: m.thermistorAt(m.elapsed),
	}

	m.elapsed += m.cfg.SampleRate
	m.ticks += uint64(m.cfg.SampleRate.Milliseconds())
	return s
}

// boostAt models a throttle cycle: vacuum at idle, a spool-up to peak boost
// and a lift-off back to vacuum.
func (m *Mock) boostAt(t time.Duration) float64 {
	period := m.cfg.CyclePeriod.Seconds()
	if period <= 0 {
		period = 1
	}
	phase := math.Mod(t.Seconds(), period) / period

	var psi float64
	switch {
	case phase < 0.4:
		psi = m.cfg.VacuumPeak
	case phase < 0.7:
		// Spool from vacuum to peak
		x := (phase - 0.4) / 0.3
		psi = m.cfg.VacuumPeak + (m.cfg.BoostPeak-m.cfg.VacuumPeak)*math.Sin(x*math.Pi/2)
	default:
		// Lift-off back to vacuum
		x := (phase - 0.7) / 0.3
		psi = m.cfg.BoostPeak - (m.cfg.BoostPeak-m.cfg.VacuumPeak)*(1-math.Exp(-6*x))
	}

	noise := (math.Sin(t.Seconds()*37) + math.Cos(t.Seconds()*53)) * m.cfg.NoiseLevel * 0.5
	return psi + noise
}

// thermistorAt models an exponential warm-up with an optional disconnect.
func (m *Mock) thermistorAt(t time.Duration) sample.Raw {
	if m.cfg.FaultAfter > 0 && t >= m.cfg.FaultAfter && t < m.cfg.FaultAfter+m.cfg.FaultDuration {
		return 0
	}

	tau := m.cfg.WarmupTime.Seconds()
	if tau <= 0 {
		tau = 1
	}
	f := m.cfg.OilTarget - (m.cfg.OilTarget-m.cfg.OilStart)*math.Exp(-t.Seconds()/tau)
	return sample.ThermistorFromFahrenheit(f, m.gauge.SeriesResistance, m.gauge.Steinhart)
}
