package cluster

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/boostgauge/pkg/gauge"
	"github.com/itohio/boostgauge/pkg/link"
	"github.com/itohio/boostgauge/pkg/sample"
	"github.com/itohio/boostgauge/pkg/schedule"
)

type fakeInput struct {
	raw   sample.Raw
	reads int
}

func (f *fakeInput) Read() sample.Raw {
	f.reads++
	return f.raw
}

type recordingRenderer struct {
	mu    sync.Mutex
	boost []gauge.BoostOutput
	oil   []gauge.OilOutput
}

func (r *recordingRenderer) RenderBoost(out gauge.BoostOutput) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.boost = append(r.boost, out)
}

func (r *recordingRenderer) RenderOil(out gauge.OilOutput) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.oil = append(r.oil, out)
}

type fixture struct {
	cfg      gauge.Config
	boost    *fakeInput
	oil      *fakeInput
	clock    *schedule.Manual
	renderer *recordingRenderer
	cluster  *Cluster
}

// newFixture uses an integer calibration offset so psi values are exact.
func newFixture(t *testing.T, oilF float64) *fixture {
	t.Helper()

	cfg := gauge.DefaultConfig()
	cfg.BoostOffset = 13

	f := &fixture{
		cfg:      cfg,
		boost:    &fakeInput{raw: 13000},
		oil:      &fakeInput{raw: sample.ThermistorFromFahrenheit(oilF, cfg.SeriesResistance, cfg.Steinhart)},
		clock:    schedule.NewManual(0, schedule.DefaultModulus),
		renderer: &recordingRenderer{},
	}
	f.cluster = New(cfg, f.boost, f.oil, f.clock, f.renderer)
	return f
}

func TestTick_FirstTickRunsBoth(t *testing.T) {
	f := newFixture(t, 150)

	frame := f.cluster.Tick()
	require.NotNil(t, frame.Boost)
	require.NotNil(t, frame.Oil)
	assert.Equal(t, "  0.0", frame.Boost.Text)
	assert.Equal(t, gauge.Cold, frame.Oil.State)
	assert.Equal(t, "150", frame.Oil.Text)
	assert.Len(t, f.renderer.boost, 1)
	assert.Len(t, f.renderer.oil, 1)
}

func TestTick_Periods(t *testing.T) {
	f := newFixture(t, 150)

	var boostRuns, oilRuns int
	for range 100 {
		frame := f.cluster.Tick()
		if frame.Boost != nil {
			boostRuns++
		}
		if frame.Oil != nil {
			oilRuns++
		}
		f.clock.Advance(10)
	}

	// 1s of 10ms ticks: boost every 110ms, oil every 210ms.
	assert.Equal(t, 10, boostRuns)
	assert.Equal(t, 5, oilRuns)
}

func TestTick_BoostBar(t *testing.T) {
	f := newFixture(t, 150)
	f.boost.raw = 18000

	frame := f.cluster.Tick()
	require.NotNil(t, frame.Boost)
	require.NotNil(t, frame.Boost.Bars)
	assert.Equal(t, 5.0, frame.Boost.Value)
	assert.Equal(t, 80, frame.Boost.Bars.Boost.Width)
	assert.False(t, frame.Boost.Bars.Boost.Hidden)
	assert.True(t, frame.Boost.Bars.Vacuum.Hidden)
}

func TestTick_VacuumBar(t *testing.T) {
	f := newFixture(t, 150)
	f.boost.raw = 8000

	frame := f.cluster.Tick()
	require.NotNil(t, frame.Boost.Bars)
	assert.Equal(t, -5.0, frame.Boost.Value)
	assert.Equal(t, 64, frame.Boost.Bars.Vacuum.Width)
	assert.False(t, frame.Boost.Bars.Vacuum.Hidden)
	assert.True(t, frame.Boost.Bars.Boost.Hidden)
}

func TestTick_PeakWidensRange(t *testing.T) {
	f := newFixture(t, 150)
	f.boost.raw = 29000 // 16 psi

	frame := f.cluster.Tick()
	assert.Equal(t, 16.0, frame.Range.MaxBoost)
	assert.Equal(t, f.cfg.DisplayWidth, frame.Boost.Bars.Boost.Width)

	f.clock.Advance(150)
	f.boost.raw = 21000 // 8 psi, half of the new range
	frame = f.cluster.Tick()
	require.NotNil(t, frame.Boost)
	assert.Equal(t, 64, frame.Boost.Bars.Boost.Width)
	assert.Equal(t, 16.0, f.cluster.Range().MaxBoost)

	r := f.cluster.ResetRange()
	assert.Equal(t, 8.0, r.MaxBoost)
	assert.Equal(t, -10.0, r.MaxVacuum)
}

func TestTick_NumericBoost(t *testing.T) {
	cfg := gauge.DefaultConfig()
	cfg.NumericBoost = true
	boost := &fakeInput{raw: 30000}
	oil := &fakeInput{raw: 40000}
	c := New(cfg, boost, oil, schedule.NewManual(0, 0), nil)

	frame := c.Tick()
	require.NotNil(t, frame.Boost)
	assert.Nil(t, frame.Boost.Bars)

	// 30000/1000 - 13.05; the range is tracked even without bars
	assert.InDelta(t, 16.95, c.Range().MaxBoost, 1e-9)
	assert.InDelta(t, 16.95, frame.Range.MaxBoost, 1e-9)
	assert.Equal(t, -10.0, c.Range().MaxVacuum)
}

func TestTick_OilSteadyState(t *testing.T) {
	f := newFixture(t, 230)

	var last *gauge.OilOutput
	for range 50 * 21 {
		frame := f.cluster.Tick()
		if frame.Oil != nil {
			last = frame.Oil
		}
		f.clock.Advance(10)
	}

	require.NotNil(t, last)
	assert.InDelta(t, 230, last.Damped, 1.0)
	assert.Equal(t, gauge.Normal, last.State)
	assert.Equal(t, gauge.Normal, gauge.Classify(last.Damped, f.cfg.Thresholds))
}

func TestTick_OilDamping(t *testing.T) {
	f := newFixture(t, 190)

	f.cluster.Tick()
	f.oil.raw = sample.ThermistorFromFahrenheit(290, f.cfg.SeriesResistance, f.cfg.Steinhart)
	f.clock.Advance(210)

	frame := f.cluster.Tick()
	require.NotNil(t, frame.Oil)
	// Color follows the instantaneous reading, the text the average.
	assert.Equal(t, gauge.Hot, frame.Oil.State)
	assert.Less(t, frame.Oil.Damped, 200.0)
	assert.Greater(t, frame.Oil.Damped, 189.0)
}

func TestTick_SensorFault(t *testing.T) {
	f := newFixture(t, 230)
	f.cluster.Tick()
	f.oil.raw = 0
	f.clock.Advance(210)

	frame := f.cluster.Tick()
	require.NotNil(t, frame.Oil)
	assert.Equal(t, gauge.Fault, frame.Oil.State)
	assert.Equal(t, gauge.FaultPlaceholder, frame.Oil.Text)
	assert.Equal(t, uint32(gauge.ColorWhite), frame.Oil.Color)
	assert.Equal(t, 0.0, frame.Oil.Value)

	// Recovery resumes from the undisturbed average.
	f.oil.raw = sample.ThermistorFromFahrenheit(230, f.cfg.SeriesResistance, f.cfg.Steinhart)
	f.clock.Advance(210)
	frame = f.cluster.Tick()
	require.NotNil(t, frame.Oil)
	assert.Equal(t, gauge.Normal, frame.Oil.State)
	assert.InDelta(t, 230, frame.Oil.Damped, 1.0)
}

func TestNew_FaultAtStartup(t *testing.T) {
	cfg := gauge.DefaultConfig()
	oil := &fakeInput{raw: 0}
	clock := schedule.NewManual(0, 0)
	c := New(cfg, &fakeInput{raw: 13050}, oil, clock, nil)
	assert.Equal(t, 1, oil.reads, "startup reads the thermistor once")

	frame := c.Tick()
	require.NotNil(t, frame.Oil)
	assert.Equal(t, gauge.Fault, frame.Oil.State)
	assert.Equal(t, gauge.FaultPlaceholder, frame.Oil.Text)

	// First valid reading seeds the window.
	oil.raw = sample.ThermistorFromFahrenheit(120, cfg.SeriesResistance, cfg.Steinhart)
	clock.Advance(250)
	frame = c.Tick()
	require.NotNil(t, frame.Oil)
	assert.Equal(t, gauge.Cold, frame.Oil.State)
	assert.InDelta(t, 120, frame.Oil.Damped, 1.0)
}

func TestTick_Rollover(t *testing.T) {
	const modulus = 10000
	f := newFixture(t, 230)
	f.clock = schedule.NewManual(modulus-300, modulus)
	f.cluster = New(f.cfg, f.boost, f.oil, f.clock, f.renderer)

	var rolled int
	lastBoost := -1
	maxGap := 0
	for i := range 200 {
		frame := f.cluster.Tick()
		if frame.RolledOver {
			rolled++
		}
		if frame.Boost != nil {
			if lastBoost >= 0 && i-lastBoost > maxGap {
				maxGap = i - lastBoost
			}
			lastBoost = i
		}
		f.clock.Advance(10)
	}

	assert.Equal(t, 1, rolled)
	assert.LessOrEqual(t, maxGap, 12, "boost never stalls across the wrap")
	_, rollovers := f.cluster.Stats()
	assert.Equal(t, 1, rollovers)
}

func TestOnFrame(t *testing.T) {
	f := newFixture(t, 150)

	var frames []Frame
	f.cluster.OnFrame(func(fr Frame) {
		frames = append(frames, fr)
	})

	f.cluster.Tick()
	f.clock.Advance(10)
	f.cluster.Tick()

	require.Len(t, frames, 2)
	assert.NotNil(t, frames[0].Boost)
	assert.Nil(t, frames[1].Boost)
	assert.Equal(t, uint32(10), frames[1].Ticks)
}

func TestFeed(t *testing.T) {
	cfg := gauge.DefaultConfig()
	cfg.BoostOffset = 13
	therm := sample.ThermistorFromFahrenheit(230, cfg.SeriesResistance, cfg.Steinhart)

	latch := link.NewLatch(link.RawSample{Boost: 13000, Thermistor: therm})
	renderer := &recordingRenderer{}
	c := New(cfg, latch.Boost(), latch.Thermistor(), latch, renderer)

	in := make(chan link.RawSample, 10)
	for i := range 5 {
		in <- link.RawSample{Ticks: uint32(i * 120), Boost: 18000, Thermistor: therm}
	}
	close(in)

	err := c.Feed(context.Background(), latch, in)
	require.NoError(t, err)

	require.Len(t, renderer.boost, 5)
	assert.Equal(t, 80, renderer.boost[4].Bars.Boost.Width)
	ticks, _ := c.Stats()
	assert.Equal(t, uint64(5), ticks)
}

func TestFeed_Cancelled(t *testing.T) {
	latch := link.NewLatch(link.RawSample{Boost: 13050, Thermistor: 40000})
	c := New(gauge.DefaultConfig(), latch.Boost(), latch.Thermistor(), latch, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := c.Feed(ctx, latch, make(chan link.RawSample))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSchedule_Invariant(t *testing.T) {
	f := newFixture(t, 150)
	for range 30 {
		f.cluster.Tick()
		st := f.cluster.Schedule()
		for _, last := range st.Last {
			assert.LessOrEqual(t, last, st.LastTick)
		}
		f.clock.Advance(33)
	}
}

func TestLatest(t *testing.T) {
	f := newFixture(t, 150)

	f.boost.raw = 18000
	f.cluster.Tick()
	f.clock.Advance(10)
	frame := f.cluster.Tick()
	assert.Nil(t, frame.Boost)

	latest := f.cluster.Latest()
	assert.Equal(t, uint32(10), latest.Ticks)
	require.NotNil(t, latest.Boost)
	require.NotNil(t, latest.Oil)
	assert.Equal(t, 5.0, latest.Boost.Value)
	assert.False(t, latest.RolledOver)
}
