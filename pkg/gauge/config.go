package gauge

import (
	"time"

	"github.com/itohio/boostgauge/pkg/sample"
)

// Config collects the tunables of the gauge pipeline.
// It carries no I/O so the firmware and tests can use it without YAML.
type Config struct {
	BoostPeriod      time.Duration    `yaml:"boost_period"`
	OilPeriod        time.Duration    `yaml:"oil_period"`
	SampleWindowSize int              `yaml:"sample_window_size"`
	Steinhart        sample.Steinhart `yaml:"steinhart"`
	SeriesResistance float64          `yaml:"series_resistance"` // Ω
	Thresholds       Thresholds       `yaml:"thresholds"`
	BoostOffset      float64          `yaml:"boost_offset"` // psi
	DisplayWidth     int              `yaml:"display_width"` // px
	BoostSeed        float64          `yaml:"boost_seed"`    // initial max boost, psi
	VacuumSeed       float64          `yaml:"vacuum_seed"`   // initial max vacuum, psi
	NumericBoost     bool             `yaml:"numeric_boost"` // show boost as a number only, without bars
}

// DefaultConfig returns the calibration of the stock cluster.
func DefaultConfig() Config {
	return Config{
		BoostPeriod:      100 * time.Millisecond,
		OilPeriod:        200 * time.Millisecond,
		SampleWindowSize: sample.DefaultWindowSize,
		Steinhart:        sample.DefaultSteinhart(),
		SeriesResistance: sample.DefaultSeriesResistance,
		Thresholds:       DefaultThresholds(),
		BoostOffset:      sample.DefaultBoostOffset,
		DisplayWidth:     128,
		BoostSeed:        8,
		VacuumSeed:       -10,
	}
}

// Normalize replaces unset fields with defaults.
// BoostOffset is left alone; zero is a valid calibration.
func (c *Config) Normalize() {
	def := DefaultConfig()

	if c.BoostPeriod <= 0 {
		c.BoostPeriod = def.BoostPeriod
	}
	if c.OilPeriod <= 0 {
		c.OilPeriod = def.OilPeriod
	}
	if c.SampleWindowSize <= 0 {
		c.SampleWindowSize = def.SampleWindowSize
	}
	if c.Steinhart == (sample.Steinhart{}) {
		c.Steinhart = def.Steinhart
	}
	if c.SeriesResistance <= 0 {
		c.SeriesResistance = def.SeriesResistance
	}
	if c.Thresholds == (Thresholds{}) {
		c.Thresholds = def.Thresholds
	}
	if c.DisplayWidth <= 0 {
		c.DisplayWidth = def.DisplayWidth
	}
	if c.BoostSeed <= 0 {
		c.BoostSeed = def.BoostSeed
	}
	if c.VacuumSeed >= 0 {
		c.VacuumSeed = def.VacuumSeed
	}
}
