package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/itohio/boostgauge/pkg/gauge"
	"github.com/itohio/boostgauge/pkg/schedule"
)

// Config represents the application configuration.
type Config struct {
	Serial SerialConfig `yaml:"serial"`
	Gauge  gauge.Config `yaml:"gauge"`
	Mock   MockConfig   `yaml:"mock"`
	Trend  TrendConfig  `yaml:"trend"`
	API    APIConfig    `yaml:"api"`
	Log    LogConfig    `yaml:"log"`
}

// SerialConfig contains serial port configuration.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// MockConfig contains simulated sensor configuration.
type MockConfig struct {
	SampleRate    time.Duration `yaml:"sample_rate"`    // Interval between streamed samples
	TickModulus   uint32        `yaml:"tick_modulus"`   // Where the simulated ms counter wraps
	StartTicks    uint32        `yaml:"start_ticks"`    // Initial counter value (set near the modulus to exercise rollover)
	NoiseLevel    float64       `yaml:"noise_level"`    // Boost noise amplitude (psi)
	BoostPeak     float64       `yaml:"boost_peak"`     // Peak simulated boost (psi)
	VacuumPeak    float64       `yaml:"vacuum_peak"`    // Deepest simulated vacuum (psi, negative)
	CyclePeriod   time.Duration `yaml:"cycle_period"`   // One throttle cycle
	OilStart      float64       `yaml:"oil_start"`      // Cold start oil temperature (°F)
	OilTarget     float64       `yaml:"oil_target"`     // Warmed up oil temperature (°F)
	WarmupTime    time.Duration `yaml:"warmup_time"`    // Warm-up time constant
	FaultAfter    time.Duration `yaml:"fault_after"`    // Disconnect the thermistor after this long (0 = never)
	FaultDuration time.Duration `yaml:"fault_duration"` // How long the thermistor stays disconnected
}

// TrendConfig contains reading history configuration.
type TrendConfig struct {
	Window         time.Duration `yaml:"window"`          // How much history is kept
	BoostThreshold float64       `yaml:"boost_threshold"` // Boost above this (psi) counts as a boost event
	MaxPoints      int           `yaml:"max_points"`      // Maximum points drawn by the trend plot
}

// APIConfig contains REST API configuration.
type APIConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:     "/dev/ttyACM0",
			BaudRate: 115200,
		},
		Gauge: gauge.DefaultConfig(),
		Mock: MockConfig{
			SampleRate:    10 * time.Millisecond,
			TickModulus:   schedule.DefaultModulus,
			StartTicks:    0,
			NoiseLevel:    0.2,
			BoostPeak:     14,
			VacuumPeak:    -11,
			CyclePeriod:   8 * time.Second,
			OilStart:      90,
			OilTarget:     235,
			WarmupTime:    60 * time.Second,
			FaultAfter:    0,
			FaultDuration: 3 * time.Second,
		},
		Trend: TrendConfig{
			Window:         60 * time.Second,
			BoostThreshold: 2,
			MaxPoints:      400,
		},
		API: APIConfig{
			Enabled:  false,
			Endpoint: ":8080",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.Wrap(err, "failed to read config file")
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	c.Gauge.Normalize()

	if c.Mock.SampleRate <= 0 {
		c.Mock.SampleRate = def.Mock.SampleRate
	}
	if c.Mock.TickModulus == 0 {
		c.Mock.TickModulus = def.Mock.TickModulus
	}
	if c.Mock.CyclePeriod <= 0 {
		c.Mock.CyclePeriod = def.Mock.CyclePeriod
	}
	if c.Mock.WarmupTime <= 0 {
		c.Mock.WarmupTime = def.Mock.WarmupTime
	}
	if c.Mock.BoostPeak == 0 {
		c.Mock.BoostPeak = def.Mock.BoostPeak
	}
	if c.Mock.VacuumPeak == 0 {
		c.Mock.VacuumPeak = def.Mock.VacuumPeak
	}
	if c.Mock.OilTarget == 0 {
		c.Mock.OilTarget = def.Mock.OilTarget
	}
	if c.Mock.FaultDuration <= 0 {
		c.Mock.FaultDuration = def.Mock.FaultDuration
	}

	if c.Trend.Window <= 0 {
		c.Trend.Window = def.Trend.Window
	}
	if c.Trend.MaxPoints <= 0 {
		c.Trend.MaxPoints = def.Trend.MaxPoints
	}

	if c.API.Endpoint == "" {
		c.API.Endpoint = def.API.Endpoint
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
}
