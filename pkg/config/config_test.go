package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotNil(t, cfg)
	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
	assert.Equal(t, 115200, cfg.Serial.BaudRate)
	assert.Equal(t, 100*time.Millisecond, cfg.Gauge.BoostPeriod)
	assert.Equal(t, 200*time.Millisecond, cfg.Gauge.OilPeriod)
	assert.Equal(t, 50, cfg.Gauge.SampleWindowSize)
	assert.Equal(t, 13.05, cfg.Gauge.BoostOffset)
	assert.Equal(t, 128, cfg.Gauge.DisplayWidth)
	assert.Equal(t, float64(200), cfg.Gauge.Thresholds.Normal)
	assert.Equal(t, float64(270), cfg.Gauge.Thresholds.Hot)
	assert.Equal(t, 10*time.Millisecond, cfg.Mock.SampleRate)
	assert.Equal(t, uint32(1<<29), cfg.Mock.TickModulus)
	assert.Equal(t, 60*time.Second, cfg.Trend.Window)
	assert.Equal(t, 400, cfg.Trend.MaxPoints)
	assert.False(t, cfg.API.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
serial:
  port: "/dev/ttyUSB1"
  baud_rate: 57600

gauge:
  boost_period: 50ms
  oil_period: 250ms
  sample_window_size: 20
  steinhart:
    a: 0.001
    b: 0.0002
    c: 0.0000001
  thresholds:
    normal: 180
    hot: 260
  boost_offset: 13.0
  display_width: 160
  numeric_boost: true

mock:
  sample_rate: 5ms
  tick_modulus: 100000
  start_ticks: 99000
  fault_after: 10s

trend:
  window: 30s
  boost_threshold: 5

api:
  enabled: true
  endpoint: "127.0.0.1:9000"

log:
  level: debug
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, "/dev/ttyUSB1", cfg.Serial.Port)
	assert.Equal(t, 57600, cfg.Serial.BaudRate)
	assert.Equal(t, 50*time.Millisecond, cfg.Gauge.BoostPeriod)
	assert.Equal(t, 250*time.Millisecond, cfg.Gauge.OilPeriod)
	assert.Equal(t, 20, cfg.Gauge.SampleWindowSize)
	assert.Equal(t, 0.001, cfg.Gauge.Steinhart.A)
	assert.Equal(t, float64(180), cfg.Gauge.Thresholds.Normal)
	assert.Equal(t, float64(260), cfg.Gauge.Thresholds.Hot)
	assert.Equal(t, 13.0, cfg.Gauge.BoostOffset)
	assert.Equal(t, 160, cfg.Gauge.DisplayWidth)
	assert.True(t, cfg.Gauge.NumericBoost)
	assert.Equal(t, 5*time.Millisecond, cfg.Mock.SampleRate)
	assert.Equal(t, uint32(100000), cfg.Mock.TickModulus)
	assert.Equal(t, uint32(99000), cfg.Mock.StartTicks)
	assert.Equal(t, 10*time.Second, cfg.Mock.FaultAfter)
	assert.Equal(t, 30*time.Second, cfg.Trend.Window)
	assert.Equal(t, 5.0, cfg.Trend.BoostThreshold)
	assert.Equal(t, 400, cfg.Trend.MaxPoints) // default
	assert.True(t, cfg.API.Enabled)
	assert.Equal(t, "127.0.0.1:9000", cfg.API.Endpoint)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.WriteString("invalid: yaml: content: [")
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_PartialYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
gauge:
  display_width: 96
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	// Should use defaults for missing fields
	assert.Equal(t, 96, cfg.Gauge.DisplayWidth)
	assert.Equal(t, 100*time.Millisecond, cfg.Gauge.BoostPeriod) // default
	assert.Equal(t, 50, cfg.Gauge.SampleWindowSize)               // default
	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)              // default
}

func TestLoad_ZeroOffsetAndNegativeRates(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
gauge:
  boost_offset: 0
mock:
  sample_rate: -5ms
  cycle_period: -1s
trend:
  max_points: -1
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)

	assert.Zero(t, cfg.Gauge.BoostOffset)
	assert.Equal(t, 10*time.Millisecond, cfg.Mock.SampleRate) // default
	assert.Equal(t, 8*time.Second, cfg.Mock.CyclePeriod)     // default
	assert.Equal(t, 400, cfg.Trend.MaxPoints)                // default
}

func TestSave(t *testing.T) {
	cfg := Default()
	cfg.Serial.Port = "/dev/ttyUSB0"
	cfg.Gauge.Thresholds.Hot = 280
	cfg.Gauge.NumericBoost = true

	tmpfile, err := os.CreateTemp("", "test_save_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	err = cfg.Save(tmpfile.Name())
	require.NoError(t, err)

	loaded, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB0", loaded.Serial.Port)
	assert.Equal(t, float64(280), loaded.Gauge.Thresholds.Hot)
	assert.True(t, loaded.Gauge.NumericBoost)
	assert.Equal(t, cfg.Gauge.BoostPeriod, loaded.Gauge.BoostPeriod)
}
