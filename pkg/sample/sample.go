package sample

import (
	"math"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

const (
	// FullScale is the largest value a 16-bit ADC channel can report.
	FullScale = 65535

	// DefaultBoostOffset is the sensor calibration offset in psi.
	DefaultBoostOffset = 13.05
	// DefaultSeriesResistance is the divider resistor paired with the thermistor (Ω).
	DefaultSeriesResistance = 10000.0
)

// ErrSensorFault is returned when a thermistor reading cannot be converted,
// which happens when the sensor is disconnected or shorted.
var ErrSensorFault = errors.New("sample: thermistor disconnected")

// Raw is an unprocessed 16-bit ADC reading.
type Raw uint16

// Steinhart holds the Steinhart–Hart coefficients of a thermistor.
type Steinhart struct {
	A float64 `yaml:"a"`
	B float64 `yaml:"b"`
	C float64 `yaml:"c"`
}

// DefaultSteinhart returns the coefficients of the oil temperature sender.
func DefaultSteinhart() Steinhart {
	return Steinhart{
		A: 9.086268490e-4,
		B: 2.045041393e-4,
		C: 1.912131738e-7,
	}
}

// BoostFromRaw converts a boost sensor reading to psi.
func BoostFromRaw(raw Raw, offset float64) float64 {
	return float64(raw)/1000.0 - offset
}

// RawFromBoost is the inverse of BoostFromRaw, clamped to the ADC range.
func RawFromBoost(psi float64, offset float64) Raw {
	return clampRaw(math.Round((psi+offset)*1000.0), 0, FullScale)
}

// FahrenheitFromThermistor converts a thermistor divider reading to °F.
// Returns ErrSensorFault for a zero reading or any non-finite result.
func FahrenheitFromThermistor(raw Raw, r0 float64, c Steinhart) (float64, error) {
	if raw == 0 {
		return 0, ErrSensorFault
	}

	rT := r0 * (FullScale/float64(raw) - 1)
	logRT := math.Log(rT)

	kelvin := 1 / (c.A + c.B*logRT + c.C*logRT*logRT*logRT)
	celsius := kelvin - 273.15
	fahrenheit := celsius*9/5 + 32

	if math.IsNaN(fahrenheit) || math.IsInf(fahrenheit, 0) {
		return 0, errors.Wrapf(ErrSensorFault, "raw %d", raw)
	}
	return fahrenheit, nil
}

// ThermistorFromFahrenheit returns the ADC reading a thermistor at the given
// temperature produces. It solves the Steinhart–Hart cubic for ln(R).
func ThermistorFromFahrenheit(f float64, r0 float64, c Steinhart) Raw {
	kelvin := (f-32)*5/9 + 273.15

	y := (c.A - 1/kelvin) / (2 * c.C)
	x := math.Sqrt(math.Pow(c.B/(3*c.C), 3) + y*y)
	rT := math.Exp(math.Cbrt(x-y) - math.Cbrt(x+y))

	// rT = r0 * (FullScale/raw - 1)
	raw := FullScale / (rT/r0 + 1)
	return clampRaw(math.Round(raw), 1, FullScale-1)
}

func clampRaw(v float64, low, high float64) Raw {
	return Raw(lo.Clamp(v, low, high))
}
