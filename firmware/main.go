//go:build tinygo

//go:generate tinygo flash -target=xiao

package main

import (
	"machine"
	"time"
)

var (
	adcBoost      machine.ADC
	adcThermistor machine.ADC
	uart          = machine.UART0

	// ADC averaging - running sums and counts
	boostSum      uint32
	thermistorSum uint32
	sampleCount   int // Current count of samples (resets after each output)

	// Timing
	start       time.Time
	lastADCRead time.Time
)

func main() {
	// Configure ADC pins and set up ADCs with highest resolution
	PIN_BOOST.Configure(machine.PinConfig{Mode: machine.PinInput})
	PIN_THERMISTOR.Configure(machine.PinConfig{Mode: machine.PinInput})

	adcBoost = machine.ADC{Pin: PIN_BOOST}
	adcThermistor = machine.ADC{Pin: PIN_THERMISTOR}

	adcConfig := machine.ADCConfig{
		Reference:  ADC_REFERENCE_MV,
		Resolution: ADC_RESOLUTION,
	}

	adcBoost.Configure(adcConfig)
	adcThermistor.Configure(adcConfig)

	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	start = time.Now()
	lastADCRead = start

	// Main loop
	for {
		now := time.Now()

		// Read both ADCs at the same time and rate
		if now.Sub(lastADCRead) >= time.Duration(SAMPLE_INTERVAL_MS)*time.Millisecond {
			readADCs()
			lastADCRead = now
		}

		if sampleCount >= NUM_SAMPLES {
			outputSample(now)
			boostSum = 0
			thermistorSum = 0
			sampleCount = 0
		}

		// Small delay to prevent tight loop (but still allow precise timing)
		time.Sleep(100 * time.Microsecond)
	}
}

func readADCs() {
	// Get returns the reading scaled to 16 bits regardless of resolution
	boostSum += uint32(adcBoost.Get())
	thermistorSum += uint32(adcThermistor.Get())
	sampleCount++
}

// outputSample prints the averaged readings with the wrapping ms counter.
func outputSample(now time.Time) {
	n := uint32(sampleCount)
	if n == 0 {
		n = 1 // Avoid division by zero
	}
	boostAvg := uint16(boostSum / n)
	thermistorAvg := uint16(thermistorSum / n)

	ticks := uint32(now.Sub(start).Milliseconds() % TICK_MODULUS)

	// Output format: "ticks_ms,boost,thermistor\n"
	// Example: "536870911,18050,51999\n"
	print(ticks)
	print(",")
	print(boostAvg)
	print(",")
	print(thermistorAvg)
	print("\n")
}
