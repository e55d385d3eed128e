//go:build tinygo

package main

import "machine"

const (
	// Sampling configuration
	SAMPLE_INTERVAL_MS = 1  // ADC read interval in milliseconds (same for both ADCs)
	NUM_SAMPLES        = 10 // Readings averaged per output line (one line every 10ms)

	// The ms counter wraps here; the host scheduler handles the rollover
	TICK_MODULUS = 1 << 29

	// ADC configuration
	ADC_REFERENCE_MV = 3300 // Reference voltage in millivolts (3.3V)
	ADC_RESOLUTION   = 12   // ADC resolution in bits, Get() scales to 16 bits

	// ADC pins
	PIN_BOOST      = machine.A0 // MAP sensor output
	PIN_THERMISTOR = machine.A2 // Oil temperature sender divider

	// Serial configuration
	// Format "ticks_ms,boost,thermistor\n": "536870911,65535,65535\n" = 22 bytes max per line
	// 100 outputs/sec * 22 bytes/line = 2,200 bytes/sec
	// UART 8N1: 10 bits/byte = 22,000 baud minimum.
	// 115200 provides ~5x headroom
	UART_BAUD_RATE = 115200
)
