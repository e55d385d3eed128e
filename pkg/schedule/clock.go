package schedule

import (
	"sync"
	"time"
)

// DefaultModulus is where the microcontroller millisecond counter wraps (2^29).
const DefaultModulus = 1 << 29

// Clock is a millisecond counter that wraps at some modulus.
type Clock interface {
	NowMs() uint32
}

// Wrapping is a Clock based on the host monotonic clock.
type Wrapping struct {
	start   time.Time
	offset  uint64
	modulus uint64
}

// NewWrapping creates a clock that starts at offset and wraps at modulus.
// A zero modulus selects DefaultModulus.
func NewWrapping(offset uint32, modulus uint32) *Wrapping {
	if modulus == 0 {
		modulus = DefaultModulus
	}
	return &Wrapping{
		start:   time.Now(),
		offset:  uint64(offset),
		modulus: uint64(modulus),
	}
}

// NowMs returns the elapsed milliseconds modulo the modulus.
func (w *Wrapping) NowMs() uint32 {
	ms := uint64(time.Since(w.start).Milliseconds())
	return uint32((w.offset + ms) % w.modulus)
}

// Manual is a Clock advanced explicitly, for simulations and tests.
type Manual struct {
	mu      sync.Mutex
	now     uint64
	modulus uint64
}

// NewManual creates a manual clock at start, wrapping at modulus.
func NewManual(start uint32, modulus uint32) *Manual {
	if modulus == 0 {
		modulus = DefaultModulus
	}
	return &Manual{
		now:     uint64(start) % uint64(modulus),
		modulus: uint64(modulus),
	}
}

// NowMs returns the current counter value.
func (m *Manual) NowMs() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return uint32(m.now)
}

// Advance moves the clock forward by d milliseconds, wrapping as needed.
func (m *Manual) Advance(d uint32) uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = (m.now + uint64(d)) % m.modulus
	return uint32(m.now)
}

// Set jumps the clock to v.
func (m *Manual) Set(v uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = uint64(v) % m.modulus
}
