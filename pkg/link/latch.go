package link

import (
	"sync"

	"github.com/itohio/boostgauge/pkg/sample"
)

// Latch holds the most recent streamed sample so the pipeline can read its
// channels and counter synchronously, the way it would read the ADC on the
// board itself.
type Latch struct {
	mu   sync.RWMutex
	last RawSample
}

// NewLatch creates a latch primed with an initial sample.
func NewLatch(initial RawSample) *Latch {
	return &Latch{last: initial}
}

// Store replaces the latched sample.
func (l *Latch) Store(s RawSample) {
	l.mu.Lock()
	l.last = s
	l.mu.Unlock()
}

// Last returns the latched sample.
func (l *Latch) Last() RawSample {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.last
}

// NowMs returns the firmware counter of the latched sample.
func (l *Latch) NowMs() uint32 {
	return l.Last().Ticks
}

// Boost returns the boost channel.
func (l *Latch) Boost() Channel {
	return Channel{latch: l}
}

// Thermistor returns the oil thermistor channel.
func (l *Latch) Thermistor() Channel {
	return Channel{latch: l, thermistor: true}
}

// Channel reads one ADC channel of a Latch.
type Channel struct {
	latch      *Latch
	thermistor bool
}

// Read returns the latched reading of the channel.
func (c Channel) Read() sample.Raw {
	s := c.latch.Last()
	if c.thermistor {
		return s.Thermistor
	}
	return s.Boost
}
