package trend

import (
	"sync"
	"time"

	"github.com/itohio/boostgauge/pkg/cluster"
	"github.com/itohio/boostgauge/pkg/config"
	"github.com/itohio/boostgauge/pkg/gauge"
)

// Point is one entry of the reading history.
type Point struct {
	Timestamp time.Time
	Boost     float64 // psi
	Oil       float64 // damped °F, valid only if OilValid
	OilValid  bool
}

// Event is a stretch of time spent above the boost threshold.
type Event struct {
	Start time.Time
	End   time.Time // updated while the event is active
	Peak  float64   // highest boost during the event
}

// Duration returns how long the event lasted.
func (e Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// History keeps a time window of gauge readings and the boost events within it.
//
// Points are kept in a FIFO ordered oldest first. Removal is based on the
// timestamp, not the number of points.
type History struct {
	mu     sync.RWMutex
	points []Point
	events []Event
	active bool // last event is still above threshold
	last   Point

	window    time.Duration
	threshold float64
	now       func() time.Time

	callbacks []func(points []Point, events []Event)
	cbMu      sync.RWMutex
}

// New creates a history from the trend configuration.
func New(cfg config.TrendConfig) *History {
	window := cfg.Window
	if window <= 0 {
		window = config.Default().Trend.Window
	}
	return &History{
		points:    make([]Point, 0),
		events:    make([]Event, 0),
		window:    window,
		threshold: cfg.BoostThreshold,
		now:       time.Now,
	}
}

// Observe records a cluster frame. Gauges not refreshed by the frame carry
// their previous value. Frames that refresh nothing are ignored.
func (h *History) Observe(f cluster.Frame) {
	if f.Boost == nil && f.Oil == nil {
		return
	}

	h.mu.RLock()
	p := h.last
	h.mu.RUnlock()

	p.Timestamp = h.now()
	if f.Boost != nil {
		p.Boost = f.Boost.Value
	}
	if f.Oil != nil {
		p.OilValid = f.Oil.State != gauge.Fault && f.Oil.Text != gauge.FaultPlaceholder
		p.Oil = f.Oil.Damped
	}
	h.Add(p)
}

// Add appends a point, drops points outside the window and updates events.
func (h *History) Add(p Point) {
	h.mu.Lock()
	h.last = p
	h.points = append(h.points, p)

	cutoff := p.Timestamp.Add(-h.window)
	cutoffIndex := 0
	for i, q := range h.points {
		if q.Timestamp.After(cutoff) {
			cutoffIndex = i
			break
		}
	}
	if cutoffIndex > 0 {
		h.points = h.points[cutoffIndex:]
	}

	h.updateEvents(p, cutoff)

	points := make([]Point, len(h.points))
	copy(points, h.points)
	events := make([]Event, len(h.events))
	copy(events, h.events)
	h.mu.Unlock()

	h.notifyCallbacks(points, events)
}

// updateEvents must be called with h.mu held.
func (h *History) updateEvents(p Point, cutoff time.Time) {
	above := p.Boost > h.threshold
	switch {
	case above && h.active:
		e := &h.events[len(h.events)-1]
		e.End = p.Timestamp
		if p.Boost > e.Peak {
			e.Peak = p.Boost
		}
	case above:
		h.events = append(h.events, Event{Start: p.Timestamp, End: p.Timestamp, Peak: p.Boost})
		h.active = true
	default:
		h.active = false
	}

	valid := h.events[:0]
	for _, e := range h.events {
		if e.End.After(cutoff) {
			valid = append(valid, e)
		}
	}
	h.events = valid
	if len(h.events) == 0 {
		h.active = false
	}
}

// Points returns a copy of the history ordered oldest first.
func (h *History) Points() []Point {
	h.mu.RLock()
	defer h.mu.RUnlock()

	result := make([]Point, len(h.points))
	copy(result, h.points)
	return result
}

// Events returns a copy of the boost events within the window.
func (h *History) Events() []Event {
	h.mu.RLock()
	defer h.mu.RUnlock()

	result := make([]Event, len(h.events))
	copy(result, h.events)
	return result
}

// OilRate returns the damped oil temperature change in °F per minute between
// the oldest and newest valid points of the window. ok is false when fewer
// than two valid points span a non-zero time.
func (h *History) OilRate() (rate float64, ok bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var first, last *Point
	for i := range h.points {
		if !h.points[i].OilValid {
			continue
		}
		if first == nil {
			first = &h.points[i]
		}
		last = &h.points[i]
	}
	if first == nil || last == first {
		return 0, false
	}

	dt := last.Timestamp.Sub(first.Timestamp).Minutes()
	if dt <= 0 {
		return 0, false
	}
	return (last.Oil - first.Oil) / dt, true
}

// OnUpdate registers a callback invoked after every added point.
// The callback receives copies and should return quickly.
func (h *History) OnUpdate(callback func(points []Point, events []Event)) {
	h.cbMu.Lock()
	defer h.cbMu.Unlock()
	h.callbacks = append(h.callbacks, callback)
}

func (h *History) notifyCallbacks(points []Point, events []Event) {
	h.cbMu.RLock()
	callbacks := make([]func(points []Point, events []Event), len(h.callbacks))
	copy(callbacks, h.callbacks)
	h.cbMu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(points, events)
		}
	}
}
