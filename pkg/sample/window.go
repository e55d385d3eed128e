package sample

import "github.com/samber/lo"

// DefaultWindowSize is the number of oil temperature readings averaged.
const DefaultWindowSize = 50

// Window is a fixed size circular buffer of truncated readings.
// Once seeded it always holds exactly Size values.
type Window struct {
	values []int
	index  int
	seeded bool
}

// NewWindow creates an unseeded window of the given size.
func NewWindow(size int) *Window {
	if size <= 0 {
		size = DefaultWindowSize
	}
	return &Window{
		values: make([]int, size),
	}
}

// Seed fills every slot with v and resets the write position.
// Seeding with the first reading keeps the startup average free of zeroes.
func (w *Window) Seed(v int) {
	for i := range w.values {
		w.values[i] = v
	}
	w.index = 0
	w.seeded = true
}

// Seeded reports whether the window holds real readings.
func (w *Window) Seeded() bool {
	return w.seeded
}

// Push overwrites the oldest slot with v.
func (w *Window) Push(v int) {
	if !w.seeded {
		w.Seed(v)
		return
	}
	w.values[w.index] = v
	w.index = (w.index + 1) % len(w.values)
}

// Damped returns the arithmetic mean of all stored values.
func (w *Window) Damped() float64 {
	sum := lo.Reduce(w.values, func(agg, v, _ int) int { return agg + v }, 0)
	return float64(sum) / float64(len(w.values))
}

// Size returns the window capacity.
func (w *Window) Size() int {
	return len(w.values)
}

// Values returns a copy of the stored values in slot order.
func (w *Window) Values() []int {
	result := make([]int, len(w.values))
	copy(result, w.values)
	return result
}
