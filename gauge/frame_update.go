package main

import (
	"sync"
	"time"

	"fyne.io/fyne/v2"

	"github.com/itohio/boostgauge/pkg/panel"
	"github.com/itohio/boostgauge/pkg/trend"
)

// Throttle widget updates to ~60 FPS
const updateInterval = 16 * time.Millisecond

// throttle lets through at most one call per interval.
type throttle struct {
	mu   sync.Mutex
	last time.Time
}

// allow reports whether enough time has passed since the last allowed call.
func (t *throttle) allow(now time.Time, interval time.Duration) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if now.Sub(t.last) < interval {
		return false
	}
	t.last = now
	return true
}

// updateGauges refreshes the gauge widget on the main thread.
// Called from the pipeline goroutine after every frame.
func updateGauges(state *appState) {
	if !state.gaugeThrottle.allow(time.Now(), updateInterval) {
		return
	}

	status := currentStatus(state)
	fyne.Do(func() {
		state.gaugeWidget.SetStatus(status)
		state.gaugeWidget.Refresh()
	})
}

// registerHistoryUpdates feeds the trend widget from the reading history.
func registerHistoryUpdates(state *appState) {
	state.history.OnUpdate(func(points []trend.Point, events []trend.Event) {
		if !state.trendThrottle.allow(time.Now(), 4*updateInterval) {
			return
		}
		fyne.Do(func() {
			state.trendWidget.UpdateData(points, events)
		})
	})
}

func currentStatus(state *appState) string {
	c := state.currentCluster()
	if c == nil {
		return panel.Status{}.String()
	}

	ticks, rollovers := c.Stats()
	rate, ok := state.history.OilRate()
	return panel.Status{
		Connected: true,
		Source:    state.source(),
		Ticks:     ticks,
		Rollovers: rollovers,
		OilRate:   rate,
		HasRate:   ok,
		Events:    len(state.history.Events()),
	}.String()
}
