package panel

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Status is what the status line under the gauges reports.
type Status struct {
	Connected bool
	Source    string // port name or "mock"
	Ticks     uint64
	Rollovers int
	OilRate   float64 // °F per minute
	HasRate   bool
	Events    int
}

// String renders the status line.
func (s Status) String() string {
	if !s.Connected {
		return "disconnected"
	}

	parts := []string{
		s.Source,
		humanize.Comma(int64(s.Ticks)) + " ticks",
	}
	if s.Rollovers > 0 {
		parts = append(parts, fmt.Sprintf("%s %s", humanize.Comma(int64(s.Rollovers)), plural(s.Rollovers, "rollover")))
	}
	if s.HasRate {
		parts = append(parts, fmt.Sprintf("oil %+.1f °F/min", s.OilRate))
	}
	if s.Events > 0 {
		parts = append(parts, fmt.Sprintf("%d boost %s", s.Events, plural(s.Events, "event")))
	}
	return strings.Join(parts, " · ")
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func formatPSI(v float64) string {
	return humanize.FtoaWithDigits(v, 1)
}

func formatFahrenheit(v float64) string {
	return humanize.FtoaWithDigits(v, 0) + "°"
}

func formatElapsed(d time.Duration) string {
	if d < time.Second {
		return humanize.FtoaWithDigits(d.Seconds(), 2) + "s"
	}
	return humanize.FtoaWithDigits(d.Seconds(), 1) + "s"
}
