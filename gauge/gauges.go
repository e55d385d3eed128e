package main

import (
	"github.com/itohio/boostgauge/pkg/api"
	"github.com/itohio/boostgauge/pkg/cluster"
	"github.com/itohio/boostgauge/pkg/gauge"
)

var _ api.Gauges = (*appState)(nil)

// The API outlives reconnects, so appState serves it by delegating to
// whichever cluster is running.

func (s *appState) Latest() cluster.Frame {
	if c := s.currentCluster(); c != nil {
		return c.Latest()
	}
	return cluster.Frame{Range: s.seedRange()}
}

func (s *appState) Range() gauge.Range {
	if c := s.currentCluster(); c != nil {
		return c.Range()
	}
	return s.seedRange()
}

func (s *appState) ResetRange() gauge.Range {
	if c := s.currentCluster(); c != nil {
		return c.ResetRange()
	}
	return s.seedRange()
}

func (s *appState) Stats() (ticks uint64, rollovers int) {
	if c := s.currentCluster(); c != nil {
		return c.Stats()
	}
	return 0, 0
}

func (s *appState) Config() gauge.Config {
	if c := s.currentCluster(); c != nil {
		return c.Config()
	}
	return s.cfg.Gauge
}

func (s *appState) seedRange() gauge.Range {
	return gauge.NewRange(s.cfg.Gauge.BoostSeed, s.cfg.Gauge.VacuumSeed)
}
