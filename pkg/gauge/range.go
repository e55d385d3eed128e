package gauge

// Range holds the widest boost and vacuum seen since startup.
// It only widens: sensitivity drops for good after a spike until Reset.
type Range struct {
	MaxBoost  float64 `json:"max_boost"`
	MaxVacuum float64 `json:"max_vacuum"`

	boostSeed  float64
	vacuumSeed float64
}

// NewRange creates a range seeded with the given extremes.
func NewRange(boostSeed, vacuumSeed float64) Range {
	return Range{
		MaxBoost:   boostSeed,
		MaxVacuum:  vacuumSeed,
		boostSeed:  boostSeed,
		vacuumSeed: vacuumSeed,
	}
}

// Update widens the range to include v and reports whether it changed.
func (r *Range) Update(v float64) bool {
	if v > 0 && v > r.MaxBoost {
		r.MaxBoost = v
		return true
	}
	if v < 0 && v < r.MaxVacuum {
		r.MaxVacuum = v
		return true
	}
	return false
}

// Reset restores the seed extremes.
func (r *Range) Reset() {
	r.MaxBoost = r.boostSeed
	r.MaxVacuum = r.vacuumSeed
}
