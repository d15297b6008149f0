package grid

import (
	"math"

	"github.com/cwbudde/algo-beatgrid/onset"
)

const (
	// DefaultSnapScale is the tolerance used when none is given.
	DefaultSnapScale = 400.0
	// ToleranceFactor converts a tolerance into a sample range.
	ToleranceFactor = 20.0
)

// SampleRange returns the snap window, in samples, for a tolerance.
func SampleRange(tolerance float64) float64 {
	return tolerance * ToleranceFactor
}

// Snap moves a hypothetical boundary onto the nearest candidate transient
// when that transient lies strictly closer than SampleRange(tolerance).
// Otherwise it returns raw rounded to the nearest sample.
func Snap(raw float64, tolerance float64, ix *onset.Index) int {
	frame, ok := ix.Nearest(raw)
	if !ok {
		return int(math.Round(raw))
	}
	onsetTime := float64(frame * onset.FrameSize)
	if math.Abs(onsetTime-raw) < SampleRange(tolerance) {
		return int(math.Round(onsetTime))
	}
	return int(math.Round(raw))
}
