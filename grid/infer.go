package grid

import (
	"fmt"
	"slices"

	"github.com/cwbudde/algo-beatgrid/onset"
)

// Grid is a strictly increasing list of boundary sample positions.
type Grid []int

// Infer extrapolates seed across [0, signalLength), snapping each boundary
// onto candidate transients in ix. The backward walk is prepended to the
// forward walk, so seed.Start is included whenever it is below signalLength.
func Infer(seed Seed, ix *onset.Index, signalLength int, opts ...Option) (Grid, error) {
	if err := seed.Validate(); err != nil {
		return nil, err
	}
	if signalLength < 0 {
		return nil, fmt.Errorf("%w (got %d)", ErrInvalidLength, signalLength)
	}
	if err := newConfig(opts).validate(); err != nil {
		return nil, err
	}

	var g Grid
	for pos := range Backward(seed, ix, opts...) {
		if pos < signalLength {
			g = append(g, pos)
		}
	}
	slices.Reverse(g)
	for pos := range Forward(seed, ix, signalLength, opts...) {
		g = append(g, pos)
	}
	return g, nil
}

// InferProfile runs Infer over the full length covered by ix's profile.
func InferProfile(seed Seed, ix *onset.Index, opts ...Option) (Grid, error) {
	return Infer(seed, ix, ix.Profile().SignalLength(), opts...)
}

// Periods returns the distances between consecutive boundaries.
func (g Grid) Periods() []int {
	if len(g) < 2 {
		return nil
	}
	out := make([]int, len(g)-1)
	for i := 1; i < len(g); i++ {
		out[i-1] = g[i] - g[i-1]
	}
	return out
}

// Nearest returns the index of the boundary closest to pos, or -1 for an
// empty grid. Ties go to the earlier boundary.
func (g Grid) Nearest(pos int) int {
	if len(g) == 0 {
		return -1
	}
	i, _ := slices.BinarySearch(g, pos)
	switch {
	case i == 0:
		return 0
	case i == len(g):
		return len(g) - 1
	case g[i]-pos < pos-g[i-1]:
		return i
	default:
		return i - 1
	}
}

// Chunk returns the interval between the two boundaries that enclose pos.
// ok is false when pos lies before the first or at/after the last boundary.
func (g Grid) Chunk(pos int) (Seed, bool) {
	if len(g) < 2 || pos < g[0] || pos >= g[len(g)-1] {
		return Seed{}, false
	}
	i, found := slices.BinarySearch(g, pos)
	if !found {
		i--
	}
	return Seed{Start: g[i], Length: g[i+1] - g[i]}, true
}

// Project returns the arithmetic projection of seed across [0, signalLength)
// with no snapping.
func Project(seed Seed, signalLength int) (Grid, error) {
	if err := seed.Validate(); err != nil {
		return nil, err
	}
	if signalLength < 0 {
		return nil, fmt.Errorf("%w (got %d)", ErrInvalidLength, signalLength)
	}
	first := seed.Start % seed.Length
	var g Grid
	for pos := first; pos < signalLength; pos += seed.Length {
		g = append(g, pos)
	}
	return g, nil
}
