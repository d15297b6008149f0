package grid

import (
	"fmt"
	"iter"
	"math"

	"github.com/cwbudde/algo-beatgrid/onset"
)

// Seed is the one interval the user has confirmed as a grid period.
type Seed struct {
	Start  int `json:"start"`
	Length int `json:"length"`
}

// Validate reports ErrInvalidSeed for a negative start or non-positive length.
// A non-positive length would never terminate a walk.
func (s Seed) Validate() error {
	if s.Start < 0 || s.Length <= 0 {
		return fmt.Errorf("%w (start=%d length=%d)", ErrInvalidSeed, s.Start, s.Length)
	}
	return nil
}

// Step describes the boundary a Walker is asked to hypothesize.
type Step struct {
	Seed Seed
	// Prev is the previous, already snapped boundary.
	Prev int
	// N counts periods from Seed.Start; 1 is the first step of a walk.
	N int
	// Dir is +1 for the forward walk and -1 for the backward walk.
	Dir int
}

// Walker proposes the raw position of the next boundary. The proposal is
// snapped afterwards, so the Walker decides only where snapping starts from.
type Walker interface {
	Propose(s Step) float64
}

// WalkerFunc adapts a function to Walker.
type WalkerFunc func(s Step) float64

// Propose calls f(s).
func (f WalkerFunc) Propose(s Step) float64 {
	return f(s)
}

var (
	// Compounding steps one period from the previous snapped boundary, so
	// corrections accumulate and the grid can follow gradual tempo drift.
	Compounding Walker = WalkerFunc(func(s Step) float64 {
		return float64(s.Prev + s.Dir*s.Seed.Length)
	})

	// Projected steps from the arithmetic projection off the seed, so every
	// boundary is corrected independently and errors never accumulate.
	Projected Walker = WalkerFunc(func(s Step) float64 {
		return float64(s.Seed.Start + s.Dir*s.N*s.Seed.Length)
	})
)

// WalkerByName resolves "compounding" or "projected".
func WalkerByName(name string) (Walker, error) {
	switch name {
	case "", "compounding":
		return Compounding, nil
	case "projected":
		return Projected, nil
	default:
		return nil, fmt.Errorf("grid: unknown walker %q (use compounding|projected)", name)
	}
}

// Option configures a walk.
type Option func(*config)

type config struct {
	tolerance float64
	walker    Walker
}

// WithTolerance sets the snap tolerance (default DefaultSnapScale).
func WithTolerance(tolerance float64) Option {
	return func(c *config) { c.tolerance = tolerance }
}

// WithWalker sets the step strategy (default Compounding).
func WithWalker(w Walker) Option {
	return func(c *config) {
		if w != nil {
			c.walker = w
		}
	}
}

func newConfig(opts []Option) config {
	c := config{tolerance: DefaultSnapScale, walker: Compounding}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (c config) validate() error {
	if !(c.tolerance > 0) || math.IsInf(c.tolerance, 0) {
		return fmt.Errorf("%w (got %v)", ErrInvalidTolerance, c.tolerance)
	}
	return nil
}

// next snaps the walker's proposal. A snap that does not move strictly
// away from prev in walk direction falls back to the unsnapped proposal,
// and failing that to one plain period.
func (c config) next(ix *onset.Index, s Step) int {
	raw := c.walker.Propose(s)
	if n := Snap(raw, c.tolerance, ix); (n-s.Prev)*s.Dir > 0 {
		return n
	}
	if n := int(math.Round(raw)); (n-s.Prev)*s.Dir > 0 {
		return n
	}
	return s.Prev + s.Dir*s.Seed.Length
}

// Forward lazily yields seed.Start and every later boundary below
// signalLength, in ascending order. An invalid seed or option yields nothing.
func Forward(seed Seed, ix *onset.Index, signalLength int, opts ...Option) iter.Seq[int] {
	c := newConfig(opts)
	return func(yield func(int) bool) {
		if seed.Validate() != nil || c.validate() != nil {
			return
		}
		cur := seed.Start
		for n := 1; cur < signalLength; n++ {
			if !yield(cur) {
				return
			}
			cur = c.next(ix, Step{Seed: seed, Prev: cur, N: n, Dir: 1})
		}
	}
}

// Backward lazily yields the boundaries before seed.Start that are >= 0,
// in descending order. An invalid seed or option yields nothing.
func Backward(seed Seed, ix *onset.Index, opts ...Option) iter.Seq[int] {
	c := newConfig(opts)
	return func(yield func(int) bool) {
		if seed.Validate() != nil || c.validate() != nil {
			return
		}
		cur := c.next(ix, Step{Seed: seed, Prev: seed.Start, N: 1, Dir: -1})
		for n := 2; cur >= 0; n++ {
			if !yield(cur) {
				return
			}
			cur = c.next(ix, Step{Seed: seed, Prev: cur, N: n, Dir: -1})
		}
	}
}
