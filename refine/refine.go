// Package refine nudges a confirmed seed so that its arithmetic projection
// lines up better with detected transients.
//
// The search stays inside a small window around the confirmed start and
// length; it corrects a hand-placed interval, it does not look for a tempo.
// The input seed is always evaluated first, so the result is never worse.
package refine

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/mayfly"

	"github.com/cwbudde/algo-beatgrid/analysis"
	"github.com/cwbudde/algo-beatgrid/grid"
	"github.com/cwbudde/algo-beatgrid/internal/cliutil"
	"github.com/cwbudde/algo-beatgrid/onset"
)

// ErrNoOnsets indicates there is nothing to align the seed against.
var ErrNoOnsets = errors.New("refine: profile has no onsets")

// Options bounds the search.
type Options struct {
	// Window is the largest change, in samples, to start and to length.
	Window     int
	Tolerance  float64
	Iterations int
	Population int
	RandSeed   int64
}

// DefaultOptions searches ±2 frames with the default snap window.
func DefaultOptions() Options {
	return Options{
		Window:     2 * onset.FrameSize,
		Tolerance:  grid.DefaultSnapScale,
		Iterations: 40,
		Population: 10,
		RandSeed:   1,
	}
}

// Result is the best seed found.
type Result struct {
	Seed         grid.Seed `json:"seed"`
	Score        float64   `json:"score"`
	InitialScore float64   `json:"initial_score"`
	Evals        int       `json:"evals"`
}

// Seed refines seed against ix over [0, signalLength).
func Seed(seed grid.Seed, ix *onset.Index, signalLength int, opts Options) (Result, error) {
	if err := seed.Validate(); err != nil {
		return Result{}, err
	}
	if ix.Len() == 0 {
		return Result{}, ErrNoOnsets
	}
	if opts.Window < 1 || opts.Iterations < 1 || opts.Population < 2 || !(opts.Tolerance > 0) {
		return Result{}, fmt.Errorf("refine: invalid options %+v", opts)
	}

	score := func(s grid.Seed) float64 {
		g, err := grid.Project(s, signalLength)
		if err != nil {
			return 1
		}
		return analysis.Align(g, ix, opts.Tolerance).Score
	}

	res := Result{Seed: seed, Evals: 1}
	res.InitialScore = score(seed)
	res.Score = res.InitialScore

	decode := func(pos []float64) grid.Seed {
		w := float64(opts.Window)
		ds := math.Round((2*cliutil.Clamp(pos[0], 0, 1) - 1) * w)
		dl := math.Round((2*cliutil.Clamp(pos[1], 0, 1) - 1) * w)
		return grid.Seed{
			Start:  max(0, seed.Start+int(ds)),
			Length: max(1, seed.Length+int(dl)),
		}
	}

	cfg := newConfig(opts)
	cfg.ObjectiveFunc = func(pos []float64) float64 {
		cand := decode(pos)
		s := score(cand)
		res.Evals++
		if s < res.Score {
			res.Score = s
			res.Seed = cand
		}
		return s
	}
	if _, err := run(cfg); err != nil {
		return res, err
	}
	return res, nil
}

func newConfig(opts Options) *mayfly.Config {
	cfg := mayfly.NewDefaultConfig()
	cfg.ProblemSize = 2
	cfg.LowerBound = 0.0
	cfg.UpperBound = 1.0
	cfg.MaxIterations = opts.Iterations
	cfg.NPop = opts.Population
	cfg.NPopF = opts.Population
	cfg.NC = 2 * opts.Population
	cfg.NM = max(1, int(math.Round(0.05*float64(opts.Population))))
	cfg.Rand = rand.New(rand.NewSource(opts.RandSeed))
	return cfg
}

func run(cfg *mayfly.Config) (_ *mayfly.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("refine: optimizer panic: %v", r)
		}
	}()
	return mayfly.Optimize(cfg)
}
