// Package beatgrid infers a beat grid from a sample buffer and one confirmed
// seed interval. It is the single entry point for callers: profiles are
// memoized in one shared cache keyed by an opaque source id, and Forget is
// the hook to call when a source goes away.
package beatgrid

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-beatgrid/analysis"
	"github.com/cwbudde/algo-beatgrid/grid"
	"github.com/cwbudde/algo-beatgrid/onset"
	"github.com/cwbudde/algo-beatgrid/profilecache"
)

// ErrNoChannels indicates InferChannels was given no channel data.
var ErrNoChannels = errors.New("beatgrid: no channels")

// Options configures an Analyzer.
type Options struct {
	SnapScale     float64 `json:"snap_scale"`
	CacheCapacity int     `json:"cache_capacity"`
	Strategy      string  `json:"strategy"`
}

// DefaultOptions returns a compounding walk with a
// snap scale of 400.
func DefaultOptions() Options {
	return Options{
		SnapScale:     grid.DefaultSnapScale,
		CacheCapacity: profilecache.DefaultCapacity,
		Strategy:      "compounding",
	}
}

// Result bundles an inferred grid with what it was inferred from.
type Result struct {
	Seed    grid.Seed        `json:"seed"`
	Grid    grid.Grid        `json:"grid"`
	Onsets  []int            `json:"onsets"`
	Metrics analysis.Metrics `json:"metrics"`
}

// Analyzer is safe for concurrent use.
type Analyzer struct {
	opts  Options
	cache *profilecache.Cache
	walk  []grid.Option
}

// NewAnalyzer validates opts and allocates the profile cache.
func NewAnalyzer(opts Options) (*Analyzer, error) {
	if !(opts.SnapScale > 0) {
		return nil, fmt.Errorf("%w (snap_scale=%v)", grid.ErrInvalidTolerance, opts.SnapScale)
	}
	w, err := grid.WalkerByName(opts.Strategy)
	if err != nil {
		return nil, err
	}
	cache, err := profilecache.New(opts.CacheCapacity, onset.Detect)
	if err != nil {
		return nil, err
	}
	return &Analyzer{
		opts:  opts,
		cache: cache,
		walk:  []grid.Option{grid.WithTolerance(opts.SnapScale), grid.WithWalker(w)},
	}, nil
}

// Options returns the options the analyzer was built with.
func (a *Analyzer) Options() Options {
	return a.opts
}

// Profile returns the onset profile for id, computing it from samples on
// first use.
func (a *Analyzer) Profile(id string, samples []float32) onset.Profile {
	return a.cache.GetOrCompute(id, samples)
}

// Infer returns the grid through seed for the source id.
func (a *Analyzer) Infer(id string, samples []float32, seed grid.Seed) (grid.Grid, error) {
	if err := seed.Validate(); err != nil {
		return nil, err
	}
	ix := onset.NewIndex(a.Profile(id, samples))
	return grid.InferProfile(seed, ix, a.walk...)
}

// InferChannels infers from the first channel of a multi-channel source.
func (a *Analyzer) InferChannels(id string, channels [][]float32, seed grid.Seed) (grid.Grid, error) {
	if len(channels) == 0 {
		return nil, ErrNoChannels
	}
	return a.Infer(id, channels[0], seed)
}

// Analyze infers the grid and measures it against the detected onsets.
func (a *Analyzer) Analyze(id string, samples []float32, seed grid.Seed) (Result, error) {
	if err := seed.Validate(); err != nil {
		return Result{}, err
	}
	ix := onset.NewIndex(a.Profile(id, samples))
	g, err := grid.InferProfile(seed, ix, a.walk...)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Seed:    seed,
		Grid:    g,
		Onsets:  ix.Profile().Onsets(),
		Metrics: analysis.Align(g, ix, a.opts.SnapScale),
	}, nil
}

// Forget drops the cached profile for id, e.g. when the source is deleted.
func (a *Analyzer) Forget(id string) bool {
	return a.cache.Invalidate(id)
}

// CacheStats reports profile cache counters.
func (a *Analyzer) CacheStats() profilecache.Stats {
	return a.cache.Stats()
}
