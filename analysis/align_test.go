package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-beatgrid/grid"
	"github.com/cwbudde/algo-beatgrid/onset"
)

const period = 40 * onset.FrameSize

func periodicIndex(frames int) *onset.Index {
	p := make(onset.Profile, frames)
	for f := 0; f < frames; f += period / onset.FrameSize {
		p[f] = 1
	}
	return onset.NewIndex(p)
}

func shiftedGrid(t *testing.T, shift, signalLength int) grid.Grid {
	t.Helper()
	g, err := grid.Project(grid.Seed{Start: period + shift, Length: period}, signalLength)
	require.NoError(t, err)
	return g
}

func TestAlignPerfectGrid(t *testing.T) {
	ix := periodicIndex(400)
	g := shiftedGrid(t, 0, 400*onset.FrameSize)
	m := Align(g, ix, grid.DefaultSnapScale)

	assert.Equal(t, 10, m.Boundaries)
	assert.Equal(t, 10, m.Onsets)
	assert.Equal(t, 10, m.Snapped)
	assert.Equal(t, 1.0, m.SnapRatio)
	assert.Equal(t, 1.0, m.Coverage)
	assert.Zero(t, m.MeanOffsetSamples)
	assert.Zero(t, m.Score)
	assert.Equal(t, float64(period), m.MeanPeriod)
	assert.Zero(t, m.PeriodStdDev)
	assert.Zero(t, m.DriftSamples)
}

func TestAlignScoreGrowsWithOffset(t *testing.T) {
	ix := periodicIndex(400)
	n := 400 * onset.FrameSize
	s0 := Align(shiftedGrid(t, 0, n), ix, grid.DefaultSnapScale)
	s1 := Align(shiftedGrid(t, 100, n), ix, grid.DefaultSnapScale)
	s2 := Align(shiftedGrid(t, 3000, n), ix, grid.DefaultSnapScale)
	s3 := Align(shiftedGrid(t, period/2, n), ix, 200)

	assert.Less(t, s0.Score, s1.Score)
	assert.Less(t, s1.Score, s2.Score)
	assert.Less(t, s2.Score, s3.Score)

	assert.Zero(t, s1.Snapped)
	assert.InDelta(t, 100, s1.MeanOffsetSamples, 1e-9)
	assert.InDelta(t, 100, s1.RMSOffsetSamples, 1e-9)
	assert.Zero(t, s3.Matched)
	assert.InDelta(t, 1.0, s3.Score, 1e-12)
}

func TestAlignDegenerateInputs(t *testing.T) {
	ix := periodicIndex(100)
	assert.Equal(t, 1.0, Align(nil, ix, grid.DefaultSnapScale).Score)

	m := Align(grid.Grid{0, 1000, 2000}, onset.NewIndex(make(onset.Profile, 100)), grid.DefaultSnapScale)
	assert.Equal(t, 1.0, m.Score)
	assert.Zero(t, m.Snapped)
	assert.Zero(t, m.Coverage)
}

func TestAlignPeriodStatistics(t *testing.T) {
	m := Align(grid.Grid{0, 100, 250, 400}, periodicIndex(10), grid.DefaultSnapScale)
	assert.InDelta(t, 400.0/3, m.MeanPeriod, 1e-9)
	assert.InDelta(t, math.Sqrt(5000.0/9), m.PeriodStdDev, 1e-9)
	assert.Equal(t, 50, m.DriftSamples)
}
