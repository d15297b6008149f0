package analysis

import (
	"math"

	"github.com/cwbudde/algo-beatgrid/grid"
	"github.com/cwbudde/algo-beatgrid/onset"
)

// Metrics describes how well a grid lines up with detected transients.
type Metrics struct {
	Boundaries int `json:"boundaries"`
	Onsets     int `json:"onsets"`
	Snapped    int `json:"snapped"`
	Matched    int `json:"matched"`

	SnapRatio float64 `json:"snap_ratio"`
	Coverage  float64 `json:"coverage"`

	MeanOffsetSamples float64 `json:"mean_offset_samples"`
	RMSOffsetSamples  float64 `json:"rms_offset_samples"`
	MaxOffsetSamples  float64 `json:"max_offset_samples"`

	MeanPeriod   float64 `json:"mean_period"`
	PeriodStdDev float64 `json:"period_std_dev"`
	DriftSamples int     `json:"drift_samples"`

	Score float64 `json:"score"`
}

// Align measures g against the transients in ix. A boundary is snapped when
// it sits exactly on an onset frame and matched when an onset lies within
// grid.SampleRange(tolerance). Coverage is the share of onsets that have a
// boundary within the same window. Score is in [0,1]; lower is better.
func Align(g grid.Grid, ix *onset.Index, tolerance float64) Metrics {
	m := Metrics{Boundaries: len(g), Onsets: ix.Len()}
	if len(g) == 0 {
		m.Score = 1.0
		return m
	}
	window := grid.SampleRange(tolerance)

	var sum, sumSq float64
	for _, b := range g {
		frame, ok := ix.Nearest(float64(b))
		if !ok {
			break
		}
		off := math.Abs(float64(frame*onset.FrameSize - b))
		if off == 0 {
			m.Snapped++
		}
		if off < window {
			m.Matched++
			sum += off
			sumSq += off * off
			if off > m.MaxOffsetSamples {
				m.MaxOffsetSamples = off
			}
		}
	}
	m.SnapRatio = float64(m.Snapped) / float64(len(g))
	if m.Matched > 0 {
		m.MeanOffsetSamples = sum / float64(m.Matched)
		m.RMSOffsetSamples = math.Sqrt(sumSq / float64(m.Matched))
	}

	if m.Onsets > 0 {
		covered := 0
		for _, f := range ix.Profile().Onsets() {
			pos := f * onset.FrameSize
			i := g.Nearest(pos)
			if math.Abs(float64(g[i]-pos)) < window {
				covered++
			}
		}
		m.Coverage = float64(covered) / float64(m.Onsets)
	}

	periods := g.Periods()
	if len(periods) > 0 {
		m.MeanPeriod, m.PeriodStdDev = meanStd(periods)
		m.DriftSamples = periods[len(periods)-1] - periods[0]
	}

	offNorm := 1.0
	if m.Matched > 0 && window > 0 {
		offNorm = clamp01(m.MeanOffsetSamples / window)
	}
	matchRatio := float64(m.Matched) / float64(len(g))
	if m.Onsets == 0 {
		m.Score = 1.0
		return m
	}
	m.Score = clamp01(0.4*(1-matchRatio) + 0.3*(1-m.Coverage) + 0.3*offNorm)
	return m
}

func meanStd(x []int) (float64, float64) {
	var sum float64
	for _, v := range x {
		sum += float64(v)
	}
	mean := sum / float64(len(x))
	var ss float64
	for _, v := range x {
		d := float64(v) - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / float64(len(x)))
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
