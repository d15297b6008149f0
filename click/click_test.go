package click

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-beatgrid/grid"
	"github.com/cwbudde/algo-beatgrid/onset"
)

func TestRenderPlacesClicksOnBoundaries(t *testing.T) {
	p := NewDefaultParams()
	require.NoError(t, p.Validate())
	g := grid.Grid{1000, 20000, 39000}
	out := Render(g, onset.SampleRate, onset.SampleRate, p)
	require.Len(t, out, onset.SampleRate)

	clickLen := int(p.LengthMs * 0.001 * onset.SampleRate)
	for _, b := range g {
		assert.Greater(t, windowPeak(out[b:b+clickLen]), 0.2, "click at %d", b)
		assert.Zero(t, windowPeak(out[b-200:b]), "silence before %d", b)
	}
	assert.Zero(t, windowPeak(out[39000+clickLen:]))
}

func TestRenderSkipsOutOfRangeAndTruncates(t *testing.T) {
	p := NewDefaultParams()
	out := Render(grid.Grid{-5, 990, 5000}, 1000, onset.SampleRate, p)
	require.Len(t, out, 1000)
	assert.Zero(t, windowPeak(out[:990]))
	assert.Empty(t, Render(nil, -1, onset.SampleRate, p))
}

func TestRenderAccents(t *testing.T) {
	p := NewDefaultParams()
	p.AccentEvery = 2
	g := grid.Grid{0, 10000, 20000}
	out := Render(g, 30000, onset.SampleRate, p)
	n := 400
	accent := windowPeak(out[0:n])
	regular := windowPeak(out[10000 : 10000+n])
	assert.Greater(t, accent, regular)
	assert.InDelta(t, accent, windowPeak(out[20000:20000+n]), 1e-6)
	assert.InDelta(t, float64(p.AccentGain)/float64(p.Gain), accent/regular, 1e-3)
}

func TestTemplateDecays(t *testing.T) {
	tmpl := template(onset.SampleRate, NewDefaultParams())
	require.NotEmpty(t, tmpl)
	head := windowPeak(tmpl[:100])
	tail := windowPeak(tmpl[len(tmpl)-100:])
	assert.Less(t, tail, head*0.05)
}

func TestOverlayDoesNotMutateSource(t *testing.T) {
	src := []float32{0.1, 0.2, 0.3}
	out := Overlay(src, []float32{1, 1}, 0.5)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, src)
	assert.InDeltaSlice(t, []float32{0.6, 0.7, 0.3}, out, 1e-6)
}

func TestValidate(t *testing.T) {
	bad := []func(*Params){
		func(p *Params) { p.Gain = 1.5 },
		func(p *Params) { p.FreqHz = 0 },
		func(p *Params) { p.DecayMs = 0 },
		func(p *Params) { p.AccentEvery = -1 },
		func(p *Params) { p.AccentGain = -0.1 },
	}
	for i, mutate := range bad {
		p := NewDefaultParams()
		mutate(&p)
		assert.Error(t, p.Validate(), "case %d", i)
	}
}

func windowPeak(x []float32) float64 {
	peak := 0.0
	for _, v := range x {
		peak = math.Max(peak, math.Abs(float64(v)))
	}
	return peak
}
