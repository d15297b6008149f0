// Package click renders an audible metronome track over a beat grid.
package click

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-approx"

	"github.com/cwbudde/algo-beatgrid/grid"
)

// Params shapes the click placed on every grid boundary.
type Params struct {
	Gain     float32 // peak amplitude of a regular click
	FreqHz   float32 // sine frequency of the click
	DecayMs  float32 // time constant of the exponential envelope
	LengthMs float32 // click is truncated after this long

	// AccentEvery marks every Nth boundary (counted from the first) with
	// AccentGain. Zero disables accents.
	AccentEvery int
	AccentGain  float32
}

// NewDefaultParams returns a short 1 kHz click.
func NewDefaultParams() Params {
	return Params{
		Gain:        0.5,
		FreqHz:      1000,
		DecayMs:     8,
		LengthMs:    40,
		AccentEvery: 0,
		AccentGain:  0.9,
	}
}

// Validate reports out-of-range parameters.
func (p Params) Validate() error {
	if p.Gain < 0 || p.Gain > 1 {
		return fmt.Errorf("click gain must be in [0,1]")
	}
	if p.FreqHz <= 0 {
		return fmt.Errorf("click freq_hz must be > 0")
	}
	if p.DecayMs <= 0 || p.LengthMs <= 0 {
		return fmt.Errorf("click decay_ms and length_ms must be > 0")
	}
	if p.AccentEvery < 0 {
		return fmt.Errorf("click accent_every must be >= 0")
	}
	if p.AccentGain < 0 || p.AccentGain > 1 {
		return fmt.Errorf("click accent_gain must be in [0,1]")
	}
	return nil
}

// Render returns n mono samples at sampleRate with one click starting at
// every boundary of g. Boundaries outside [0,n) are skipped; overlapping
// clicks are summed.
func Render(g grid.Grid, n int, sampleRate int, p Params) []float32 {
	out := make([]float32, max(n, 0))
	tmpl := template(sampleRate, p)
	for i, b := range g {
		if b < 0 || b >= n {
			continue
		}
		gain := p.Gain
		if p.AccentEvery > 0 && i%p.AccentEvery == 0 {
			gain = p.AccentGain
		}
		for j, v := range tmpl {
			if b+j >= n {
				break
			}
			out[b+j] += gain * v
		}
	}
	return out
}

// Overlay mixes clicks into a copy of src at the given gain.
func Overlay(src []float32, clicks []float32, gain float32) []float32 {
	out := make([]float32, len(src))
	copy(out, src)
	for i := 0; i < len(out) && i < len(clicks); i++ {
		out[i] += gain * clicks[i]
	}
	return out
}

// template is one unit-gain click.
func template(sampleRate int, p Params) []float32 {
	if sampleRate <= 0 {
		return nil
	}
	sr := float32(sampleRate)
	n := int(p.LengthMs * 0.001 * sr)
	tau := p.DecayMs * 0.001
	out := make([]float32, n)
	w := 2 * math.Pi * float64(p.FreqHz) / float64(sampleRate)
	for i := range out {
		t := float32(i) / sr
		env := approx.FastExp(-t / tau)
		out[i] = env * float32(math.Sin(w*float64(i)))
	}
	return out
}
