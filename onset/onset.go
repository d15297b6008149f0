package onset

import (
	"math/cmplx"

	algofft "github.com/cwbudde/algo-fft"
)

const (
	// SampleRate is the rate assumed for all internal time arithmetic.
	SampleRate = 44100
	// FrameSize is the length of one non-overlapping analysis window in samples.
	FrameSize = 256

	// FluxScale normalizes the positive first difference of mean magnitude.
	FluxScale = 1.0 / 3.0
	// PeakRadius is the half-width, in frames, of local-maximum suppression.
	PeakRadius = 10
	// Threshold is the minimum flux kept as a candidate transient.
	Threshold = 0.1
)

// Profile holds one onset-strength score per analysis frame.
// A non-zero entry marks a candidate transient.
type Profile []float64

// Frames returns the number of analysis frames.
func (p Profile) Frames() int {
	return len(p)
}

// SignalLength returns the number of samples covered by the profile.
func (p Profile) SignalLength() int {
	return len(p) * FrameSize
}

// Onsets returns the ascending frame indices of all non-zero entries.
func (p Profile) Onsets() []int {
	var out []int
	for i, v := range p {
		if v != 0 {
			out = append(out, i)
		}
	}
	return out
}

// Detector computes onset profiles. It reuses its FFT plan and scratch
// buffers across frames and calls, so a Detector must not be shared
// between goroutines.
type Detector struct {
	plan  *algofft.PlanRealT[float64, complex128]
	frame []float64
	spec  []complex128
}

// NewDetector allocates a detector for FrameSize windows.
func NewDetector() (*Detector, error) {
	plan, err := algofft.NewPlanReal64(FrameSize)
	if err != nil {
		return nil, err
	}
	return &Detector{
		plan:  plan,
		frame: make([]float64, FrameSize),
		spec:  make([]complex128, FrameSize/2+1),
	}, nil
}

// Detect computes the onset profile of samples with a throwaway detector.
// It is safe for concurrent use.
func Detect(samples []float32) Profile {
	d, err := NewDetector()
	if err != nil {
		// FrameSize is a fixed power of two; plan creation cannot fail for it.
		panic(err)
	}
	return d.Detect(samples)
}

// Detect computes the onset profile of samples. A trailing partial frame is
// dropped. Silent or short input yields an all-zero (possibly empty) profile.
func (d *Detector) Detect(samples []float32) Profile {
	n := len(samples) / FrameSize
	mags := make([]float64, n)
	for i := 0; i < n; i++ {
		mags[i] = d.meanMagnitude(samples[i*FrameSize : (i+1)*FrameSize])
	}
	return suppress(flux(mags))
}

// meanMagnitude sums |X[k]| over every bin of the full DFT of one frame and
// divides by the frame size. The real plan yields bins 0..N/2; the remaining
// bins mirror 1..N/2-1.
func (d *Detector) meanMagnitude(frame []float32) float64 {
	for i, v := range frame {
		d.frame[i] = float64(v)
	}
	// Sizes match the plan, so Forward cannot fail.
	_ = d.plan.Forward(d.spec, d.frame)

	half := FrameSize / 2
	sum := cmplx.Abs(d.spec[0]) + cmplx.Abs(d.spec[half])
	for k := 1; k < half; k++ {
		sum += 2 * cmplx.Abs(d.spec[k])
	}
	return sum / FrameSize
}

func flux(mags []float64) []float64 {
	out := make([]float64, len(mags))
	prev := 0.0
	for i, m := range mags {
		if d := m - prev; d > 0 {
			out[i] = d * FluxScale
		}
		prev = m
	}
	return out
}

// suppress keeps only values that no neighbour within PeakRadius strictly
// exceeds and that reach Threshold.
func suppress(delta []float64) Profile {
	out := make(Profile, len(delta))
	for i, v := range delta {
		if v < Threshold {
			continue
		}
		lo := max(0, i-PeakRadius)
		hi := min(len(delta)-1, i+PeakRadius)
		peak := true
		for j := lo; j <= hi; j++ {
			if delta[j] > v {
				peak = false
				break
			}
		}
		if peak {
			out[i] = v
		}
	}
	return out
}
