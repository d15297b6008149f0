package audiofile

import (
	"os"
	"path/filepath"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	dspresample "github.com/cwbudde/algo-dsp/dsp/resample"
	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"

	"github.com/cwbudde/algo-beatgrid/onset"
)

// Audio holds de-interleaved channels normalized to [-1,1].
type Audio struct {
	Channels   [][]float32
	SampleRate int
}

// Frames returns the per-channel length.
func (a *Audio) Frames() int {
	if a == nil || len(a.Channels) == 0 {
		return 0
	}
	return len(a.Channels[0])
}

// Mono averages all channels.
func (a *Audio) Mono() []float32 {
	n := a.Frames()
	if n == 0 {
		return nil
	}
	if len(a.Channels) == 1 {
		return a.Channels[0]
	}
	out := make([]float32, n)
	scale := 1 / float32(len(a.Channels))
	for _, ch := range a.Channels {
		for i, v := range ch {
			out[i] += v * scale
		}
	}
	return out
}

// Load reads a WAV file and resamples it to onset.SampleRate.
func Load(path string) (*Audio, error) {
	a, err := Read(path)
	if err != nil {
		return nil, err
	}
	return a.Resample(onset.SampleRate)
}

// Read decodes a PCM WAV file without resampling.
func Read(path string) (*Audio, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With("open wav"), ftag.With(ftag.NotFound))
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fault.New("invalid wav file", fmsg.WithDesc(path, "Not a readable WAV file: "+filepath.Base(path)), ftag.With(ftag.InvalidArgument))
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With("decode wav"), ftag.With(ftag.InvalidArgument))
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, fault.New("invalid wav buffer", ftag.With(ftag.InvalidArgument))
	}

	// The decoder already yields samples in [-1,1].
	ch := buf.Format.NumChannels
	frames := len(buf.Data) / ch
	channels := make([][]float32, ch)
	for c := range channels {
		channels[c] = make([]float32, frames)
	}
	for i := 0; i < frames; i++ {
		for c := 0; c < ch; c++ {
			channels[c][i] = buf.Data[i*ch+c]
		}
	}
	return &Audio{Channels: channels, SampleRate: buf.Format.SampleRate}, nil
}

// Resample returns a copy of a at the given rate. It returns a itself when
// the rate already matches.
func (a *Audio) Resample(rate int) (*Audio, error) {
	if a.SampleRate == rate {
		return a, nil
	}
	if a.SampleRate <= 0 || rate <= 0 {
		return nil, fault.New("invalid sample rate", ftag.With(ftag.InvalidArgument))
	}
	out := &Audio{Channels: make([][]float32, len(a.Channels)), SampleRate: rate}
	for c, ch := range a.Channels {
		// One resampler per channel; it carries filter state.
		r, err := dspresample.NewForRates(
			float64(a.SampleRate),
			float64(rate),
			dspresample.WithQuality(dspresample.QualityBest),
		)
		if err != nil {
			return nil, fault.Wrap(err, fmsg.With("create resampler"))
		}
		in := make([]float64, len(ch))
		for i, v := range ch {
			in[i] = float64(v)
		}
		res := r.Process(in)
		conv := make([]float32, len(res))
		for i, v := range res {
			conv[i] = float32(v)
		}
		out.Channels[c] = conv
	}
	return out, nil
}

// WriteMono writes a 16-bit mono WAV file, creating parent directories.
func WriteMono(path string, data []float32, sampleRate int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fault.Wrap(err, fmsg.With("create output dir"))
	}
	f, err := os.Create(path)
	if err != nil {
		return fault.Wrap(err, fmsg.With("create wav"))
	}
	defer f.Close()
	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)

	buf := &audio.Float32Buffer{
		Format: &audio.Format{
			SampleRate:  sampleRate,
			NumChannels: 1,
		},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fault.Wrap(err, fmsg.With("write wav"))
	}
	return fault.Wrap(enc.Close(), fmsg.With("close wav"))
}
