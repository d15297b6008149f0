package audiofile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-beatgrid/onset"
)

// writeWAV writes interleaved float samples as a 16-bit PCM file.
func writeWAV(t *testing.T, path string, sampleRate, channels int, data []float32) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	buf := &audio.Float32Buffer{
		Format:         &audio.Format{SampleRate: sampleRate, NumChannels: channels},
		Data:           data,
		SourceBitDepth: 16,
	}
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())
}

func TestReadDeinterleavesNormalizedSamples(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stereo.wav")
	writeWAV(t, path, onset.SampleRate, 2, []float32{0.5, -0.5, 0, 1, -1, 0.25})

	a, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, onset.SampleRate, a.SampleRate)
	require.Len(t, a.Channels, 2)
	assert.Equal(t, 3, a.Frames())
	assert.InDeltaSlice(t, []float32{0.5, 0, -1}, a.Channels[0], 1e-4)
	assert.InDeltaSlice(t, []float32{-0.5, 1, 0.25}, a.Channels[1], 1e-4)
	assert.InDeltaSlice(t, []float32{0, 0.5, -0.375}, a.Mono(), 1e-4)
}

func TestLoadKeepsMatchingRate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mono.wav")
	writeWAV(t, path, onset.SampleRate, 1, make([]float32, 1000))
	a, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, onset.SampleRate, a.SampleRate)
	assert.Equal(t, 1000, a.Frames())
}

func TestResampleChangesLength(t *testing.T) {
	a := &Audio{Channels: [][]float32{make([]float32, 48000), make([]float32, 48000)}, SampleRate: 48000}
	out, err := a.Resample(onset.SampleRate)
	require.NoError(t, err)
	assert.Equal(t, onset.SampleRate, out.SampleRate)
	require.Len(t, out.Channels, 2)
	assert.InDelta(t, onset.SampleRate, out.Frames(), 1024)

	_, err = (&Audio{SampleRate: 0}).Resample(onset.SampleRate)
	assert.Error(t, err)
}

func TestReadErrors(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.wav"))
	assert.Error(t, err)

	junk := filepath.Join(t.TempDir(), "junk.wav")
	require.NoError(t, os.WriteFile(junk, []byte("not a wav file at all"), 0o644))
	_, err = Read(junk)
	assert.Error(t, err)
}

func TestWriteMonoRoundTripKeepsLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "level.wav")
	in := make([]float32, 1024)
	for i := range in {
		in[i] = 0.5
	}
	in[100] = -0.75
	in[200] = 0.9
	require.NoError(t, WriteMono(path, in, onset.SampleRate))

	a, err := Read(path)
	require.NoError(t, err)
	require.Equal(t, len(in), a.Frames())
	assert.InDeltaSlice(t, in, a.Channels[0], 1e-3)
}

func TestLoadedBurstsProduceOnsets(t *testing.T) {
	const period = 40 * onset.FrameSize
	in := make([]float32, 12*period)
	for start := period; start+onset.FrameSize*4 < len(in); start += period {
		for i := 0; i < onset.FrameSize*4; i++ {
			in[start+i] = 0.8
			if i%2 == 1 {
				in[start+i] = -0.8
			}
		}
	}
	direct := onset.Detect(in).Onsets()
	require.NotEmpty(t, direct)

	path := filepath.Join(t.TempDir(), "bursts.wav")
	require.NoError(t, WriteMono(path, in, onset.SampleRate))
	a, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, direct, onset.Detect(a.Mono()).Onsets())
}

func TestWriteMonoCreatesReadableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "clicks.wav")
	require.NoError(t, WriteMono(path, make([]float32, 2205), onset.SampleRate))
	a, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, 2205, a.Frames())
	assert.Len(t, a.Channels, 1)
}

func TestMonoEmpty(t *testing.T) {
	var a *Audio
	assert.Nil(t, a.Mono())
	assert.Zero(t, a.Frames())
}
