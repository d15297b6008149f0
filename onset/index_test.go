package onset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func profileWith(frames int, onsets ...int) Profile {
	p := make(Profile, frames)
	for _, f := range onsets {
		p[f] = 1
	}
	return p
}

func TestNearestEmptyProfile(t *testing.T) {
	for _, p := range []Profile{nil, make(Profile, 50)} {
		ix := NewIndex(p)
		_, ok := ix.Nearest(1234)
		assert.False(t, ok)
		assert.Zero(t, ix.Len())
	}
	var nilIndex *Index
	_, ok := nilIndex.Nearest(0)
	assert.False(t, ok)
}

func TestNearest(t *testing.T) {
	ix := NewIndex(profileWith(100, 10, 20, 50))
	cases := []struct {
		name string
		pos  float64
		want int
	}{
		{"before first", 0, 10},
		{"exact", 20 * FrameSize, 20},
		{"closer to earlier", 14 * FrameSize, 10},
		{"closer to later", 16 * FrameSize, 20},
		{"tie goes earlier", 15 * FrameSize, 10},
		{"fractional frame", 19.6 * FrameSize, 20},
		{"after last", 99 * FrameSize, 50},
		{"negative position", -5000, 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ix.Nearest(tc.pos)
			require.True(t, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNearestMatchesLinearScan(t *testing.T) {
	p := Detect(randomBursts(3*SampleRate, 17))
	ix := NewIndex(p)
	require.NotZero(t, ix.Len())
	for pos := -1000.0; pos < float64(p.SignalLength()+1000); pos += 97.5 {
		got, ok := ix.Nearest(pos)
		require.True(t, ok)
		assert.Equal(t, linearNearest(p, pos), got, "pos %.1f", pos)
	}
}

func linearNearest(p Profile, pos float64) int {
	best, bestDist := -1, 0.0
	target := pos / FrameSize
	for i, v := range p {
		if v == 0 {
			continue
		}
		d := float64(i) - target
		if d < 0 {
			d = -d
		}
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
