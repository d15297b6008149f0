package onset

import (
	"math"
	"sort"
)

// Index answers nearest-onset queries over a profile.
type Index struct {
	profile Profile
	onsets  []int
}

// NewIndex precomputes the ascending list of candidate transients in p.
func NewIndex(p Profile) *Index {
	return &Index{profile: p, onsets: p.Onsets()}
}

// Profile returns the indexed profile.
func (ix *Index) Profile() Profile {
	if ix == nil {
		return nil
	}
	return ix.profile
}

// Len returns the number of candidate transients.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.onsets)
}

// Nearest returns the non-zero frame closest to the sample position pos.
// Ties go to the earlier frame. ok is false when the profile has no
// candidate transients, in which case no snapping should happen.
func (ix *Index) Nearest(pos float64) (frame int, ok bool) {
	if ix == nil || len(ix.onsets) == 0 {
		return 0, false
	}
	target := pos / FrameSize
	// First onset at or after the target.
	i := sort.Search(len(ix.onsets), func(i int) bool {
		return float64(ix.onsets[i]) >= target
	})
	if i == 0 {
		return ix.onsets[0], true
	}
	if i == len(ix.onsets) {
		return ix.onsets[i-1], true
	}
	before, after := ix.onsets[i-1], ix.onsets[i]
	if math.Abs(float64(after)-target) < math.Abs(target-float64(before)) {
		return after, true
	}
	return before, true
}
