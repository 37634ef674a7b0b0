package animation

import "sort"

// Track is the time-ordered keyframe sequence for a single bone.
type Track struct {
	keyframes []Keyframe
}

// Add inserts kf in time order. A keyframe already at the same time is replaced.
func (t *Track) Add(kf Keyframe) {
	i := sort.Search(len(t.keyframes), func(i int) bool {
		return t.keyframes[i].Time >= kf.Time
	})
	if i < len(t.keyframes) && t.keyframes[i].Time == kf.Time {
		t.keyframes[i] = kf
		return
	}
	t.keyframes = append(t.keyframes, Keyframe{})
	copy(t.keyframes[i+1:], t.keyframes[i:])
	t.keyframes[i] = kf
}

// Len returns the number of keyframes.
func (t *Track) Len() int {
	return len(t.keyframes)
}

// Keyframes returns the keyframes in time order. The slice must not be modified.
func (t *Track) Keyframes() []Keyframe {
	return t.keyframes
}

// EndTime returns the time of the last keyframe, or 0 for an empty track.
func (t *Track) EndTime() float64 {
	if len(t.keyframes) == 0 {
		return 0
	}
	return t.keyframes[len(t.keyframes)-1].Time
}

// Evaluate returns the interpolated offset at time tm.
//
// Times before the first or after the last keyframe clamp to that keyframe.
// The second return value is false when the track has no keyframes.
func (t *Track) Evaluate(tm float64) (Offset, bool) {
	n := len(t.keyframes)
	if n == 0 {
		return Offset{}, false
	}

	first, last := t.keyframes[0], t.keyframes[n-1]
	if tm <= first.Time {
		return first.normalized(), true
	}
	if tm >= last.Time {
		return last.normalized(), true
	}

	// first index with Time > tm; 1 <= i <= n-1 here
	i := sort.Search(n, func(i int) bool {
		return t.keyframes[i].Time > tm
	})
	k0, k1 := t.keyframes[i-1], t.keyframes[i]

	span := k1.Time - k0.Time
	if span <= 0 {
		return k0.normalized(), true
	}
	u := (tm - k0.Time) / span
	return k0.Offset.Lerp(k1.Offset, u), true
}
