package animation

import (
	"math"
	"sort"
)

// Animation is a named set of per-bone tracks with its own playback clock.
//
// The clock wraps modulo Duration for looping animations. A non-looping
// animation holds at Duration and reports Finished.
type Animation struct {
	name   string
	tracks map[string]*Track

	// boneNames is kept sorted so evaluation order does not depend on map order.
	boneNames []string

	clock    float64
	duration float64 // explicit duration, 0 = derive from tracks
	loop     bool
	speed    float64
	finished bool
}

// New creates an empty looping animation.
func New(name string) *Animation {
	return &Animation{
		name:   name,
		tracks: make(map[string]*Track),
		loop:   true,
		speed:  1,
	}
}

// Name returns the animation name.
func (a *Animation) Name() string {
	return a.name
}

// AddKeyframe inserts a keyframe for boneName at time tm. A keyframe already
// at that time for the same bone is overwritten.
func (a *Animation) AddKeyframe(boneName string, tm float64, offset Offset) {
	track, ok := a.tracks[boneName]
	if !ok {
		track = &Track{}
		a.tracks[boneName] = track
		i := sort.SearchStrings(a.boneNames, boneName)
		a.boneNames = append(a.boneNames, "")
		copy(a.boneNames[i+1:], a.boneNames[i:])
		a.boneNames[i] = boneName
	}
	track.Add(Keyframe{Time: tm, Offset: offset})
}

// Track returns the track for boneName.
func (a *Animation) Track(boneName string) (*Track, bool) {
	t, ok := a.tracks[boneName]
	return t, ok
}

// HasTrack reports whether boneName is animated by a.
func (a *Animation) HasTrack(boneName string) bool {
	_, ok := a.tracks[boneName]
	return ok
}

// AnimatedBones returns the names of bones with at least one keyframe, sorted.
// The slice must not be modified.
func (a *Animation) AnimatedBones() []string {
	return a.boneNames
}

// SetDuration sets an explicit total duration. Zero or negative restores the
// derived duration (the latest keyframe time across all tracks).
func (a *Animation) SetDuration(d float64) {
	if d < 0 {
		d = 0
	}
	a.duration = d
}

// Duration returns the total duration in seconds.
func (a *Animation) Duration() float64 {
	if a.duration > 0 {
		return a.duration
	}
	var end float64
	for _, t := range a.tracks {
		end = math.Max(end, t.EndTime())
	}
	return end
}

// SetLoop sets whether the clock wraps at Duration.
func (a *Animation) SetLoop(loop bool) {
	a.loop = loop
}

// Loop reports whether the animation loops.
func (a *Animation) Loop() bool {
	return a.loop
}

// SetSpeed sets the playback rate multiplier applied in Update.
// Negative values are treated as 0.
func (a *Animation) SetSpeed(speed float64) {
	a.speed = math.Max(speed, 0)
}

// Speed returns the playback rate multiplier.
func (a *Animation) Speed() float64 {
	return a.speed
}

// Clock returns the current local time in seconds.
func (a *Animation) Clock() float64 {
	return a.clock
}

// Finished reports whether a non-looping animation has reached its end.
// Looping animations never finish.
func (a *Animation) Finished() bool {
	return a.finished
}

// Update advances the clock by delta seconds scaled by Speed.
func (a *Animation) Update(delta float64) {
	a.clock += delta * a.speed

	d := a.Duration()
	if d <= 0 {
		a.clock = 0
		a.finished = !a.loop
		return
	}

	if a.loop {
		a.clock = math.Mod(a.clock, d)
		if a.clock < 0 {
			a.clock += d
		}
		return
	}

	if a.clock >= d {
		a.clock = d
		a.finished = true
	}
}

// Reset rewinds the clock to 0.
func (a *Animation) Reset() {
	a.clock = 0
	a.finished = false
}

// Evaluate returns the offset for boneName at time tm. The second return value
// is false when boneName has no track in this animation.
func (a *Animation) Evaluate(boneName string, tm float64) (Offset, bool) {
	t, ok := a.tracks[boneName]
	if !ok {
		return Offset{}, false
	}
	return t.Evaluate(tm)
}

// EvaluateCurrent evaluates boneName at the animation's own clock.
func (a *Animation) EvaluateCurrent(boneName string) (Offset, bool) {
	return a.Evaluate(boneName, a.clock)
}
