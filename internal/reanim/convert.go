package reanim

import (
	"fmt"
	"math"

	"github.com/decker502/skelanim/pkg/config"
)

// DefaultPartSize is the placeholder size given to imported parts, which
// carry no image dimensions.
const DefaultPartSize = 16

// FrameRange is the inclusive frame span of one named animation.
type FrameRange struct {
	Name       string
	Start, End int
}

// Frames returns the number of frames in the range.
func (fr FrameRange) Frames() int {
	return fr.End - fr.Start + 1
}

// Resolve expands cumulative inheritance into one Sample per frame.
func (t Track) Resolve() []Sample {
	cur := Sample{Visible: true, ScaleX: 1, ScaleY: 1}
	out := make([]Sample, len(t.Frames))
	for i, f := range t.Frames {
		if f.FrameNum != nil {
			cur.Visible = *f.FrameNum != -1
		}
		if f.X != nil {
			cur.X = *f.X
		}
		if f.Y != nil {
			cur.Y = *f.Y
		}
		if f.ScaleX != nil {
			cur.ScaleX = *f.ScaleX
		}
		if f.ScaleY != nil {
			cur.ScaleY = *f.ScaleY
		}
		if f.SkewX != nil {
			cur.Rotation = *f.SkewX
		}
		if f.ImagePath != "" {
			cur.Image = f.ImagePath
		}
		out[i] = cur
	}
	return out
}

// FrameCount returns the longest track's frame count.
func (r *ReanimXML) FrameCount() int {
	n := 0
	for _, t := range r.Tracks {
		n = max(n, len(t.Frames))
	}
	return n
}

// AnimationRanges returns the visible span of every "anim_*" track, in file
// order. A file without animation tracks yields one range named "all".
func (r *ReanimXML) AnimationRanges() []FrameRange {
	var ranges []FrameRange
	for _, t := range r.Tracks {
		if !t.IsAnimationTrack() {
			continue
		}
		start, end := -1, -1
		for i, s := range t.Resolve() {
			if !s.Visible {
				continue
			}
			if start < 0 {
				start = i
			}
			end = i
		}
		if start < 0 {
			continue
		}
		ranges = append(ranges, FrameRange{Name: t.AnimationName(), Start: start, End: end})
	}
	if len(ranges) == 0 {
		if n := r.FrameCount(); n > 0 {
			ranges = append(ranges, FrameRange{Name: "all", Start: 0, End: n - 1})
		}
	}
	return ranges
}

// PartTrack is a part track with a unique name.
type PartTrack struct {
	Name  string
	Track Track
}

// PartTracks returns the part tracks in file order. Repeated names get a
// "#n" suffix: "rock", "rock#1", "rock#2".
func (r *ReanimXML) PartTracks() []PartTrack {
	seen := make(map[string]int)
	var parts []PartTrack
	for _, t := range r.Tracks {
		if t.IsAnimationTrack() || t.Name == "" {
			continue
		}
		name := t.Name
		if n := seen[t.Name]; n > 0 {
			name = fmt.Sprintf("%s#%d", t.Name, n)
		}
		seen[t.Name]++
		parts = append(parts, PartTrack{Name: name, Track: t})
	}
	return parts
}

// ToUnit converts r into a skeleton unit.
//
// Every part track becomes a bone directly under the root, drawn in file
// order. A bone's rest pose is the part's first visible frame; each named
// frame range becomes an animation whose keyframes are offsets from that
// rest pose, one per frame, hidden where the part is hidden. A part that
// stays at rest for a whole range is reduced to a single keyframe, so every
// animation still drives every part and sets its visibility.
func ToUnit(r *ReanimXML, id string) (*config.UnitConfig, error) {
	parts := r.PartTracks()
	if len(parts) == 0 {
		return nil, fmt.Errorf("reanim %q: no part tracks", id)
	}
	fps := float64(r.FPS)
	if fps <= 0 {
		fps = DefaultFPS
	}

	unit := &config.UnitConfig{
		ID:    id,
		Name:  id,
		Scale: 1,
	}

	samples := make([][]Sample, len(parts))
	rests := make([]Sample, len(parts))
	for i, p := range parts {
		samples[i] = p.Track.Resolve()
		rest, everVisible := restSample(samples[i])
		rests[i] = rest

		bone := config.BoneConfig{
			Name:     p.Name,
			X:        round(rest.X),
			Y:        round(rest.Y),
			Rotation: round(rest.Rotation),
			ScaleX:   round(rest.ScaleX),
			ScaleY:   round(rest.ScaleY),
			ZOrder:   i,
			Size:     []float64{DefaultPartSize, DefaultPartSize},
			Image:    firstImage(samples[i]),
		}
		if !everVisible {
			hidden := false
			bone.Visible = &hidden
		}
		unit.Bones = append(unit.Bones, bone)
	}

	for _, fr := range r.AnimationRanges() {
		anim := config.AnimationConfig{
			Name:     fr.Name,
			Duration: round(float64(fr.Frames()) / fps),
			Tracks:   make(map[string][]config.KeyframeConfig),
		}
		for i, p := range parts {
			keys, moves := rangeKeyframes(samples[i], rests[i], fr, fps)
			if len(keys) == 0 {
				continue
			}
			if !moves {
				keys = keys[:1]
			}
			anim.Tracks[p.Name] = keys
		}
		unit.Animations = append(unit.Animations, anim)
	}

	if _, ok := unit.Animation("idle"); ok {
		unit.DefaultAnimation = "idle"
	} else if len(unit.Animations) > 0 {
		unit.DefaultAnimation = unit.Animations[0].Name
	}

	if err := unit.Validate(); err != nil {
		return nil, fmt.Errorf("reanim %q: %w", id, err)
	}
	return unit, nil
}

// restSample returns the first visible sample, or the first sample when the
// part is never visible.
func restSample(samples []Sample) (Sample, bool) {
	for _, s := range samples {
		if s.Visible {
			return s, true
		}
	}
	if len(samples) == 0 {
		return Sample{ScaleX: 1, ScaleY: 1}, false
	}
	return samples[0], false
}

func firstImage(samples []Sample) string {
	for _, s := range samples {
		if s.Image != "" {
			return s.Image
		}
	}
	return ""
}

// rangeKeyframes samples fr into offset keyframes and reports whether any
// of them differs from rest. Frames with f=-1 become hidden keyframes.
func rangeKeyframes(samples []Sample, rest Sample, fr FrameRange, fps float64) ([]config.KeyframeConfig, bool) {
	var keys []config.KeyframeConfig
	moves := false
	for f := fr.Start; f <= fr.End && f < len(samples); f++ {
		s := samples[f]
		k := config.KeyframeConfig{
			T:        round(float64(f-fr.Start) / fps),
			X:        round(s.X - rest.X),
			Y:        round(s.Y - rest.Y),
			Rotation: round(s.Rotation - rest.Rotation),
		}
		if sx := round(s.ScaleX); sx != 1 {
			k.ScaleX = &sx
		}
		if sy := round(s.ScaleY); sy != 1 {
			k.ScaleY = &sy
		}
		k.Hidden = !s.Visible
		if k.X != 0 || k.Y != 0 || k.Rotation != 0 || s.ScaleX != rest.ScaleX || s.ScaleY != rest.ScaleY ||
			s.Visible != rest.Visible {
			moves = true
		}
		keys = append(keys, k)
	}
	return keys, moves
}

func round(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
