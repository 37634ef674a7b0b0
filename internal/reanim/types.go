// Package reanim imports Reanim animation files into skeleton unit configs.
//
// A Reanim file is a flat list of tracks sampled at a fixed frame rate. Part
// tracks carry per-frame transforms for one sprite; tracks named "anim_*"
// mark which frame range belongs to which named animation.
package reanim

import "strings"

// DefaultFPS is used when a file omits <fps>.
const DefaultFPS = 12

// animTrackPrefix marks animation definition tracks.
const animTrackPrefix = "anim_"

// ReanimXML is the root structure of a Reanim animation file.
type ReanimXML struct {
	FPS    int     `xml:"fps"`
	Tracks []Track `xml:"track"`
}

// Track is either an animation definition track ("anim_idle") or a part
// track ("head").
type Track struct {
	Name   string  `xml:"name"`
	Frames []Frame `xml:"t"`
}

// Frame is one sample of a track. Nil fields inherit the previous frame's
// value.
type Frame struct {
	// FrameNum is -1 when the part is hidden in this frame.
	FrameNum *int `xml:"f,omitempty"`

	X      *float64 `xml:"x,omitempty"`
	Y      *float64 `xml:"y,omitempty"`
	ScaleX *float64 `xml:"sx,omitempty"`
	ScaleY *float64 `xml:"sy,omitempty"`

	// SkewX and SkewY are in degrees. Without shear they are equal and act
	// as the rotation.
	SkewX *float64 `xml:"kx,omitempty"`
	SkewY *float64 `xml:"ky,omitempty"`

	ImagePath string `xml:"i,omitempty"`
}

// IsAnimationTrack reports whether t defines a named frame range rather than
// a sprite part.
func (t Track) IsAnimationTrack() bool {
	return strings.HasPrefix(t.Name, animTrackPrefix) && len(t.Name) > len(animTrackPrefix)
}

// AnimationName strips the "anim_" prefix.
func (t Track) AnimationName() string {
	if !t.IsAnimationTrack() {
		return ""
	}
	return strings.TrimPrefix(t.Name, animTrackPrefix)
}

// Sample is a fully resolved frame.
type Sample struct {
	Visible        bool
	X, Y           float64
	ScaleX, ScaleY float64
	Rotation       float64
	Image          string
}
