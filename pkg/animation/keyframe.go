// Package animation provides per-bone keyframe tracks and named animations.
//
// Keyframe position and rotation values are offsets added to a skeleton's rest
// pose. Scale values are absolute multipliers.
package animation

import "github.com/decker502/skelanim/pkg/utils"

// Offset is a pose delta for one bone.
type Offset struct {
	// X and Y are added to the bone's rest local position (pixels).
	X, Y float64

	// Rotation is added to the bone's rest rotation (degrees).
	Rotation float64

	// ScaleX and ScaleY replace the bone's scale; they are not deltas.
	ScaleX, ScaleY float64

	// Hidden hides the bone while this offset applies. It steps instead of
	// interpolating.
	Hidden bool
}

// ZeroOffset returns the identity offset: no translation, no rotation, unit scale.
func ZeroOffset() Offset {
	return Offset{ScaleX: 1, ScaleY: 1}
}

// Lerp interpolates between two offsets. Position and scale are linear;
// rotation follows the shortest angular path and is normalized to [0, 360).
// Hidden keeps o's value until u reaches 1.
func (o Offset) Lerp(to Offset, u float64) Offset {
	hidden := o.Hidden
	if u >= 1 {
		hidden = to.Hidden
	}
	return Offset{
		X:        utils.Lerp(o.X, to.X, u),
		Y:        utils.Lerp(o.Y, to.Y, u),
		Rotation: utils.LerpAngle(o.Rotation, to.Rotation, u),
		ScaleX:   utils.Lerp(o.ScaleX, to.ScaleX, u),
		ScaleY:   utils.Lerp(o.ScaleY, to.ScaleY, u),
		Hidden:   hidden,
	}
}

// normalized returns o with its rotation in [0, 360).
func (o Offset) normalized() Offset {
	o.Rotation = utils.NormalizeAngle(o.Rotation)
	return o
}

// Keyframe is a time-stamped offset within one animation's local clock.
type Keyframe struct {
	Time float64
	Offset
}
