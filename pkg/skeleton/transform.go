package skeleton

import (
	"math"

	"github.com/decker502/skelanim/pkg/utils"
)

// Vec2 is a 2D vector in unscaled pixel units.
type Vec2 struct {
	X, Y float64
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Size is a width/height pair.
type Size struct {
	W, H float64
}

// WorldTransform is a bone's resolved placement in world space.
type WorldTransform struct {
	Position Vec2
	// Rotation is the sum of local rotations down the chain, in degrees.
	// Animated offsets are normalized to [0, 360), so a -5 degree pose
	// reads as 355. Compare angles with utils.AngleEqual.
	Rotation float64
	Scale    Vec2
}

// Identity returns a transform at the origin with no rotation and unit scale.
func Identity() WorldTransform {
	return WorldTransform{Scale: Vec2{X: 1, Y: 1}}
}

// rotateAndScale scales p component-wise by scale, then rotates it by deg degrees.
func rotateAndScale(p Vec2, deg float64, scale Vec2) Vec2 {
	x := p.X * scale.X
	y := p.Y * scale.Y
	if deg == 0 {
		return Vec2{X: x, Y: y}
	}
	sin, cos := math.Sincos(utils.DegToRad(deg))
	return Vec2{
		X: x*cos - y*sin,
		Y: x*sin + y*cos,
	}
}
