// Package skeleton implements a 2D bone hierarchy driven by offset keyframe
// animations.
//
// A Skeleton owns its bone tree, captures a rest pose once after the rig is
// built, and writes rest + offset poses onto its bones every Update. Two
// animations can be cross-faded; only one pose-writing pass runs per frame.
//
// A Skeleton is not safe for concurrent use. Update and pose queries must run
// on the same goroutine.
package skeleton

import (
	"log"
	"sort"

	"github.com/decker502/skelanim/pkg/animation"
	"github.com/decker502/skelanim/pkg/utils"
)

// DefaultBlendDuration is the cross-fade length used when none is given.
const DefaultBlendDuration = 0.2

// RestPose is a bone's local transform captured before any animation runs.
type RestPose struct {
	X, Y     float64
	Rotation float64
}

// Skeleton owns a bone tree, its rest pose, an animation registry and the
// playback/blend state.
type Skeleton struct {
	root  *Bone
	bones map[string]*Bone
	order []*Bone // depth-first, parents before children

	restPose       map[string]RestPose
	restPoseStored bool
	posed          bool

	animations map[string]*animation.Animation
	playback   playback

	// missing remembers "anim/bone" pairs already logged as absent from the rig.
	missing map[string]bool

	position  Vec2
	scale     float64
	flipX     bool
	debugDraw bool
}

// NewSkeleton indexes the tree under root. Bone names must be unique; a
// duplicate is logged and only the first bone with that name is indexed.
//
// The caller must call StoreRestPose once the rig is in its default pose.
// RigBuilder.Build does both steps.
func NewSkeleton(root *Bone) *Skeleton {
	s := &Skeleton{
		root:       root,
		bones:      make(map[string]*Bone),
		restPose:   make(map[string]RestPose),
		animations: make(map[string]*animation.Animation),
		missing:    make(map[string]bool),
		scale:      1,
		playback: playback{
			defaultDuration: DefaultBlendDuration,
		},
	}
	if root != nil {
		root.walk(func(b *Bone) {
			if _, dup := s.bones[b.name]; dup {
				log.Printf("[Skeleton] duplicate bone name %q, keeping the first", b.name)
				return
			}
			s.bones[b.name] = b
			s.order = append(s.order, b)
		})
	}
	return s
}

// Root returns the root bone.
func (s *Skeleton) Root() *Bone {
	return s.root
}

// Bone looks up a bone by name.
func (s *Skeleton) Bone(name string) (*Bone, bool) {
	b, ok := s.bones[name]
	return b, ok
}

// Bones returns all indexed bones, parents before children.
func (s *Skeleton) Bones() []*Bone {
	return s.order
}

// StoreRestPose records every bone's current local position and rotation as
// the rest pose.
//
// Precondition: call exactly once, after the rig is built and before any
// animation is applied. Calling it again captures the current, possibly
// animated, pose as the new rest pose; this is logged but not prevented.
func (s *Skeleton) StoreRestPose() {
	if s.restPoseStored && s.posed {
		log.Printf("[Skeleton] StoreRestPose called after animations were applied; offsets now relative to an animated pose")
	}
	for _, b := range s.order {
		s.restPose[b.name] = RestPose{
			X:        b.position.X,
			Y:        b.position.Y,
			Rotation: b.rotation,
		}
	}
	s.restPoseStored = true
}

// RestPoseOf returns the captured rest pose for a bone.
func (s *Skeleton) RestPoseOf(name string) (RestPose, bool) {
	r, ok := s.restPose[name]
	return r, ok
}

// RegisterAnimation adds anim to the registry, replacing any animation with
// the same name. A replaced animation that is playing is swapped in place.
func (s *Skeleton) RegisterAnimation(anim *animation.Animation) {
	if anim == nil {
		return
	}
	s.animations[anim.Name()] = anim
	s.playback.replace(anim)
}

// Animation looks up a registered animation.
func (s *Skeleton) Animation(name string) (*animation.Animation, bool) {
	a, ok := s.animations[name]
	return a, ok
}

// AnimationNames returns the registered animation names, sorted.
func (s *Skeleton) AnimationNames() []string {
	names := make([]string, 0, len(s.animations))
	for name := range s.animations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ApplyAnimation writes rest + offset onto every bone anim animates, using
// anim's current clock. Bones absent from the rig are skipped.
func (s *Skeleton) ApplyAnimation(anim *animation.Animation) {
	if anim == nil {
		return
	}
	for _, name := range anim.AnimatedBones() {
		bone, ok := s.lookupAnimated(anim, name)
		if !ok {
			continue
		}
		offset, ok := anim.EvaluateCurrent(name)
		if !ok {
			continue
		}
		s.applyOffset(bone, offset)
	}
}

// BlendAnimations writes a pose interpolated between from and to by factor t.
//
// Bones animated by both are interpolated offset to offset. Bones animated
// only by to ease in from the zero offset (the rest pose). Bones animated only
// by from are left untouched and hold whatever pose was last written.
func (s *Skeleton) BlendAnimations(from, to *animation.Animation, t float64) {
	if to == nil {
		s.ApplyAnimation(from)
		return
	}
	t = utils.Clamp01(t)

	for _, name := range to.AnimatedBones() {
		bone, ok := s.lookupAnimated(to, name)
		if !ok {
			continue
		}
		target, ok := to.EvaluateCurrent(name)
		if !ok {
			continue
		}

		source := animation.ZeroOffset()
		if from != nil {
			if o, ok := from.EvaluateCurrent(name); ok {
				source = o
			}
		}
		s.applyOffset(bone, source.Lerp(target, t))
	}
}

func (s *Skeleton) lookupAnimated(anim *animation.Animation, name string) (*Bone, bool) {
	bone, ok := s.bones[name]
	if !ok {
		key := anim.Name() + "/" + name
		if !s.missing[key] {
			s.missing[key] = true
			log.Printf("[Skeleton] animation %q references unknown bone %q, skipping", anim.Name(), name)
		}
	}
	return bone, ok
}

func (s *Skeleton) applyOffset(b *Bone, o animation.Offset) {
	rest := s.restPose[b.name] // zero value if never captured
	b.SetLocalPosition(rest.X+o.X, rest.Y+o.Y)
	b.SetRotation(rest.Rotation + o.Rotation)
	b.SetScale(o.ScaleX, o.ScaleY)
	b.SetHidden(o.Hidden)
	s.posed = true
}

// SetPosition places the skeleton's root in world space.
func (s *Skeleton) SetPosition(x, y float64) {
	s.position = Vec2{X: x, Y: y}
}

func (s *Skeleton) Position() Vec2 {
	return s.position
}

// SetScale sets the uniform world scale.
func (s *Skeleton) SetScale(scale float64) {
	s.scale = scale
}

func (s *Skeleton) Scale() float64 {
	return s.scale
}

// SetFlipX mirrors the resolved pose horizontally about the skeleton's x.
func (s *Skeleton) SetFlipX(flip bool) {
	s.flipX = flip
}

func (s *Skeleton) FlipX() bool {
	return s.flipX
}

func (s *Skeleton) SetDebugDraw(debug bool) {
	s.debugDraw = debug
}

func (s *Skeleton) DebugDraw() bool {
	return s.debugDraw
}
