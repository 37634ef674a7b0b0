package skeleton

import (
	"log"
	"reflect"

	"github.com/decker502/skelanim/pkg/animation"
	"github.com/decker502/skelanim/pkg/utils"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// playback is the Idle / Playing / Blending state machine.
//
//	Idle:     current == nil
//	Playing:  current != nil, next == nil
//	Blending: current != nil, next != nil
type playback struct {
	current *animation.Animation
	next    *animation.Animation

	blendTime     float64
	blendDuration float64
	blendTween    *gween.Tween

	defaultDuration float64
	// easing is nil for linear blends, which use the exact time ratio.
	easing ease.TweenFunc
}

func (p *playback) clearBlend() {
	p.next = nil
	p.blendTime = 0
	p.blendTween = nil
}

// replace swaps a re-registered animation into the active slots.
func (p *playback) replace(anim *animation.Animation) {
	if p.current != nil && p.current.Name() == anim.Name() && p.current != anim {
		anim.Reset()
		p.current = anim
	}
	if p.next != nil && p.next.Name() == anim.Name() && p.next != anim {
		anim.Reset()
		p.next = anim
	}
}

// weight returns the blend factor in [0, 1] for the elapsed blend time.
func (p *playback) weight() float64 {
	if p.blendDuration <= 0 {
		return 1
	}
	if p.blendTween == nil {
		return utils.Clamp01(p.blendTime / p.blendDuration)
	}
	v, _ := p.blendTween.Set(float32(p.blendTime))
	return utils.Clamp01(float64(v))
}

// Play hard-cuts to the named animation: it becomes current, its clock is
// reset and any in-flight blend is discarded. Unknown names are ignored.
func (s *Skeleton) Play(name string) {
	anim, ok := s.animations[name]
	if !ok {
		log.Printf("[Skeleton] Play: animation %q not registered", name)
		return
	}
	anim.Reset()
	s.playback.current = anim
	s.playback.clearBlend()
}

// TransitionTo cross-fades from the current animation to name over duration
// seconds.
//
// It does nothing if name is already current or already the blend target, so
// repeated requests do not restart the blend timer. From Idle it behaves like
// Play. A request for a different target while blending replaces the target
// and restarts the timer. Unknown names are ignored.
func (s *Skeleton) TransitionTo(name string, duration float64) {
	p := &s.playback
	if p.current != nil && p.current.Name() == name {
		return
	}
	if p.next != nil && p.next.Name() == name {
		return
	}

	anim, ok := s.animations[name]
	if !ok {
		log.Printf("[Skeleton] TransitionTo: animation %q not registered", name)
		return
	}
	if p.current == nil {
		s.Play(name)
		return
	}

	if duration < 0 {
		duration = 0
	}
	anim.Reset()
	p.next = anim
	p.blendTime = 0
	p.blendDuration = duration
	p.blendTween = nil
	if duration > 0 && p.easing != nil {
		p.blendTween = gween.New(0, 1, float32(duration), p.easing)
	}
}

// CrossFade is TransitionTo with the skeleton's default blend duration.
func (s *Skeleton) CrossFade(name string) {
	s.TransitionTo(name, s.playback.defaultDuration)
}

// SetDefaultBlendDuration sets the duration CrossFade uses.
func (s *Skeleton) SetDefaultBlendDuration(d float64) {
	if d < 0 {
		d = 0
	}
	s.playback.defaultDuration = d
}

func (s *Skeleton) DefaultBlendDuration() float64 {
	return s.playback.defaultDuration
}

// SetBlendEasing sets the curve mapping blend time to blend weight for
// blends started afterwards. nil means linear.
func (s *Skeleton) SetBlendEasing(fn ease.TweenFunc) {
	if isLinear(fn) {
		fn = nil
	}
	s.playback.easing = fn
}

// isLinear reports whether fn is nil or ease.Linear. Linear blends weigh by
// blendTime / blendDuration in float64.
func isLinear(fn ease.TweenFunc) bool {
	return fn == nil || reflect.ValueOf(fn).Pointer() == reflect.ValueOf(ease.Linear).Pointer()
}

// Stop returns to Idle. Bones keep the last written pose.
func (s *Skeleton) Stop() {
	s.playback.current = nil
	s.playback.clearBlend()
}

// Update advances playback by delta seconds and writes exactly one pose:
// the current animation while Playing, or the blended pose while Blending.
// When a blend completes, the new current animation is applied.
func (s *Skeleton) Update(delta float64) {
	if delta < 0 {
		delta = 0
	}
	p := &s.playback
	if p.current == nil {
		return
	}

	if p.next == nil {
		p.current.Update(delta)
		s.ApplyAnimation(p.current)
		return
	}

	p.current.Update(delta)
	p.next.Update(delta)
	p.blendTime += delta

	if p.blendTime >= p.blendDuration {
		p.current = p.next
		p.clearBlend()
		s.ApplyAnimation(p.current)
		return
	}
	s.BlendAnimations(p.current, p.next, p.weight())
}

// IsPlaying reports whether name is the current animation or the blend target.
func (s *Skeleton) IsPlaying(name string) bool {
	p := &s.playback
	if p.current != nil && p.current.Name() == name {
		return true
	}
	return p.next != nil && p.next.Name() == name
}

// CurrentAnimationName returns the current animation's name; false when Idle.
func (s *Skeleton) CurrentAnimationName() (string, bool) {
	if s.playback.current == nil {
		return "", false
	}
	return s.playback.current.Name(), true
}

// NextAnimationName returns the blend target's name; false when not blending.
func (s *Skeleton) NextAnimationName() (string, bool) {
	if s.playback.next == nil {
		return "", false
	}
	return s.playback.next.Name(), true
}

// IsBlending reports whether a cross-fade is in flight.
func (s *Skeleton) IsBlending() bool {
	return s.playback.next != nil
}

// BlendTime returns the seconds elapsed in the current blend.
func (s *Skeleton) BlendTime() float64 {
	return s.playback.blendTime
}

// BlendDuration returns the duration of the current or last started blend.
func (s *Skeleton) BlendDuration() float64 {
	return s.playback.blendDuration
}

// BlendProgress returns the current blend weight, or 0 when not blending.
func (s *Skeleton) BlendProgress() float64 {
	if s.playback.next == nil {
		return 0
	}
	return s.playback.weight()
}

// IsFinished reports whether the current animation is non-looping and has
// reached its end. Idle skeletons report false.
func (s *Skeleton) IsFinished() bool {
	if s.playback.current == nil {
		return false
	}
	return s.playback.current.Finished()
}
