package entities

import (
	"errors"
	"math"
	"testing"

	"github.com/decker502/skelanim/pkg/config"
	"github.com/decker502/skelanim/pkg/skeleton"
	"github.com/decker502/skelanim/pkg/utils"
)

const testUnitYAML = `
id: humanoid
name: Humanoid
scale: 2
default_animation: idle
bones:
  - name: torso
    y: -16
    size: [16, 20]
  - name: head
    parent: torso
    y: -8
    z_order: 2
    pivot: [0.5, 1]
    image: head.png
  - name: arm
    parent: torso
    x: 4
    z_order: -1
animations:
  - name: idle
    duration: 1
    tracks:
      head:
        - {t: 0}
        - {t: 0.5, rotation: -10}
        - {t: 1}
  - name: wave
    loop: false
    speed: 2
    tracks:
      arm:
        - {t: 0, sx: 1.5}
        - {t: 0.5, rotation: 90}
      tail:
        - {t: 0, x: 3}
`

func mustUnit(t *testing.T) *config.UnitConfig {
	t.Helper()
	unit, err := config.ParseUnit([]byte(testUnitYAML))
	if err != nil {
		t.Fatalf("ParseUnit failed: %v", err)
	}
	return unit
}

func testPlayback() config.PlaybackConfig {
	return config.PlaybackConfig{TPS: 60, DefaultBlendDuration: 0.3, BlendEasing: "linear"}
}

func TestBuildSkeleton(t *testing.T) {
	s, err := BuildSkeleton(mustUnit(t), testPlayback())
	if err != nil {
		t.Fatalf("BuildSkeleton failed: %v", err)
	}

	t.Run("骨骼层级", func(t *testing.T) {
		if s.Root().Name() != RootBoneName {
			t.Errorf("root = %q, want %q", s.Root().Name(), RootBoneName)
		}
		head, ok := s.Bone("head")
		if !ok {
			t.Fatal("head missing")
		}
		if head.Parent().Name() != "torso" {
			t.Errorf("head parent = %q, want torso", head.Parent().Name())
		}
		if head.Pivot() != (skeleton.Vec2{X: 0.5, Y: 1}) || head.ZOrder() != 2 || head.Image() != "head.png" {
			t.Errorf("head render hints not applied: pivot=%v z=%d image=%q", head.Pivot(), head.ZOrder(), head.Image())
		}
		torso, _ := s.Bone("torso")
		if torso.DefaultSize() != (skeleton.Size{W: 16, H: 20}) {
			t.Errorf("torso size = %v", torso.DefaultSize())
		}
	})

	t.Run("静止姿势已捕获", func(t *testing.T) {
		rest, ok := s.RestPoseOf("head")
		if !ok || rest.Y != -8 {
			t.Errorf("head rest = %+v, %v", rest, ok)
		}
	})

	t.Run("播放参数", func(t *testing.T) {
		if s.Scale() != 2 {
			t.Errorf("scale = %v, want 2", s.Scale())
		}
		if s.DefaultBlendDuration() != 0.3 {
			t.Errorf("default blend = %v, want 0.3", s.DefaultBlendDuration())
		}
		if name, ok := s.CurrentAnimationName(); !ok || name != "idle" {
			t.Errorf("current = %q, want default idle", name)
		}
	})

	t.Run("默认动画驱动骨骼", func(t *testing.T) {
		s.Update(0.25)
		head, _ := s.Bone("head")
		if !utils.AngleEqual(head.Rotation(), -5, 1e-9) {
			t.Errorf("head rotation = %v, want -5", head.Rotation())
		}
	})
}

func TestBuildSkeleton_Errors(t *testing.T) {
	t.Run("重复骨骼", func(t *testing.T) {
		unit := &config.UnitConfig{ID: "dup", Bones: []config.BoneConfig{{Name: "a"}, {Name: "a"}}}
		if _, err := BuildSkeleton(unit, testPlayback()); !errors.Is(err, skeleton.ErrDuplicateBone) {
			t.Errorf("got %v, want ErrDuplicateBone", err)
		}
	})

	t.Run("未知父骨骼", func(t *testing.T) {
		unit := &config.UnitConfig{ID: "orphan", Bones: []config.BoneConfig{{Name: "a", Parent: "b"}}}
		if _, err := BuildSkeleton(unit, testPlayback()); !errors.Is(err, skeleton.ErrUnknownParent) {
			t.Errorf("got %v, want ErrUnknownParent", err)
		}
	})

	t.Run("未知混合曲线", func(t *testing.T) {
		unit := mustUnit(t)
		unit.BlendEasing = "wobble"
		if _, err := BuildSkeleton(unit, testPlayback()); err == nil {
			t.Error("expected an error for an unknown easing")
		}
	})
}

func TestBuildSkeleton_DefaultsWithoutPlaybackConfig(t *testing.T) {
	unit := mustUnit(t)
	unit.Scale = 0
	unit.DefaultAnimation = ""

	s, err := BuildSkeleton(unit, config.PlaybackConfig{})
	if err != nil {
		t.Fatalf("BuildSkeleton failed: %v", err)
	}
	if s.Scale() != 1 {
		t.Errorf("scale = %v, want 1", s.Scale())
	}
	if s.DefaultBlendDuration() != skeleton.DefaultBlendDuration {
		t.Errorf("default blend = %v, want %v", s.DefaultBlendDuration(), skeleton.DefaultBlendDuration)
	}
	if _, ok := s.CurrentAnimationName(); ok {
		t.Error("skeleton without a default animation should start Idle")
	}
}

func TestBuildAnimation(t *testing.T) {
	unit := mustUnit(t)
	cfg, _ := unit.Animation("wave")
	anim := BuildAnimation(*cfg)

	if anim.Loop() {
		t.Error("wave should not loop")
	}
	if anim.Speed() != 2 {
		t.Errorf("speed = %v, want 2", anim.Speed())
	}
	// 未配置 duration 时取最后一个关键帧时间
	if anim.Duration() != 0.5 {
		t.Errorf("duration = %v, want 0.5", anim.Duration())
	}

	bones := anim.AnimatedBones()
	if len(bones) != 2 || bones[0] != "arm" || bones[1] != "tail" {
		t.Errorf("AnimatedBones() = %v, want [arm tail]", bones)
	}

	o, ok := anim.Evaluate("arm", 0)
	if !ok || o.ScaleX != 1.5 || o.ScaleY != 1 {
		t.Errorf("arm@0 = %+v, want sx=1.5 sy=1", o)
	}
	o, _ = anim.Evaluate("arm", 0.25)
	if math.Abs(o.Rotation-45) > 1e-9 {
		t.Errorf("arm@0.25 rotation = %v, want 45", o.Rotation)
	}
}

func TestBuildAnimation_HiddenKeyframes(t *testing.T) {
	cfg := config.AnimationConfig{
		Name: "blink",
		Tracks: map[string][]config.KeyframeConfig{
			"eye": {{T: 0}, {T: 0.1, Hidden: true}, {T: 0.2}},
		},
	}
	anim := BuildAnimation(cfg)

	tests := []struct {
		tm   float64
		want bool
	}{
		{tm: 0.05, want: false},
		{tm: 0.15, want: true},
		{tm: 0.2, want: false},
	}
	for _, tt := range tests {
		o, ok := anim.Evaluate("eye", tt.tm)
		if !ok || o.Hidden != tt.want {
			t.Errorf("eye@%v hidden = %v (ok=%v), want %v", tt.tm, o.Hidden, ok, tt.want)
		}
	}
}

func TestBuildSkeleton_UnknownTrackBoneIsSkipped(t *testing.T) {
	s, err := BuildSkeleton(mustUnit(t), testPlayback())
	if err != nil {
		t.Fatal(err)
	}
	s.Play("wave")
	s.Update(0.1) // tail 轨道没有对应骨骼，不应出错
	if _, ok := s.Bone("tail"); ok {
		t.Error("tail should not be created from animation data")
	}
}
