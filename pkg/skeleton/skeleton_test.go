package skeleton

import (
	"math"
	"testing"

	"github.com/decker502/skelanim/pkg/animation"
	"github.com/decker502/skelanim/pkg/utils"
)

// buildFigure builds root → torso (0,0) → {head (0,-8), arm (4,-2, rot 10)}.
func buildFigure(t *testing.T) *Skeleton {
	t.Helper()
	rb := NewRigBuilder("root")
	mustAdd(t, rb, BoneDef{Name: "torso"})
	mustAdd(t, rb, BoneDef{Name: "head", Parent: "torso", Y: -8, ZOrder: 2})
	mustAdd(t, rb, BoneDef{Name: "arm", Parent: "torso", X: 4, Y: -2, Rotation: 10, ZOrder: -1})
	s, err := rb.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return s
}

func nodAnimation() *animation.Animation {
	a := animation.New("nod")
	a.AddKeyframe("head", 0, animation.Offset{Rotation: 0, ScaleX: 1, ScaleY: 1})
	a.AddKeyframe("head", 0.5, animation.Offset{Rotation: -10, ScaleX: 1, ScaleY: 1})
	a.AddKeyframe("head", 1.0, animation.Offset{Rotation: 0, ScaleX: 1, ScaleY: 1})
	return a
}

func constAnimation(name string, offsets map[string]animation.Offset) *animation.Animation {
	a := animation.New(name)
	for bone, o := range offsets {
		a.AddKeyframe(bone, 0, o)
		a.AddKeyframe(bone, 1, o)
	}
	return a
}

type localPose struct {
	pos   Vec2
	rot   float64
	scale Vec2
}

func snapshot(s *Skeleton) map[string]localPose {
	out := make(map[string]localPose)
	for _, b := range s.Bones() {
		out[b.Name()] = localPose{pos: b.LocalPosition(), rot: b.Rotation(), scale: b.Scale()}
	}
	return out
}

func assertSamePose(t *testing.T, got, want map[string]localPose) {
	t.Helper()
	for name, w := range want {
		g := got[name]
		if math.Abs(g.pos.X-w.pos.X) > 1e-6 || math.Abs(g.pos.Y-w.pos.Y) > 1e-6 {
			t.Errorf("%s position = %v, want %v", name, g.pos, w.pos)
		}
		if !utils.AngleEqual(g.rot, w.rot, 1e-6) {
			t.Errorf("%s rotation = %v, want %v", name, g.rot, w.rot)
		}
		if math.Abs(g.scale.X-w.scale.X) > 1e-6 || math.Abs(g.scale.Y-w.scale.Y) > 1e-6 {
			t.Errorf("%s scale = %v, want %v", name, g.scale, w.scale)
		}
	}
}

func TestSkeleton_IdentityOffsetLaw(t *testing.T) {
	s := buildFigure(t)
	rest := snapshot(s)

	identity := constAnimation("identity", map[string]animation.Offset{
		"torso": animation.ZeroOffset(),
		"head":  animation.ZeroOffset(),
		"arm":   animation.ZeroOffset(),
	})
	identity.Update(0.3)
	s.ApplyAnimation(identity)

	assertSamePose(t, snapshot(s), rest)
}

func TestSkeleton_RestPoseCaptureLaw(t *testing.T) {
	s := buildFigure(t)
	rest := snapshot(s)

	// Given: 只驱动 head 的动画
	// When: 应用动画
	// Then: 没有轨道的 arm/torso 保持静止姿势
	s.ApplyAnimation(constAnimation("look", map[string]animation.Offset{
		"head": {X: 3, Rotation: 20, ScaleX: 1, ScaleY: 1},
	}))

	got := snapshot(s)
	assertSamePose(t, map[string]localPose{"arm": got["arm"], "torso": got["torso"]},
		map[string]localPose{"arm": rest["arm"], "torso": rest["torso"]})
}

func TestSkeleton_ApplyAnimationAddsOffsetToRest(t *testing.T) {
	s := buildFigure(t)
	s.ApplyAnimation(constAnimation("reach", map[string]animation.Offset{
		"arm": {X: 1, Y: 2, Rotation: 5, ScaleX: 2, ScaleY: 0.5},
	}))

	arm, _ := s.Bone("arm")
	if arm.LocalPosition() != (Vec2{X: 5, Y: 0}) {
		t.Errorf("arm position = %v, want (5, 0)", arm.LocalPosition())
	}
	if !utils.AngleEqual(arm.Rotation(), 15, 1e-9) {
		t.Errorf("arm rotation = %v, want 15", arm.Rotation())
	}
	// 缩放是绝对值，不是偏移
	if arm.Scale() != (Vec2{X: 2, Y: 0.5}) {
		t.Errorf("arm scale = %v, want (2, 0.5)", arm.Scale())
	}
}

func TestSkeleton_ApplyAnimationSkipsUnknownBones(t *testing.T) {
	s := buildFigure(t)
	rest := snapshot(s)

	s.ApplyAnimation(constAnimation("ghost", map[string]animation.Offset{
		"tail": {X: 100, ScaleX: 1, ScaleY: 1},
	}))

	assertSamePose(t, snapshot(s), rest)
}

func TestSkeleton_MissingRestPoseTreatedAsZero(t *testing.T) {
	root := NewBone("root")
	arm := NewBone("arm")
	arm.SetLocalPosition(50, 50)
	if err := root.AddChild(arm); err != nil {
		t.Fatal(err)
	}
	s := NewSkeleton(root) // no StoreRestPose

	s.ApplyAnimation(constAnimation("wave", map[string]animation.Offset{
		"arm": {X: 1, Y: 2, ScaleX: 1, ScaleY: 1},
	}))

	if arm.LocalPosition() != (Vec2{X: 1, Y: 2}) {
		t.Errorf("arm position = %v, want (1, 2)", arm.LocalPosition())
	}
}

func TestSkeleton_BlendBoundaryLaw(t *testing.T) {
	walk := func() *animation.Animation {
		return constAnimation("walk", map[string]animation.Offset{
			"head": {X: 2, Rotation: 350, ScaleX: 1, ScaleY: 1},
			"arm":  {Y: 3, Rotation: 30, ScaleX: 1.5, ScaleY: 1},
		})
	}
	run := func() *animation.Animation {
		return constAnimation("run", map[string]animation.Offset{
			"head":  {X: -2, Rotation: 10, ScaleX: 1, ScaleY: 1},
			"arm":   {Y: -3, Rotation: 90, ScaleX: 1, ScaleY: 2},
			"torso": {Y: 1, Rotation: 5, ScaleX: 1, ScaleY: 1},
		})
	}

	t.Run("t=0 等于 apply(from)", func(t *testing.T) {
		applied := buildFigure(t)
		applied.ApplyAnimation(walk())

		blended := buildFigure(t)
		blended.BlendAnimations(walk(), run(), 0)

		assertSamePose(t, snapshot(blended), snapshot(applied))
	})

	t.Run("t=1 等于 apply(to)", func(t *testing.T) {
		applied := buildFigure(t)
		applied.ApplyAnimation(run())

		blended := buildFigure(t)
		blended.BlendAnimations(walk(), run(), 1)

		assertSamePose(t, snapshot(blended), snapshot(applied))
	})

	t.Run("中点走最短角度路径", func(t *testing.T) {
		s := buildFigure(t)
		s.BlendAnimations(walk(), run(), 0.5)

		head, _ := s.Bone("head")
		// 350 → 10 的中点是 0，不是 180
		if !utils.AngleEqual(head.Rotation(), 0, 1e-9) {
			t.Errorf("head rotation = %v, want 0", head.Rotation())
		}
		if math.Abs(head.LocalPosition().X) > 1e-9 {
			t.Errorf("head x = %v, want 0", head.LocalPosition().X)
		}
	})

	t.Run("仅目标动画驱动的骨骼从静止姿势淡入", func(t *testing.T) {
		s := buildFigure(t)
		s.BlendAnimations(walk(), run(), 0.5)

		torso, _ := s.Bone("torso")
		if math.Abs(torso.LocalPosition().Y-0.5) > 1e-9 {
			t.Errorf("torso y = %v, want 0.5", torso.LocalPosition().Y)
		}
		if !utils.AngleEqual(torso.Rotation(), 2.5, 1e-9) {
			t.Errorf("torso rotation = %v, want 2.5", torso.Rotation())
		}
	})
}

func TestSkeleton_BlendLeavesFromOnlyBonesUntouched(t *testing.T) {
	s := buildFigure(t)
	from := constAnimation("wave", map[string]animation.Offset{
		"arm": {Rotation: 45, ScaleX: 1, ScaleY: 1},
	})
	to := constAnimation("nodonly", map[string]animation.Offset{
		"head": {Rotation: 10, ScaleX: 1, ScaleY: 1},
	})

	s.ApplyAnimation(from)
	arm, _ := s.Bone("arm")
	before := arm.Rotation()

	s.BlendAnimations(from, to, 0.9)
	if arm.Rotation() != before {
		t.Errorf("arm rotation changed from %v to %v during fade-out", before, arm.Rotation())
	}
}

func TestSkeleton_AnimationHidesBone(t *testing.T) {
	s := buildFigure(t)
	s.RegisterAnimation(constAnimation("duck", map[string]animation.Offset{
		"head": {ScaleX: 1, ScaleY: 1, Hidden: true},
	}))
	s.RegisterAnimation(constAnimation("stand", map[string]animation.Offset{
		"head": {ScaleX: 1, ScaleY: 1},
	}))
	drawn := func() bool {
		for _, bp := range s.Pose() {
			if bp.Name == "head" {
				return true
			}
		}
		return false
	}

	t.Run("隐藏的骨骼不出现在 Pose 中", func(t *testing.T) {
		s.Play("duck")
		s.Update(0)
		if drawn() {
			t.Error("head should be hidden by duck")
		}
		head, _ := s.Bone("head")
		if !head.Visible() || !head.Hidden() {
			t.Errorf("rig visibility = %v, animation hidden = %v, want true/true", head.Visible(), head.Hidden())
		}
	})

	t.Run("混合完成前保持来源动画的可见性", func(t *testing.T) {
		s.TransitionTo("stand", 1)
		s.Update(0.5)
		if drawn() {
			t.Error("head should stay hidden until the blend completes")
		}
		s.Update(0.5)
		if !drawn() {
			t.Error("head should be drawn once stand is current")
		}
	})
}

func TestSkeleton_WorldTransformComposition(t *testing.T) {
	s := buildChain(t)

	head, ok := s.WorldTransform("head")
	if !ok {
		t.Fatal("head not found")
	}
	if math.Abs(head.Position.X) > epsilon || math.Abs(head.Position.Y-(-24)) > epsilon {
		t.Errorf("head world position = %v, want (0, -24)", head.Position)
	}

	t.Run("相对于骨架位置", func(t *testing.T) {
		s.SetPosition(100, 200)
		head, _ := s.WorldTransform("head")
		if head.Position != (Vec2{X: 100, Y: 176}) {
			t.Errorf("head world position = %v, want (100, 176)", head.Position)
		}
	})

	t.Run("骨架缩放", func(t *testing.T) {
		s.SetPosition(0, 0)
		s.SetScale(2)
		defer s.SetScale(1)
		head, _ := s.WorldTransform("head")
		if head.Position != (Vec2{X: 0, Y: -48}) || head.Scale != (Vec2{X: 2, Y: 2}) {
			t.Errorf("scaled head = %+v, want position (0,-48) scale (2,2)", head)
		}
	})

	t.Run("未知骨骼", func(t *testing.T) {
		if _, ok := s.WorldTransform("tail"); ok {
			t.Error("expected ok=false for an unknown bone")
		}
	})
}

func TestSkeleton_NodScenario(t *testing.T) {
	rb := NewRigBuilder("root")
	mustAdd(t, rb, BoneDef{Name: "torso"})
	mustAdd(t, rb, BoneDef{Name: "head", Parent: "torso", Y: -8})
	s, err := rb.Build()
	if err != nil {
		t.Fatal(err)
	}
	s.RegisterAnimation(nodAnimation())

	s.Play("nod")
	s.Update(0.25)

	head, _ := s.WorldTransform("head")
	if !utils.AngleEqual(head.Rotation, -5, 1e-9) {
		t.Errorf("head world rotation = %v, want -5", head.Rotation)
	}
	// -5 is reported as 355 in [0, 360)
	if math.Abs(head.Rotation-355) > 1e-9 {
		t.Errorf("head world rotation = %v, want normalized 355", head.Rotation)
	}
}

func TestSkeleton_DuplicateBoneNamesKeepFirst(t *testing.T) {
	root := NewBone("root")
	a := NewBone("x")
	b := NewBone("x")
	_ = root.AddChild(a)
	_ = root.AddChild(b)

	s := NewSkeleton(root)
	got, _ := s.Bone("x")
	if got != a {
		t.Error("expected the first bone named x to be indexed")
	}
	if len(s.Bones()) != 2 {
		t.Errorf("expected 2 indexed bones, got %d", len(s.Bones()))
	}
}

func TestSkeleton_NilRoot(t *testing.T) {
	s := NewSkeleton(nil)
	s.StoreRestPose()
	s.Update(1)
	if len(s.Pose()) != 0 {
		t.Error("expected an empty pose")
	}
}
