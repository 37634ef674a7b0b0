package entities

import (
	"fmt"
	"log"
	"sort"

	"github.com/decker502/skelanim/pkg/animation"
	"github.com/decker502/skelanim/pkg/config"
	"github.com/decker502/skelanim/pkg/skeleton"
)

// RootBoneName 配置单元的隐式根骨骼名称
const RootBoneName = "root"

// BuildSkeleton 根据单元配置构建骨架
//
// 步骤:
//  1. 按声明顺序创建骨骼（父骨骼必须先声明）
//  2. Build 捕获静止姿势
//  3. 应用整体缩放、翻转与混合参数
//  4. 注册所有动画；若配置了默认动画则立即播放
//
// 参数:
//   - unit: 单元配置
//   - playback: 全局播放配置（默认混合时长、混合曲线）
func BuildSkeleton(unit *config.UnitConfig, playback config.PlaybackConfig) (*skeleton.Skeleton, error) {
	rb := skeleton.NewRigBuilder(RootBoneName)
	for _, bc := range unit.Bones {
		px, py := bc.PivotXY()
		w, h := bc.SizeWH()
		def := skeleton.BoneDef{
			Name:     bc.Name,
			Parent:   bc.Parent,
			X:        bc.X,
			Y:        bc.Y,
			Rotation: bc.Rotation,
			ScaleX:   bc.ScaleX,
			ScaleY:   bc.ScaleY,
			Pivot:    &skeleton.Vec2{X: px, Y: py},
			ZOrder:   bc.ZOrder,
			Width:    w,
			Height:   h,
			Hidden:   !bc.IsVisible(),
			Image:    bc.Image,
		}
		if _, err := rb.AddBone(def); err != nil {
			return nil, fmt.Errorf("unit %q: %w", unit.ID, err)
		}
	}

	s, err := rb.Build()
	if err != nil {
		return nil, fmt.Errorf("unit %q: %w", unit.ID, err)
	}

	scale := unit.Scale
	if scale == 0 {
		scale = 1
	}
	s.SetScale(scale)
	s.SetFlipX(unit.FlipX)

	blend := playback.DefaultBlendDuration
	if blend <= 0 {
		blend = skeleton.DefaultBlendDuration
	}
	s.SetDefaultBlendDuration(blend)

	easingName := playback.BlendEasing
	if unit.BlendEasing != "" {
		easingName = unit.BlendEasing
	}
	easing, ok := config.EasingByName(easingName)
	if !ok {
		return nil, fmt.Errorf("unit %q: unknown blend easing %q", unit.ID, easingName)
	}
	s.SetBlendEasing(easing)

	for _, ac := range unit.Animations {
		anim := BuildAnimation(ac)
		for _, bone := range anim.AnimatedBones() {
			if _, ok := s.Bone(bone); !ok {
				log.Printf("[RigFactory] unit %q animation %q: track for unknown bone %q will be skipped",
					unit.ID, ac.Name, bone)
			}
		}
		s.RegisterAnimation(anim)
	}

	if unit.DefaultAnimation != "" {
		s.Play(unit.DefaultAnimation)
	}

	log.Printf("[RigFactory] built unit %q: %d bones, %d animations",
		unit.ID, len(s.Bones()), len(unit.Animations))
	return s, nil
}

// BuildAnimation 将动画配置转换为偏移关键帧动画
func BuildAnimation(ac config.AnimationConfig) *animation.Animation {
	anim := animation.New(ac.Name)
	anim.SetLoop(ac.IsLoop())
	anim.SetSpeed(ac.SpeedOrDefault())

	bones := make([]string, 0, len(ac.Tracks))
	for bone := range ac.Tracks {
		bones = append(bones, bone)
	}
	sort.Strings(bones)

	for _, bone := range bones {
		for _, kc := range ac.Tracks[bone] {
			sx, sy := kc.Scales()
			anim.AddKeyframe(bone, kc.T, animation.Offset{
				X:        kc.X,
				Y:        kc.Y,
				Rotation: kc.Rotation,
				ScaleX:   sx,
				ScaleY:   sy,
				Hidden:   kc.Hidden,
			})
		}
	}

	if ac.Duration > 0 {
		anim.SetDuration(ac.Duration)
	}
	return anim
}
