package components

import (
	"github.com/decker502/skelanim/pkg/skeleton"
	"github.com/hajimehoshi/ebiten/v2"
)

// SkeletonComponent 骨骼动画组件
//
// Skeleton 持有骨骼层级、静止姿势、动画注册表和播放状态；
// SkeletonSystem 每帧推进它，SkeletonRenderSystem 读取它的姿势进行绘制。
type SkeletonComponent struct {
	// UnitID 配置中的单元 ID（如 "humanoid"），热重载时用于重建骨架
	UnitID string

	Skeleton *skeleton.Skeleton

	// Paused 为 true 时不推进动画，但仍然渲染当前姿势
	Paused bool

	// TimeScale 时间缩放（1.0 = 正常速度，0 视为 1.0）
	TimeScale float64

	// Hidden 为 true 时不渲染
	Hidden bool
}

// EffectiveTimeScale 返回实际使用的时间缩放
func (c *SkeletonComponent) EffectiveTimeScale() float64 {
	if c.TimeScale <= 0 {
		return 1
	}
	return c.TimeScale
}

// SkeletonImagesComponent 骨骼贴图
//
// Images 以骨骼的 image 字段为键；没有贴图的骨骼以占位矩形绘制。
type SkeletonImagesComponent struct {
	Images map[string]*ebiten.Image
}
