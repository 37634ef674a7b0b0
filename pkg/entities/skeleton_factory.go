package entities

import (
	"fmt"
	"log"

	"github.com/decker502/skelanim/pkg/components"
	"github.com/decker502/skelanim/pkg/config"
	"github.com/decker502/skelanim/pkg/ecs"
	"github.com/hajimehoshi/ebiten/v2"
)

// ImageLoader 加载骨骼贴图
type ImageLoader interface {
	LoadImage(path string) (*ebiten.Image, error)
}

// NewSkeletonEntity 创建骨骼动画实体
//
// 参数:
//   - em: 实体管理器
//   - unit: 单元配置
//   - playback: 全局播放配置
//   - x, y: 骨架在屏幕上的位置
//   - images: 贴图加载器，可以为 nil（全部以占位矩形绘制）
//
// 返回:
//   - ecs.EntityID: 创建的实体ID
//   - error: 骨架构建失败时返回错误
func NewSkeletonEntity(em *ecs.EntityManager, unit *config.UnitConfig, playback config.PlaybackConfig,
	x, y float64, images ImageLoader) (ecs.EntityID, error) {
	s, err := BuildSkeleton(unit, playback)
	if err != nil {
		return 0, err
	}
	s.SetPosition(x, y)

	entityID := em.CreateEntity()
	ecs.AddComponent(em, entityID, &components.PositionComponent{X: x, Y: y})
	ecs.AddComponent(em, entityID, &components.SkeletonComponent{
		UnitID:    unit.ID,
		Skeleton:  s,
		TimeScale: 1,
	})
	ecs.AddComponent(em, entityID, &components.SkeletonImagesComponent{
		Images: loadBoneImages(unit, images),
	})

	log.Printf("[SkeletonFactory] 创建骨骼实体: entityID=%d, unit=%s, pos=(%.1f, %.1f)",
		entityID, unit.ID, x, y)
	return entityID, nil
}

// ReplaceSkeleton 用新配置重建实体的骨架（热重载）
// 保留位置、暂停状态、时间缩放，并尽量继续播放原来的动画
func ReplaceSkeleton(em *ecs.EntityManager, id ecs.EntityID, unit *config.UnitConfig,
	playback config.PlaybackConfig, images ImageLoader) error {
	sc, ok := ecs.GetComponent[*components.SkeletonComponent](em, id)
	if !ok {
		return fmt.Errorf("entity %d has no skeleton", id)
	}

	s, err := BuildSkeleton(unit, playback)
	if err != nil {
		return err
	}

	if old := sc.Skeleton; old != nil {
		pos := old.Position()
		s.SetPosition(pos.X, pos.Y)
		s.SetDebugDraw(old.DebugDraw())
		if name, ok := old.CurrentAnimationName(); ok {
			if _, exists := s.Animation(name); exists {
				s.Play(name)
			}
		}
	}

	sc.UnitID = unit.ID
	sc.Skeleton = s
	ecs.AddComponent(em, id, &components.SkeletonImagesComponent{
		Images: loadBoneImages(unit, images),
	})
	return nil
}

// loadBoneImages 加载单元引用的所有贴图，失败的贴图记录日志后跳过
func loadBoneImages(unit *config.UnitConfig, images ImageLoader) map[string]*ebiten.Image {
	out := make(map[string]*ebiten.Image)
	if images == nil {
		return out
	}
	for _, bc := range unit.Bones {
		if bc.Image == "" {
			continue
		}
		if _, loaded := out[bc.Image]; loaded {
			continue
		}
		img, err := images.LoadImage(bc.Image)
		if err != nil {
			log.Printf("[SkeletonFactory] unit %q bone %q: %v (drawing placeholder)", unit.ID, bc.Name, err)
			continue
		}
		out[bc.Image] = img
	}
	return out
}
