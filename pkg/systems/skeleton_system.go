package systems

import (
	"log"

	"github.com/decker502/skelanim/pkg/components"
	"github.com/decker502/skelanim/pkg/config"
	"github.com/decker502/skelanim/pkg/ecs"
)

// SkeletonSystem 骨骼动画系统
//
// 每帧执行三件事：
//  1. 处理 AnimationCommandComponent（播放 / 交叉淡入淡出 / 停止）
//  2. 把 PositionComponent 同步到骨架的世界位置
//  3. 以 dt * TimeScale 推进骨架（暂停的实体跳过）
type SkeletonSystem struct {
	entityManager *ecs.EntityManager
	configManager *config.SkeletonConfigManager

	// 目标 TPS，用于 UpdateFrame 的固定步长
	targetTPS float64
}

// NewSkeletonSystem 创建骨骼动画系统
func NewSkeletonSystem(em *ecs.EntityManager) *SkeletonSystem {
	return &SkeletonSystem{
		entityManager: em,
		targetTPS:     config.DefaultTPS,
	}
}

// SetConfigManager 设置配置管理器，并采用全局配置中的 TPS
func (s *SkeletonSystem) SetConfigManager(cm *config.SkeletonConfigManager) {
	s.configManager = cm
	if cm == nil {
		return
	}
	if tps := cm.GetGlobalConfig().Playback.TPS; tps > 0 {
		s.targetTPS = float64(tps)
	}
}

// SetTargetTPS 设置目标 TPS
func (s *SkeletonSystem) SetTargetTPS(tps float64) {
	if tps <= 0 {
		return
	}
	s.targetTPS = tps
}

// TargetTPS 返回目标 TPS
func (s *SkeletonSystem) TargetTPS() float64 {
	return s.targetTPS
}

// UpdateFrame 以固定步长 1/TPS 推进一帧（ebiten 的 Update 以固定 TPS 调用）
func (s *SkeletonSystem) UpdateFrame() {
	s.Update(1.0 / s.targetTPS)
}

// Update 推进所有骨骼实体 dt 秒
func (s *SkeletonSystem) Update(dt float64) {
	s.processAnimationCommands()

	for _, id := range ecs.GetEntitiesWith1[*components.SkeletonComponent](s.entityManager) {
		comp, _ := ecs.GetComponent[*components.SkeletonComponent](s.entityManager, id)
		if comp.Skeleton == nil {
			continue
		}

		if pos, ok := ecs.GetComponent[*components.PositionComponent](s.entityManager, id); ok {
			comp.Skeleton.SetPosition(pos.X, pos.Y)
		}

		if comp.Paused {
			continue
		}
		comp.Skeleton.Update(dt * comp.EffectiveTimeScale())
	}
}

// processAnimationCommands 处理动画命令组件
//
// 查询所有带有 AnimationCommand 的实体，执行未处理的命令。
// 命令执行后标记为已处理（即使失败也标记，避免无限重试）。
func (s *SkeletonSystem) processAnimationCommands() {
	entities := ecs.GetEntitiesWith1[*components.AnimationCommandComponent](s.entityManager)

	processed := 0
	for _, id := range entities {
		cmd, _ := ecs.GetComponent[*components.AnimationCommandComponent](s.entityManager, id)
		if cmd.Processed {
			continue
		}
		cmd.Processed = true
		processed++

		comp, ok := ecs.GetComponent[*components.SkeletonComponent](s.entityManager, id)
		if !ok || comp.Skeleton == nil {
			log.Printf("[SkeletonSystem] 实体 %d 没有骨架，忽略命令 %q", id, cmd.AnimationName)
			continue
		}
		sk := comp.Skeleton

		if cmd.Kind == components.CommandStop {
			sk.Stop()
			continue
		}

		if _, ok := sk.Animation(cmd.AnimationName); !ok {
			log.Printf("[SkeletonSystem] 实体 %d (%s) 未注册动画 %q，忽略", id, comp.UnitID, cmd.AnimationName)
			continue
		}

		switch cmd.Kind {
		case components.CommandPlay:
			sk.Play(cmd.AnimationName)
		case components.CommandCrossFade:
			if cmd.BlendDuration > 0 {
				sk.TransitionTo(cmd.AnimationName, cmd.BlendDuration)
			} else {
				sk.CrossFade(cmd.AnimationName)
			}
		default:
			log.Printf("[SkeletonSystem] 未知命令类型 %d", cmd.Kind)
		}
	}

	if processed > 0 {
		log.Printf("[SkeletonSystem] 本帧处理了 %d 个动画命令", processed)
	}
}
