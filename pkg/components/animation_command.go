package components

// AnimationCommandKind 动画命令类型
type AnimationCommandKind int

const (
	// CommandCrossFade 以 BlendDuration 交叉淡入淡出（<=0 时使用骨架默认时长）
	CommandCrossFade AnimationCommandKind = iota
	// CommandPlay 硬切换，重置动画时钟
	CommandPlay
	// CommandStop 停止播放，保留最后的姿势
	CommandStop
)

// AnimationCommandComponent 动画播放命令组件(纯数据)
//
// 设计目的:
//
//	解除系统间的直接耦合,使动画播放请求通过 ECS 组件机制传递
//
// 生命周期:
//  1. 其他系统(如输入处理)添加此组件到实体
//  2. SkeletonSystem 在 Update() 中查询并执行命令
//  3. 执行后标记 Processed = true
//
// 示例:
//
//	ecs.AddComponent(em, id, &components.AnimationCommandComponent{
//	    AnimationName: "walk",
//	    BlendDuration: 0.2,
//	})
//
// 注意事项:
//   - 一个实体同时只应有一个 AnimationCommand(后续命令会覆盖前一个)
//   - 未注册的动画名称会被忽略(骨架保持当前状态)
type AnimationCommandComponent struct {
	// Kind 命令类型，默认为交叉淡入淡出
	Kind AnimationCommandKind

	// AnimationName 目标动画名称（CommandStop 时忽略）
	AnimationName string

	// BlendDuration 混合时长（秒），仅 CommandCrossFade 使用
	BlendDuration float64

	// Processed 是否已被 SkeletonSystem 处理
	Processed bool

	// Timestamp 命令创建时间(游戏时间,单位:秒)，调试用
	Timestamp float64
}
