package config

import (
	"errors"
	"fmt"
)

// ErrUnitNotFound 请求的骨骼单元不存在
var ErrUnitNotFound = errors.New("skeleton unit not found")

// 默认值
const (
	DefaultTPS           = 60
	DefaultBlendDuration = 0.2
	DefaultBlendEasing   = "linear"
)

// GlobalConfig 全局配置（global.yaml）
type GlobalConfig struct {
	Playback PlaybackConfig `yaml:"playback"`
}

// PlaybackConfig 播放配置
type PlaybackConfig struct {
	TPS                  int     `yaml:"tps"`                    // 游戏目标 TPS
	DefaultBlendDuration float64 `yaml:"default_blend_duration"` // 交叉淡入淡出默认时长（秒）
	BlendEasing          string  `yaml:"blend_easing"`           // 混合权重曲线名称，见 EasingByName
}

// UnitConfig 一个骨骼单元（骨骼层级 + 动画），对应一个 <unit>.yaml 文件
type UnitConfig struct {
	ID               string            `yaml:"id"`
	Name             string            `yaml:"name"`
	Scale            float64           `yaml:"scale,omitempty"` // 整体缩放，默认 1.0
	FlipX            bool              `yaml:"flip_x,omitempty"`
	DefaultAnimation string            `yaml:"default_animation,omitempty"`
	BlendEasing      string            `yaml:"blend_easing,omitempty"` // 可选：覆盖全局混合曲线
	Bones            []BoneConfig      `yaml:"bones"`
	Animations       []AnimationConfig `yaml:"animations"`
}

// BoneConfig 骨骼定义
// 父骨骼必须在子骨骼之前声明；parent 为空表示挂在隐式根骨骼下
type BoneConfig struct {
	Name     string    `yaml:"name"`
	Parent   string    `yaml:"parent,omitempty"`
	X        float64   `yaml:"x"`
	Y        float64   `yaml:"y"`
	Rotation float64   `yaml:"rotation,omitempty"` // 角度
	ScaleX   float64   `yaml:"scale_x,omitempty"`  // 0 视为 1
	ScaleY   float64   `yaml:"scale_y,omitempty"`  // 0 视为 1
	Pivot    []float64 `yaml:"pivot,omitempty"`    // [px, py]，默认 [0.5, 0.5]
	ZOrder   int       `yaml:"z_order"`
	Size     []float64 `yaml:"size,omitempty"`    // [w, h]，无贴图时的占位矩形
	Visible  *bool     `yaml:"visible,omitempty"` // nil=默认 true
	Image    string    `yaml:"image,omitempty"`
}

// AnimationConfig 动画定义
type AnimationConfig struct {
	Name     string                      `yaml:"name"`
	Duration float64                     `yaml:"duration,omitempty"` // 0 表示取最后一个关键帧时间
	Loop     *bool                       `yaml:"loop,omitempty"`     // nil=默认 true
	Speed    float64                     `yaml:"speed,omitempty"`    // 0 视为 1
	Tracks   map[string][]KeyframeConfig `yaml:"tracks"`
}

// KeyframeConfig 偏移关键帧：x/y/rotation 是相对静止姿势的偏移，sx/sy 是绝对缩放
type KeyframeConfig struct {
	T        float64  `yaml:"t"`
	X        float64  `yaml:"x,omitempty"`
	Y        float64  `yaml:"y,omitempty"`
	Rotation float64  `yaml:"rotation,omitempty"`
	ScaleX   *float64 `yaml:"sx,omitempty"`     // nil=1
	ScaleY   *float64 `yaml:"sy,omitempty"`     // nil=1
	Hidden   bool     `yaml:"hidden,omitempty"` // 从该关键帧起隐藏骨骼，直到下一个关键帧
}

// IsVisible 返回骨骼是否可见（默认 true）
func (b BoneConfig) IsVisible() bool {
	return b.Visible == nil || *b.Visible
}

// PivotXY 返回归一化锚点，未配置时为中心
func (b BoneConfig) PivotXY() (float64, float64) {
	if len(b.Pivot) == 2 {
		return b.Pivot[0], b.Pivot[1]
	}
	return 0.5, 0.5
}

// SizeWH 返回占位矩形尺寸
func (b BoneConfig) SizeWH() (float64, float64) {
	if len(b.Size) == 2 {
		return b.Size[0], b.Size[1]
	}
	return 0, 0
}

// IsLoop 返回动画是否循环（默认 true）
func (a AnimationConfig) IsLoop() bool {
	return a.Loop == nil || *a.Loop
}

// SpeedOrDefault 返回播放速度倍率
func (a AnimationConfig) SpeedOrDefault() float64 {
	if a.Speed <= 0 {
		return 1
	}
	return a.Speed
}

// Scales 返回关键帧的绝对缩放
func (k KeyframeConfig) Scales() (float64, float64) {
	sx, sy := 1.0, 1.0
	if k.ScaleX != nil {
		sx = *k.ScaleX
	}
	if k.ScaleY != nil {
		sy = *k.ScaleY
	}
	return sx, sy
}

// applyDefaults 填充默认值
func (u *UnitConfig) applyDefaults() {
	if u.Scale == 0 {
		u.Scale = 1.0
	}
}

// applyDefaults 填充默认值
func (g *GlobalConfig) applyDefaults() {
	if g.Playback.TPS <= 0 {
		g.Playback.TPS = DefaultTPS
	}
	if g.Playback.DefaultBlendDuration <= 0 {
		g.Playback.DefaultBlendDuration = DefaultBlendDuration
	}
	if g.Playback.BlendEasing == "" {
		g.Playback.BlendEasing = DefaultBlendEasing
	}
}

// Validate 检查单元配置的结构性错误
//
// 重复骨骼名、未声明的父骨骼在这里就报错；
// 动画轨道引用不存在的骨骼不是错误（运行时跳过）。
func (u *UnitConfig) Validate() error {
	if u.ID == "" {
		return fmt.Errorf("unit %q: missing 'id'", u.Name)
	}
	if len(u.Bones) == 0 {
		return fmt.Errorf("unit %q: no bones", u.ID)
	}

	seen := make(map[string]bool, len(u.Bones))
	for i, b := range u.Bones {
		if b.Name == "" {
			return fmt.Errorf("unit %q: bone #%d has no name", u.ID, i)
		}
		if seen[b.Name] {
			return fmt.Errorf("unit %q: duplicate bone %q", u.ID, b.Name)
		}
		if b.Parent != "" && !seen[b.Parent] {
			return fmt.Errorf("unit %q: bone %q references undeclared parent %q", u.ID, b.Name, b.Parent)
		}
		if len(b.Pivot) != 0 && len(b.Pivot) != 2 {
			return fmt.Errorf("unit %q: bone %q pivot must be [px, py]", u.ID, b.Name)
		}
		if len(b.Size) != 0 && len(b.Size) != 2 {
			return fmt.Errorf("unit %q: bone %q size must be [w, h]", u.ID, b.Name)
		}
		seen[b.Name] = true
	}

	anims := make(map[string]bool, len(u.Animations))
	for i, a := range u.Animations {
		if a.Name == "" {
			return fmt.Errorf("unit %q: animation #%d has no name", u.ID, i)
		}
		if anims[a.Name] {
			return fmt.Errorf("unit %q: duplicate animation %q", u.ID, a.Name)
		}
		anims[a.Name] = true
	}
	if u.DefaultAnimation != "" && !anims[u.DefaultAnimation] {
		return fmt.Errorf("unit %q: default animation %q not defined", u.ID, u.DefaultAnimation)
	}
	return nil
}

// Animation 按名称查找动画配置
func (u *UnitConfig) Animation(name string) (*AnimationConfig, bool) {
	for i := range u.Animations {
		if u.Animations[i].Name == name {
			return &u.Animations[i], true
		}
	}
	return nil, false
}
