package game

import (
	"fmt"
	"log"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// 时间缩放的取值范围
const (
	MinTimeScale = 0.1
	MaxTimeScale = 4.0
)

// ViewerSettings 查看器设置
// 记录上次退出时的查看状态，下次启动时恢复
type ViewerSettings struct {
	// 播放设置
	BlendDuration float64 `yaml:"blendDuration"` // 交叉淡入淡出时长（秒），0 表示使用配置默认值
	TimeScale     float64 `yaml:"timeScale"`     // 时间缩放 MinTimeScale ~ MaxTimeScale

	// 显示设置
	DebugDraw bool `yaml:"debugDraw"` // 是否绘制骨骼连线和枢轴点
	FlipX     bool `yaml:"flipX"`     // 是否水平翻转

	// 上次查看的单元 ID
	LastUnit string `yaml:"lastUnit"`
}

// DefaultSettings 返回默认设置
func DefaultSettings() *ViewerSettings {
	return &ViewerSettings{
		BlendDuration: 0,
		TimeScale:     1.0,
		DebugDraw:     false,
		FlipX:         false,
	}
}

// SettingsManager 设置管理器
// 负责查看器设置的加载、保存和内存管理
type SettingsManager struct {
	gdataManager *gdata.Manager  // gdata 跨平台存储管理器，可为 nil（降级模式）
	settings     *ViewerSettings // 当前设置
}

// 存储路径常量
const (
	settingsObject   = "settings"
	settingsProperty = "viewer"
)

// NewSettingsManager 创建新的设置管理器实例
//
// 参数：
//   - gdataManager: gdata 跨平台存储管理器，可为 nil（降级模式，仅内存设置）
//
// 返回：
//   - *SettingsManager: 设置管理器实例
//   - error: 保留以便将来扩展，加载失败不会返回错误
func NewSettingsManager(gdataManager *gdata.Manager) (*SettingsManager, error) {
	sm := &SettingsManager{
		gdataManager: gdataManager,
		settings:     DefaultSettings(),
	}

	// 尝试加载已保存的设置
	if err := sm.Load(); err != nil {
		// 加载失败不是致命错误，使用默认设置
		log.Printf("[SettingsManager] Warning: Failed to load settings: %v (using defaults)", err)
	}

	return sm, nil
}

// OpenSettingsManager 打开 appName 对应的 gdata 存储并创建设置管理器
// gdata 初始化失败时退化为仅内存设置
func OpenSettingsManager(appName string) *SettingsManager {
	gm, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		log.Printf("[SettingsManager] Warning: gdata unavailable: %v (settings will not persist)", err)
		gm = nil
	}
	sm, _ := NewSettingsManager(gm)
	return sm
}

// Load 从 gdata 加载设置
//
// 如果 gdataManager 为 nil 或文件不存在，使用默认设置
//
// 返回：
//   - error: 如果反序列化失败返回错误
func (sm *SettingsManager) Load() error {
	// 降级模式：无法持久化，使用默认设置
	if sm.gdataManager == nil {
		sm.settings = DefaultSettings()
		return nil
	}

	if !sm.gdataManager.ObjectPropExists(settingsObject, settingsProperty) {
		sm.settings = DefaultSettings()
		return nil
	}

	data, err := sm.gdataManager.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to load settings: %w", err)
	}

	// 从默认值开始解码，旧版本缺少的字段保持默认
	loaded := DefaultSettings()
	if err := yaml.Unmarshal(data, loaded); err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	loaded.TimeScale = clampTimeScale(loaded.TimeScale)
	if loaded.BlendDuration < 0 {
		loaded.BlendDuration = 0
	}

	sm.settings = loaded
	log.Printf("[SettingsManager] Settings loaded successfully")
	return nil
}

// Save 保存设置到 gdata
//
// 如果 gdataManager 为 nil，返回 nil（降级模式，不报错）
func (sm *SettingsManager) Save() error {
	if sm.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(sm.settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := sm.gdataManager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	log.Printf("[SettingsManager] Settings saved successfully")
	return nil
}

// GetSettings 获取当前设置
func (sm *SettingsManager) GetSettings() *ViewerSettings {
	return sm.settings
}

// SetBlendDuration 设置交叉淡入淡出时长，负数视为 0
// 注意：仅修改内存中的设置，需调用 Save() 方法持久化
func (sm *SettingsManager) SetBlendDuration(seconds float64) {
	if seconds < 0 {
		seconds = 0
	}
	sm.settings.BlendDuration = seconds
}

// SetTimeScale 设置时间缩放，限制在 MinTimeScale ~ MaxTimeScale
func (sm *SettingsManager) SetTimeScale(scale float64) {
	sm.settings.TimeScale = clampTimeScale(scale)
}

// SetDebugDraw 设置调试绘制开关
func (sm *SettingsManager) SetDebugDraw(enabled bool) {
	sm.settings.DebugDraw = enabled
}

// SetFlipX 设置水平翻转
func (sm *SettingsManager) SetFlipX(flip bool) {
	sm.settings.FlipX = flip
}

// SetLastUnit 记录当前查看的单元
func (sm *SettingsManager) SetLastUnit(unitID string) {
	sm.settings.LastUnit = unitID
}

func clampTimeScale(scale float64) float64 {
	if scale < MinTimeScale {
		return MinTimeScale
	}
	if scale > MaxTimeScale {
		return MaxTimeScale
	}
	return scale
}
