package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"path"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// GlobalConfigFile 目录中的全局配置文件名
const GlobalConfigFile = "global.yaml"

// SkeletonConfigManager 骨骼单元配置管理器
// 从一个 fs.FS 目录加载 global.yaml 和所有 <unit>.yaml，按 id 索引
type SkeletonConfigManager struct {
	fsys   fs.FS
	dir    string
	global GlobalConfig
	units  map[string]*UnitConfig // 按 id 索引
	files  map[string]string      // 文件路径 → 单元 id，用于热重载
	mu     sync.RWMutex           // 读写锁（并发安全）
}

// NewSkeletonConfigManager 创建配置管理器
//
// 参数：
//   - fsys: 配置所在文件系统（embed.FS、os.DirFS 或测试用 fstest.MapFS）
//   - dir: 目录路径，如 "data/skeletons"
//
// 返回：
//   - *SkeletonConfigManager: 配置管理器实例
//   - error: 读取、解析、校验失败，或单元 id 重复
func NewSkeletonConfigManager(fsys fs.FS, dir string) (*SkeletonConfigManager, error) {
	m := &SkeletonConfigManager{
		fsys: fsys,
		dir:  dir,
	}
	if err := m.load(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *SkeletonConfigManager) load() error {
	// 1. 加载全局配置
	global, err := loadGlobalConfig(m.fsys, m.dir)
	if err != nil {
		return fmt.Errorf("load global config: %w", err)
	}

	// 2. 扫描目录中的所有 YAML 文件
	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := fs.Glob(m.fsys, path.Join(m.dir, pattern))
		if err != nil {
			return fmt.Errorf("scan %s: %w", m.dir, err)
		}
		files = append(files, matches...)
	}
	sort.Strings(files)

	// 3. 加载所有单元，检查 id 重复
	units := make(map[string]*UnitConfig)
	byFile := make(map[string]string)
	for _, file := range files {
		if path.Base(file) == GlobalConfigFile {
			continue
		}
		unit, err := LoadUnitFile(m.fsys, file)
		if err != nil {
			return fmt.Errorf("load %s: %w", file, err)
		}
		if _, exists := units[unit.ID]; exists {
			return fmt.Errorf("duplicate unit id %q in %s", unit.ID, file)
		}
		units[unit.ID] = unit
		byFile[file] = unit.ID
	}

	m.mu.Lock()
	m.global = global
	m.units = units
	m.files = byFile
	m.mu.Unlock()

	log.Printf("[SkeletonConfigManager] loaded %d units from %s", len(units), m.dir)
	return nil
}

// loadGlobalConfig 加载全局配置；文件不存在时使用默认值
func loadGlobalConfig(fsys fs.FS, dir string) (GlobalConfig, error) {
	var global GlobalConfig

	globalPath := path.Join(dir, GlobalConfigFile)
	data, err := fs.ReadFile(fsys, globalPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// 使用默认配置
	case err != nil:
		return GlobalConfig{}, fmt.Errorf("read %s: %w", globalPath, err)
	default:
		var doc struct {
			Global GlobalConfig `yaml:"global"`
		}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return GlobalConfig{}, fmt.Errorf("parse %s: %w", globalPath, err)
		}
		global = doc.Global
	}

	global.applyDefaults()
	if _, ok := EasingByName(global.Playback.BlendEasing); !ok {
		return GlobalConfig{}, fmt.Errorf("unknown blend_easing %q", global.Playback.BlendEasing)
	}
	return global, nil
}

// LoadUnitFile 读取并解析单个单元文件
func LoadUnitFile(fsys fs.FS, file string) (*UnitConfig, error) {
	data, err := fs.ReadFile(fsys, file)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return ParseUnit(data)
}

// ParseUnit 解析 YAML 单元配置，填充默认值并校验
func ParseUnit(data []byte) (*UnitConfig, error) {
	var unit UnitConfig
	if err := yaml.Unmarshal(data, &unit); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	unit.applyDefaults()
	if err := unit.Validate(); err != nil {
		return nil, err
	}
	if _, ok := EasingByName(unit.BlendEasing); !ok {
		return nil, fmt.Errorf("unit %q: unknown blend_easing %q", unit.ID, unit.BlendEasing)
	}
	return &unit, nil
}

// MarshalUnit 将单元配置序列化为 YAML
func MarshalUnit(unit *UnitConfig) ([]byte, error) {
	data, err := yaml.Marshal(unit)
	if err != nil {
		return nil, fmt.Errorf("marshal unit %q: %w", unit.ID, err)
	}
	return data, nil
}

// Reload 重新加载整个目录。失败时保留旧配置。
func (m *SkeletonConfigManager) Reload() error {
	return m.load()
}

// ReloadFile 重新加载单个文件（热重载）
//
// 返回受影响的单元 id。文件被删除时移除对应单元；
// 修改 global.yaml 时返回空 id。失败时保留旧配置。
func (m *SkeletonConfigManager) ReloadFile(file string) (string, error) {
	if path.Base(file) == GlobalConfigFile {
		global, err := loadGlobalConfig(m.fsys, m.dir)
		if err != nil {
			return "", err
		}
		m.mu.Lock()
		m.global = global
		m.mu.Unlock()
		return "", nil
	}

	unit, err := LoadUnitFile(m.fsys, file)
	if errors.Is(err, fs.ErrNotExist) {
		m.mu.Lock()
		defer m.mu.Unlock()
		id, ok := m.files[file]
		if !ok {
			return "", fmt.Errorf("reload %s: %w", file, err)
		}
		delete(m.units, id)
		delete(m.files, file)
		log.Printf("[SkeletonConfigManager] unit %q removed (%s)", id, file)
		return id, nil
	}
	if err != nil {
		return "", fmt.Errorf("reload %s: %w", file, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for f, id := range m.files {
		if id == unit.ID && f != file {
			return "", fmt.Errorf("reload %s: unit id %q already defined in %s", file, unit.ID, f)
		}
	}
	// 文件改了 id：新单元通过检查后才移除旧单元
	if owner, ok := m.files[file]; ok && owner != unit.ID {
		delete(m.units, owner)
		log.Printf("[SkeletonConfigManager] unit %q renamed to %q (%s)", owner, unit.ID, file)
	}
	m.units[unit.ID] = unit
	m.files[file] = unit.ID
	log.Printf("[SkeletonConfigManager] unit %q reloaded from %s", unit.ID, file)
	return unit.ID, nil
}

// GetUnit 获取单元配置
func (m *SkeletonConfigManager) GetUnit(id string) (*UnitConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	unit, exists := m.units[id]
	if !exists {
		return nil, fmt.Errorf("unit %q: %w", id, ErrUnitNotFound)
	}
	return unit, nil
}

// GetDefaultAnimation 获取默认动画名称
func (m *SkeletonConfigManager) GetDefaultAnimation(id string) (string, error) {
	unit, err := m.GetUnit(id)
	if err != nil {
		return "", err
	}
	if unit.DefaultAnimation == "" {
		return "", fmt.Errorf("unit %q has no default animation", id)
	}
	return unit.DefaultAnimation, nil
}

// GetGlobalConfig 获取全局配置
func (m *SkeletonConfigManager) GetGlobalConfig() GlobalConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.global
}

// ListUnits 列出所有单元 id（已排序）
func (m *SkeletonConfigManager) ListUnits() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.units))
	for id := range m.units {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Dir 返回配置目录
func (m *SkeletonConfigManager) Dir() string {
	return m.dir
}
