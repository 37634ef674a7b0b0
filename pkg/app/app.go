// Package app 提供骨骼动画查看器的核心包装器
//
// 该包把配置加载、ECS 系统和键盘控制组装成一个 ebiten.Game。
// 桌面端通过 main.go 调用 NewApp()。
package app

import (
	"fmt"
	"image/color"
	"io"
	"io/fs"
	"log"
	"os"

	"github.com/decker502/skelanim/pkg/config"
	"github.com/decker502/skelanim/pkg/ecs"
	"github.com/decker502/skelanim/pkg/embedded"
	"github.com/decker502/skelanim/pkg/game"
	"github.com/decker502/skelanim/pkg/systems"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// 逻辑屏幕尺寸
const (
	ScreenWidth  = 800
	ScreenHeight = 600
)

// 嵌入资源中的目录
const (
	// EmbeddedSkeletonDir 单元配置
	EmbeddedSkeletonDir = "data/skeletons"
	// EmbeddedImageDir 骨骼贴图，单元中的 image 相对于此目录
	EmbeddedImageDir = "assets/skeletons"
)

// settingsAppName gdata 存储使用的应用名
const settingsAppName = "skelanim"

var (
	backgroundColor = color.RGBA{R: 0x22, G: 0x26, B: 0x2e, A: 0xff}
	groundColor     = color.RGBA{R: 0x55, G: 0x5b, B: 0x66, A: 0xff}
)

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// DataDir 单元配置目录（磁盘路径），为空时使用嵌入资源；
	// 使用磁盘目录时启用热重载
	DataDir string
	// Unit 启动时显示的单元 id，为空时恢复上次查看的单元
	Unit string
}

// App 是查看器的核心包装器，实现 ebiten.Game 接口
type App struct {
	entityManager  *ecs.EntityManager
	configManager  *config.SkeletonConfigManager
	resources      *game.ResourceManager
	settings       *game.SettingsManager
	skeletonSystem *systems.SkeletonSystem
	renderSystem   *systems.SkeletonRenderSystem

	// 热重载，仅在使用磁盘目录时启用
	watcher  *config.Watcher
	watchDir string

	viewer *viewer

	pendingWindowSizeReset   bool // 延迟设置窗口大小标志
	windowSizeResetCountdown int  // 延迟帧数
}

// NewApp 创建并初始化查看器
//
// 使用嵌入资源时，调用此函数前必须先调用 embedded.Init()。
func NewApp(cfg Config) (*App, error) {
	// 配置日志输出
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	var (
		fsys   fs.FS
		dir    string
		images *game.ResourceManager
	)
	if cfg.DataDir != "" {
		if _, err := os.Stat(cfg.DataDir); err != nil {
			return nil, fmt.Errorf("数据目录不可用: %w", err)
		}
		// 磁盘目录中贴图与单元文件放在一起
		fsys, dir = os.DirFS(cfg.DataDir), "."
		images = game.NewResourceManager(fsys, dir)
	} else {
		if !embedded.IsInitialized() {
			return nil, fmt.Errorf("嵌入资源未初始化，请先调用 embedded.Init()")
		}
		fsys, dir = embedded.FS(), EmbeddedSkeletonDir
		images = game.NewResourceManager(fsys, EmbeddedImageDir)
	}

	a, err := newApp(fsys, dir, images, game.OpenSettingsManager(settingsAppName), cfg.Unit)
	if err != nil {
		return nil, err
	}

	if cfg.DataDir != "" {
		w, err := config.NewWatcher(cfg.DataDir)
		if err != nil {
			// 热重载不可用不影响查看
			log.Printf("[App] Hot reload disabled: %v", err)
		} else {
			a.watcher = w
			a.watchDir = cfg.DataDir
			log.Printf("[App] Watching %s for changes", cfg.DataDir)
		}
	}
	return a, nil
}

// newApp 从 fsys 的 dir 目录加载单元并创建第一个骨骼实体，贴图由 images 加载
func newApp(fsys fs.FS, dir string, images *game.ResourceManager, settings *game.SettingsManager, unit string) (*App, error) {
	cm, err := config.NewSkeletonConfigManager(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("单元配置加载失败: %w", err)
	}
	units := cm.ListUnits()
	if len(units) == 0 {
		return nil, fmt.Errorf("目录 %s 中没有单元配置", dir)
	}
	log.Printf("[Config] 成功加载 %d 个骨骼单元: %v", len(units), units)

	em := ecs.NewEntityManager()
	skeletonSystem := systems.NewSkeletonSystem(em)
	skeletonSystem.SetConfigManager(cm)
	ebiten.SetTPS(int(skeletonSystem.TargetTPS()))

	a := &App{
		entityManager:  em,
		configManager:  cm,
		resources:      images,
		settings:       settings,
		skeletonSystem: skeletonSystem,
		renderSystem:   systems.NewSkeletonRenderSystem(em),
	}
	a.viewer = newViewer(a)

	if unit == "" {
		unit = settings.GetSettings().LastUnit
	}
	if err := a.viewer.showUnit(unit); err != nil {
		return nil, err
	}
	return a, nil
}

// Update 更新查看器逻辑
// 每个 tick 调用一次（默认每秒 60 次）
func (a *App) Update() error {
	// 延迟设置窗口大小（退出全屏后需要等待几帧才能正确设置）
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(ScreenWidth, ScreenHeight)
			a.pendingWindowSizeReset = false
		}
	}

	// F11 切换全屏
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		if ebiten.IsFullscreen() {
			ebiten.SetFullscreen(false)
			if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
				ebiten.RestoreWindow()
			}
			a.pendingWindowSizeReset = true
			a.windowSizeResetCountdown = 3
		} else {
			ebiten.SetFullscreen(true)
		}
	}

	a.pollReload()
	a.viewer.handleInput()
	a.skeletonSystem.UpdateFrame()
	return nil
}

// Draw 绘制画面
func (a *App) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)
	vector.StrokeLine(screen, 0, float32(groundY), ScreenWidth, float32(groundY), 1, groundColor, false)
	a.renderSystem.Draw(screen)
	a.viewer.drawHUD(screen)
}

// DrawFinalScreen 实现 FinalScreenDrawer 接口
// 用于控制全屏时的缩放和 letterbox 颜色
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 返回逻辑屏幕尺寸
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ScreenWidth, ScreenHeight
}

// Close 保存设置并停止热重载监听
func (a *App) Close() error {
	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			log.Printf("[App] Failed to close watcher: %v", err)
		}
	}
	return a.settings.Save()
}
