package app

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/decker502/skelanim/pkg/components"
	"github.com/decker502/skelanim/pkg/ecs"
	"github.com/decker502/skelanim/pkg/game"
)

const alphaYAML = `
id: alpha
default_animation: idle
bones:
  - name: body
    size: [10, 20]
animations:
  - name: idle
    tracks:
      body: [{t: 0}]
  - name: walk
    duration: 1
    tracks:
      body: [{t: 0}, {t: 1, x: 10}]
`

const betaYAML = `
id: beta
flip_x: true
default_animation: spin
bones:
  - name: wheel
animations:
  - name: spin
    duration: 1
    tracks:
      wheel: [{t: 0}, {t: 1, rotation: 360}]
`

func newTestApp(t *testing.T, unit string) *App {
	t.Helper()
	fsys := fstest.MapFS{
		"data/skeletons/global.yaml": {Data: []byte("global:\n  playback:\n    default_blend_duration: 0.4\n")},
		"data/skeletons/alpha.yaml":  {Data: []byte(alphaYAML)},
		"data/skeletons/beta.yaml":   {Data: []byte(betaYAML)},
	}
	sm, _ := game.NewSettingsManager(nil)
	a, err := newApp(fsys, EmbeddedSkeletonDir, game.NewResourceManager(fsys, EmbeddedImageDir), sm, unit)
	if err != nil {
		t.Fatalf("newApp failed: %v", err)
	}
	return a
}

func TestNewApp_ShowsUnit(t *testing.T) {
	tests := []struct {
		name string
		unit string
		want string
	}{
		{name: "指定单元", unit: "beta", want: "beta"},
		{name: "未指定时显示第一个单元", unit: "", want: "alpha"},
		{name: "未知单元回退到第一个单元", unit: "gamma", want: "alpha"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestApp(t, tt.unit)
			if a.viewer.unitID != tt.want {
				t.Errorf("unit = %q, want %q", a.viewer.unitID, tt.want)
			}
			if a.settings.GetSettings().LastUnit != tt.want {
				t.Errorf("LastUnit = %q, want %q", a.settings.GetSettings().LastUnit, tt.want)
			}
			if a.viewer.skeleton() == nil {
				t.Fatal("no skeleton entity")
			}
		})
	}
}

func TestNewApp_RestoresLastUnit(t *testing.T) {
	fsys := fstest.MapFS{
		"units/alpha.yaml": {Data: []byte(alphaYAML)},
		"units/beta.yaml":  {Data: []byte(betaYAML)},
	}
	sm, _ := game.NewSettingsManager(nil)
	sm.SetLastUnit("beta")

	a, err := newApp(fsys, "units", game.NewResourceManager(fsys, "units"), sm, "")
	if err != nil {
		t.Fatalf("newApp failed: %v", err)
	}
	if a.viewer.unitID != "beta" {
		t.Errorf("unit = %q, want beta", a.viewer.unitID)
	}
}

func TestNewApp_NoUnits(t *testing.T) {
	sm, _ := game.NewSettingsManager(nil)
	fsys := fstest.MapFS{}
	if _, err := newApp(fsys, "data/skeletons", game.NewResourceManager(fsys, ""), sm, ""); err == nil {
		t.Error("expected an error for an empty unit directory")
	}
}

func TestNewApp_EmbeddedNotInitialized(t *testing.T) {
	if _, err := NewApp(Config{Verbose: true}); err == nil {
		t.Error("expected an error before embedded.Init()")
	}
}

func TestNewApp_LoadsImagesFromImageDir(t *testing.T) {
	// Given: 单元配置在 data/，贴图在 assets/
	fsys := fstest.MapFS{
		"data/skeletons/lamp.yaml":        {Data: []byte("id: lamp\nbones:\n  - name: shade\n    image: lamp/shade.png\n  - name: base\n    image: lamp/missing.png\n")},
		"assets/skeletons/lamp/shade.png": {Data: createTestPNG(t, 6, 4)},
	}
	sm, _ := game.NewSettingsManager(nil)

	// When: 创建查看器
	a, err := newApp(fsys, EmbeddedSkeletonDir, game.NewResourceManager(fsys, EmbeddedImageDir), sm, "")
	if err != nil {
		t.Fatalf("newApp failed: %v", err)
	}

	// Then: 存在的贴图被加载，缺失的贴图退回占位矩形
	ic, ok := ecs.GetComponent[*components.SkeletonImagesComponent](a.entityManager, a.viewer.entity)
	if !ok {
		t.Fatal("no images component")
	}
	img := ic.Images["lamp/shade.png"]
	if img == nil {
		t.Fatal("shade.png was not loaded from the image dir")
	}
	if w, h := img.Bounds().Dx(), img.Bounds().Dy(); w != 6 || h != 4 {
		t.Errorf("shade.png size = %dx%d, want 6x4", w, h)
	}
	if _, ok := ic.Images["lamp/missing.png"]; ok {
		t.Error("missing image should not be in the component")
	}
}

// createTestPNG 生成 w x h 的纯色 PNG
func createTestPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 80, B: 60, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestViewer_SwitchUnit(t *testing.T) {
	a := newTestApp(t, "alpha")
	first := a.viewer.entity

	// When: 切换到下一个单元
	a.viewer.switchUnit(1)

	// Then: 旧实体被销毁，新实体显示 beta
	if a.viewer.unitID != "beta" {
		t.Fatalf("unit = %q, want beta", a.viewer.unitID)
	}
	if a.entityManager.Exists(first) {
		t.Error("previous entity should be destroyed")
	}
	if n := len(ecs.GetEntitiesWith1[*components.SkeletonComponent](a.entityManager)); n != 1 {
		t.Errorf("skeleton entities = %d, want 1", n)
	}
	// beta 配置了 flip_x
	if !a.viewer.skeleton().Skeleton.FlipX() {
		t.Error("beta should be flipped by its unit config")
	}

	// 循环回到第一个单元
	a.viewer.switchUnit(1)
	if a.viewer.unitID != "alpha" {
		t.Errorf("unit = %q, want alpha after wrapping", a.viewer.unitID)
	}
	a.viewer.switchUnit(-1)
	if a.viewer.unitID != "beta" {
		t.Errorf("unit = %q, want beta after wrapping back", a.viewer.unitID)
	}
}

func TestViewer_SwitchAnimation(t *testing.T) {
	t.Run("交叉淡入淡出", func(t *testing.T) {
		a := newTestApp(t, "alpha")
		if got := a.viewer.animations; len(got) != 2 || got[0] != "idle" || got[1] != "walk" {
			t.Fatalf("animations = %v", got)
		}

		a.viewer.switchAnimation(1)
		a.skeletonSystem.Update(0.1)

		sk := a.viewer.skeleton().Skeleton
		if next, ok := sk.NextAnimationName(); !ok || next != "walk" {
			t.Errorf("next = %q, want walk", next)
		}
		// 未设置混合时长时使用全局默认值
		if sk.BlendDuration() != 0.4 {
			t.Errorf("blend duration = %v, want 0.4", sk.BlendDuration())
		}
	})

	t.Run("查看器设置的混合时长", func(t *testing.T) {
		a := newTestApp(t, "alpha")
		a.viewer.adjustBlendDuration(blendDurationStep * 2)

		a.viewer.switchAnimation(1)
		a.skeletonSystem.Update(0)

		if d := a.viewer.skeleton().Skeleton.BlendDuration(); d < 0.0999 || d > 0.1001 {
			t.Errorf("blend duration = %v, want 0.1", d)
		}
	})

	t.Run("硬切换", func(t *testing.T) {
		a := newTestApp(t, "alpha")
		a.viewer.hardCut = true

		a.viewer.playIndex(1)
		a.skeletonSystem.Update(0.5)

		sk := a.viewer.skeleton().Skeleton
		if name, _ := sk.CurrentAnimationName(); name != "walk" || sk.IsBlending() {
			t.Errorf("current = %q blending=%v, want walk without blend", name, sk.IsBlending())
		}
	})

	t.Run("停止", func(t *testing.T) {
		a := newTestApp(t, "alpha")
		a.viewer.stop()
		a.skeletonSystem.Update(0)

		if _, ok := a.viewer.skeleton().Skeleton.CurrentAnimationName(); ok {
			t.Error("skeleton should be idle after stop")
		}
	})

	t.Run("越界索引被忽略", func(t *testing.T) {
		a := newTestApp(t, "alpha")
		a.viewer.playIndex(5)
		if ecs.HasComponent[*components.AnimationCommandComponent](a.entityManager, a.viewer.entity) {
			t.Error("no command should be issued for an out-of-range index")
		}
	})
}

func TestViewer_Settings(t *testing.T) {
	a := newTestApp(t, "alpha")
	sc := a.viewer.skeleton()

	a.viewer.toggleDebug()
	if !sc.Skeleton.DebugDraw() || !a.settings.GetSettings().DebugDraw {
		t.Error("debug draw should be on")
	}

	a.viewer.toggleFlip()
	if !sc.Skeleton.FlipX() {
		t.Error("alpha should be flipped")
	}

	a.viewer.adjustTimeScale(timeScaleStep)
	if sc.TimeScale != 1+timeScaleStep {
		t.Errorf("time scale = %v, want %v", sc.TimeScale, 1+timeScaleStep)
	}
	for i := 0; i < 20; i++ {
		a.viewer.adjustTimeScale(-timeScaleStep)
	}
	if sc.TimeScale != game.MinTimeScale {
		t.Errorf("time scale = %v, want clamped %v", sc.TimeScale, game.MinTimeScale)
	}

	a.viewer.togglePause()
	if !sc.Paused {
		t.Error("skeleton should be paused")
	}

	// 设置在切换单元后保留
	a.viewer.switchUnit(1)
	next := a.viewer.skeleton()
	if !next.Skeleton.DebugDraw() || next.TimeScale != game.MinTimeScale {
		t.Errorf("settings not applied to new unit: debug=%v scale=%v", next.Skeleton.DebugDraw(), next.TimeScale)
	}
	// beta 自带 flip_x，再叠加查看器翻转后恢复正向
	if next.Skeleton.FlipX() {
		t.Error("viewer flip should cancel beta's own flip")
	}
}

func TestViewer_HUD(t *testing.T) {
	a := newTestApp(t, "alpha")
	a.viewer.switchAnimation(1)
	a.skeletonSystem.Update(0.2)
	a.viewer.togglePause()

	hud := strings.Join(a.viewer.hudLines(), "\n")
	for _, want := range []string{"unit: alpha (1/2)", "idle -> walk (50%)", "mode: crossfade", "blend: default", "paused"} {
		if !strings.Contains(hud, want) {
			t.Errorf("HUD missing %q:\n%s", want, hud)
		}
	}
}

func TestApp_ReloadFile(t *testing.T) {
	dir := t.TempDir()
	write := func(name, data string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(data), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("alpha.yaml", alphaYAML)
	write("beta.yaml", betaYAML)

	sm, _ := game.NewSettingsManager(nil)
	a, err := newApp(os.DirFS(dir), ".", game.NewResourceManager(os.DirFS(dir), "."), sm, "alpha")
	if err != nil {
		t.Fatalf("newApp failed: %v", err)
	}
	a.watchDir = dir
	entity := a.viewer.entity

	t.Run("修改当前单元时重建骨架", func(t *testing.T) {
		write("alpha.yaml", strings.Replace(alphaYAML, "size: [10, 20]", "size: [30, 40]", 1))
		a.reloadFile(filepath.Join(dir, "alpha.yaml"))

		if a.viewer.entity != entity {
			t.Error("hot reload should keep the entity")
		}
		body, ok := a.viewer.skeleton().Skeleton.Bone("body")
		if !ok || body.DefaultSize().W != 30 {
			t.Errorf("body not rebuilt from the new file")
		}
	})

	t.Run("解析失败时保留旧配置", func(t *testing.T) {
		write("alpha.yaml", "id: [")
		a.reloadFile(filepath.Join(dir, "alpha.yaml"))

		if !strings.HasPrefix(a.viewer.status, "reload failed") {
			t.Errorf("status = %q", a.viewer.status)
		}
		if a.viewer.skeleton() == nil {
			t.Error("skeleton should survive a failed reload")
		}
	})

	t.Run("删除当前单元时切换到其他单元", func(t *testing.T) {
		write("alpha.yaml", alphaYAML)
		a.reloadFile(filepath.Join(dir, "alpha.yaml"))
		if err := os.Remove(filepath.Join(dir, "alpha.yaml")); err != nil {
			t.Fatal(err)
		}
		a.reloadFile(filepath.Join(dir, "alpha.yaml"))

		if a.viewer.unitID != "beta" {
			t.Errorf("unit = %q, want beta", a.viewer.unitID)
		}
	})
}

func TestConfigRelPath(t *testing.T) {
	tests := []struct {
		name      string
		watchDir  string
		configDir string
		osPath    string
		want      string
		wantErr   bool
	}{
		{name: "根目录", watchDir: "/data", configDir: ".", osPath: "/data/alpha.yaml", want: "alpha.yaml"},
		{name: "子目录", watchDir: "/data", configDir: "data/skeletons", osPath: "/data/alpha.yaml", want: "data/skeletons/alpha.yaml"},
		{name: "目录之外", watchDir: "/data", configDir: ".", osPath: "/other/alpha.yaml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := configRelPath(filepath.FromSlash(tt.watchDir), tt.configDir, filepath.FromSlash(tt.osPath))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("configRelPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapIndex(t *testing.T) {
	tests := []struct{ i, n, want int }{
		{0, 3, 0}, {3, 3, 0}, {-1, 3, 2}, {-4, 3, 2}, {5, 0, 0},
	}
	for _, tt := range tests {
		if got := wrapIndex(tt.i, tt.n); got != tt.want {
			t.Errorf("wrapIndex(%d, %d) = %d, want %d", tt.i, tt.n, got, tt.want)
		}
	}
}
