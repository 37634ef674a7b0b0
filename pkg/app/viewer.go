package app

import (
	"fmt"
	"log"
	"strings"

	"github.com/decker502/skelanim/pkg/components"
	"github.com/decker502/skelanim/pkg/ecs"
	"github.com/decker502/skelanim/pkg/entities"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// 骨架放置位置：水平居中，脚底在地面线上
const (
	groundY = ScreenHeight * 0.75
	originX = ScreenWidth / 2
)

// 调整步长
const (
	timeScaleStep     = 0.25
	blendDurationStep = 0.05
	maxBlendDuration  = 2.0
)

const helpText = `Left/Right  switch unit
Up/Down     switch animation
1-9         jump to animation
C           crossfade / hard cut
[ ]         blend duration
- =         time scale
Space       pause
S           stop
F           flip
D           debug draw
R           reload all
H           hide help`

// viewer 保存查看器的交互状态，所有操作都通过 ECS 组件驱动骨架
type viewer struct {
	app *App

	unitID string
	entity ecs.EntityID
	// animations 当前单元的动画名称（已排序）
	animations []string
	animIndex  int

	// hardCut 为 true 时切换动画使用 Play，否则交叉淡入淡出
	hardCut  bool
	showHelp bool

	status string
}

func newViewer(a *App) *viewer {
	return &viewer{app: a, showHelp: true}
}

// showUnit 切换到 unitID；unitID 不存在时显示第一个单元
func (v *viewer) showUnit(unitID string) error {
	cm := v.app.configManager
	units := cm.ListUnits()
	if len(units) == 0 {
		return fmt.Errorf("no units loaded")
	}
	unit, err := cm.GetUnit(unitID)
	if err != nil {
		if unitID != "" {
			log.Printf("[Viewer] %v, showing %s", err, units[0])
		}
		if unit, err = cm.GetUnit(units[0]); err != nil {
			return err
		}
	}

	em := v.app.entityManager
	if v.entity != 0 {
		em.DestroyEntity(v.entity)
		em.RemoveMarkedEntities()
		v.entity = 0
	}

	id, err := entities.NewSkeletonEntity(em, unit, cm.GetGlobalConfig().Playback, originX, groundY, v.app.resources)
	if err != nil {
		return fmt.Errorf("创建骨骼实体失败: %w", err)
	}
	v.entity = id
	v.unitID = unit.ID
	v.applySettings()
	v.refreshAnimations()

	v.app.settings.SetLastUnit(unit.ID)
	v.status = fmt.Sprintf("loaded %s", unit.ID)
	return nil
}

// switchUnit 按 ListUnits 的顺序切换到相邻单元
func (v *viewer) switchUnit(delta int) {
	units := v.app.configManager.ListUnits()
	if len(units) == 0 {
		return
	}
	i := indexOf(units, v.unitID)
	next := units[wrapIndex(i+delta, len(units))]
	if err := v.showUnit(next); err != nil {
		v.status = err.Error()
	}
}

// refreshAnimations 重新读取动画列表，并把 animIndex 指向当前动画
func (v *viewer) refreshAnimations() {
	sc := v.skeleton()
	if sc == nil {
		v.animations = nil
		return
	}
	v.animations = sc.Skeleton.AnimationNames()
	v.animIndex = 0
	if name, ok := sc.Skeleton.CurrentAnimationName(); ok {
		v.animIndex = max(indexOf(v.animations, name), 0)
	}
}

// switchAnimation 切换到相邻动画
func (v *viewer) switchAnimation(delta int) {
	if len(v.animations) == 0 {
		return
	}
	v.playIndex(wrapIndex(v.animIndex+delta, len(v.animations)))
}

// playIndex 通过 AnimationCommand 播放第 i 个动画
func (v *viewer) playIndex(i int) {
	if i < 0 || i >= len(v.animations) {
		return
	}
	v.animIndex = i
	cmd := &components.AnimationCommandComponent{
		Kind:          components.CommandCrossFade,
		AnimationName: v.animations[i],
		BlendDuration: v.app.settings.GetSettings().BlendDuration,
	}
	if v.hardCut {
		cmd.Kind = components.CommandPlay
	}
	ecs.AddComponent(v.app.entityManager, v.entity, cmd)
}

// stop 停止播放，保留当前姿势
func (v *viewer) stop() {
	ecs.AddComponent(v.app.entityManager, v.entity, &components.AnimationCommandComponent{
		Kind: components.CommandStop,
	})
}

func (v *viewer) togglePause() {
	if sc := v.skeleton(); sc != nil {
		sc.Paused = !sc.Paused
	}
}

func (v *viewer) toggleDebug() {
	s := v.app.settings
	s.SetDebugDraw(!s.GetSettings().DebugDraw)
	v.applySettings()
}

func (v *viewer) toggleFlip() {
	s := v.app.settings
	s.SetFlipX(!s.GetSettings().FlipX)
	v.applySettings()
}

func (v *viewer) adjustTimeScale(delta float64) {
	s := v.app.settings
	s.SetTimeScale(s.GetSettings().TimeScale + delta)
	v.applySettings()
}

func (v *viewer) adjustBlendDuration(delta float64) {
	s := v.app.settings
	s.SetBlendDuration(min(s.GetSettings().BlendDuration+delta, maxBlendDuration))
}

// applySettings 把查看器设置写到当前实体
func (v *viewer) applySettings() {
	sc := v.skeleton()
	if sc == nil {
		return
	}
	st := v.app.settings.GetSettings()
	sc.TimeScale = st.TimeScale
	sc.Skeleton.SetDebugDraw(st.DebugDraw)

	unitFlip := false
	if unit, err := v.app.configManager.GetUnit(v.unitID); err == nil {
		unitFlip = unit.FlipX
	}
	sc.Skeleton.SetFlipX(unitFlip != st.FlipX)
}

// reloadUnit 用配置管理器中的最新配置重建当前骨架
func (v *viewer) reloadUnit() error {
	cm := v.app.configManager
	unit, err := cm.GetUnit(v.unitID)
	if err != nil {
		// 当前单元已被删除
		return v.showUnit("")
	}
	if err := entities.ReplaceSkeleton(v.app.entityManager, v.entity, unit, cm.GetGlobalConfig().Playback, v.app.resources); err != nil {
		return err
	}
	v.applySettings()
	v.refreshAnimations()
	return nil
}

func (v *viewer) skeleton() *components.SkeletonComponent {
	sc, ok := ecs.GetComponent[*components.SkeletonComponent](v.app.entityManager, v.entity)
	if !ok || sc.Skeleton == nil {
		return nil
	}
	return sc
}

var digitKeys = []ebiten.Key{
	ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4, ebiten.Key5,
	ebiten.Key6, ebiten.Key7, ebiten.Key8, ebiten.Key9,
}

// handleInput 处理键盘输入
func (v *viewer) handleInput() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyRight):
		v.switchUnit(1)
	case inpututil.IsKeyJustPressed(ebiten.KeyLeft):
		v.switchUnit(-1)
	case inpututil.IsKeyJustPressed(ebiten.KeyDown):
		v.switchAnimation(1)
	case inpututil.IsKeyJustPressed(ebiten.KeyUp):
		v.switchAnimation(-1)
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		v.hardCut = !v.hardCut
	case inpututil.IsKeyJustPressed(ebiten.KeyBracketLeft):
		v.adjustBlendDuration(-blendDurationStep)
	case inpututil.IsKeyJustPressed(ebiten.KeyBracketRight):
		v.adjustBlendDuration(blendDurationStep)
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus):
		v.adjustTimeScale(-timeScaleStep)
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual):
		v.adjustTimeScale(timeScaleStep)
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		v.togglePause()
	case inpututil.IsKeyJustPressed(ebiten.KeyS):
		v.stop()
	case inpututil.IsKeyJustPressed(ebiten.KeyF):
		v.toggleFlip()
	case inpututil.IsKeyJustPressed(ebiten.KeyD):
		v.toggleDebug()
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		v.app.reloadAll()
	case inpututil.IsKeyJustPressed(ebiten.KeyH):
		v.showHelp = !v.showHelp
	}

	for i, key := range digitKeys {
		if inpututil.IsKeyJustPressed(key) {
			v.playIndex(i)
		}
	}
}

// hudLines 返回状态栏文本
func (v *viewer) hudLines() []string {
	sc := v.skeleton()
	if sc == nil {
		return []string{"no skeleton"}
	}
	sk := sc.Skeleton
	st := v.app.settings.GetSettings()

	units := v.app.configManager.ListUnits()
	lines := []string{
		fmt.Sprintf("unit: %s (%d/%d)", v.unitID, indexOf(units, v.unitID)+1, len(units)),
	}

	anim := "-"
	if name, ok := sk.CurrentAnimationName(); ok {
		anim = name
	}
	if next, ok := sk.NextAnimationName(); ok {
		anim = fmt.Sprintf("%s -> %s (%.0f%%)", anim, next, sk.BlendProgress()*100)
	}
	if sk.IsFinished() {
		anim += " [finished]"
	}
	lines = append(lines, "animation: "+anim)

	mode := "crossfade"
	if v.hardCut {
		mode = "hard cut"
	}
	blend := "default"
	if st.BlendDuration > 0 {
		blend = fmt.Sprintf("%.2fs", st.BlendDuration)
	}
	lines = append(lines, fmt.Sprintf("mode: %s  blend: %s  speed: %.2fx", mode, blend, sc.EffectiveTimeScale()))

	var flags []string
	if sc.Paused {
		flags = append(flags, "paused")
	}
	if sk.FlipX() {
		flags = append(flags, "flipped")
	}
	if sk.DebugDraw() {
		flags = append(flags, "debug")
	}
	if len(flags) > 0 {
		lines = append(lines, strings.Join(flags, " "))
	}
	if v.status != "" {
		lines = append(lines, v.status)
	}
	return lines
}

func (v *viewer) drawHUD(screen *ebiten.Image) {
	ebitenutil.DebugPrintAt(screen, strings.Join(v.hudLines(), "\n"), 10, 10)
	if v.showHelp {
		ebitenutil.DebugPrintAt(screen, helpText, ScreenWidth-220, 10)
	}
}

// wrapIndex 把 i 折回 [0, n)
func wrapIndex(i, n int) int {
	if n <= 0 {
		return 0
	}
	return ((i % n) + n) % n
}

func indexOf(list []string, s string) int {
	for i, item := range list {
		if item == s {
			return i
		}
	}
	return -1
}
