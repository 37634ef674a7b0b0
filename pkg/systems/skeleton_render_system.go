package systems

import (
	"image/color"

	"github.com/decker502/skelanim/pkg/components"
	"github.com/decker502/skelanim/pkg/ecs"
	"github.com/decker502/skelanim/pkg/skeleton"
	"github.com/decker502/skelanim/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var (
	// placeholderColor 没有贴图的骨骼以该颜色的矩形绘制
	placeholderColor = color.RGBA{R: 0x6c, G: 0x9e, B: 0xd8, A: 0xc0}
	debugLinkColor   = color.RGBA{R: 0xff, G: 0xd0, B: 0x40, A: 0xff}
	debugPivotColor  = color.RGBA{R: 0xff, G: 0x40, B: 0x40, A: 0xff}
)

const debugPivotSize = 4

// SkeletonRenderSystem 骨骼渲染系统
//
// 读取 SkeletonComponent 的姿势（已按 z-order 排序的可见骨骼），
// 每根骨骼绘制其贴图；没有贴图时以 DefaultSize 的占位矩形代替。
// 骨架开启 DebugDraw 时额外绘制父子连线和枢轴点。
type SkeletonRenderSystem struct {
	entityManager *ecs.EntityManager

	// 1x1 白色图片，缩放后作为占位矩形
	pixel *ebiten.Image
}

// NewSkeletonRenderSystem 创建骨骼渲染系统
func NewSkeletonRenderSystem(em *ecs.EntityManager) *SkeletonRenderSystem {
	pixel := ebiten.NewImage(1, 1)
	pixel.Fill(color.White)
	return &SkeletonRenderSystem{
		entityManager: em,
		pixel:         pixel,
	}
}

// Draw 按实体 ID 顺序绘制所有骨骼实体
func (s *SkeletonRenderSystem) Draw(screen *ebiten.Image) {
	for _, id := range ecs.GetEntitiesWith1[*components.SkeletonComponent](s.entityManager) {
		s.DrawEntity(screen, id)
	}
}

// DrawEntity 绘制单个骨骼实体
func (s *SkeletonRenderSystem) DrawEntity(screen *ebiten.Image, id ecs.EntityID) {
	comp, ok := ecs.GetComponent[*components.SkeletonComponent](s.entityManager, id)
	if !ok || comp.Hidden || comp.Skeleton == nil {
		return
	}

	var images map[string]*ebiten.Image
	if ic, ok := ecs.GetComponent[*components.SkeletonImagesComponent](s.entityManager, id); ok {
		images = ic.Images
	}

	for _, bp := range comp.Skeleton.Pose() {
		var img *ebiten.Image
		if bp.Image != "" {
			img = images[bp.Image]
		}
		s.drawBone(screen, bp, img)
	}

	if comp.Skeleton.DebugDraw() {
		s.drawDebug(screen, comp.Skeleton)
	}
}

func (s *SkeletonRenderSystem) drawBone(screen *ebiten.Image, bp skeleton.BonePose, img *ebiten.Image) {
	op := &ebiten.DrawImageOptions{}
	op.Filter = ebiten.FilterLinear

	if img != nil {
		b := img.Bounds()
		op.GeoM = boneGeoM(bp, float64(b.Dx()), float64(b.Dy()))
		screen.DrawImage(img, op)
		return
	}

	if bp.DefaultSize.W <= 0 || bp.DefaultSize.H <= 0 {
		return
	}
	// 先把 1x1 像素放大到 DefaultSize，再套用骨骼变换
	op.GeoM.Scale(bp.DefaultSize.W, bp.DefaultSize.H)
	op.GeoM.Concat(boneGeoM(bp, bp.DefaultSize.W, bp.DefaultSize.H))
	op.ColorScale.ScaleWithColor(placeholderColor)
	screen.DrawImage(s.pixel, op)
}

// boneGeoM 返回把 w x h 的图片放到骨骼世界姿势上的变换：
// 以枢轴点为原点缩放、旋转，再平移到骨骼的世界位置。
func boneGeoM(bp skeleton.BonePose, w, h float64) ebiten.GeoM {
	var m ebiten.GeoM
	m.Translate(-bp.Pivot.X*w, -bp.Pivot.Y*h)
	m.Scale(bp.Scale.X, bp.Scale.Y)
	m.Rotate(utils.DegToRad(bp.Rotation))
	m.Translate(bp.Position.X, bp.Position.Y)
	return m
}

// drawDebug 绘制父子骨骼连线（包括不可见骨骼）和枢轴点
func (s *SkeletonRenderSystem) drawDebug(screen *ebiten.Image, sk *skeleton.Skeleton) {
	world := sk.WorldTransforms()
	for _, bp := range sk.FullPose() {
		if bp.Parent == "" {
			continue
		}
		parent, ok := world[bp.Parent]
		if !ok {
			continue
		}
		vector.StrokeLine(screen,
			float32(parent.Position.X), float32(parent.Position.Y),
			float32(bp.Position.X), float32(bp.Position.Y),
			1, debugLinkColor, true)
	}
	for _, bp := range sk.FullPose() {
		vector.DrawFilledRect(screen,
			float32(bp.Position.X-debugPivotSize/2), float32(bp.Position.Y-debugPivotSize/2),
			debugPivotSize, debugPivotSize, debugPivotColor, false)
	}
}
