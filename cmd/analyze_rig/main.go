// cmd/analyze_rig/main.go
// 骨骼单元分析工具
//
// 用法：
//
//	go run ./cmd/analyze_rig data/skeletons/humanoid.yaml
//	go run ./cmd/analyze_rig -anim walk -t 0.2 data/skeletons/humanoid.yaml
//	go run ./cmd/analyze_rig -reanim assets/reanim/Zombie.reanim -id zombie -o data/skeletons/zombie.yaml
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/decker502/skelanim/internal/reanim"
	"github.com/decker502/skelanim/pkg/config"
	"github.com/decker502/skelanim/pkg/entities"
	"github.com/decker502/skelanim/pkg/skeleton"
)

var (
	reanimFile = flag.String("reanim", "", "把 Reanim 文件转换为 YAML 单元")
	unitID     = flag.String("id", "", "转换时使用的单元 id（默认取文件名）")
	output     = flag.String("o", "", "转换输出路径（默认输出到标准输出）")
	animName   = flag.String("anim", "", "采样的动画名称（默认动画为空时只打印静止姿势）")
	sampleTime = flag.Float64("t", 0, "采样时间（秒）")
)

func main() {
	flag.Parse()

	if *reanimFile != "" {
		if err := runConvert(*reanimFile, *unitID, *output); err != nil {
			log.Fatalf("转换失败: %v", err)
		}
		return
	}

	if flag.NArg() < 1 {
		fmt.Println("用法: go run ./cmd/analyze_rig [-anim 名称 -t 秒] <单元 YAML 路径>")
		fmt.Println("      go run ./cmd/analyze_rig -reanim <reanim 文件> [-id 单元id] [-o 输出路径]")
		os.Exit(1)
	}

	unit, err := config.LoadUnitFile(os.DirFS(filepath.Dir(flag.Arg(0))), filepath.Base(flag.Arg(0)))
	if err != nil {
		log.Fatalf("加载失败: %v", err)
	}
	if err := analyze(os.Stdout, unit, *animName, *sampleTime); err != nil {
		log.Fatalf("分析失败: %v", err)
	}
}

// runConvert 把 Reanim 文件转换为单元 YAML
func runConvert(path, id, out string) error {
	r, err := reanim.ParseReanimFile(path)
	if err != nil {
		return err
	}
	if id == "" {
		id = strings.ToLower(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	}
	unit, err := reanim.ToUnit(r, id)
	if err != nil {
		return err
	}
	data, err := config.MarshalUnit(unit)
	if err != nil {
		return err
	}
	if out == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("已写入 %s: %d 根骨骼, %d 个动画\n", out, len(unit.Bones), len(unit.Animations))
	return nil
}

// analyze 打印骨骼层级、静止姿势、动画列表，以及指定动画在 t 时刻的世界姿势
func analyze(w io.Writer, unit *config.UnitConfig, anim string, t float64) error {
	s, err := entities.BuildSkeleton(unit, config.PlaybackConfig{})
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "单元: %s (%s)\n", unit.ID, unit.Name)
	fmt.Fprintf(w, "骨骼数量: %d, 缩放: %.2f, 默认动画: %s\n\n", len(unit.Bones), s.Scale(), orDash(unit.DefaultAnimation))

	fmt.Fprintln(w, "=== 骨骼层级 ===")
	printHierarchy(w, s.Root(), 0)

	fmt.Fprintln(w, "\n=== 静止姿势（局部）===")
	for _, b := range s.Bones() {
		rest, _ := s.RestPoseOf(b.Name())
		fmt.Fprintf(w, "  %-20s  pos=(%7.2f, %7.2f)  rot=%7.2f  z=%3d\n",
			b.Name(), rest.X, rest.Y, rest.Rotation, b.ZOrder())
	}

	fmt.Fprintln(w, "\n=== 动画 ===")
	printAnimations(w, unit)

	if anim == "" {
		s.Stop()
		fmt.Fprintln(w, "\n=== 世界姿势（静止）===")
	} else {
		if _, ok := s.Animation(anim); !ok {
			return fmt.Errorf("unit %q has no animation %q", unit.ID, anim)
		}
		s.Play(anim)
		s.Update(t)
		fmt.Fprintf(w, "\n=== 世界姿势（%s @ %.3fs）===\n", anim, t)
	}
	printPose(w, s.Pose())
	return nil
}

func printHierarchy(w io.Writer, b *skeleton.Bone, depth int) {
	hidden := ""
	if !b.Visible() {
		hidden = " (hidden)"
	}
	fmt.Fprintf(w, "%s%s%s\n", strings.Repeat("  ", depth), b.Name(), hidden)
	for _, c := range b.Children() {
		printHierarchy(w, c, depth+1)
	}
}

func printAnimations(w io.Writer, unit *config.UnitConfig) {
	for _, ac := range unit.Animations {
		anim := entities.BuildAnimation(ac)
		mode := "loop"
		if !anim.Loop() {
			mode = "once"
		}
		bones := make([]string, 0, len(ac.Tracks))
		keys := 0
		for name, track := range ac.Tracks {
			bones = append(bones, name)
			keys += len(track)
		}
		sort.Strings(bones)
		fmt.Fprintf(w, "  %-12s  %.2fs  %s  x%.2f  %d 个关键帧  骨骼: %s\n",
			ac.Name, anim.Duration(), mode, anim.Speed(), keys, strings.Join(bones, ", "))
	}
}

// printPose 打印可见骨骼的世界变换和包围盒
func printPose(w io.Writer, pose []skeleton.BonePose) {
	minX, minY := math.MaxFloat64, math.MaxFloat64
	maxX, maxY := -math.MaxFloat64, -math.MaxFloat64
	for _, bp := range pose {
		fmt.Fprintf(w, "  %-20s  pos=(%8.2f, %8.2f)  rot=%7.2f  scale=(%.2f, %.2f)  z=%3d\n",
			bp.Name, bp.Position.X, bp.Position.Y, bp.Rotation, bp.Scale.X, bp.Scale.Y, bp.ZOrder)
		minX, maxX = math.Min(minX, bp.Position.X), math.Max(maxX, bp.Position.X)
		minY, maxY = math.Min(minY, bp.Position.Y), math.Max(maxY, bp.Position.Y)
	}
	if len(pose) == 0 {
		fmt.Fprintln(w, "  没有可见骨骼")
		return
	}
	fmt.Fprintf(w, "\n骨骼原点范围: X %.1f ~ %.1f, Y %.1f ~ %.1f\n", minX, maxX, minY, maxY)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
