package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/decker502/skelanim/pkg/app"
	"github.com/decker502/skelanim/pkg/embedded"
	"github.com/hajimehoshi/ebiten/v2"
)

var (
	dataDir = flag.String("data", "", "单元配置目录（为空时使用嵌入资源；指定磁盘目录时启用热重载）")
	unit    = flag.String("unit", "", "启动时显示的单元 id")
	verbose = flag.Bool("verbose", false, "详细日志")
)

func main() {
	flag.Parse()

	// 初始化嵌入资源：assets/ 为贴图，data/ 为单元配置
	embedded.Init(assetsFS, dataFS)

	viewer, err := app.NewApp(app.Config{
		Verbose: *verbose,
		DataDir: *dataDir,
		Unit:    *unit,
	})
	if err != nil {
		// NewApp 可能已经关闭了日志输出
		fmt.Fprintf(os.Stderr, "初始化失败: %v\n", err)
		os.Exit(1)
	}

	ebiten.SetWindowSize(app.ScreenWidth, app.ScreenHeight)
	ebiten.SetWindowTitle("骨骼动画查看器")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	runErr := ebiten.RunGame(viewer)
	if err := viewer.Close(); err != nil {
		log.Printf("[App] Failed to save settings: %v", err)
	}
	if runErr != nil {
		log.Fatal(runErr)
	}
}
