// embed.go - 资源嵌入声明
// 必须放在项目根目录（与 assets/、data/ 同级）
// 因为 //go:embed 指令只能嵌入当前包目录及其子目录的文件
package main

import "embed"

// assetsFS 骨骼贴图
//
//go:embed assets/skeletons
var assetsFS embed.FS

// dataFS 单元配置
//
//go:embed data/skeletons
var dataFS embed.FS
