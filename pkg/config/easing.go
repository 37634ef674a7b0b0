package config

import (
	"sort"
	"strings"

	"github.com/tanema/gween/ease"
)

// easings 配置中可用的混合曲线
var easings = map[string]ease.TweenFunc{
	"linear":       ease.Linear,
	"in_quad":      ease.InQuad,
	"out_quad":     ease.OutQuad,
	"in_out_quad":  ease.InOutQuad,
	"in_cubic":     ease.InCubic,
	"out_cubic":    ease.OutCubic,
	"in_out_cubic": ease.InOutCubic,
	"in_sine":      ease.InSine,
	"out_sine":     ease.OutSine,
	"in_out_sine":  ease.InOutSine,
	"in_expo":      ease.InExpo,
	"out_expo":     ease.OutExpo,
	"in_out_expo":  ease.InOutExpo,
	"out_back":     ease.OutBack,
	"out_bounce":   ease.OutBounce,
	"in_out_circ":  ease.InOutCirc,
}

// EasingByName 按名称返回混合曲线，名称不区分大小写，"-" 与 "_" 等价。
// 空名称返回线性曲线；未知名称返回 false。
func EasingByName(name string) (ease.TweenFunc, bool) {
	if name == "" {
		return ease.Linear, true
	}
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	fn, ok := easings[key]
	return fn, ok
}

// EasingNames 返回所有可用曲线名称（已排序）
func EasingNames() []string {
	names := make([]string, 0, len(easings))
	for name := range easings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
