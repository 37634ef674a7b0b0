// Package utils 提供通用数学工具函数（插值、角度归一化）
package utils

import "math"

// Lerp 线性插值
// 在 a 和 b 之间根据 t 插值
// t=0 返回 a，t=1 返回 b
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Clamp01 将 t 限制在 [0, 1]
func Clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// NormalizeAngle 将角度（度）归一化到 [0, 360)
func NormalizeAngle(deg float64) float64 {
	a := math.Mod(deg, 360)
	if a < 0 {
		a += 360
	}
	// math.Mod(-1e-15, 360) + 360 可能恰好等于 360
	if a >= 360 {
		a -= 360
	}
	return a
}

// ShortestAngleDelta 返回从 a 转到 b 的最短有符号角度差，范围 [-180, 180)
//
// 公式：((b - a + 540) mod 360) - 180
// 例如：350° → 10° 的差为 +20°，10° → 350° 的差为 -20°
func ShortestAngleDelta(a, b float64) float64 {
	a = NormalizeAngle(a)
	b = NormalizeAngle(b)
	return NormalizeAngle(b-a+540) - 180
}

// LerpAngle 沿最短角度路径插值，结果归一化到 [0, 360)
//
// LerpAngle(350, 10, 0.5) == 0，而不是 180
func LerpAngle(a, b, t float64) float64 {
	from := NormalizeAngle(a)
	return NormalizeAngle(from + ShortestAngleDelta(from, b)*t)
}

// AngleEqual 判断两个角度在模 360 意义下是否相等（误差 epsilon 以内）
func AngleEqual(a, b, epsilon float64) bool {
	return math.Abs(ShortestAngleDelta(a, b)) <= epsilon
}

// DegToRad 角度转弧度
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180
}
