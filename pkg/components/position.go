package components

// PositionComponent 实体在屏幕空间中的位置
type PositionComponent struct {
	X, Y float64
}
