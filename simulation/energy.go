package simulation

import "math"

// 能量账目 J
type energyAccount struct {
	initial float64 // 初始场内能量
	stored  float64 // 当前场内能量
	in      float64 // 热源累计输入
	out     float64 // 边界累计散失，包括第一类边界带走的能量
}

// |ΔE - (in - out)| / (in + |out|)
func (e *energyAccount) relativeError() float64 {
	scale := e.in + math.Abs(e.out)
	if scale < 1e-30 {
		return 0
	}
	return math.Abs(e.stored-e.initial-(e.in-e.out)) / scale
}
