package material

import (
	"math"
	"sort"

	"plasmaheat/model"
)

// 显焓曲线 H_s(T) = ∫ c_p dT，从参考温度积分
// 常数比热容直接解析计算；否则按 1K 步长离散，梯形积分
type enthalpyCurve struct {
	tRef float64
	cp   float64 // 常数比热容，sampled 为空时使用

	temperatures []float64
	enthalpies   []float64
	cpLow        float64 // 两端外推用
	cpHigh       float64
}

const curveStep = 1.0

func newEnthalpyCurve(cp Property, tRef, tMin, tMax float64) (enthalpyCurve, error) {
	if c, ok := cp.(constantProperty); ok {
		if !(c.value > 0) {
			return enthalpyCurve{}, model.InvalidParameter("specific_heat", c.value, "> 0")
		}
		return enthalpyCurve{tRef: tRef, cp: c.value}, nil
	}

	n := int(math.Ceil((tMax-tMin)/curveStep)) + 1
	curve := enthalpyCurve{
		tRef:         tRef,
		temperatures: make([]float64, n),
		enthalpies:   make([]float64, n),
	}
	var prev float64
	for k := 0; k < n; k++ {
		t := tMin + float64(k)*curveStep
		if k == n-1 {
			t = tMax
		}
		c, err := cp.At(t)
		if err != nil {
			return enthalpyCurve{}, err
		}
		if !(c > 0) {
			return enthalpyCurve{}, model.InvalidParameter("specific_heat", c, "> 0 over the sampled temperature range")
		}
		curve.temperatures[k] = t
		if k > 0 {
			curve.enthalpies[k] = curve.enthalpies[k-1] + (prev+c)/2*(t-curve.temperatures[k-1])
		} else {
			curve.cpLow = c
		}
		prev = c
	}
	curve.cpHigh = prev

	// 平移使 H_s(T_ref) = 0
	offset := curve.sampledEnthalpy(tRef)
	for k := range curve.enthalpies {
		curve.enthalpies[k] -= offset
	}
	return curve, nil
}

func (c *enthalpyCurve) enthalpy(t float64) float64 {
	if c.temperatures == nil {
		return c.cp * (t - c.tRef)
	}
	return c.sampledEnthalpy(t)
}

func (c *enthalpyCurve) temperature(h float64) float64 {
	if c.temperatures == nil {
		return c.tRef + h/c.cp
	}
	n := len(c.enthalpies)
	if h <= c.enthalpies[0] {
		return c.temperatures[0] + (h-c.enthalpies[0])/c.cpLow
	}
	if h >= c.enthalpies[n-1] {
		return c.temperatures[n-1] + (h-c.enthalpies[n-1])/c.cpHigh
	}
	// 二分查找所在区间
	k := sort.SearchFloat64s(c.enthalpies, h)
	h0, h1 := c.enthalpies[k-1], c.enthalpies[k]
	t0, t1 := c.temperatures[k-1], c.temperatures[k]
	return t0 + (t1-t0)*(h-h0)/(h1-h0)
}

func (c *enthalpyCurve) sampledEnthalpy(t float64) float64 {
	n := len(c.temperatures)
	if t <= c.temperatures[0] {
		return c.enthalpies[0] + c.cpLow*(t-c.temperatures[0])
	}
	if t >= c.temperatures[n-1] {
		return c.enthalpies[n-1] + c.cpHigh*(t-c.temperatures[n-1])
	}
	k := sort.SearchFloat64s(c.temperatures, t)
	t0, t1 := c.temperatures[k-1], c.temperatures[k]
	h0, h1 := c.enthalpies[k-1], c.enthalpies[k]
	return h0 + (h1-h0)*(t-t0)/(t1-t0)
}
