package material

import "math"

// 每个时间步解析一次物性参数的取值方式，避免逐节点分派
// 公式型物性在当前温度场的温度区间上采样成查找表
type Resolved struct {
	Density    float64
	Emissivity float64

	conductivity lookup
	specificHeat lookup
}

const resolveSamples = 64

type lookup struct {
	direct func(t float64) float64
	lo     float64
	step   float64
	values []float64
}

func (l *lookup) at(t float64) float64 {
	if l.direct != nil {
		return l.direct(t)
	}
	if len(l.values) == 1 || l.step == 0 {
		return l.values[0]
	}
	x := (t - l.lo) / l.step
	if x <= 0 {
		return l.values[0]
	}
	k := int(x)
	if k >= len(l.values)-1 {
		return l.values[len(l.values)-1]
	}
	frac := x - float64(k)
	return l.values[k] + frac*(l.values[k+1]-l.values[k])
}

// lo, hi 为当前温度场的最低/最高温度
func (m *Material) Resolve(lo, hi float64) (*Resolved, error) {
	k, err := newLookup(m.conductivity, lo, hi)
	if err != nil {
		return nil, err
	}
	cp, err := newLookup(m.specificHeat, lo, hi)
	if err != nil {
		return nil, err
	}
	return &Resolved{
		Density:      m.Density,
		Emissivity:   m.Emissivity,
		conductivity: k,
		specificHeat: cp,
	}, nil
}

func (r *Resolved) Conductivity(t float64) float64 {
	return r.conductivity.at(t)
}

func (r *Resolved) SpecificHeat(t float64) float64 {
	return r.specificHeat.at(t)
}

func newLookup(p Property, lo, hi float64) (lookup, error) {
	switch v := p.(type) {
	case constantProperty:
		value := v.value
		return lookup{direct: func(float64) float64 { return value }}, nil
	case *tableProperty:
		return lookup{direct: v.interpolate}, nil
	}

	n := resolveSamples
	if !(hi > lo) || math.IsInf(hi-lo, 0) {
		n = 1
	}
	l := lookup{lo: lo, values: make([]float64, n)}
	if n > 1 {
		l.step = (hi - lo) / float64(n-1)
	}
	for k := range l.values {
		v, err := p.At(lo + float64(k)*l.step)
		if err != nil {
			return lookup{}, err
		}
		l.values[k] = v
	}
	return l, nil
}
