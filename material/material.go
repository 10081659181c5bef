package material

import (
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"

	"plasmaheat/model"
)

// 材料：密度为常数，导热系数与比热容随温度变化，
// 可选的熔化相变通过焓法处理
type Material struct {
	Name                 string
	Density              float64 // kg/m3
	Emissivity           float64
	MeltingPoint         float64 // K, 0 表示不考虑相变
	LatentHeatFusion     float64 // J/kg
	ReferenceTemperature float64 // H(T_ref) = 0

	conductivity Property
	specificHeat Property
	curve        enthalpyCurve
	hSolidus     float64 // 熔点处的显焓
}

func New(cfg model.MaterialConfig, evaluator Evaluator) (*Material, error) {
	if !(cfg.Density > 0) {
		return nil, model.InvalidParameter("density", cfg.Density, "> 0")
	}
	if !(cfg.Emissivity >= 0 && cfg.Emissivity <= 1) {
		return nil, model.InvalidParameter("emissivity", cfg.Emissivity, "[0, 1]")
	}
	if cfg.LatentHeatFusion < 0 {
		return nil, model.InvalidParameter("latent_heat_fusion", cfg.LatentHeatFusion, ">= 0")
	}
	if cfg.LatentHeatFusion > 0 && !(cfg.MeltingPoint > 0) {
		return nil, model.InvalidParameter("melting_point", cfg.MeltingPoint, "> 0 when latent_heat_fusion is set")
	}
	if cfg.MeltingPoint < 0 {
		return nil, model.InvalidParameter("melting_point", cfg.MeltingPoint, ">= 0")
	}
	tRef := cfg.ReferenceTemperature
	if tRef == 0 {
		tRef = model.DefaultReferenceTemperature
	}
	tMin, tMax := cfg.MinTemperature, cfg.MaxTemperature
	if tMin == 0 {
		tMin = model.DefaultMinTemperature
	}
	if tMax == 0 {
		tMax = model.DefaultMaxTemperature
	}
	if !(tMax > tMin) {
		return nil, model.InvalidParameter("max_temperature", tMax, fmt.Sprintf("> min_temperature (%g)", tMin))
	}

	k, err := NewProperty("thermal_conductivity", cfg.Conductivity, evaluator)
	if err != nil {
		return nil, err
	}
	if c, ok := k.(constantProperty); ok && !(c.value > 0) {
		return nil, model.InvalidParameter("thermal_conductivity", c.value, "> 0")
	}
	cp, err := NewProperty("specific_heat", cfg.SpecificHeat, evaluator)
	if err != nil {
		return nil, err
	}

	m := &Material{
		Name:                 cfg.Name,
		Density:              cfg.Density,
		Emissivity:           cfg.Emissivity,
		MeltingPoint:         cfg.MeltingPoint,
		LatentHeatFusion:     cfg.LatentHeatFusion,
		ReferenceTemperature: tRef,
		conductivity:         k,
		specificHeat:         cp,
	}
	m.curve, err = newEnthalpyCurve(cp, tRef, tMin, tMax)
	if err != nil {
		return nil, err
	}
	if m.MeltingPoint > 0 {
		m.hSolidus = m.curve.enthalpy(m.MeltingPoint)
	}

	log.WithFields(log.Fields{
		"name":         m.Name,
		"density":      m.Density,
		"conductivity": k.Kind(),
		"specificHeat": cp.Kind(),
		"meltingPoint": m.MeltingPoint,
		"latentHeat":   m.LatentHeatFusion,
	}).Debug("材料初始化完成")
	return m, nil
}

// 导热系数 W/(m·K)
func (m *Material) Conductivity(temperature float64) (float64, error) {
	return m.conductivity.At(temperature)
}

// 比热容 J/(kg·K)
func (m *Material) SpecificHeat(temperature float64) (float64, error) {
	return m.specificHeat.At(temperature)
}

func (m *Material) HasPhaseChange() bool {
	return m.MeltingPoint > 0 && m.LatentHeatFusion > 0
}

// 相变区间的下界与上界
func (m *Material) SolidusEnthalpy() float64 {
	return m.hSolidus
}

func (m *Material) LiquidusEnthalpy() float64 {
	return m.hSolidus + m.LatentHeatFusion
}

// 不含潜热的显焓
func (m *Material) SensibleEnthalpy(temperature float64) float64 {
	return m.curve.enthalpy(temperature)
}

// 温度 -> 焓。恰好处于熔点时由相分数 f 决定潜热的份额
func (m *Material) Enthalpy(temperature, fraction float64) float64 {
	h := m.curve.enthalpy(temperature)
	if !m.HasPhaseChange() {
		return h
	}
	switch {
	case temperature > m.MeltingPoint:
		return h + m.LatentHeatFusion
	case temperature < m.MeltingPoint:
		return h
	}
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	return m.hSolidus + fraction*m.LatentHeatFusion
}

// 焓 -> (温度, 相分数)
// 相变区间内温度严格等于熔点，相分数线性增长
func (m *Material) TemperatureAndFraction(h float64) (temperature, fraction float64) {
	if !m.HasPhaseChange() {
		return m.curve.temperature(h), 0
	}
	switch {
	case h < m.hSolidus:
		return m.curve.temperature(h), 0
	case h < m.hSolidus+m.LatentHeatFusion:
		// 舍入误差不能让相分数越过 [0, 1]
		return m.MeltingPoint, math.Min(1, math.Max(0, (h-m.hSolidus)/m.LatentHeatFusion))
	case h == m.hSolidus+m.LatentHeatFusion:
		return m.MeltingPoint, 1
	default:
		return m.curve.temperature(h - m.LatentHeatFusion), 1
	}
}
