package material

import (
	"fmt"
	"math"
	"sort"

	"plasmaheat/model"
)

// 外部公式计算能力：无副作用、确定、有界
type Evaluator interface {
	Evaluate(formula string, temperature float64) (float64, error)
}

// 能在构建时检查公式语法的求值器
type validator interface {
	Validate(formula string) error
}

// 随温度变化的物性参数：常数 / 温度表 / 公式
type Property interface {
	At(temperature float64) (float64, error)
	Kind() string
}

type constantProperty struct {
	value float64
}

func (p constantProperty) At(float64) (float64, error) {
	return p.value, nil
}

func (p constantProperty) Kind() string {
	return model.PropertyConstant
}

// 温度表，线性插值，两端钳位
type tableProperty struct {
	temperatures []float64
	values       []float64
}

func (p *tableProperty) At(temperature float64) (float64, error) {
	return p.interpolate(temperature), nil
}

func (p *tableProperty) Kind() string {
	return model.PropertyTable
}

func (p *tableProperty) interpolate(temperature float64) float64 {
	n := len(p.temperatures)
	if temperature <= p.temperatures[0] {
		return p.values[0]
	}
	if temperature >= p.temperatures[n-1] {
		return p.values[n-1]
	}
	// 第一个大于 temperature 的位置
	k := sort.SearchFloat64s(p.temperatures, temperature)
	if p.temperatures[k] == temperature {
		return p.values[k]
	}
	t0, t1 := p.temperatures[k-1], p.temperatures[k]
	v0, v1 := p.values[k-1], p.values[k]
	return v0 + (v1-v0)*(temperature-t0)/(t1-t0)
}

type formulaProperty struct {
	formula   string
	evaluator Evaluator
}

func (p *formulaProperty) At(temperature float64) (float64, error) {
	v, err := p.evaluator.Evaluate(p.formula, temperature)
	if err != nil {
		return 0, &model.FormulaError{Formula: p.formula, Err: err}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &model.FormulaError{Formula: p.formula, Err: fmt.Errorf("non-finite result %g at T = %g", v, temperature)}
	}
	return v, nil
}

func (p *formulaProperty) Kind() string {
	return model.PropertyFormula
}

func Constant(value float64) Property {
	return constantProperty{value: value}
}

func Table(points []model.TablePoint) (Property, error) {
	if len(points) == 0 {
		return nil, model.InvalidParameter("table", 0, "at least one (temperature, value) point")
	}
	sorted := append([]model.TablePoint(nil), points...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Temperature < sorted[j].Temperature
	})
	p := &tableProperty{
		temperatures: make([]float64, len(sorted)),
		values:       make([]float64, len(sorted)),
	}
	for i, pt := range sorted {
		if i > 0 && pt.Temperature == sorted[i-1].Temperature {
			return nil, model.InvalidParameter("table.temperature", pt.Temperature, "distinct temperatures")
		}
		p.temperatures[i] = pt.Temperature
		p.values[i] = pt.Value
	}
	return p, nil
}

func Formula(formula string, evaluator Evaluator) (Property, error) {
	if formula == "" {
		return nil, &model.FormulaError{Formula: formula, Err: fmt.Errorf("empty formula")}
	}
	if evaluator == nil {
		return nil, &model.FormulaError{Formula: formula, Err: fmt.Errorf("no formula evaluator configured")}
	}
	if v, ok := evaluator.(validator); ok {
		if err := v.Validate(formula); err != nil {
			return nil, &model.FormulaError{Formula: formula, Err: err}
		}
	}
	return &formulaProperty{formula: formula, evaluator: evaluator}, nil
}

// 由配置记录构建物性参数
func NewProperty(name string, cfg model.PropertyConfig, evaluator Evaluator) (Property, error) {
	switch cfg.Kind {
	case model.PropertyConstant, "":
		return Constant(cfg.Value), nil
	case model.PropertyTable:
		p, err := Table(cfg.Table)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return p, nil
	case model.PropertyFormula:
		return Formula(cfg.Formula, evaluator)
	default:
		return nil, fmt.Errorf("%s: unknown property kind %q", name, cfg.Kind)
	}
}
