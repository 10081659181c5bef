package physics

import (
	"fmt"

	"plasmaheat/mesh"
	"plasmaheat/model"
)

// 热源与边界条件
type Physics struct {
	Torches  []Torch
	Boundary BoundaryConditions
}

func New(torches []model.TorchConfig, boundary model.BoundaryConfig) (*Physics, error) {
	p := &Physics{Torches: make([]Torch, 0, len(torches))}
	for k, cfg := range torches {
		t, err := NewTorch(cfg)
		if err != nil {
			return nil, fmt.Errorf("torch %d: %w", k, err)
		}
		p.Torches = append(p.Torches, t)
	}
	bc, err := NewBoundaryConditions(boundary)
	if err != nil {
		return nil, err
	}
	p.Boundary = bc
	return p, nil
}

// 体热源 W/m3，各炬线性叠加
func (p *Physics) Source(r, z, t float64) float64 {
	q := 0.0
	for _, torch := range p.Torches {
		if torch.Active(t) {
			q += torch.SourceAt(r, z)
		}
	}
	return q
}

// 在所有网格节点上计算热源，dst 长度为 Nr*Nz
func (p *Physics) SourceField(m *mesh.Mesh, t float64, dst []float64) []float64 {
	if len(dst) != m.Size() {
		dst = make([]float64, m.Size())
	}
	for j := 0; j < m.Nz; j++ {
		z := m.Z(j)
		for i := 0; i < m.Nr; i++ {
			dst[m.Index(i, j)] = p.Source(m.R(i), z, t)
		}
	}
	return dst
}

// 节点 (i, j) 通过外壁、顶面、底面散失的热功率 W
// 第一类边界节点不计算热流
func (p *Physics) BoundaryLoss(m *mesh.Mesh, i, j int, t, emissivity float64) float64 {
	loss := 0.0
	for _, f := range BoundaryFaces(m, i, j) {
		loss += p.Boundary.Face(f).Flux(emissivity, t) * FaceArea(m, f, i)
	}
	return loss
}

// 节点的边界综合热导 W/K
func (p *Physics) BoundaryConductance(m *mesh.Mesh, i, j int, t, emissivity float64) float64 {
	g := 0.0
	for _, f := range BoundaryFaces(m, i, j) {
		g += p.Boundary.Face(f).Conductance(emissivity, t) * FaceArea(m, f, i)
	}
	return g
}

// 是否为第一类边界节点，以及对应的温度
func (p *Physics) Dirichlet(m *mesh.Mesh, j int) (float64, bool) {
	if j == m.Nz-1 && p.Boundary.Top.Mode == FixedTemperature {
		return p.Boundary.Top.Temperature, true
	}
	if j == 0 && p.Boundary.Bottom.Mode == FixedTemperature {
		return p.Boundary.Bottom.Temperature, true
	}
	return 0, false
}

func (p *Physics) HasDirichlet() bool {
	return p.Boundary.Top.Mode == FixedTemperature || p.Boundary.Bottom.Mode == FixedTemperature
}

type enthalpyModel interface {
	Enthalpy(temperature, fraction float64) float64
	TemperatureAndFraction(h float64) (float64, float64)
}

// 施加第一类边界条件
func (p *Physics) ApplyDirichlet(m *mesh.Mesh, f *model.Field, mat enthalpyModel) {
	for _, j := range []int{0, m.Nz - 1} {
		t, ok := p.Dirichlet(m, j)
		if !ok {
			continue
		}
		h := mat.Enthalpy(t, 0)
		_, frac := mat.TemperatureAndFraction(h)
		for i := 0; i < m.Nr; i++ {
			k := m.Index(i, j)
			f.T[k], f.H[k], f.Fraction[k] = t, h, frac
		}
	}
}
