package calculator

import (
	"math"

	"plasmaheat/material"
	"plasmaheat/mesh"
	"plasmaheat/model"
)

// 五点格式的面热导 W/K
// gE[n] 为节点 n 与其径向外侧节点之间的面，gN[n] 为与其轴向上方节点之间的面
// 对称轴 r=0 处没有面，等价于镜像虚节点 T[-1] = T[1]
type stencil struct {
	m       *mesh.Mesh
	average string

	volume []float64 // 控制体体积，只与 i 有关
	radial []float64 // 径向面几何因子 2π·r_{i+½}·dz/dr
	axial  []float64 // 轴向面几何因子 A_i/dz

	k  []float64 // 节点导热系数
	cp []float64 // 节点比热容
	gE []float64
	gN []float64
}

func newStencil(m *mesh.Mesh, average string) *stencil {
	s := &stencil{
		m:       m,
		average: average,
		volume:  make([]float64, m.Nr),
		radial:  make([]float64, m.Nr),
		axial:   make([]float64, m.Nr),
		k:       make([]float64, m.Size()),
		cp:      make([]float64, m.Size()),
		gE:      make([]float64, m.Size()),
		gN:      make([]float64, m.Size()),
	}
	for i := 0; i < m.Nr; i++ {
		s.volume[i] = m.CellVolume(i, 0)
		s.axial[i] = m.AxialFaceArea(i) / m.Dz
		if i < m.Nr-1 {
			s.radial[i] = m.RadialFaceArea(i) / m.Dr
		}
	}
	return s
}

// 面上的导热系数，调和平均或算术平均
func faceConductivity(average string, a, b float64) float64 {
	if average == model.FaceArithmetic {
		return (a + b) / 2
	}
	return 2 * a * b / (a + b)
}

// 按当前温度场更新节点物性与面热导
func (s *stencil) update(f *model.Field, props *material.Resolved) error {
	for n, t := range f.T {
		k := props.Conductivity(t)
		if !(k > 0) || math.IsInf(k, 0) {
			return model.InvalidParameter("thermal_conductivity", k, "> 0")
		}
		cp := props.SpecificHeat(t)
		if !(cp > 0) || math.IsInf(cp, 0) {
			return model.InvalidParameter("specific_heat", cp, "> 0")
		}
		s.k[n], s.cp[n] = k, cp
	}
	nr, nz := s.m.Nr, s.m.Nz
	for j := 0; j < nz; j++ {
		for i := 0; i < nr; i++ {
			n := j*nr + i
			s.gE[n], s.gN[n] = 0, 0
			if i < nr-1 {
				s.gE[n] = faceConductivity(s.average, s.k[n], s.k[n+1]) * s.radial[i]
			}
			if j < nz-1 {
				s.gN[n] = faceConductivity(s.average, s.k[n], s.k[n+nr]) * s.axial[i]
			}
		}
	}
	return nil
}

// 节点所有面热导之和
func (s *stencil) conductanceSum(i, j int) float64 {
	nr := s.m.Nr
	n := j*nr + i
	g := s.gE[n] + s.gN[n]
	if i > 0 {
		g += s.gE[n-1]
	}
	if j > 0 {
		g += s.gN[n-nr]
	}
	return g
}

// Σ G·(T_nb - T)，流入节点的导热功率 W
func (s *stencil) flux(t []float64, i, j int) float64 {
	nr := s.m.Nr
	n := j*nr + i
	q := 0.0
	if i > 0 {
		q += s.gE[n-1] * (t[n-1] - t[n])
	}
	if i < nr-1 {
		q += s.gE[n] * (t[n+1] - t[n])
	}
	if j > 0 {
		q += s.gN[n-nr] * (t[n-nr] - t[n])
	}
	if j < s.m.Nz-1 {
		q += s.gN[n] * (t[n+nr] - t[n])
	}
	return q
}

// Σ G·T_nb
func (s *stencil) neighbourSum(t []float64, i, j int) float64 {
	nr := s.m.Nr
	n := j*nr + i
	q := 0.0
	if i > 0 {
		q += s.gE[n-1] * t[n-1]
	}
	if i < nr-1 {
		q += s.gE[n] * t[n+1]
	}
	if j > 0 {
		q += s.gN[n-nr] * t[n-nr]
	}
	if j < s.m.Nz-1 {
		q += s.gN[n] * t[n+nr]
	}
	return q
}

// 径向温度梯度 K/m，中心差分
// i=0 使用镜像节点，因此对称场在轴上的梯度恒为 0；外壁使用单侧差分
func RadialGradient(f *model.Field, m *mesh.Mesh, i, j int) float64 {
	if i == m.Nr-1 {
		return (f.At(i, j) - f.At(i-1, j)) / m.Dr
	}
	west := m.Mirror(i - 1)
	return (f.At(i+1, j) - f.At(west, j)) / (2 * m.Dr)
}
