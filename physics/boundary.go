package physics

import (
	"fmt"
	"math"

	"plasmaheat/mesh"
	"plasmaheat/model"
)

// Stefan-Boltzmann 常数 W/(m2·K4)
const StefanBoltzmann = 5.670374419e-8

type Face int

const (
	Wall Face = iota
	Top
	Bottom
)

func (f Face) String() string {
	switch f {
	case Wall:
		return "wall"
	case Top:
		return "top"
	case Bottom:
		return "bottom"
	}
	return "unknown"
}

type Mode int

const (
	Adiabatic Mode = iota
	FixedTemperature
	ConvectionRadiation
)

func parseMode(s string) (Mode, error) {
	switch s {
	case model.BoundaryAdiabatic, "":
		return Adiabatic, nil
	case model.BoundaryFixedTemperature:
		return FixedTemperature, nil
	case model.BoundaryConvectionRadiation:
		return ConvectionRadiation, nil
	}
	return Adiabatic, fmt.Errorf("unknown boundary mode %q", s)
}

type FaceCondition struct {
	Mode        Mode
	Temperature float64 // 第一类边界温度
	H           float64 // 对流换热系数 W/(m2·K)
	Ambient     float64 // 环境温度 K
}

// 对称轴 r=0 不需要存储，由离散格式保证
type BoundaryConditions struct {
	Wall   FaceCondition
	Top    FaceCondition
	Bottom FaceCondition
}

func newFaceCondition(name string, cfg model.FaceConfig) (FaceCondition, error) {
	mode, err := parseMode(cfg.Mode)
	if err != nil {
		return FaceCondition{}, fmt.Errorf("%s: %w", name, err)
	}
	fc := FaceCondition{Mode: mode, Temperature: cfg.Temperature, H: cfg.H, Ambient: cfg.Ambient}
	switch mode {
	case FixedTemperature:
		if !(fc.Temperature > 0) {
			return fc, model.InvalidParameter(name+".temperature", fc.Temperature, "> 0 K")
		}
	case ConvectionRadiation:
		if !(fc.H >= 0) {
			return fc, model.InvalidParameter(name+".h", fc.H, ">= 0")
		}
		if !(fc.Ambient > 0) {
			return fc, model.InvalidParameter(name+".ambient", fc.Ambient, "> 0 K")
		}
	}
	return fc, nil
}

func NewBoundaryConditions(cfg model.BoundaryConfig) (BoundaryConditions, error) {
	var bc BoundaryConditions
	var err error
	if bc.Wall, err = newFaceCondition(Wall.String(), cfg.Wall); err != nil {
		return bc, err
	}
	if bc.Wall.Mode != ConvectionRadiation {
		return bc, fmt.Errorf("wall: only %s is supported, got %q", model.BoundaryConvectionRadiation, cfg.Wall.Mode)
	}
	if bc.Top, err = newFaceCondition(Top.String(), cfg.Top); err != nil {
		return bc, err
	}
	if bc.Bottom, err = newFaceCondition(Bottom.String(), cfg.Bottom); err != nil {
		return bc, err
	}
	return bc, nil
}

// 节点所在的外表面，角点同时属于两个面
func BoundaryFaces(m *mesh.Mesh, i, j int) []Face {
	var faces []Face
	if i == m.Nr-1 {
		faces = append(faces, Wall)
	}
	if j == m.Nz-1 {
		faces = append(faces, Top)
	}
	if j == 0 {
		faces = append(faces, Bottom)
	}
	return faces
}

// 节点在该面上的换热面积
func FaceArea(m *mesh.Mesh, f Face, i int) float64 {
	if f == Wall {
		return m.WallArea()
	}
	return m.AxialFaceArea(i)
}

func (bc *BoundaryConditions) Face(f Face) FaceCondition {
	switch f {
	case Top:
		return bc.Top
	case Bottom:
		return bc.Bottom
	}
	return bc.Wall
}

// 辐射热流 q = εσ(T⁴ - T_amb⁴)
func RadiativeFlux(emissivity, t, ambient float64) float64 {
	t2, a2 := t*t, ambient*ambient
	return emissivity * StefanBoltzmann * (t2*t2 - a2*a2)
}

// 对流热流 q = h(T - T_amb)
func ConvectiveFlux(h, t, ambient float64) float64 {
	return h * (t - ambient)
}

// 边界面上的热流密度 (W/m2)，正值表示散热
func (fc FaceCondition) Flux(emissivity, t float64) float64 {
	if fc.Mode != ConvectionRadiation {
		return 0
	}
	return ConvectiveFlux(fc.H, t, fc.Ambient) + RadiativeFlux(emissivity, t, fc.Ambient)
}

// 线性化的综合换热系数 h + 4εσT³，用于估计稳定时间步长
func (fc FaceCondition) Conductance(emissivity, t float64) float64 {
	if fc.Mode != ConvectionRadiation {
		return 0
	}
	tr := math.Max(t, fc.Ambient)
	return fc.H + 4*emissivity*StefanBoltzmann*tr*tr*tr
}
