package model

import "runtime"

const (
	DefaultReferenceTemperature = 298.15
	DefaultMinTemperature       = 200.0
	DefaultMaxTemperature       = 6000.0
)

// 默认配置，与 conf/config.ini 保持一致
func DefaultConfig() SimulationConfig {
	return SimulationConfig{
		Geometry: Geometry{Radius: 1.0, Height: 2.0},
		Mesh:     MeshResolution{Nr: 20, Nz: 20},
		Solver: SolverConfig{
			Kind:             SolverExplicit,
			FaceAverage:      FaceHarmonic,
			Theta:            0.5,
			RelaxationFactor: 1.5,
			SORTolerance:     1e-6,
			MaxIterations:    5000,
			Workers:          runtime.NumCPU(),
			SafetyFactor:     0.9,
		},
		Simulation: RunConfig{
			TotalTime:          600,
			ImplicitStepFactor: 10,
			InitialTemperature: 300,
			StorageInterval:    60,
			MaxRetries:         3,
		},
		Material: MaterialConfig{
			Name:         "steel",
			Density:      7800,
			Conductivity: PropertyConfig{Kind: PropertyConstant, Value: 30},
			SpecificHeat: PropertyConfig{Kind: PropertyConstant, Value: 500},
			Emissivity:   0.8,
		},
		Boundary: BoundaryConfig{
			Wall:   FaceConfig{Mode: BoundaryConvectionRadiation, H: 10, Ambient: 300},
			Top:    FaceConfig{Mode: BoundaryAdiabatic},
			Bottom: FaceConfig{Mode: BoundaryAdiabatic},
		},
		Torches: []TorchConfig{
			{R0: 0, Z0: 1.0, Power: 100e3, Efficiency: 0.8, Sigma: 0.1},
		},
	}
}

// 零值字段填充默认值，不覆盖显式配置
// MaxRetries 的零值表示不重试，默认值只由 DefaultConfig 给出
func (c *SimulationConfig) SetDefaults() {
	def := DefaultConfig()
	s := &c.Solver
	if s.Kind == "" {
		s.Kind = def.Solver.Kind
	}
	if s.FaceAverage == "" {
		s.FaceAverage = def.Solver.FaceAverage
	}
	if s.Theta == 0 {
		s.Theta = def.Solver.Theta
	}
	if s.RelaxationFactor == 0 {
		s.RelaxationFactor = def.Solver.RelaxationFactor
	}
	if s.SORTolerance == 0 {
		s.SORTolerance = def.Solver.SORTolerance
	}
	if s.MaxIterations == 0 {
		s.MaxIterations = def.Solver.MaxIterations
	}
	if s.Workers <= 0 {
		s.Workers = def.Solver.Workers
	}
	if s.SafetyFactor == 0 {
		s.SafetyFactor = def.Solver.SafetyFactor
	}
	r := &c.Simulation
	if r.ImplicitStepFactor == 0 {
		r.ImplicitStepFactor = def.Simulation.ImplicitStepFactor
	}
	m := &c.Material
	if m.ReferenceTemperature == 0 {
		m.ReferenceTemperature = DefaultReferenceTemperature
	}
	if m.MinTemperature == 0 {
		m.MinTemperature = DefaultMinTemperature
	}
	if m.MaxTemperature == 0 {
		m.MaxTemperature = DefaultMaxTemperature
	}
	// 外壁只支持对流+辐射混合边界
	if c.Boundary.Wall.Mode == "" {
		c.Boundary.Wall.Mode = BoundaryConvectionRadiation
	}
	for _, f := range []*FaceConfig{&c.Boundary.Top, &c.Boundary.Bottom} {
		if f.Mode == "" {
			f.Mode = BoundaryAdiabatic
		}
	}
}
