package calculator

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"plasmaheat/material"
	"plasmaheat/mesh"
	"plasmaheat/model"
	"plasmaheat/physics"
)

// 计算域：网格、材料、热源与边界，构建后只读
type Domain struct {
	Mesh     *mesh.Mesh
	Material *material.Material
	Physics  *physics.Physics
}

// 单个时间步的结果
type StepResult struct {
	Iterations int
	Residual   float64
	Converged  bool
	Warning    *model.ConvergenceWarning

	EnergyIn  float64 // 本步热源输入 J
	EnergyOut float64 // 本步边界散失 J
}

// 求解器：推进一个时间步
type Solver interface {
	Name() string
	// 成功时原地更新 f，失败时 f 保持不变
	SolveTimeStep(f *model.Field, d *Domain, step int, t, dt float64) (*StepResult, error)
	Close()
}

func New(cfg model.SolverConfig) (Solver, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}
	switch cfg.Kind {
	case model.SolverExplicit:
		return NewExplicitSolver(cfg), nil
	case model.SolverImplicit:
		return NewImplicitSolver(cfg), nil
	}
	return nil, fmt.Errorf("unknown solver kind %q", cfg.Kind)
}

func validate(cfg model.SolverConfig) error {
	switch cfg.FaceAverage {
	case model.FaceHarmonic, model.FaceArithmetic, "":
	default:
		return fmt.Errorf("unknown face average %q", cfg.FaceAverage)
	}
	if cfg.Kind != model.SolverImplicit {
		return nil
	}
	switch {
	case !(cfg.Theta >= 0.5 && cfg.Theta <= 1):
		return model.InvalidParameter("theta", cfg.Theta, "[0.5, 1]")
	case !(cfg.RelaxationFactor >= 1 && cfg.RelaxationFactor < 2):
		return model.InvalidParameter("relaxation_factor", cfg.RelaxationFactor, "1 <= ω < 2")
	case !(cfg.SORTolerance > 0):
		return model.InvalidParameter("sor_tolerance", cfg.SORTolerance, "> 0")
	case cfg.MaxIterations < 1:
		return model.InvalidParameter("max_iterations", float64(cfg.MaxIterations), ">= 1")
	}
	return nil
}

// 两种格式共用的每步准备工作：物性解析、面热导、热源与边界散热
type base struct {
	cfg model.SolverConfig
	e   *executor

	st     *stencil
	source []float64 // W/m3
	loss   []float64 // W
}

func newBase(cfg model.SolverConfig) base {
	return base{cfg: cfg, e: newExecutor(cfg.Workers)}
}

func (b *base) ensure(m *mesh.Mesh) {
	if b.st != nil && b.st.m == m {
		return
	}
	b.st = newStencil(m, b.cfg.FaceAverage)
	b.source = make([]float64, m.Size())
	b.loss = make([]float64, m.Size())
}

// 热源与散热都取 t 时刻、Tⁿ 下的值
func (b *base) prepare(f *model.Field, d *Domain, t, dt float64) (*StepResult, error) {
	if !(dt > 0) {
		return nil, model.InvalidParameter("dt", dt, "> 0")
	}
	m := d.Mesh
	if f.Nr != m.Nr || f.Nz != m.Nz {
		return nil, fmt.Errorf("field %dx%d does not match mesh %dx%d", f.Nr, f.Nz, m.Nr, m.Nz)
	}
	b.ensure(m)

	props, err := d.Material.Resolve(floats.Min(f.T), floats.Max(f.T))
	if err != nil {
		return nil, err
	}
	if err := b.st.update(f, props); err != nil {
		return nil, err
	}
	d.Physics.SourceField(m, t, b.source)

	res := &StepResult{Converged: true}
	eps := d.Material.Emissivity
	for j := 0; j < m.Nz; j++ {
		for i := 0; i < m.Nr; i++ {
			n := j*m.Nr + i
			b.loss[n] = d.Physics.BoundaryLoss(m, i, j, f.T[n], eps)
			res.EnergyIn += b.source[n] * b.st.volume[i] * dt
			res.EnergyOut += b.loss[n] * dt
		}
	}
	return res, nil
}

func (b *base) Close() {
	b.e.close()
}
