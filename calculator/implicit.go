package calculator

import (
	"math"

	log "github.com/sirupsen/logrus"

	"plasmaheat/model"
)

// 隐式 θ 格式，θ = ½ 即 Crank-Nicolson
// 系数取 Tⁿ 下的物性（滞后），热源与边界散热按 Tⁿ 显式处理
// 线性系统用红黑 SOR 求解，之后用求得温度场的守恒通量推进焓
type ImplicitSolver struct {
	base
	ls   *linearSystem
	x    []float64
	next *model.Field
}

func NewImplicitSolver(cfg model.SolverConfig) *ImplicitSolver {
	return &ImplicitSolver{base: newBase(cfg)}
}

func (s *ImplicitSolver) Name() string {
	return model.SolverImplicit
}

func (s *ImplicitSolver) SolveTimeStep(f *model.Field, d *Domain, step int, t, dt float64) (*StepResult, error) {
	res, err := s.prepare(f, d, t, dt)
	if err != nil {
		return nil, err
	}
	if s.ls == nil || s.ls.st != s.st {
		s.ls = newLinearSystem(s.st, s.cfg.Theta)
		s.x = make([]float64, f.Len())
		s.next = model.NewField(f.Nr, f.Nz)
	}

	m, mat, ls, theta := d.Mesh, d.Material, s.ls, s.cfg.Theta
	rho := mat.Density
	_, err = s.e.dispatch(m.Nz, func(start, end int) error {
		for j := start; j < end; j++ {
			fixedT, fixed := d.Physics.Dirichlet(m, j)
			for i := 0; i < m.Nr; i++ {
				n := j*m.Nr + i
				ls.fixed[n] = fixed
				if fixed {
					ls.diag[n], ls.rhs[n] = 1, fixedT
					continue
				}
				v := s.st.volume[i]
				c := rho * s.st.cp[n] * v / dt
				ls.diag[n] = c + theta*s.st.conductanceSum(i, j)
				ls.rhs[n] = c*f.T[n] + (1-theta)*s.st.flux(f.T, i, j) + s.source[n]*v - s.loss[n]
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	copy(s.x, f.T)
	for n, fixed := range ls.fixed {
		if fixed {
			s.x[n] = ls.rhs[n]
		}
	}
	res.Iterations, res.Residual, err = s.e.sor(ls, s.x, s.cfg.RelaxationFactor, s.cfg.SORTolerance, s.cfg.MaxIterations)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(res.Residual) || math.IsInf(res.Residual, 0) {
		return nil, &model.NumericalInstabilityError{Step: step, Time: t + dt}
	}
	res.Converged = res.Residual < s.cfg.SORTolerance
	if !res.Converged {
		res.Warning = &model.ConvergenceWarning{
			Iterations: res.Iterations,
			Residual:   res.Residual,
			Tolerance:  s.cfg.SORTolerance,
		}
		log.WithFields(log.Fields{
			"step":       step,
			"iterations": res.Iterations,
			"residual":   res.Residual,
		}).Warn("SOR 未收敛")
	}

	// 焓的推进使用与线性系统一致的 θ 加权通量，导热项两两抵消，能量守恒
	x, next := s.x, s.next
	_, err = s.e.dispatch(m.Nz, func(start, end int) error {
		for j := start; j < end; j++ {
			for i := 0; i < m.Nr; i++ {
				n := j*m.Nr + i
				v := s.st.volume[i]
				q := theta*s.st.flux(x, i, j) + (1-theta)*s.st.flux(f.T, i, j) + s.source[n]*v - s.loss[n]
				h := f.H[n] + dt*q/(rho*v)
				temp, fraction := mat.TemperatureAndFraction(h)
				if math.IsNaN(h) || math.IsInf(h, 0) || math.IsNaN(temp) || math.IsInf(temp, 0) || temp <= 0 {
					return &model.NumericalInstabilityError{Step: step, Time: t + dt}
				}
				next.H[n], next.T[n], next.Fraction[n] = h, temp, fraction
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	f.CopyFrom(next)

	log.WithFields(log.Fields{
		"step":       step,
		"dt":         dt,
		"iterations": res.Iterations,
		"residual":   res.Residual,
	}).Trace("隐式时间步完成")
	return res, nil
}
