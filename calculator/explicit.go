package calculator

import (
	"math"

	log "github.com/sirupsen/logrus"

	"plasmaheat/model"
)

// 显式格式（前向 Euler），以焓为状态变量
// H' = H + dt/(ρV)·[ΣG(T_nb - T) + QV - qA]，再由 T(H) 得到温度和相分数
type ExplicitSolver struct {
	base
	next *model.Field
}

func NewExplicitSolver(cfg model.SolverConfig) *ExplicitSolver {
	return &ExplicitSolver{base: newBase(cfg)}
}

func (s *ExplicitSolver) Name() string {
	return model.SolverExplicit
}

func (s *ExplicitSolver) SolveTimeStep(f *model.Field, d *Domain, step int, t, dt float64) (*StepResult, error) {
	res, err := s.prepare(f, d, t, dt)
	if err != nil {
		return nil, err
	}
	if s.next == nil || s.next.Len() != f.Len() {
		s.next = model.NewField(f.Nr, f.Nz)
	}

	m, mat, next := d.Mesh, d.Material, s.next
	rho := mat.Density
	cost, err := s.e.dispatch(m.Nz, func(start, end int) error {
		for j := start; j < end; j++ {
			for i := 0; i < m.Nr; i++ {
				n := j*m.Nr + i
				v := s.st.volume[i]
				q := s.st.flux(f.T, i, j) + s.source[n]*v - s.loss[n]
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
		"step": step,
		"dt":   dt,
		"cost": cost,
	}).Trace("显式时间步完成")
	return res, nil
}
