package calculator

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// 五点格式线性系统 diag·x - θ·ΣG·x_nb = rhs
// 第一类边界节点的行为单位行 x = rhs
type linearSystem struct {
	st    *stencil
	theta float64
	diag  []float64
	rhs   []float64
	fixed []bool
	r     []float64
}

func newLinearSystem(st *stencil, theta float64) *linearSystem {
	n := st.m.Size()
	return &linearSystem{
		st:    st,
		theta: theta,
		diag:  make([]float64, n),
		rhs:   make([]float64, n),
		fixed: make([]bool, n),
		r:     make([]float64, n),
	}
}

// Gauss-Seidel 更新值
func (ls *linearSystem) gaussSeidel(x []float64, i, j, n int) float64 {
	return (ls.rhs[n] + ls.theta*ls.st.neighbourSum(x, i, j)) / ls.diag[n]
}

// 红黑排序的 SOR，同色节点互不相邻，可以按行并行更新
// 残差为按对角元缩放后的 L2 范数，单位 K
func (e *executor) sor(ls *linearSystem, x []float64, omega, tol float64, maxIterations int) (iterations int, residual float64, err error) {
	nr := ls.st.m.Nr
	nz := ls.st.m.Nz
	sweep := func(colour int) error {
		_, err := e.dispatch(nz, func(start, end int) error {
			for j := start; j < end; j++ {
				for i := (colour + j) % 2; i < nr; i += 2 {
					n := j*nr + i
					if ls.fixed[n] {
						continue
					}
					x[n] += omega * (ls.gaussSeidel(x, i, j, n) - x[n])
				}
			}
			return nil
		})
		return err
	}
	measure := func() (float64, error) {
		_, err := e.dispatch(nz, func(start, end int) error {
			for j := start; j < end; j++ {
				for i := 0; i < nr; i++ {
					n := j*nr + i
					if ls.fixed[n] {
						ls.r[n] = 0
						continue
					}
					ls.r[n] = ls.gaussSeidel(x, i, j, n) - x[n]
				}
			}
			return nil
		})
		return floats.Norm(ls.r, 2), err
	}

	residual = math.Inf(1)
	for iterations = 1; iterations <= maxIterations; iterations++ {
		if err = sweep(0); err != nil {
			return
		}
		if err = sweep(1); err != nil {
			return
		}
		if residual, err = measure(); err != nil {
			return
		}
		if residual < tol || math.IsNaN(residual) {
			return
		}
	}
	return maxIterations, residual, nil
}
