package calculator

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"plasmaheat/model"
)

// 显式格式的稳定时间步长
// 逐节点取 ρ·cp·V / (ΣG + G_boundary)，再与 min(dr², dz²)/(2α_max) 取小，乘以安全系数
// 轴上节点的控制体较小，只用后者不足以保证稳定
func CalculateStableTimestep(f *model.Field, d *Domain, average string, safety float64) (float64, error) {
	if !(safety > 0 && safety <= 1) {
		return 0, model.InvalidParameter("safety_factor", safety, "(0, 1]")
	}
	m, mat := d.Mesh, d.Material
	props, err := mat.Resolve(floats.Min(f.T), floats.Max(f.T))
	if err != nil {
		return 0, err
	}
	st := newStencil(m, average)
	if err := st.update(f, props); err != nil {
		return 0, err
	}

	rho := mat.Density
	alphaMax := 0.0
	dt := math.Inf(1)
	for j := 0; j < m.Nz; j++ {
		for i := 0; i < m.Nr; i++ {
			n := j*m.Nr + i
			capacity := rho * st.cp[n] * st.volume[i]
			g := st.conductanceSum(i, j) + d.Physics.BoundaryConductance(m, i, j, f.T[n], mat.Emissivity)
			if g > 0 {
				dt = math.Min(dt, capacity/g)
			}
			alphaMax = math.Max(alphaMax, st.k[n]/(rho*st.cp[n]))
		}
	}
	h2 := math.Min(m.Dr*m.Dr, m.Dz*m.Dz)
	dt = math.Min(dt, h2/(2*alphaMax))
	return safety * dt, nil
}
