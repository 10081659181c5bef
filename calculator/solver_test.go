package calculator

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plasmaheat/formula"
	"plasmaheat/material"
	"plasmaheat/mesh"
	"plasmaheat/model"
	"plasmaheat/physics"
)

func newDomain(t *testing.T, cfg model.SimulationConfig) *Domain {
	t.Helper()
	cfg.SetDefaults()
	m, err := mesh.New(cfg.Geometry.Radius, cfg.Geometry.Height, cfg.Mesh.Nr, cfg.Mesh.Nz)
	require.NoError(t, err)
	mat, err := material.New(cfg.Material, formula.NewEvaluator())
	require.NoError(t, err)
	p, err := physics.New(cfg.Torches, cfg.Boundary)
	require.NoError(t, err)
	return &Domain{Mesh: m, Material: mat, Physics: p}
}

func uniformField(d *Domain, temperature float64) *model.Field {
	f := model.NewField(d.Mesh.Nr, d.Mesh.Nz)
	h := d.Material.Enthalpy(temperature, 0)
	for k := range f.T {
		f.T[k] = temperature
		f.H[k] = h
	}
	return f
}

func storedEnergy(f *model.Field, d *Domain) float64 {
	e := 0.0
	for j := 0; j < d.Mesh.Nz; j++ {
		for i := 0; i < d.Mesh.Nr; i++ {
			e += d.Material.Density * d.Mesh.CellVolume(i, j) * f.H[f.Index(i, j)]
		}
	}
	return e
}

func newSolver(t *testing.T, kind string) Solver {
	t.Helper()
	cfg := model.DefaultConfig().Solver
	cfg.Kind = kind
	cfg.Workers = 4
	s, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func assertFinite(t *testing.T, f *model.Field) {
	t.Helper()
	for k := range f.T {
		require.False(t, math.IsNaN(f.T[k]) || math.IsInf(f.T[k], 0), "node %d", k)
	}
}

func TestNewValidation(t *testing.T) {
	cfg := model.DefaultConfig().Solver
	cfg.Kind = model.SolverImplicit

	for _, omega := range []float64{0.5, 2, 2.5} {
		c := cfg
		c.RelaxationFactor = omega
		_, err := New(c)
		var ip *model.InvalidParameterError
		assert.ErrorAs(t, err, &ip, "ω = %g", omega)
	}

	c := cfg
	c.SORTolerance = 0
	_, err := New(c)
	assert.Error(t, err)

	c = cfg
	c.Kind = "spectral"
	_, err = New(c)
	assert.Error(t, err)

	// ω = 1 退化为 Gauss-Seidel
	c = cfg
	c.RelaxationFactor = 1
	s, err := New(c)
	require.NoError(t, err)
	s.Close()
}

func TestStableTimestep(t *testing.T) {
	d := newDomain(t, model.DefaultConfig())
	f := uniformField(d, 300)

	dt, err := CalculateStableTimestep(f, d, model.FaceHarmonic, 0.9)
	require.NoError(t, err)
	assert.Positive(t, dt)

	// 不超过 min(dr², dz²) / (2α)
	alpha := 30.0 / (7800 * 500)
	h := math.Min(d.Mesh.Dr, d.Mesh.Dz)
	assert.LessOrEqual(t, dt, 0.9*h*h/(2*alpha))

	_, err = CalculateStableTimestep(f, d, model.FaceHarmonic, 0)
	assert.Error(t, err)
}

func TestExplicitStabilityAtStableTimestep(t *testing.T) {
	cfg := model.DefaultConfig()
	d := newDomain(t, cfg)
	f := uniformField(d, 300)
	s := newSolver(t, model.SolverExplicit)

	elapsed := 0.0
	for step := 1; step <= 100; step++ {
		dt, err := CalculateStableTimestep(f, d, model.FaceHarmonic, 0.9)
		require.NoError(t, err)
		_, err = s.SolveTimeStep(f, d, step, elapsed, dt)
		require.NoError(t, err)
		elapsed += dt
	}
	assertFinite(t, f)

	// 扩散只会降低峰值，温升不超过峰值热源在全部时间内的累积
	ceiling := 300 + d.Physics.Torches[0].Peak()*elapsed/(7800*500)
	assert.Less(t, f.Max(), ceiling)
	assert.Greater(t, f.Max(), 300.0)
	assert.GreaterOrEqual(t, f.Min(), 300.0-1e-9)
}

func TestScenarioHottestNodeAtTorch(t *testing.T) {
	d := newDomain(t, model.DefaultConfig())
	f := uniformField(d, 300)
	s := newSolver(t, model.SolverExplicit)

	elapsed := 0.0
	for step := 1; step <= 10; step++ {
		dt, err := CalculateStableTimestep(f, d, model.FaceHarmonic, 0.9)
		require.NoError(t, err)
		_, err = s.SolveTimeStep(f, d, step, elapsed, dt)
		require.NoError(t, err)
		elapsed += dt
	}

	// z = 1.0 恰好位于 j=9 与 j=10 中间，两者与焦点等距
	i, j := f.ArgMax()
	assert.Equal(t, 0, i)
	assert.LessOrEqual(t, math.Abs(d.Mesh.Z(j)-1.0), d.Mesh.Dz/2+1e-9)
	ni, nj := d.Mesh.Nearest(0, 1.0)
	assert.InDelta(t, f.At(ni, nj), f.Max(), 1e-6*f.Max())
}

func TestImplicitLargeTimestep(t *testing.T) {
	d := newDomain(t, model.DefaultConfig())
	f := uniformField(d, 300)
	s := newSolver(t, model.SolverImplicit)

	stable, err := CalculateStableTimestep(f, d, model.FaceHarmonic, 0.9)
	require.NoError(t, err)
	dt := 10 * stable

	prevE, prevMax := storedEnergy(f, d), f.Max()
	for step := 1; step <= 20; step++ {
		res, err := s.SolveTimeStep(f, d, step, float64(step-1)*dt, dt)
		require.NoError(t, err)
		assert.True(t, res.Converged, "step %d residual %g", step, res.Residual)
		assert.Nil(t, res.Warning)
		assert.Less(t, res.Residual, 1e-6)
		assertFinite(t, f)

		e := storedEnergy(f, d)
		assert.GreaterOrEqual(t, e, prevE)
		assert.GreaterOrEqual(t, f.Max(), prevMax)
		prevE, prevMax = e, f.Max()
	}
}

func TestImplicitReportsNonConvergence(t *testing.T) {
	d := newDomain(t, model.DefaultConfig())
	f := uniformField(d, 300)
	cfg := model.DefaultConfig().Solver
	cfg.Kind = model.SolverImplicit
	cfg.MaxIterations = 1
	cfg.SORTolerance = 1e-12
	s, err := New(cfg)
	require.NoError(t, err)
	defer s.Close()

	stable, err := CalculateStableTimestep(f, d, model.FaceHarmonic, 0.9)
	require.NoError(t, err)
	res, err := s.SolveTimeStep(f, d, 1, 0, 10*stable)
	require.NoError(t, err)
	assert.False(t, res.Converged)
	require.NotNil(t, res.Warning)
	assert.Equal(t, 1, res.Warning.Iterations)
}

func TestEnergyAccounting(t *testing.T) {
	for _, kind := range []string{model.SolverExplicit, model.SolverImplicit} {
		t.Run(kind, func(t *testing.T) {
			cfg := model.DefaultConfig()
			cfg.Boundary.Top = model.FaceConfig{Mode: model.BoundaryConvectionRadiation, H: 20, Ambient: 300}
			cfg.Torches[0].Z0 = 1.8
			d := newDomain(t, cfg)
			f := uniformField(d, 300)
			s := newSolver(t, kind)

			e0 := storedEnergy(f, d)
			in, out := 0.0, 0.0
			elapsed := 0.0
			for step := 1; step <= 20; step++ {
				dt, err := CalculateStableTimestep(f, d, model.FaceHarmonic, 0.9)
				require.NoError(t, err)
				if kind == model.SolverImplicit {
					dt *= 5
				}
				res, err := s.SolveTimeStep(f, d, step, elapsed, dt)
				require.NoError(t, err)
				in += res.EnergyIn
				out += res.EnergyOut
				elapsed += dt
			}
			assert.Positive(t, in)
			assert.Positive(t, out)

			gained := storedEnergy(f, d) - e0
			assert.InDelta(t, in-out, gained, 1e-9*in)
		})
	}
}

func TestZeroConductivityFails(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Material.Conductivity = model.PropertyConfig{
		Kind:  model.PropertyTable,
		Table: []model.TablePoint{{Temperature: 200, Value: 0}, {Temperature: 2000, Value: 0}},
	}
	d := newDomain(t, cfg)

	for _, kind := range []string{model.SolverExplicit, model.SolverImplicit} {
		f := uniformField(d, 300)
		before := f.Clone()
		_, err := newSolver(t, kind).SolveTimeStep(f, d, 1, 0, 1)
		var ip *model.InvalidParameterError
		require.True(t, errors.As(err, &ip), kind)
		assert.Equal(t, "thermal_conductivity", ip.Parameter)
		assert.Equal(t, before.T, f.T)
	}
}

func TestFormulaConductivity(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Material.Conductivity = model.PropertyConfig{Kind: model.PropertyFormula, Formula: "20 + 0.01 * T"}
	d := newDomain(t, cfg)
	f := uniformField(d, 300)
	s := newSolver(t, model.SolverExplicit)

	dt, err := CalculateStableTimestep(f, d, model.FaceArithmetic, 0.9)
	require.NoError(t, err)
	_, err = s.SolveTimeStep(f, d, 1, 0, dt)
	require.NoError(t, err)
	assert.Greater(t, f.Max(), 300.0)

	// 语法错误在构建材料时即报错
	cfg.Material.Conductivity.Formula = "20 +* T"
	_, err = material.New(cfg.Material, formula.NewEvaluator())
	var fe *model.FormulaError
	assert.ErrorAs(t, err, &fe)
}

func TestPhaseChangeFrontPinned(t *testing.T) {
	for _, kind := range []string{model.SolverExplicit, model.SolverImplicit} {
		t.Run(kind, func(t *testing.T) {
			cfg := model.DefaultConfig()
			cfg.Material.MeltingPoint = 400
			cfg.Material.LatentHeatFusion = 200000
			d := newDomain(t, cfg)
			f := uniformField(d, 300)
			s := newSolver(t, kind)

			elapsed := 0.0
			for step := 1; step <= 40; step++ {
				dt, err := CalculateStableTimestep(f, d, model.FaceHarmonic, 0.9)
				require.NoError(t, err)
				_, err = s.SolveTimeStep(f, d, step, elapsed, dt)
				require.NoError(t, err)
				elapsed += dt
			}

			partial := 0
			for k, fr := range f.Fraction {
				require.GreaterOrEqual(t, fr, 0.0)
				require.LessOrEqual(t, fr, 1.0)
				if fr > 0 && fr < 1 {
					partial++
					assert.Equal(t, 400.0, f.T[k])
				}
				if fr == 0 {
					assert.LessOrEqual(t, f.T[k], 400.0)
				}
			}
			assert.Positive(t, partial)
		})
	}
}

func TestExplicitInstabilityLeavesFieldUntouched(t *testing.T) {
	d := newDomain(t, model.DefaultConfig())
	f := uniformField(d, 300)
	s := newSolver(t, model.SolverExplicit)

	stable, err := CalculateStableTimestep(f, d, model.FaceHarmonic, 0.9)
	require.NoError(t, err)
	dt := 1000 * stable

	var instability *model.NumericalInstabilityError
	for step := 1; step <= 10; step++ {
		before := f.Clone()
		_, err = s.SolveTimeStep(f, d, step, float64(step-1)*dt, dt)
		if err != nil {
			require.True(t, errors.As(err, &instability))
			assert.Equal(t, step, instability.Step)
			assert.Equal(t, before.T, f.T)
			assert.Equal(t, before.H, f.H)
			return
		}
	}
	t.Fatal("expected numerical instability")
}
