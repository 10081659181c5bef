package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldHelpers(t *testing.T) {
	f := NewField(3, 2)
	copy(f.T, []float64{300, 310, 320, 330, 900, 340})

	assert.Equal(t, 6, f.Len())
	assert.Equal(t, 900.0, f.At(1, 1))
	assert.Equal(t, 300.0, f.Min())
	assert.Equal(t, 900.0, f.Max())
	i, j := f.ArgMax()
	assert.Equal(t, [2]int{1, 1}, [2]int{i, j})
	assert.Equal(t, [][]float64{{300, 310, 320}, {330, 900, 340}}, f.Rows())

	c := f.Clone()
	c.T[0] = 1
	assert.Equal(t, 300.0, f.T[0])
}

func TestStatusJSON(t *testing.T) {
	data, err := json.Marshal(Progress{Status: Paused})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"status":"paused"`)

	var p Progress
	require.NoError(t, json.Unmarshal(data, &p))
	assert.Equal(t, Paused, p.Status)
	assert.False(t, p.Status.Terminal())
	assert.True(t, Cancelled.Terminal())

	assert.Error(t, json.Unmarshal([]byte(`{"status":"sleeping"}`), &p))
}

func TestSetDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := SimulationConfig{
		Solver:   SolverConfig{Kind: SolverImplicit, RelaxationFactor: 1.2},
		Boundary: BoundaryConfig{Top: FaceConfig{Mode: BoundaryFixedTemperature, Temperature: 350}},
	}
	cfg.SetDefaults()

	assert.Equal(t, SolverImplicit, cfg.Solver.Kind)
	assert.Equal(t, 1.2, cfg.Solver.RelaxationFactor)
	assert.Equal(t, 1e-6, cfg.Solver.SORTolerance)
	assert.Equal(t, BoundaryFixedTemperature, cfg.Boundary.Top.Mode)
	assert.Equal(t, BoundaryAdiabatic, cfg.Boundary.Bottom.Mode)
	assert.Equal(t, BoundaryConvectionRadiation, cfg.Boundary.Wall.Mode)
	assert.Equal(t, DefaultReferenceTemperature, cfg.Material.ReferenceTemperature)

	// 重试次数为 0 是合法配置
	cfg = DefaultConfig()
	cfg.Simulation.MaxRetries = 0
	cfg.SetDefaults()
	assert.Zero(t, cfg.Simulation.MaxRetries)
}

func TestErrorKinds(t *testing.T) {
	err := fmt.Errorf("material: %w", InvalidParameter("density", -1, "> 0"))
	var ip *InvalidParameterError
	require.True(t, errors.As(err, &ip))
	assert.Equal(t, "density", ip.Parameter)

	inner := errors.New("division by zero")
	err = fmt.Errorf("step: %w", &FormulaError{Formula: "1/0", Err: inner})
	var fe *FormulaError
	require.True(t, errors.As(err, &fe))
	assert.ErrorIs(t, err, inner)

	var ni *NumericalInstabilityError
	assert.False(t, errors.As(err, &ni))
	assert.Contains(t, (&NumericalInstabilityError{Step: 3, Time: 1.5}).Error(), "step 3")
}
