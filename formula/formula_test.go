package formula

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	e := NewEvaluator()

	v, err := e.Evaluate("30 - 0.01*T", 1000)
	require.NoError(t, err)
	assert.InDelta(t, 20.0, v, 1e-12)

	v, err = e.Evaluate("450 + 0.28*T - 2e-4*pow(T, 2.0)", 500)
	require.NoError(t, err)
	assert.InDelta(t, 450+140-50, v, 1e-9)

	v, err = e.Evaluate("sqrt(T)", 400)
	require.NoError(t, err)
	assert.InDelta(t, 20.0, v, 1e-12)

	v, err = e.Evaluate("25", 1234)
	require.NoError(t, err)
	assert.Equal(t, 25.0, v)
}

func TestEvaluateCachesPrograms(t *testing.T) {
	e := NewEvaluator()
	for i := 0; i < 10; i++ {
		_, err := e.Evaluate("exp(-T/1000)", float64(i))
		require.NoError(t, err)
	}
	assert.Len(t, e.programs, 1)

	v, err := e.Evaluate("exp(-T/1000)", 1000)
	require.NoError(t, err)
	assert.InDelta(t, math.Exp(-1), v, 1e-12)
}

func TestEvaluateErrors(t *testing.T) {
	e := NewEvaluator()

	_, err := e.Evaluate("30 - * T", 300)
	assert.Error(t, err)

	_, err = e.Evaluate("undefined_var * 2", 300)
	assert.Error(t, err)

	assert.NoError(t, e.Validate("T * 2"))
}
