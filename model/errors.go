package model

import "fmt"

// 结构化错误，调用方通过 errors.As 区分种类

// 参数非法，构造阶段发现，不做自动修正
type InvalidParameterError struct {
	Parameter string
	Value     float64
	Range     string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s = %g, expected %s", e.Parameter, e.Value, e.Range)
}

func InvalidParameter(parameter string, value float64, valid string) error {
	return &InvalidParameterError{Parameter: parameter, Value: value, Range: valid}
}

// 数值不稳定：出现 NaN/Inf 或绝对温度非正
type NumericalInstabilityError struct {
	Step int
	Time float64
}

func (e *NumericalInstabilityError) Error() string {
	return fmt.Sprintf("numerical instability at step %d (t = %g s)", e.Step, e.Time)
}

type MeshGenerationError struct {
	Reason string
}

func (e *MeshGenerationError) Error() string {
	return "mesh generation failed: " + e.Reason
}

type FormulaError struct {
	Formula string
	Err     error
}

func (e *FormulaError) Error() string {
	return fmt.Sprintf("formula %q: %v", e.Formula, e.Err)
}

func (e *FormulaError) Unwrap() error {
	return e.Err
}

// SOR 未收敛。默认只是警告，是否致命由调度器决定
type ConvergenceWarning struct {
	Iterations int
	Residual   float64
	Tolerance  float64
}

func (w *ConvergenceWarning) Error() string {
	return fmt.Sprintf("SOR did not converge after %d iterations (residual %g, tolerance %g)",
		w.Iterations, w.Residual, w.Tolerance)
}
