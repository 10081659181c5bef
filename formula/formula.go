package formula

import (
	"fmt"
	"math"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// 基于 expr 的公式计算器，变量 T 为温度 (K)
// 例如 "30 - 0.01*T"、"450 + 0.28*T - 2e-4*pow(T, 2.0)"
type Evaluator struct {
	mu       sync.RWMutex
	programs map[string]*vm.Program
}

func NewEvaluator() *Evaluator {
	return &Evaluator{programs: make(map[string]*vm.Program)}
}

func env(t float64) map[string]interface{} {
	return map[string]interface{}{
		"T":    t,
		"exp":  math.Exp,
		"log":  math.Log,
		"sqrt": math.Sqrt,
		"pow":  math.Pow,
	}
}

// 编译结果按公式字符串缓存
func (e *Evaluator) compile(formula string) (*vm.Program, error) {
	e.mu.RLock()
	p, ok := e.programs[formula]
	e.mu.RUnlock()
	if ok {
		return p, nil
	}

	p, err := expr.Compile(formula, expr.Env(env(0)), expr.AsFloat64())
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	e.programs[formula] = p
	e.mu.Unlock()
	return p, nil
}

func (e *Evaluator) Evaluate(formula string, temperature float64) (float64, error) {
	p, err := e.compile(formula)
	if err != nil {
		return 0, err
	}
	out, err := expr.Run(p, env(temperature))
	if err != nil {
		return 0, err
	}
	v, ok := out.(float64)
	if !ok {
		return 0, fmt.Errorf("formula returned %T, expected a number", out)
	}
	return v, nil
}

// 预先检查公式能否编译
func (e *Evaluator) Validate(formula string) error {
	_, err := e.compile(formula)
	return err
}
