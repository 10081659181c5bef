package simulation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"plasmaheat/calculator"
	"plasmaheat/deque"
	"plasmaheat/formula"
	"plasmaheat/material"
	"plasmaheat/mesh"
	"plasmaheat/model"
	"plasmaheat/physics"
)

var (
	ErrAlreadyStarted = errors.New("simulation already started")
	ErrNotRunning     = errors.New("simulation is not running")
	ErrNotPaused      = errors.New("simulation is not paused")
)

// 仿真调度器：持有网格、材料、热源边界与求解器，驱动时间循环
// 时间循环只在一个 goroutine 中运行，外部通过 Pause/Resume/Cancel 与拉取式的 Progress/CurrentField 交互
type Simulation struct {
	cfg    model.SimulationConfig
	domain *calculator.Domain
	solver calculator.Solver
	hub    *hub

	field   *model.Field // 只由运行 goroutine 写
	weights []float64    // ρ·V，用于计算场内能量

	mu        sync.RWMutex
	status    model.Status
	progress  model.Progress
	current   *model.Field // 最近一个完成时间步的副本
	snapshots *deque.ArrDeque
	energy    energyAccount
	warnings  int
	err       error

	startOnce sync.Once
	done      chan struct{}
}

type Option func(*options)

type options struct {
	solver    calculator.Solver
	evaluator material.Evaluator
}

// 替换默认求解器
func WithSolver(s calculator.Solver) Option {
	return func(o *options) {
		o.solver = s
	}
}

// 替换默认的公式求值器
func WithEvaluator(ev material.Evaluator) Option {
	return func(o *options) {
		o.evaluator = ev
	}
}

func New(cfg model.SimulationConfig, opts ...Option) (*Simulation, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.evaluator == nil {
		o.evaluator = formula.NewEvaluator()
	}

	cfg.SetDefaults()
	if err := validateRun(cfg.Simulation); err != nil {
		return nil, err
	}
	m, err := mesh.New(cfg.Geometry.Radius, cfg.Geometry.Height, cfg.Mesh.Nr, cfg.Mesh.Nz)
	if err != nil {
		return nil, err
	}
	matCfg, err := resolveMaterial(cfg.Material)
	if err != nil {
		return nil, err
	}
	mat, err := material.New(matCfg, o.evaluator)
	if err != nil {
		return nil, err
	}
	p, err := physics.New(cfg.Torches, cfg.Boundary)
	if err != nil {
		return nil, err
	}
	solver := o.solver
	if solver == nil {
		if solver, err = calculator.New(cfg.Solver); err != nil {
			return nil, err
		}
	}

	s := &Simulation{
		cfg:    cfg,
		domain: &calculator.Domain{Mesh: m, Material: mat, Physics: p},
		solver: solver,
		hub:    newHub(),
		done:   make(chan struct{}),
	}
	s.initField()
	s.snapshots = deque.NewArrDeque(snapshotCapacity(cfg.Simulation))
	s.progress = model.Progress{Status: model.NotStarted, TotalTime: cfg.Simulation.TotalTime}

	log.WithFields(log.Fields{
		"nr":       m.Nr,
		"nz":       m.Nz,
		"solver":   solver.Name(),
		"material": mat.Name,
		"volume":   m.TotalVolume(),
		"torches":  len(p.Torches),
	}).Info("仿真初始化完成")
	return s, nil
}

func validateRun(r model.RunConfig) error {
	switch {
	case !(r.TotalTime > 0):
		return model.InvalidParameter("total_time", r.TotalTime, "> 0")
	case !(r.InitialTemperature > 0):
		return model.InvalidParameter("initial_temperature", r.InitialTemperature, "> 0 K")
	case r.TimeStep < 0:
		return model.InvalidParameter("time_step", r.TimeStep, ">= 0")
	case r.StorageInterval < 0:
		return model.InvalidParameter("storage_interval", r.StorageInterval, ">= 0")
	case r.MaxRetries < 0:
		return model.InvalidParameter("max_retries", float64(r.MaxRetries), ">= 0")
	case !(r.ImplicitStepFactor >= 1):
		return model.InvalidParameter("implicit_step_factor", r.ImplicitStepFactor, ">= 1")
	}
	return nil
}

// 只给出名称时从材料库中选取
func resolveMaterial(cfg model.MaterialConfig) (model.MaterialConfig, error) {
	if cfg.Density != 0 || cfg.Name == "" {
		return cfg, nil
	}
	lib, err := material.Lookup(cfg.Name)
	if err != nil {
		return cfg, err
	}
	lib.ReferenceTemperature = cfg.ReferenceTemperature
	lib.MinTemperature, lib.MaxTemperature = cfg.MinTemperature, cfg.MaxTemperature
	return lib, nil
}

func snapshotCapacity(r model.RunConfig) int {
	n := 2
	if r.StorageInterval > 0 {
		n += int(math.Ceil(r.TotalTime / r.StorageInterval))
	}
	return n + 1
}

func (s *Simulation) initField() {
	m, mat := s.domain.Mesh, s.domain.Material
	t0 := s.cfg.Simulation.InitialTemperature
	h0 := mat.Enthalpy(t0, 0)
	temp, fraction := mat.TemperatureAndFraction(h0)

	s.field = model.NewField(m.Nr, m.Nz)
	s.weights = make([]float64, m.Size())
	for j := 0; j < m.Nz; j++ {
		for i := 0; i < m.Nr; i++ {
			n := m.Index(i, j)
			s.field.T[n], s.field.H[n], s.field.Fraction[n] = temp, h0, fraction
			s.weights[n] = mat.Density * m.CellVolume(i, j)
		}
	}
	s.domain.Physics.ApplyDirichlet(m, s.field, mat)
	s.current = s.field.Clone()
	s.energy.initial = s.storedEnergy()
	s.energy.stored = s.energy.initial
}

// 场内能量 Σ ρ·V·H
func (s *Simulation) storedEnergy() float64 {
	return floats.Dot(s.weights, s.field.H)
}

func (s *Simulation) Mesh() *mesh.Mesh {
	return s.domain.Mesh
}

func (s *Simulation) Config() model.SimulationConfig {
	return s.cfg
}

// 在新的 goroutine 中运行
func (s *Simulation) Start(ctx context.Context) error {
	started := false
	s.startOnce.Do(func() {
		started = true
		s.mu.Lock()
		if s.status == model.NotStarted {
			s.status = model.Running
			s.progress.Status = model.Running
		}
		s.mu.Unlock()
		go s.run(ctx)
	})
	if !started {
		return ErrAlreadyStarted
	}
	return nil
}

// 阻塞运行直到结束。用户取消返回 nil，ctx 取消返回 ctx.Err()
func (s *Simulation) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	return s.Wait()
}

func (s *Simulation) Wait() error {
	<-s.done
	return s.Err()
}

func (s *Simulation) Done() <-chan struct{} {
	return s.done
}

func (s *Simulation) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// 每完成一个时间步收到一次信号
func (s *Simulation) Updates() <-chan struct{} {
	return s.hub.periodCalcResult
}

func (s *Simulation) Pause() error {
	if s.Status() != model.Running {
		return ErrNotRunning
	}
	s.hub.pause()
	return nil
}

// 暂停请求尚未生效时也可以撤销
func (s *Simulation) Resume() error {
	if status := s.Status(); status != model.Paused && status != model.Running {
		return ErrNotPaused
	}
	s.hub.resume()
	return nil
}

// 取消在当前时间步结束后生效，未启动的仿真直接进入 Cancelled
func (s *Simulation) Cancel() {
	s.hub.cancel()
	s.mu.Lock()
	if s.status == model.NotStarted {
		s.status = model.Cancelled
		s.progress.Status = model.Cancelled
	}
	s.mu.Unlock()
}

func (s *Simulation) Status() model.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Simulation) Progress() model.Progress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progress
}

// 最近一个完整时间步的温度场副本
func (s *Simulation) CurrentField() *model.Field {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

func (s *Simulation) setStatus(status model.Status) {
	s.mu.Lock()
	s.status = status
	s.progress.Status = status
	s.mu.Unlock()
}

func (s *Simulation) run(ctx context.Context) {
	defer close(s.done)
	defer s.solver.Close()
	stop := context.AfterFunc(ctx, s.hub.cancel)
	defer stop()

	if s.Status() == model.Cancelled {
		return
	}

	start := time.Now()
	total := s.cfg.Simulation.TotalTime
	interval := s.cfg.Simulation.StorageInterval
	t, step := 0.0, 0
	nextStore := interval
	s.store(t, step)

	log.WithFields(log.Fields{
		"totalTime": total,
		"solver":    s.solver.Name(),
	}).Info("仿真开始")

	for t < total*(1-1e-12) {
		cancelled := s.hub.checkpoint(
			func() { s.setStatus(model.Paused) },
			func() { s.setStatus(model.Running) },
		)
		if cancelled {
			s.finish(model.Cancelled, ctx.Err())
			log.WithFields(log.Fields{"step": step, "time": t}).Info("仿真已取消")
			return
		}

		dt, err := s.timeStep()
		if err != nil {
			s.fail(err)
			return
		}
		dt = math.Min(dt, total-t)

		res, dt, err := s.stepWithRetry(step+1, t, dt)
		if err != nil {
			s.fail(err)
			return
		}
		step++
		t += dt
		s.account(res)
		if res.Warning != nil && s.cfg.Solver.FailOnNonConvergence {
			s.fail(res.Warning)
			return
		}

		store := t >= total*(1-1e-12)
		for interval > 0 && t >= nextStore*(1-1e-12) {
			store = true
			nextStore += interval
		}
		s.publish(t, step, store)
	}

	s.finish(model.Completed, nil)
	log.WithFields(log.Fields{
		"steps":       step,
		"cost":        time.Since(start),
		"energyError": s.Progress().EnergyConservationError,
	}).Info("仿真完成")
}

// 显式格式默认取稳定步长，配置的步长超过稳定步长时拒绝，除非显式接受风险
// 隐式格式默认取稳定步长的 ImplicitStepFactor 倍
func (s *Simulation) timeStep() (float64, error) {
	stable, err := calculator.CalculateStableTimestep(s.field, s.domain, s.cfg.Solver.FaceAverage, s.cfg.Solver.SafetyFactor)
	if err != nil {
		return 0, err
	}
	implicit := s.solver.Name() == model.SolverImplicit
	if configured := s.cfg.Simulation.TimeStep; configured > 0 {
		if !implicit && configured > stable && !s.cfg.Simulation.AcceptUnstableTimeStep {
			return 0, model.InvalidParameter("time_step", configured, fmt.Sprintf("<= %g s (stable limit)", stable))
		}
		return configured, nil
	}
	if implicit {
		return s.cfg.Simulation.ImplicitStepFactor * stable, nil
	}
	return stable, nil
}

// 数值不稳定时时间步长减半重试
func (s *Simulation) stepWithRetry(step int, t, dt float64) (*calculator.StepResult, float64, error) {
	for retry := 0; ; retry++ {
		res, err := s.solver.SolveTimeStep(s.field, s.domain, step, t, dt)
		if err == nil {
			return res, dt, nil
		}
		var instability *model.NumericalInstabilityError
		if !errors.As(err, &instability) || retry >= s.cfg.Simulation.MaxRetries {
			return nil, dt, err
		}
		log.WithFields(log.Fields{
			"step":  step,
			"dt":    dt,
			"retry": retry + 1,
		}).Warn("数值不稳定，时间步长减半重试")
		dt /= 2
	}
}

// 施加第一类边界并更新能量账目，边界重置带走的能量计为散失
func (s *Simulation) account(res *calculator.StepResult) {
	m, p := s.domain.Mesh, s.domain.Physics
	exchange := 0.0
	if p.HasDirichlet() {
		before := s.storedEnergy()
		p.ApplyDirichlet(m, s.field, s.domain.Material)
		exchange = before - s.storedEnergy()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.energy.in += res.EnergyIn
	s.energy.out += res.EnergyOut + exchange
	if res.Warning != nil {
		s.warnings++
	}
}

func (s *Simulation) publish(t float64, step int, store bool) {
	stored := s.storedEnergy()
	s.mu.Lock()
	s.current.CopyFrom(s.field)
	s.energy.stored = stored
	s.progress.CurrentTime = t
	s.progress.CurrentStep = step
	s.progress.Progress = math.Min(t/s.cfg.Simulation.TotalTime, 1)
	s.progress.EnergyConservationError = s.energy.relativeError()
	s.mu.Unlock()

	if store {
		s.store(t, step)
	}
	s.hub.pushSignal()
	log.WithFields(log.Fields{
		"step": step,
		"time": t,
		"max":  s.field.Max(),
	}).Debug("时间步完成")
}

func (s *Simulation) store(t float64, step int) {
	snap := &model.Snapshot{
		Time:        t,
		Step:        step,
		Temperature: s.field.Rows(),
		Min:         s.field.Min(),
		Max:         s.field.Max(),
	}
	if s.domain.Material.HasPhaseChange() {
		snap.Fraction = s.field.FractionRows()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshots.IsFull() {
		dropped := s.snapshots.RemoveFirst()
		log.WithField("time", dropped.Time).Warn("快照缓冲区已满，丢弃最早的快照")
	}
	s.snapshots.AddLast(snap)
}

func (s *Simulation) fail(err error) {
	log.WithError(err).Error("仿真失败")
	s.finish(model.Failed, err)
}

func (s *Simulation) finish(status model.Status, err error) {
	s.mu.Lock()
	s.status = status
	s.progress.Status = status
	s.err = err
	if err != nil {
		s.progress.Error = err.Error()
	}
	s.mu.Unlock()
	s.hub.pushSignal()
}

// 汇总结果，运行中调用时返回截至当前的结果
func (s *Simulation) Results() *model.Results {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := &model.Results{
		Status:                  s.status,
		Snapshots:               s.snapshots.Slice(),
		MeshResolution:          model.MeshResolution{Nr: s.domain.Mesh.Nr, Nz: s.domain.Mesh.Nz},
		Steps:                   s.progress.CurrentStep,
		EnergyIn:                s.energy.in,
		EnergyOut:               s.energy.out,
		EnergyStored:            s.energy.stored - s.energy.initial,
		EnergyConservationError: s.energy.relativeError(),
		ConvergenceWarnings:     s.warnings,
		MinTemperature:          math.Inf(1),
		MaxTemperature:          math.Inf(-1),
	}
	for _, snap := range res.Snapshots {
		res.TimeAxis = append(res.TimeAxis, snap.Time)
		res.MinTemperature = math.Min(res.MinTemperature, snap.Min)
		res.MaxTemperature = math.Max(res.MaxTemperature, snap.Max)
	}
	if len(res.Snapshots) == 0 {
		// 尚未存储快照时取当前温度场
		res.MinTemperature = s.current.Min()
		res.MaxTemperature = s.current.Max()
	}
	return res
}

// 初始温度场下的显式稳定时间步长
func (s *Simulation) StableTimestep() (float64, error) {
	return calculator.CalculateStableTimestep(s.field, s.domain, s.cfg.Solver.FaceAverage, s.cfg.Solver.SafetyFactor)
}
