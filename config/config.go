package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"

	"plasmaheat/model"
)

// ini 配置：仿真参数 + 日志 + 服务地址
type Config struct {
	Simulation model.SimulationConfig

	LogLevel  log.Level
	LogFormat string // text | json

	Addr string
}

// 读取 ini 文件，source 可以是文件路径或 []byte
// 缺失的键使用默认值
func Load(source interface{}) (*Config, error) {
	file, err := ini.Load(source)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}
	return loadCfg(file)
}

func loadCfg(file *ini.File) (*Config, error) {
	def := model.DefaultConfig()
	cfg := &Config{}
	sim := &cfg.Simulation

	geometry := file.Section("geometry")
	sim.Geometry = model.Geometry{
		Radius: geometry.Key("radius").MustFloat64(def.Geometry.Radius),
		Height: geometry.Key("height").MustFloat64(def.Geometry.Height),
	}

	mesh := file.Section("mesh")
	sim.Mesh = model.MeshResolution{
		Nr: mesh.Key("nr").MustInt(def.Mesh.Nr),
		Nz: mesh.Key("nz").MustInt(def.Mesh.Nz),
	}

	solver := file.Section("solver")
	sim.Solver = model.SolverConfig{
		Kind:                 solver.Key("kind").MustString(def.Solver.Kind),
		FaceAverage:          solver.Key("face_average").MustString(def.Solver.FaceAverage),
		Theta:                solver.Key("theta").MustFloat64(def.Solver.Theta),
		RelaxationFactor:     solver.Key("relaxation_factor").MustFloat64(def.Solver.RelaxationFactor),
		SORTolerance:         solver.Key("sor_tolerance").MustFloat64(def.Solver.SORTolerance),
		MaxIterations:        solver.Key("max_iterations").MustInt(def.Solver.MaxIterations),
		Workers:              solver.Key("workers").MustInt(def.Solver.Workers),
		SafetyFactor:         solver.Key("safety_factor").MustFloat64(def.Solver.SafetyFactor),
		FailOnNonConvergence: solver.Key("fail_on_non_convergence").MustBool(false),
	}

	run := file.Section("simulation")
	sim.Simulation = model.RunConfig{
		TotalTime:              run.Key("total_time").MustFloat64(def.Simulation.TotalTime),
		TimeStep:               run.Key("time_step").MustFloat64(0),
		ImplicitStepFactor:     run.Key("implicit_step_factor").MustFloat64(def.Simulation.ImplicitStepFactor),
		AcceptUnstableTimeStep: run.Key("accept_unstable_time_step").MustBool(false),
		InitialTemperature:     run.Key("initial_temperature").MustFloat64(def.Simulation.InitialTemperature),
		StorageInterval:        run.Key("storage_interval").MustFloat64(def.Simulation.StorageInterval),
		MaxRetries:             run.Key("max_retries").MustInt(def.Simulation.MaxRetries),
	}

	mat, err := loadMaterial(file.Section("material"), def.Material)
	if err != nil {
		return nil, err
	}
	sim.Material = mat

	sim.Boundary = model.BoundaryConfig{
		Wall:   loadFace(file.Section("boundary.wall"), def.Boundary.Wall),
		Top:    loadFace(file.Section("boundary.top"), def.Boundary.Top),
		Bottom: loadFace(file.Section("boundary.bottom"), def.Boundary.Bottom),
	}

	sim.Torches, err = loadTorches(file, def.Torches)
	if err != nil {
		return nil, err
	}

	logSection := file.Section("log")
	cfg.LogLevel, err = log.ParseLevel(logSection.Key("level").MustString("info"))
	if err != nil {
		return nil, err
	}
	cfg.LogFormat = logSection.Key("format").MustString("text")
	cfg.Addr = file.Section("server").Key("addr").MustString(":9000")
	return cfg, nil
}

// 只写 name 时使用材料库中的参数
func loadMaterial(sec *ini.Section, def model.MaterialConfig) (model.MaterialConfig, error) {
	if len(sec.Keys()) == 0 {
		return def, nil
	}
	mat := model.MaterialConfig{
		Name:                 sec.Key("name").String(),
		Density:              sec.Key("density").MustFloat64(0),
		Emissivity:           sec.Key("emissivity").MustFloat64(def.Emissivity),
		MeltingPoint:         sec.Key("melting_point").MustFloat64(0),
		LatentHeatFusion:     sec.Key("latent_heat_fusion").MustFloat64(0),
		ReferenceTemperature: sec.Key("reference_temperature").MustFloat64(0),
		MinTemperature:       sec.Key("min_temperature").MustFloat64(0),
		MaxTemperature:       sec.Key("max_temperature").MustFloat64(0),
	}
	if mat.Density == 0 {
		return mat, nil
	}
	var err error
	if mat.Conductivity, err = loadProperty(sec, "conductivity", def.Conductivity); err != nil {
		return mat, err
	}
	if mat.SpecificHeat, err = loadProperty(sec, "specific_heat", def.SpecificHeat); err != nil {
		return mat, err
	}
	return mat, nil
}

// 物性参数三种写法：
//
//	conductivity         = 30
//	conductivity_table   = 300:45, 800:33, 1200:27
//	conductivity_formula = 20 + 0.01 * T
func loadProperty(sec *ini.Section, name string, def model.PropertyConfig) (model.PropertyConfig, error) {
	switch {
	case sec.HasKey(name + "_formula"):
		return model.PropertyConfig{Kind: model.PropertyFormula, Formula: sec.Key(name + "_formula").String()}, nil
	case sec.HasKey(name + "_table"):
		points, err := parseTable(sec.Key(name + "_table").String())
		if err != nil {
			return def, fmt.Errorf("%s_table: %w", name, err)
		}
		return model.PropertyConfig{Kind: model.PropertyTable, Table: points}, nil
	case sec.HasKey(name):
		return model.PropertyConfig{Kind: model.PropertyConstant, Value: sec.Key(name).MustFloat64(def.Value)}, nil
	}
	return def, nil
}

func parseTable(s string) ([]model.TablePoint, error) {
	points := make([]model.TablePoint, 0)
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		pair := strings.SplitN(item, ":", 2)
		if len(pair) != 2 {
			return nil, fmt.Errorf("bad table entry %q, expected temperature:value", item)
		}
		t, err := strconv.ParseFloat(strings.TrimSpace(pair[0]), 64)
		if err != nil {
			return nil, err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(pair[1]), 64)
		if err != nil {
			return nil, err
		}
		points = append(points, model.TablePoint{Temperature: t, Value: v})
	}
	return points, nil
}

func loadFace(sec *ini.Section, def model.FaceConfig) model.FaceConfig {
	return model.FaceConfig{
		Mode:        sec.Key("mode").MustString(def.Mode),
		Temperature: sec.Key("temperature").MustFloat64(def.Temperature),
		H:           sec.Key("h").MustFloat64(def.H),
		Ambient:     sec.Key("ambient").MustFloat64(def.Ambient),
	}
}

// [torch.1] [torch.2] ...，按编号排序；没有任何 torch 段时使用默认的单个等离子炬
func loadTorches(file *ini.File, def []model.TorchConfig) ([]model.TorchConfig, error) {
	type numbered struct {
		n   int
		cfg model.TorchConfig
	}
	found := make([]numbered, 0)
	for _, sec := range file.Sections() {
		if !strings.HasPrefix(sec.Name(), "torch.") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(sec.Name(), "torch."))
		if err != nil {
			return nil, fmt.Errorf("bad torch section %q", sec.Name())
		}
		found = append(found, numbered{n: n, cfg: model.TorchConfig{
			R0:         sec.Key("r0").MustFloat64(0),
			Z0:         sec.Key("z0").MustFloat64(0),
			Power:      sec.Key("power").MustFloat64(0),
			Efficiency: sec.Key("efficiency").MustFloat64(1),
			Sigma:      sec.Key("sigma").MustFloat64(0),
			StartTime:  sec.Key("start_time").MustFloat64(0),
			EndTime:    sec.Key("end_time").MustFloat64(0),
		}})
	}
	if len(found) == 0 {
		return append([]model.TorchConfig(nil), def...), nil
	}
	sort.Slice(found, func(a, b int) bool { return found[a].n < found[b].n })
	torches := make([]model.TorchConfig, len(found))
	for k, t := range found {
		torches[k] = t.cfg
	}
	return torches, nil
}

// 按配置设置 logrus
func (c *Config) SetupLogging() {
	log.SetLevel(c.LogLevel)
	if c.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
