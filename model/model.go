package model

// 仿真配置记录，JSON 结构与外层项目文件保持一致
// 单位统一为国际单位制：m, s, W, K, J/kg

type SimulationConfig struct {
	Geometry   Geometry       `json:"geometry"`
	Mesh       MeshResolution `json:"mesh"`
	Solver     SolverConfig   `json:"solver"`
	Simulation RunConfig      `json:"simulation"`
	Material   MaterialConfig `json:"material"`
	Boundary   BoundaryConfig `json:"boundary"`
	Torches    []TorchConfig  `json:"torches"`
}

// 圆柱体尺寸
type Geometry struct {
	Radius float64 `json:"radius"`
	Height float64 `json:"height"`
}

type MeshResolution struct {
	Nr int `json:"nr"`
	Nz int `json:"nz"`
}

const (
	SolverExplicit = "explicit"
	SolverImplicit = "implicit"

	FaceHarmonic   = "harmonic"
	FaceArithmetic = "arithmetic"
)

type SolverConfig struct {
	Kind                 string  `json:"kind"`         // explicit | implicit
	FaceAverage          string  `json:"face_average"` // harmonic | arithmetic
	Theta                float64 `json:"theta"`        // 0.5 为 Crank-Nicolson
	RelaxationFactor     float64 `json:"relaxation_factor"`
	SORTolerance         float64 `json:"sor_tolerance"`
	MaxIterations        int     `json:"max_iterations"`
	Workers              int     `json:"workers"`
	SafetyFactor         float64 `json:"safety_factor"`
	FailOnNonConvergence bool    `json:"fail_on_non_convergence"`
}

type RunConfig struct {
	TotalTime              float64 `json:"total_time"`
	TimeStep               float64 `json:"time_step"` // 0 表示自动计算
	ImplicitStepFactor     float64 `json:"implicit_step_factor"`
	AcceptUnstableTimeStep bool    `json:"accept_unstable_time_step"`
	InitialTemperature     float64 `json:"initial_temperature"`
	StorageInterval        float64 `json:"storage_interval"`
	MaxRetries             int     `json:"max_retries"`
}

const (
	PropertyConstant = "constant"
	PropertyTable    = "table"
	PropertyFormula  = "formula"
)

// 物性参数，三选一：常数 / 温度表 / 公式
type PropertyConfig struct {
	Kind    string       `json:"kind"`
	Value   float64      `json:"value,omitempty"`
	Table   []TablePoint `json:"table,omitempty"`
	Formula string       `json:"formula,omitempty"`
}

type TablePoint struct {
	Temperature float64 `json:"temperature"`
	Value       float64 `json:"value"`
}

type MaterialConfig struct {
	Name                 string         `json:"name"`
	Density              float64        `json:"density"`
	Conductivity         PropertyConfig `json:"thermal_conductivity"`
	SpecificHeat         PropertyConfig `json:"specific_heat"`
	Emissivity           float64        `json:"emissivity"`
	MeltingPoint         float64        `json:"melting_point,omitempty"`
	LatentHeatFusion     float64        `json:"latent_heat_fusion,omitempty"`
	ReferenceTemperature float64        `json:"reference_temperature,omitempty"`
	MinTemperature       float64        `json:"min_temperature,omitempty"`
	MaxTemperature       float64        `json:"max_temperature,omitempty"`
}

// 等离子炬
type TorchConfig struct {
	R0         float64 `json:"r0"`
	Z0         float64 `json:"z0"`
	Power      float64 `json:"power"`
	Efficiency float64 `json:"efficiency"`
	Sigma      float64 `json:"sigma"`
	StartTime  float64 `json:"start_time,omitempty"`
	EndTime    float64 `json:"end_time,omitempty"` // 0 表示一直开启
}

const (
	BoundaryAdiabatic           = "adiabatic"
	BoundaryFixedTemperature    = "fixed_temperature"
	BoundaryConvectionRadiation = "convection_radiation"
)

type BoundaryConfig struct {
	Wall   FaceConfig `json:"wall"`
	Top    FaceConfig `json:"top"`
	Bottom FaceConfig `json:"bottom"`
}

type FaceConfig struct {
	Mode        string  `json:"mode"`
	Temperature float64 `json:"temperature,omitempty"` // fixed_temperature
	H           float64 `json:"h,omitempty"`           // 对流换热系数
	Ambient     float64 `json:"ambient,omitempty"`
}

// 前后端通信消息结构
type Msg struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}
