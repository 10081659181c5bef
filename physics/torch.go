package physics

import (
	"math"

	"plasmaheat/model"
)

// 等离子炬，空间分布为高斯型
type Torch struct {
	R0, Z0     float64 // 焦点位置 m
	Power      float64 // W
	Efficiency float64 // 0 ~ 1
	Sigma      float64 // 高斯分布宽度 m
	StartTime  float64
	EndTime    float64 // 0 表示一直开启
}

func NewTorch(cfg model.TorchConfig) (Torch, error) {
	t := Torch{
		R0:         cfg.R0,
		Z0:         cfg.Z0,
		Power:      cfg.Power,
		Efficiency: cfg.Efficiency,
		Sigma:      cfg.Sigma,
		StartTime:  cfg.StartTime,
		EndTime:    cfg.EndTime,
	}
	return t, t.Validate()
}

func (t Torch) Validate() error {
	switch {
	case !(t.Power >= 0):
		return model.InvalidParameter("torch.power", t.Power, ">= 0")
	case !(t.Efficiency >= 0 && t.Efficiency <= 1):
		return model.InvalidParameter("torch.efficiency", t.Efficiency, "[0, 1]")
	case !(t.Sigma > 0):
		return model.InvalidParameter("torch.sigma", t.Sigma, "> 0")
	case t.EndTime != 0 && t.EndTime < t.StartTime:
		return model.InvalidParameter("torch.end_time", t.EndTime, ">= start_time")
	}
	return nil
}

func (t Torch) Active(time float64) bool {
	if time < t.StartTime {
		return false
	}
	return t.EndTime == 0 || time < t.EndTime
}

// 峰值热源强度 P·η / (2πσ²)
func (t Torch) Peak() float64 {
	return t.Power * t.Efficiency / (2 * math.Pi * t.Sigma * t.Sigma)
}

// Q(r, z) = P·η / (2πσ²) · exp(-d² / (2σ²))
func (t Torch) SourceAt(r, z float64) float64 {
	dr, dz := r-t.R0, z-t.Z0
	d2 := dr*dr + dz*dz
	return t.Peak() * math.Exp(-d2/(2*t.Sigma*t.Sigma))
}
