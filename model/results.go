package model

import (
	"encoding/json"
	"fmt"
)

type Status int

const (
	NotStarted Status = iota
	Running
	Paused
	Completed
	Failed
	Cancelled
)

var statusNames = [...]string{"not_started", "running", "paused", "completed", "failed", "cancelled"}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "unknown"
}

func (s Status) Terminal() bool {
	return s == Completed || s == Failed || s == Cancelled
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for k, n := range statusNames {
		if n == name {
			*s = Status(k)
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", name)
}

// 拉取式进度
type Progress struct {
	Status                  Status  `json:"status"`
	CurrentTime             float64 `json:"current_time"`
	CurrentStep             int     `json:"current_step"`
	TotalTime               float64 `json:"total_time"`
	Progress                float64 `json:"progress"`
	EnergyConservationError float64 `json:"energy_conservation_error"`
	Error                   string  `json:"error,omitempty"`
}

// 某一时刻的温度场快照
type Snapshot struct {
	Time        float64     `json:"time"`
	Step        int         `json:"step"`
	Temperature [][]float64 `json:"temperature"` // [z][r]
	Fraction    [][]float64 `json:"fraction,omitempty"`
	Min         float64     `json:"min"`
	Max         float64     `json:"max"`
}

type Results struct {
	Status                  Status         `json:"status"`
	Snapshots               []*Snapshot    `json:"snapshots"`
	TimeAxis                []float64      `json:"time_axis"`
	MinTemperature          float64        `json:"min_temperature"`
	MaxTemperature          float64        `json:"max_temperature"`
	MeshResolution          MeshResolution `json:"mesh_resolution"`
	Steps                   int            `json:"steps"`
	EnergyIn                float64        `json:"energy_in"`
	EnergyOut               float64        `json:"energy_out"`
	EnergyStored            float64        `json:"energy_stored"`
	EnergyConservationError float64        `json:"energy_conservation_error"`
	ConvergenceWarnings     int            `json:"convergence_warnings"`
}
