package config

import (
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plasmaheat/model"
)

func TestLoadSampleFile(t *testing.T) {
	cfg, err := Load("../conf/config.ini")
	require.NoError(t, err)

	sim := cfg.Simulation
	def := model.DefaultConfig()
	assert.Equal(t, def.Geometry, sim.Geometry)
	assert.Equal(t, def.Mesh, sim.Mesh)
	assert.Equal(t, model.SolverExplicit, sim.Solver.Kind)
	assert.Equal(t, def.Material.Conductivity, sim.Material.Conductivity)
	assert.Equal(t, def.Boundary, sim.Boundary)
	assert.Equal(t, def.Torches, sim.Torches)
	assert.Equal(t, log.InfoLevel, cfg.LogLevel)
	assert.Equal(t, ":9000", cfg.Addr)
}

func TestDefaultsForMissingKeys(t *testing.T) {
	cfg, err := Load([]byte("[mesh]\nnr = 8\n"))
	require.NoError(t, err)

	def := model.DefaultConfig()
	assert.Equal(t, 8, cfg.Simulation.Mesh.Nr)
	assert.Equal(t, def.Mesh.Nz, cfg.Simulation.Mesh.Nz)
	assert.Equal(t, def.Material, cfg.Simulation.Material)
	assert.Equal(t, def.Simulation.TotalTime, cfg.Simulation.Simulation.TotalTime)
	assert.Len(t, cfg.Simulation.Torches, 1)
}

func TestPropertiesAndTorches(t *testing.T) {
	data := []byte(`
[material]
density = 2700
conductivity_table = 300:237, 900 : 220
specific_heat_formula = 900 + 0.1 * T
melting_point = 933.5
latent_heat_fusion = 397000

[boundary.top]
mode = fixed_temperature
temperature = 350

[torch.2]
z0 = 1.5
power = 2000
sigma = 0.05

[torch.1]
z0 = 0.5
power = 1000
efficiency = 0.7
sigma = 0.1
end_time = 30

[log]
level = debug
format = json
`)
	cfg, err := Load(data)
	require.NoError(t, err)

	mat := cfg.Simulation.Material
	assert.Equal(t, model.PropertyTable, mat.Conductivity.Kind)
	assert.Equal(t, []model.TablePoint{{Temperature: 300, Value: 237}, {Temperature: 900, Value: 220}}, mat.Conductivity.Table)
	assert.Equal(t, model.PropertyFormula, mat.SpecificHeat.Kind)
	assert.Equal(t, "900 + 0.1 * T", mat.SpecificHeat.Formula)
	assert.Equal(t, 933.5, mat.MeltingPoint)

	assert.Equal(t, model.BoundaryFixedTemperature, cfg.Simulation.Boundary.Top.Mode)
	assert.Equal(t, 350.0, cfg.Simulation.Boundary.Top.Temperature)

	torches := cfg.Simulation.Torches
	require.Len(t, torches, 2)
	assert.Equal(t, 0.5, torches[0].Z0)
	assert.Equal(t, 30.0, torches[0].EndTime)
	assert.Equal(t, 1.5, torches[1].Z0)
	assert.Equal(t, 1.0, torches[1].Efficiency)

	assert.Equal(t, log.DebugLevel, cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestMaterialByName(t *testing.T) {
	cfg, err := Load([]byte("[material]\nname = tungsten\n"))
	require.NoError(t, err)
	assert.Equal(t, "tungsten", cfg.Simulation.Material.Name)
	assert.Zero(t, cfg.Simulation.Material.Density)
}

func TestBadInput(t *testing.T) {
	_, err := Load([]byte("[material]\ndensity = 1\nconductivity_table = 300-5\n"))
	assert.Error(t, err)

	_, err = Load([]byte("[torch.main]\npower = 1\n"))
	assert.Error(t, err)

	_, err = Load([]byte("[log]\nlevel = loud\n"))
	assert.Error(t, err)

	_, err = Load("does-not-exist.ini")
	assert.Error(t, err)
}
