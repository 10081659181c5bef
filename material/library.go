package material

import (
	"fmt"
	"sort"
	"strings"

	"plasmaheat/model"
)

// 内置材料库，配置中可以直接按名称选择
var library = map[string]model.MaterialConfig{
	"steel": {
		Name:             "steel",
		Density:          7800,
		Conductivity:     model.PropertyConfig{Kind: model.PropertyTable, Table: []model.TablePoint{{Temperature: 300, Value: 45}, {Temperature: 800, Value: 33}, {Temperature: 1200, Value: 27}, {Temperature: 1800, Value: 32}}},
		SpecificHeat:     model.PropertyConfig{Kind: model.PropertyTable, Table: []model.TablePoint{{Temperature: 300, Value: 470}, {Temperature: 800, Value: 680}, {Temperature: 1200, Value: 650}, {Temperature: 1800, Value: 720}}},
		Emissivity:       0.8,
		MeltingPoint:     1790,
		LatentHeatFusion: 2.7e5,
	},
	"aluminium": {
		Name:             "aluminium",
		Density:          2700,
		Conductivity:     model.PropertyConfig{Kind: model.PropertyConstant, Value: 237},
		SpecificHeat:     model.PropertyConfig{Kind: model.PropertyConstant, Value: 900},
		Emissivity:       0.1,
		MeltingPoint:     933.5,
		LatentHeatFusion: 3.97e5,
	},
	"tungsten": {
		Name:             "tungsten",
		Density:          19300,
		Conductivity:     model.PropertyConfig{Kind: model.PropertyTable, Table: []model.TablePoint{{Temperature: 300, Value: 173}, {Temperature: 1000, Value: 118}, {Temperature: 2000, Value: 100}, {Temperature: 3000, Value: 95}}},
		SpecificHeat:     model.PropertyConfig{Kind: model.PropertyConstant, Value: 134},
		Emissivity:       0.3,
		MeltingPoint:     3695,
		LatentHeatFusion: 2.85e5,
	},
	"graphite": {
		Name:         "graphite",
		Density:      2200,
		Conductivity: model.PropertyConfig{Kind: model.PropertyConstant, Value: 120},
		SpecificHeat: model.PropertyConfig{Kind: model.PropertyConstant, Value: 710},
		Emissivity:   0.85,
	},
}

func Lookup(name string) (model.MaterialConfig, error) {
	cfg, ok := library[strings.ToLower(name)]
	if !ok {
		return model.MaterialConfig{}, fmt.Errorf("unknown material %q, available: %s", name, strings.Join(Names(), ", "))
	}
	return cfg, nil
}

func Names() []string {
	names := make([]string, 0, len(library))
	for name := range library {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
