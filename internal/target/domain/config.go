package target

import (
	"os"

	"gopkg.in/yaml.v3"
)

// rulesFile is the on-disk shape of the resolver/formula configuration.
type rulesFile struct {
	Rules []struct {
		Profile string   `yaml:"profile"`
		Tokens  []string `yaml:"tokens"`
	} `yaml:"rules"`
	CapacityThresholdKWp float64 `yaml:"capacity_threshold_kwp"`
	HighCapacityProfile  string  `yaml:"high_capacity_profile"`
	LowCapacityProfile   string  `yaml:"low_capacity_profile"`
	Formula              map[string]struct {
		ReferenceCapacityKWp float64 `yaml:"reference_capacity_kwp"`
		MinSunHours          float64 `yaml:"min_sun_hours"`
		MaxSunHours          float64 `yaml:"max_sun_hours"`
	} `yaml:"formula"`
}

// LoadResolverConfig loads resolver rules from a yaml file, falling back to
// the built-in defaults when path is empty or a field is omitted.
func LoadResolverConfig(path string) (ResolverConfig, map[string]FormulaProfile, error) {
	cfg := DefaultResolverConfig()
	formula := DefaultFormulaProfiles()
	if path == "" {
		return cfg, formula, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, formula, err
	}
	var file rulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, formula, err
	}

	if len(file.Rules) > 0 {
		cfg.Rules = cfg.Rules[:0]
		for _, rule := range file.Rules {
			cfg.Rules = append(cfg.Rules, Rule{Tokens: rule.Tokens, ProfileID: rule.Profile})
		}
	}
	if file.CapacityThresholdKWp > 0 {
		cfg.CapacityThresholdKWp = file.CapacityThresholdKWp
	}
	if file.HighCapacityProfile != "" {
		cfg.HighCapacityProfileID = file.HighCapacityProfile
	}
	if file.LowCapacityProfile != "" {
		cfg.LowCapacityProfileID = file.LowCapacityProfile
	}
	if len(file.Formula) > 0 {
		formula = make(map[string]FormulaProfile, len(file.Formula))
		for profileID, entry := range file.Formula {
			formula[profileID] = FormulaProfile{
				ReferenceCapacityKWp: entry.ReferenceCapacityKWp,
				MinSunHours:          entry.MinSunHours,
				MaxSunHours:          entry.MaxSunHours,
			}
		}
	}
	return cfg, formula, nil
}
