package target

import (
	"strings"

	masterdata "solarfleet/internal/masterdata/domain"
)

// Rule maps name tokens to a profile. Matching is case-insensitive
// substring containment; the first matching rule wins.
type Rule struct {
	Tokens    []string
	ProfileID string
}

// ResolverConfig holds the ordered inference rules plus the capacity-based
// default applied when no name rule matches.
type ResolverConfig struct {
	Rules                 []Rule
	CapacityThresholdKWp  float64
	HighCapacityProfileID string
	LowCapacityProfileID  string
}

// DefaultResolverConfig returns the fleet's built-in rule set. Plants
// registered before explicit profile assignment existed are matched by the
// names operators actually gave them.
func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		Rules: []Rule{
			{Tokens: []string{"usina 10", "usina 11", "xique"}, ProfileID: "Xique-xique_132"},
			{Tokens: []string{"canabrava"}, ProfileID: "Canabrava_150"},
			{Tokens: []string{"riachão", "riachao"}, ProfileID: "Riachão"},
		},
		CapacityThresholdKWp:  130,
		HighCapacityProfileID: "Canabrava_150",
		LowCapacityProfileID:  "Riachão",
	}
}

// ProfileResolver maps a plant to its target profile.
type ProfileResolver struct {
	cfg ResolverConfig
}

// NewProfileResolver constructs a resolver.
func NewProfileResolver(cfg ResolverConfig) (*ProfileResolver, error) {
	if len(cfg.Rules) == 0 && (cfg.HighCapacityProfileID == "" || cfg.LowCapacityProfileID == "") {
		return nil, ErrNoRules
	}
	return &ProfileResolver{cfg: cfg}, nil
}

// Resolve returns the profile for a plant. An explicit assignment on the
// plant record wins; otherwise the name rules are evaluated in order, and
// the capacity threshold decides last.
func (r *ProfileResolver) Resolve(plant masterdata.Plant) string {
	if plant.ProfileID != "" {
		return plant.ProfileID
	}

	name := strings.ToLower(plant.Name)
	for _, rule := range r.cfg.Rules {
		for _, token := range rule.Tokens {
			if token == "" {
				continue
			}
			if strings.Contains(name, strings.ToLower(token)) {
				return rule.ProfileID
			}
		}
	}

	if plant.CapacityKWp >= r.cfg.CapacityThresholdKWp {
		return r.cfg.HighCapacityProfileID
	}
	return r.cfg.LowCapacityProfileID
}
