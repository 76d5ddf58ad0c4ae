package target

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	masterdata "solarfleet/internal/masterdata/domain"
)

func defaultResolver(t *testing.T) *ProfileResolver {
	t.Helper()
	resolver, err := NewProfileResolver(DefaultResolverConfig())
	require.NoError(t, err)
	return resolver
}

func TestResolveExplicitProfileWins(t *testing.T) {
	resolver := defaultResolver(t)
	plant := masterdata.Plant{ID: 1, Name: "Usina 10", CapacityKWp: 132, ProfileID: "Custom_200"}
	assert.Equal(t, "Custom_200", resolver.Resolve(plant))
}

func TestResolveNameRuleBeatsCapacity(t *testing.T) {
	resolver := defaultResolver(t)

	// Name alias matches before the capacity default gets a say.
	plant := masterdata.Plant{ID: 1, Name: "Usina 10", CapacityKWp: 132}
	assert.Equal(t, "Xique-xique_132", resolver.Resolve(plant))

	plant = masterdata.Plant{ID: 2, Name: "UFV Canabrava Norte", CapacityKWp: 80}
	assert.Equal(t, "Canabrava_150", resolver.Resolve(plant))
}

func TestResolveNameMatchIsCaseInsensitive(t *testing.T) {
	resolver := defaultResolver(t)
	plant := masterdata.Plant{ID: 1, Name: "XIQUE-XIQUE II", CapacityKWp: 50}
	assert.Equal(t, "Xique-xique_132", resolver.Resolve(plant))
}

func TestResolveAccentedAndPlainTokens(t *testing.T) {
	resolver := defaultResolver(t)

	plant := masterdata.Plant{ID: 1, Name: "Riachão A", CapacityKWp: 200}
	assert.Equal(t, "Riachão", resolver.Resolve(plant))

	plant = masterdata.Plant{ID: 2, Name: "riachao sul", CapacityKWp: 200}
	assert.Equal(t, "Riachão", resolver.Resolve(plant))
}

func TestResolveCapacityFallback(t *testing.T) {
	resolver := defaultResolver(t)

	high := masterdata.Plant{ID: 1, Name: "UFV Nova", CapacityKWp: 140}
	assert.Equal(t, "Canabrava_150", resolver.Resolve(high))

	atThreshold := masterdata.Plant{ID: 2, Name: "UFV Outra", CapacityKWp: 130}
	assert.Equal(t, "Canabrava_150", resolver.Resolve(atThreshold))

	low := masterdata.Plant{ID: 3, Name: "UFV Pequena", CapacityKWp: 80}
	assert.Equal(t, "Riachão", resolver.Resolve(low))
}

func TestResolveRuleOrderFirstMatchWins(t *testing.T) {
	cfg := ResolverConfig{
		Rules: []Rule{
			{Tokens: []string{"sol"}, ProfileID: "First"},
			{Tokens: []string{"solar"}, ProfileID: "Second"},
		},
		CapacityThresholdKWp:  100,
		HighCapacityProfileID: "High",
		LowCapacityProfileID:  "Low",
	}
	resolver, err := NewProfileResolver(cfg)
	require.NoError(t, err)

	plant := masterdata.Plant{ID: 1, Name: "UFV Solar Leste", CapacityKWp: 50}
	assert.Equal(t, "First", resolver.Resolve(plant))
}

func TestNewProfileResolverRejectsEmptyConfig(t *testing.T) {
	_, err := NewProfileResolver(ResolverConfig{})
	assert.ErrorIs(t, err, ErrNoRules)
}
