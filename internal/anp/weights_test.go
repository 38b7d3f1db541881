package anp

import (
	"testing"

	"github.com/antigravity/transit-access/internal/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightsSumToOneAndNonNegative(t *testing.T) {
	e := NewEngine()
	for _, profile := range []network.Profile{
		network.ProfilePHY, network.ProfileVIS, network.ProfileAUD, network.ProfileELD,
	} {
		w, err := e.Weights(profile)
		require.NoError(t, err)

		sum := 0.0
		for _, name := range Criteria {
			v, ok := w[name]
			require.True(t, ok, "missing criterion %s for profile %s", name, profile)
			assert.GreaterOrEqual(t, v, 0.0, "negative weight for %s/%s", profile, name)
			sum += v
		}
		assert.InDelta(t, 1.0, sum, 1e-9, "weights for %s should sum to 1", profile)
	}
}

func TestWeightsAreCached(t *testing.T) {
	e := NewEngine()
	a, err := e.Weights(network.ProfilePHY)
	require.NoError(t, err)
	b, err := e.Weights(network.ProfilePHY)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestWeightsUnknownProfile(t *testing.T) {
	e := NewEngine()
	_, err := e.Weights("XXX")
	assert.Error(t, err)
}

func TestProfilesPrioritizeDifferently(t *testing.T) {
	e := NewEngine()

	phy, err := e.Weights(network.ProfilePHY)
	require.NoError(t, err)
	eld, err := e.Weights(network.ProfileELD)
	require.NoError(t, err)

	// PHY weighs transfers most heavily among its own criteria.
	assert.Greater(t, phy["transfers"], phy["travel_time"])
	// ELD weighs congestion most heavily among its own criteria.
	assert.Greater(t, eld["congestion"], eld["travel_time"])
}

func TestConvenienceScoreEmptyPreferences(t *testing.T) {
	assert.Equal(t, 0.0, ConvenienceScore(nil, map[string]float64{"elevator": 5}))
}

func TestConvenienceScoreWeighted(t *testing.T) {
	prefs := map[string]float64{"elevator": 0.5, "escalator": 0.5}
	scores := map[string]float64{"elevator": 4.0, "escalator": 2.0}
	assert.InDelta(t, 3.0, ConvenienceScore(prefs, scores), 1e-9)
}

func TestTransferDifficultyRange(t *testing.T) {
	cfg := network.DefaultConfig()

	d := TransferDifficulty(0, 5, cfg)
	assert.InDelta(t, 0.0, d, 1e-9)

	d = TransferDifficulty(1000, 0, cfg)
	assert.InDelta(t, 1.0, d, 1e-9)

	// Midpoint-ish distance, midpoint convenience.
	d = TransferDifficulty(150, 2.5, cfg)
	assert.Greater(t, d, 0.0)
	assert.Less(t, d, 1.0)
}

func TestTransferWalkMinutesUsesProfileSpeed(t *testing.T) {
	cfg := network.DefaultConfig()

	phy := TransferWalkMinutes(300, network.ProfilePHY, cfg)
	aud := TransferWalkMinutes(300, network.ProfileAUD, cfg)

	// AUD walks faster than PHY, so the same distance takes less time.
	assert.Less(t, aud, phy)
}
