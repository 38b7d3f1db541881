package label

import (
	"testing"

	"github.com/antigravity/transit-access/internal/anp"
	"github.com/antigravity/transit-access/internal/network"
	"github.com/stretchr/testify/assert"
)

func baseLabel() Label {
	return Label{
		ArrivalTime:           10,
		Transfers:             0,
		ConvenienceSum:        4,
		CongestionSum:         0.5,
		MaxTransferDifficulty: 0,
		ParentIdx:             -1,
		CurrentStation:        "A",
		CurrentLine:           "L1",
		Depth:                 1,
		Visited:               NewVisitedSet("A"),
	}
}

func TestDominatesRequiresSameBucket(t *testing.T) {
	a := baseLabel()
	b := baseLabel()
	b.CurrentLine = "L2"

	assert.False(t, Dominates(a, b))
	assert.False(t, Dominates(b, a))
}

func TestDominatesStrictlyBetterInOne(t *testing.T) {
	a := baseLabel()
	b := baseLabel()
	b.ArrivalTime = 20 // a arrives sooner, all else equal

	assert.True(t, Dominates(a, b))
	assert.False(t, Dominates(b, a))
}

func TestDominatesEqualOnAllIsNeitherDirection(t *testing.T) {
	a := baseLabel()
	b := baseLabel()

	assert.False(t, Dominates(a, b))
	assert.False(t, Dominates(b, a))
}

func TestDominatesConvenienceIsMaximized(t *testing.T) {
	a := baseLabel()
	b := baseLabel()
	a.ConvenienceSum = 5 // higher avg convenience, all else equal

	assert.True(t, Dominates(a, b))
	assert.False(t, Dominates(b, a))
}

func TestDominatesMixedDirectionsIsIncomparable(t *testing.T) {
	a := baseLabel()
	b := baseLabel()
	a.ArrivalTime = 5    // a better on time
	b.ConvenienceSum = 5 // b better on convenience

	assert.False(t, Dominates(a, b))
	assert.False(t, Dominates(b, a))
}

func TestAvgHelpers(t *testing.T) {
	l := baseLabel()
	l.Depth = 2
	l.ConvenienceSum = 5
	l.CongestionSum = 1

	assert.InDelta(t, 2.5, l.AvgConvenience(), 1e-9)
	assert.InDelta(t, 0.5, l.AvgCongestion(), 1e-9)
}

func TestWeightedScoreWithinZeroOne(t *testing.T) {
	cfg := network.DefaultConfig()
	e := anp.NewEngine()
	w, err := e.Weights(network.ProfilePHY)
	assert.NoError(t, err)

	l := baseLabel()
	score := WeightedScore(l, w, cfg)
	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 1.0)
}

func TestEpsilonSimilarIdenticalLabels(t *testing.T) {
	cfg := network.DefaultConfig()
	e := anp.NewEngine()
	w, err := e.Weights(network.ProfileELD)
	assert.NoError(t, err)

	a := baseLabel()
	b := baseLabel()
	assert.True(t, EpsilonSimilar(a, b, cfg.Epsilon[network.ProfileELD], w, cfg))
}

func TestVisitedSetStructuralSharing(t *testing.T) {
	root := NewVisitedSet("A")
	left := root.With("B")
	right := root.With("C")

	assert.True(t, left.Contains("A"))
	assert.True(t, left.Contains("B"))
	assert.False(t, left.Contains("C"))

	assert.True(t, right.Contains("A"))
	assert.True(t, right.Contains("C"))
	assert.False(t, right.Contains("B"))

	// root is untouched by either branch.
	assert.False(t, root.Contains("B"))
	assert.False(t, root.Contains("C"))
}
