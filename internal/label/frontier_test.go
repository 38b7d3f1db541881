package label

import (
	"testing"

	"github.com/antigravity/transit-access/internal/anp"
	"github.com/antigravity/transit-access/internal/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weightsFor(t *testing.T, profile network.Profile) anp.Weights {
	t.Helper()
	w, err := anp.NewEngine().Weights(profile)
	require.NoError(t, err)
	return w
}

func TestFrontierUpdateAcceptsFirstLabel(t *testing.T) {
	cfg := network.DefaultConfig()
	w := weightsFor(t, network.ProfilePHY)
	f := NewFrontier()
	arena := []Label{baseLabel()}

	accepted := f.Update(arena, 0, w, cfg.Epsilon[network.ProfilePHY], cfg, cfg.MaxLabelsPerState)
	assert.True(t, accepted)
	assert.Len(t, f.Labels(BucketOf(arena[0])), 1)
}

func TestFrontierUpdateRejectsDominated(t *testing.T) {
	cfg := network.DefaultConfig()
	w := weightsFor(t, network.ProfilePHY)
	f := NewFrontier()

	better := baseLabel()
	worse := baseLabel()
	worse.ArrivalTime = better.ArrivalTime + 50 // strictly worse, all else equal

	arena := []Label{better, worse}
	require.True(t, f.Update(arena, 0, w, cfg.Epsilon[network.ProfilePHY], cfg, cfg.MaxLabelsPerState))

	accepted := f.Update(arena, 1, w, cfg.Epsilon[network.ProfilePHY], cfg, cfg.MaxLabelsPerState)
	assert.False(t, accepted)
	assert.Len(t, f.Labels(BucketOf(better)), 1)
}

func TestFrontierUpdateRemovesDominatedIncumbents(t *testing.T) {
	cfg := network.DefaultConfig()
	w := weightsFor(t, network.ProfilePHY)
	f := NewFrontier()

	worse := baseLabel()
	better := baseLabel()
	better.ArrivalTime = worse.ArrivalTime - 50

	arena := []Label{worse, better}
	require.True(t, f.Update(arena, 0, w, cfg.Epsilon[network.ProfilePHY], cfg, cfg.MaxLabelsPerState))

	accepted := f.Update(arena, 1, w, cfg.Epsilon[network.ProfilePHY], cfg, cfg.MaxLabelsPerState)
	assert.True(t, accepted)

	labels := f.Labels(BucketOf(worse))
	require.Len(t, labels, 1)
	assert.Equal(t, 1, labels[0])
}

func TestFrontierUpdateKeepsIncomparableLabels(t *testing.T) {
	cfg := network.DefaultConfig()
	w := weightsFor(t, network.ProfilePHY)
	f := NewFrontier()

	fast := baseLabel()
	fast.ArrivalTime = 5

	convenient := baseLabel()
	convenient.ArrivalTime = 50
	convenient.ConvenienceSum = 5

	arena := []Label{fast, convenient}
	require.True(t, f.Update(arena, 0, w, cfg.Epsilon[network.ProfilePHY], cfg, cfg.MaxLabelsPerState))
	accepted := f.Update(arena, 1, w, cfg.Epsilon[network.ProfilePHY], cfg, cfg.MaxLabelsPerState)

	assert.True(t, accepted)
	assert.Len(t, f.Labels(BucketOf(fast)), 2)
}

func TestFrontierUpdateEpsilonSimilarKeepsBetterScore(t *testing.T) {
	cfg := network.DefaultConfig()
	w := weightsFor(t, network.ProfilePHY)
	f := NewFrontier()

	incumbent := baseLabel()
	incumbent.ArrivalTime = 10.0

	// Nearly identical but marginally better on arrival time, well within
	// epsilon for any profile, so it should replace the incumbent rather
	// than coexist with it.
	challenger := baseLabel()
	challenger.ArrivalTime = 10.0 - 1e-6

	arena := []Label{incumbent, challenger}
	require.True(t, f.Update(arena, 0, w, cfg.Epsilon[network.ProfilePHY], cfg, cfg.MaxLabelsPerState))

	accepted := f.Update(arena, 1, w, cfg.Epsilon[network.ProfilePHY], cfg, cfg.MaxLabelsPerState)
	assert.True(t, accepted)

	labels := f.Labels(BucketOf(incumbent))
	require.Len(t, labels, 1)
	assert.Equal(t, 1, labels[0])
}

func TestFrontierUpdateEpsilonSimilarRejectsWorseScore(t *testing.T) {
	cfg := network.DefaultConfig()
	w := weightsFor(t, network.ProfilePHY)
	f := NewFrontier()

	incumbent := baseLabel()
	incumbent.ArrivalTime = 10.0

	// A minute slower but marginally more convenient: not dominated by the
	// incumbent, yet within epsilon of it and worse on weighted score, so
	// the ε-similarity step is what rejects it.
	challenger := baseLabel()
	challenger.ArrivalTime = 11.0
	challenger.ConvenienceSum = incumbent.ConvenienceSum + 1e-3

	arena := []Label{incumbent, challenger}
	require.True(t, f.Update(arena, 0, w, cfg.Epsilon[network.ProfilePHY], cfg, cfg.MaxLabelsPerState))

	accepted := f.Update(arena, 1, w, cfg.Epsilon[network.ProfilePHY], cfg, cfg.MaxLabelsPerState)
	assert.False(t, accepted)

	labels := f.Labels(BucketOf(incumbent))
	require.Len(t, labels, 1)
	assert.Equal(t, 0, labels[0])
}

func TestFrontierUpdateBoundsCardinality(t *testing.T) {
	cfg := network.DefaultConfig()
	w := weightsFor(t, network.ProfilePHY)
	f := NewFrontier()

	maxLabels := 3
	// Build labels that are pairwise incomparable (trade off arrival time
	// against convenience) so none get dominated away, forcing the bound
	// to kick in via score truncation.
	arena := make([]Label, 0, maxLabels+2)
	for i := 0; i < maxLabels+2; i++ {
		l := baseLabel()
		l.ArrivalTime = float64(10 + i*5)
		l.ConvenienceSum = float64(i) + 1
		arena = append(arena, l)
	}

	for i := range arena {
		f.Update(arena, i, w, cfg.Epsilon[network.ProfilePHY], cfg, maxLabels)
	}

	assert.LessOrEqual(t, len(f.Labels(BucketOf(arena[0]))), maxLabels)
}
