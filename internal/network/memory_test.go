package network

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestProvider() *MemoryProvider {
	cfg := DefaultConfig()
	p := NewMemoryProvider(cfg)

	p.AddStation(Station{ID: "A", Name: "A", Line: "L1", Lat: 37.5, Lon: 127.0})
	p.AddStation(Station{ID: "B1", Name: "B", Line: "L1", Lat: 37.51, Lon: 127.0})
	p.AddStation(Station{ID: "B2", Name: "B", Line: "L2", Lat: 37.51, Lon: 127.0})
	p.SetLineOrder("L1", []StationID{"A", "B1"})
	p.SetLineOrder("L2", []StationID{"B2"})
	p.AddTransfer("B1", "L1", "L2", TransferRecord{
		DistanceMeters: 42,
		FacilityScores: map[Profile]map[string]float64{
			ProfilePHY: {"elevator": 4},
		},
	})
	p.SetCongestion("A", "L1", DirUp, DayWeekday, 540, 0.8)
	p.SetPreferenceWeights(ProfilePHY, map[string]float64{"elevator": 1})
	return p
}

func TestMemoryProviderStationLookup(t *testing.T) {
	p := buildTestProvider()

	s, ok := p.Station("A")
	require.True(t, ok)
	assert.Equal(t, "A", s.Name)

	_, ok = p.Station("missing")
	assert.False(t, ok)
}

func TestMemoryProviderLinesAtFindsSharedNames(t *testing.T) {
	p := buildTestProvider()

	lines := p.LinesAt("B1")
	assert.ElementsMatch(t, []LineID{"L1", "L2"}, lines)

	assert.ElementsMatch(t, []LineID{"L1"}, p.LinesAt("A"))
	assert.Empty(t, p.LinesAt("missing"))
}

func TestMemoryProviderDownstreamOrdering(t *testing.T) {
	p := buildTestProvider()

	down := p.Downstream("A", "L1")
	assert.Equal(t, []StationID{"B1"}, down[DirDown])
	assert.Empty(t, down[DirUp])

	up := p.Downstream("B1", "L1")
	assert.Equal(t, []StationID{"A"}, up[DirUp])
	assert.Empty(t, up[DirDown])
}

func TestMemoryProviderOrderAndStationsOnLine(t *testing.T) {
	p := buildTestProvider()

	order, ok := p.Order("B1", "L1")
	require.True(t, ok)
	assert.Equal(t, 1, order)

	_, ok = p.Order("B1", "L2")
	assert.False(t, ok)

	assert.Equal(t, []StationID{"A", "B1"}, p.StationsOnLine("L1"))
}

func TestMemoryProviderTransfer(t *testing.T) {
	p := buildTestProvider()

	rec, ok := p.Transfer("B1", "L1", "L2")
	require.True(t, ok)
	assert.Equal(t, 42.0, rec.DistanceMeters)

	_, ok = p.Transfer("A", "L1", "L2")
	assert.False(t, ok)
}

func TestMemoryProviderCongestionBucketing(t *testing.T) {
	p := buildTestProvider()

	weekday := time.Date(2026, 8, 3, 9, 10, 0, 0, time.UTC) // Monday, slot 540
	ratio, ok := p.Congestion("A", "L1", DirUp, weekday)
	require.True(t, ok)
	assert.Equal(t, 0.8, ratio)

	_, ok = p.Congestion("A", "L1", DirDown, weekday)
	assert.False(t, ok)
}

func TestMemoryProviderFacilityScoresAt(t *testing.T) {
	p := buildTestProvider()

	scores, ok := p.FacilityScoresAt("B1", ProfilePHY)
	require.True(t, ok)
	assert.Equal(t, 4.0, scores["elevator"])

	_, ok = p.FacilityScoresAt("A", ProfilePHY)
	assert.False(t, ok)
}

func TestMemoryProviderPreferenceWeightsAndConfig(t *testing.T) {
	p := buildTestProvider()

	assert.Equal(t, map[string]float64{"elevator": 1}, p.PreferenceWeights(ProfilePHY))
	assert.Nil(t, p.PreferenceWeights(ProfileVIS))
	assert.Equal(t, p.Config().MaxLabelsPerState, p.Config().MaxLabelsPerState)
}

func TestMemoryProviderStationByNameOnLine(t *testing.T) {
	p := buildTestProvider()

	id, ok := p.StationByNameOnLine("B", "L2")
	require.True(t, ok)
	assert.Equal(t, StationID("B2"), id)

	_, ok = p.StationByNameOnLine("B", "L3")
	assert.False(t, ok)
}
