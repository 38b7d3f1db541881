// Package label defines the McRAPTOR label record, its dominance and
// ε-similarity predicates, and the bounded-cardinality frontier that
// maintains the non-dominated set at each (station, line, transfers)
// state. See spec.md §3 and §4.D.
package label

import (
	"math"

	"github.com/antigravity/transit-access/internal/anp"
	"github.com/antigravity/transit-access/internal/network"
)

// TransferInfo records the edge that produced a label, when that edge
// was a transfer between lines at a station.
type TransferInfo struct {
	Station  network.StationID
	FromLine network.LineID
	ToLine   network.LineID
}

// Label is an immutable node in the round-based search tree. Labels
// reference their parent by index into the owning engine's arena
// (ParentIdx == -1 for a root label created at the origin), so copying a
// Label is cheap and path reconstruction is a matter of index-chasing
// rather than pointer-chasing a garbage-collected graph.
type Label struct {
	ArrivalTime           float64 // minutes since departure, cumulative
	Transfers             int
	ConvenienceSum        float64
	CongestionSum         float64
	MaxTransferDifficulty float64

	ParentIdx int // -1 for root labels

	CurrentStation   network.StationID
	CurrentLine      network.LineID
	CurrentDirection network.Direction

	Visited *VisitedSet

	Depth int

	// TransferInfo is non-nil only when the edge producing this label
	// was a transfer.
	TransferInfo *TransferInfo

	// IsFirstMove is true for labels created at the origin or
	// immediately after a transfer; it unlocks bidirectional ride
	// exploration on the next step.
	IsFirstMove bool

	CreatedRound int
}

// AvgConvenience is the running average convenience over visited stations.
func (l Label) AvgConvenience() float64 {
	return l.ConvenienceSum / float64(l.Depth)
}

// AvgCongestion is the running average congestion over visited stations.
func (l Label) AvgCongestion() float64 {
	return l.CongestionSum / float64(l.Depth)
}

// sameBucket reports whether two labels are comparable under dominance,
// i.e. they occupy the same (station, line, transfers) frontier bucket.
func sameBucket(a, b Label) bool {
	return a.CurrentStation == b.CurrentStation &&
		a.CurrentLine == b.CurrentLine &&
		a.Transfers == b.Transfers
}

// Dominates reports whether a is at least as good as b in every
// criterion and strictly better in at least one, per spec.md §4.D. Only
// labels in the same bucket are comparable; cross-bucket calls return
// false and equality on all five criteria also returns false (neither
// dominates).
func Dominates(a, b Label) bool {
	if !sameBucket(a, b) {
		return false
	}

	betterInAny := false

	// Minimized criteria.
	if a.MaxTransferDifficulty < b.MaxTransferDifficulty {
		betterInAny = true
	} else if a.MaxTransferDifficulty > b.MaxTransferDifficulty {
		return false
	}

	if a.ArrivalTime < b.ArrivalTime {
		betterInAny = true
	} else if a.ArrivalTime > b.ArrivalTime {
		return false
	}

	if a.AvgCongestion() < b.AvgCongestion() {
		betterInAny = true
	} else if a.AvgCongestion() > b.AvgCongestion() {
		return false
	}

	// Maximized criterion.
	if a.AvgConvenience() > b.AvgConvenience() {
		betterInAny = true
	} else if a.AvgConvenience() < b.AvgConvenience() {
		return false
	}

	return betterInAny
}

// NormalizedVector returns the five-element cost vector used for
// ε-similarity distance, normalized into roughly [0,1] per spec.md §4.D.
func NormalizedVector(l Label, cfg network.Config) [5]float64 {
	n := cfg.DistanceNormalizers
	return [5]float64{
		l.ArrivalTime / orDefault(n.TravelTimeMinutes, 90),
		float64(l.Transfers) / orDefault(n.Transfers, 3),
		l.MaxTransferDifficulty,
		l.AvgConvenience() / orDefault(n.Convenience, 5),
		l.AvgCongestion() / orDefault(n.Congestion, 1.3),
	}
}

// WeightedDistance computes the ANP-weighted Euclidean distance between
// two labels' normalized cost vectors.
func WeightedDistance(a, b Label, weights anp.Weights, cfg network.Config) float64 {
	va := NormalizedVector(a, cfg)
	vb := NormalizedVector(b, cfg)

	sumSq := 0.0
	for i, name := range anp.Criteria {
		w := weights[name]
		d := va[i] - vb[i]
		sumSq += w * d * d
	}
	return math.Sqrt(sumSq)
}

// EpsilonSimilar reports whether a and b are within a profile's
// ε-similarity threshold under the ANP-weighted distance.
func EpsilonSimilar(a, b Label, epsilon float64, weights anp.Weights, cfg network.Config) bool {
	return WeightedDistance(a, b, weights, cfg) <= epsilon
}

// WeightedScore computes the ranking score for a label under a profile's
// ANP weights (lower is better), per spec.md §4.D.
func WeightedScore(l Label, weights anp.Weights, cfg network.Config) float64 {
	n := cfg.ScoreNormalizers

	normTime := math.Min(l.ArrivalTime/orDefault(n.TravelTimeMinutes, 120), 1)
	normTransfers := math.Min(float64(l.Transfers)/orDefault(n.Transfers, 4), 1)
	normDifficulty := l.MaxTransferDifficulty
	normConvenience := 1 - l.AvgConvenience()/orDefault(n.Convenience, 5)
	normCongestion := math.Min(l.AvgCongestion()/orDefault(n.Congestion, 1), 1)

	return weights["travel_time"]*normTime +
		weights["transfers"]*normTransfers +
		weights["transfer_difficulty"]*normDifficulty +
		weights["convenience"]*normConvenience +
		weights["congestion"]*normCongestion
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}
