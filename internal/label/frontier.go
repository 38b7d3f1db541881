package label

import (
	"sort"

	"github.com/antigravity/transit-access/internal/anp"
	"github.com/antigravity/transit-access/internal/network"
)

// Bucket identifies one frontier state: a (station, line, transfers)
// triple. Every label stored under a bucket satisfies
// CurrentStation==Station, CurrentLine==Line, Transfers==Transfers.
type Bucket struct {
	Station   network.StationID
	Line      network.LineID
	Transfers int
}

// Frontier maintains, per Bucket, the bounded non-dominated set of
// labels reached at that state. It stores arena indices rather than
// Label values so callers can walk parent chains by index; Frontier
// itself never copies whole labels except to read them out of the
// caller-supplied arena for comparisons.
type Frontier struct {
	buckets map[Bucket][]int
}

// NewFrontier returns an empty frontier.
func NewFrontier() *Frontier {
	return &Frontier{buckets: make(map[Bucket][]int)}
}

// BucketOf returns the Bucket key for a label.
func BucketOf(l Label) Bucket {
	return Bucket{Station: l.CurrentStation, Line: l.CurrentLine, Transfers: l.Transfers}
}

// Labels returns the arena indices currently held at a bucket.
func (f *Frontier) Labels(b Bucket) []int {
	return f.buckets[b]
}

// AllBuckets returns every bucket key with at least one label.
func (f *Frontier) AllBuckets() []Bucket {
	keys := make([]Bucket, 0, len(f.buckets))
	for k := range f.buckets {
		keys = append(keys, k)
	}
	return keys
}

// Update attempts to insert the label at arena[newIdx] into its bucket,
// applying dominance, ε-similarity, and bounded-cardinality rules in
// order (spec.md §4.D). Returns true iff the label passed the dominance
// and ε-similarity checks and was inserted (the caller should mark the
// destination station in that case); true is returned even when the
// cardinality bound then truncates the new label back out of the bucket.
func (f *Frontier) Update(
	arena []Label,
	newIdx int,
	weights anp.Weights,
	epsilon float64,
	cfg network.Config,
	maxLabelsPerState int,
) bool {
	newLabel := arena[newIdx]
	bucket := BucketOf(newLabel)
	existing := f.buckets[bucket]

	for _, idx := range existing {
		if Dominates(arena[idx], newLabel) {
			return false
		}
	}

	similarAt := -1
	for i, idx := range existing {
		if EpsilonSimilar(newLabel, arena[idx], epsilon, weights, cfg) {
			newScore := WeightedScore(newLabel, weights, cfg)
			existingScore := WeightedScore(arena[idx], weights, cfg)
			if newScore >= existingScore {
				return false
			}
			similarAt = i
			break
		}
	}

	if similarAt >= 0 {
		existing = append(existing[:similarAt], existing[similarAt+1:]...)
	}

	kept := existing[:0]
	for _, idx := range existing {
		if !Dominates(newLabel, arena[idx]) {
			kept = append(kept, idx)
		}
	}
	existing = kept

	existing = append(existing, newIdx)

	if len(existing) > maxLabelsPerState {
		sort.SliceStable(existing, func(i, j int) bool {
			return WeightedScore(arena[existing[i]], weights, cfg) < WeightedScore(arena[existing[j]], weights, cfg)
		})
		existing = existing[:maxLabelsPerState]
	}

	f.buckets[bucket] = existing
	return true
}
