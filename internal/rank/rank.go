// Package rank scores and orders the terminal labels a McRAPTOR query
// produces. See spec.md §4.G.
package rank

import (
	"sort"
	"strings"

	"github.com/antigravity/transit-access/internal/anp"
	"github.com/antigravity/transit-access/internal/label"
	"github.com/antigravity/transit-access/internal/network"
	"github.com/antigravity/transit-access/internal/raptor"
)

// DefaultTopK is the route count returned when a caller does not
// specify one.
const DefaultTopK = 3

// Ranked pairs a terminal label (by arena index) with the score it was
// ranked under, so callers can display why a route placed where it did.
type Ranked struct {
	LabelIdx int
	Score    float64
}

// Routes scores every terminal label under a profile's ANP weights,
// sorts ascending (lower score is better), de-duplicates routes that
// share a transfer signature (keeping the best-scoring one), and
// returns the top-k. topK<=0 returns every de-duplicated route.
func Routes(arena []label.Label, terminals []int, weights anp.Weights, cfg network.Config, topK int) []Ranked {
	scored := make([]Ranked, len(terminals))
	for i, idx := range terminals {
		scored[i] = Ranked{LabelIdx: idx, Score: label.WeightedScore(arena[idx], weights, cfg)}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score < scored[j].Score
	})

	seen := make(map[string]bool, len(scored))
	result := make([]Ranked, 0, len(scored))
	for _, r := range scored {
		sig := signatureKey(arena, r.LabelIdx)
		if seen[sig] {
			continue
		}
		seen[sig] = true

		result = append(result, r)
		if topK > 0 && len(result) >= topK {
			break
		}
	}
	return result
}

// signatureKey flattens a label's transfer signature into a string
// suitable as a de-duplication map key.
func signatureKey(arena []label.Label, idx int) string {
	transfers := raptor.TransferSignature(arena, idx)
	parts := make([]string, len(transfers))
	for i, t := range transfers {
		parts[i] = string(t.Station) + ">" + string(t.FromLine) + ">" + string(t.ToLine)
	}
	return strings.Join(parts, "|")
}
