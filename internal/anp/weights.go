// Package anp derives per-profile criterion weights from Analytic
// Network Process pairwise-comparison matrices, and the facility-weighted
// convenience and transfer-difficulty scores those weights feed into.
package anp

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sync"

	"github.com/antigravity/transit-access/internal/network"
	"gonum.org/v1/gonum/mat"
)

// ErrUnknownProfile is a precondition violation: no pairwise-comparison
// matrix is defined for the requested profile.
var ErrUnknownProfile = errors.New("anp: unknown profile")

// Criteria is the fixed ordering of the five scoring dimensions the
// pairwise matrices compare.
var Criteria = [5]string{
	"travel_time",
	"transfers",
	"transfer_difficulty",
	"convenience",
	"congestion",
}

// Weights holds a normalized criterion weight vector, indexed by the
// Criteria names.
type Weights map[string]float64

// consistencyRandomIndex is Saaty's random-index table, keyed by matrix
// order. Only n=5 is ever instantiated by this module's profiles, but
// the table costs nothing to keep general.
var consistencyRandomIndex = map[int]float64{
	3: 0.58,
	4: 0.90,
	5: 1.12,
	6: 1.24,
	7: 1.32,
	8: 1.41,
	9: 1.45,
}

// Logger receives the CR>0.1 consistency warning; defaults to the
// standard logger. Tests may swap it for one that records output.
var Logger = log.Default()

// pairwiseMatrices holds the 5x5 reciprocal comparison matrix per
// profile, row/column order matching Criteria. Values mirror
// anp_weights.py's hand-tuned matrices exactly.
var pairwiseMatrices = map[network.Profile][5][5]float64{
	// Wheelchair user: transfers > transfer_difficulty > convenience > congestion > travel_time
	network.ProfilePHY: {
		{1, 1.0 / 7, 1.0 / 5, 1.0 / 3, 1.0 / 2},
		{7, 1, 3, 5, 4},
		{5, 1.0 / 3, 1, 3, 2},
		{3, 1.0 / 5, 1.0 / 3, 1, 2},
		{2, 1.0 / 4, 1.0 / 2, 1.0 / 2, 1},
	},
	// Visually impaired: convenience > transfer_difficulty > transfers > congestion > travel_time
	network.ProfileVIS: {
		{1, 1.0 / 4, 1.0 / 3, 1.0 / 7, 1.0 / 3},
		{4, 1, 1.0 / 2, 1.0 / 5, 2},
		{3, 2, 1, 1.0 / 3, 3},
		{7, 5, 3, 1, 5},
		{3, 1.0 / 2, 1.0 / 3, 1.0 / 5, 1},
	},
	// Hearing impaired: convenience > transfers > travel_time > transfer_difficulty > congestion
	network.ProfileAUD: {
		{1, 1.0 / 4, 2, 1.0 / 7, 3},
		{4, 1, 3, 1.0 / 5, 5},
		{1.0 / 2, 1.0 / 3, 1, 1.0 / 7, 2},
		{7, 5, 7, 1, 8},
		{1.0 / 3, 1.0 / 5, 1.0 / 2, 1.0 / 8, 1},
	},
	// Elderly: congestion > transfer_difficulty > transfers > travel_time > convenience
	network.ProfileELD: {
		{1, 1.0 / 2, 1.0 / 3, 2, 1.0 / 4},
		{2, 1, 1.0 / 2, 3, 1.0 / 3},
		{3, 2, 1, 4, 1.0 / 2},
		{1.0 / 2, 1.0 / 3, 1.0 / 4, 1, 1.0 / 5},
		{4, 3, 2, 5, 1},
	},
}

// Engine computes and caches per-profile weight vectors. An Engine is
// safe for concurrent use.
type Engine struct {
	mu    sync.Mutex
	cache map[network.Profile]Weights
}

// NewEngine constructs an Engine with an empty weight cache; weights are
// derived lazily and memoized since the pairwise matrices never change.
func NewEngine() *Engine {
	return &Engine{cache: make(map[network.Profile]Weights)}
}

// Weights returns the criterion weight vector for profile, computing it
// via principal-eigenvector decomposition on first use.
func (e *Engine) Weights(profile network.Profile) (Weights, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if w, ok := e.cache[profile]; ok {
		return w, nil
	}

	matrix, ok := pairwiseMatrices[profile]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, profile)
	}

	w, cr, err := deriveWeights(matrix)
	if err != nil {
		return nil, fmt.Errorf("anp: deriving weights for %s: %w", profile, err)
	}
	if cr > 0.1 {
		Logger.Printf("anp: consistency ratio %.3f exceeds 0.1 for profile %s", cr, profile)
	}

	e.cache[profile] = w
	return w, nil
}

// deriveWeights computes the principal eigenvector of a 5x5 reciprocal
// pairwise-comparison matrix, L1-normalizes it into a weight vector, and
// returns the matrix's consistency ratio alongside it.
func deriveWeights(m [5][5]float64) (Weights, float64, error) {
	flat := make([]float64, 0, 25)
	for _, row := range m {
		flat = append(flat, row[:]...)
	}
	dense := mat.NewDense(5, 5, flat)

	var eig mat.Eigen
	if ok := eig.Factorize(dense, mat.EigenRight); !ok {
		return nil, 0, fmt.Errorf("eigen decomposition failed to converge")
	}

	values := eig.Values(nil)
	maxIdx := 0
	maxReal := real(values[0])
	for i, v := range values {
		if real(v) > maxReal {
			maxReal = real(v)
			maxIdx = i
		}
	}

	var vectors mat.CDense
	eig.VectorsTo(&vectors)

	raw := make([]float64, 5)
	sum := 0.0
	for row := 0; row < 5; row++ {
		v := math.Abs(real(vectors.At(row, maxIdx)))
		raw[row] = v
		sum += v
	}
	if sum == 0 {
		return nil, 0, fmt.Errorf("degenerate eigenvector: zero L1 norm")
	}

	w := make(Weights, 5)
	for i, name := range Criteria {
		w[name] = raw[i] / sum
	}

	cr := consistencyRatio(maxReal, len(m))
	return w, cr, nil
}

func consistencyRatio(maxEigenvalue float64, n int) float64 {
	ci := (maxEigenvalue - float64(n)) / float64(n-1)
	ri, ok := consistencyRandomIndex[n]
	if !ok {
		ri = consistencyRandomIndex[9]
	}
	return ci / ri
}
