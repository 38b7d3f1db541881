package anp

import "github.com/antigravity/transit-access/internal/network"

// ConvenienceScore computes the facility-weighted convenience score for a
// station's facility-score vector under a profile's preference weights.
// Result is in [0,5]; 0 when no facility data or no preference weights
// are available.
func ConvenienceScore(preferences map[string]float64, facilityScores map[string]float64) float64 {
	if len(preferences) == 0 {
		return 0
	}

	total := 0.0
	for facility, weight := range preferences {
		total += weight * facilityScores[facility]
	}
	return total
}

// TransferDifficulty computes the [0,1] difficulty of a transfer edge
// (higher = harder) from its walking distance and the facility-weighted
// convenience score of the transfer station, per spec.md §4.C.
func TransferDifficulty(distanceMeters float64, convenienceScore float64, cfg network.Config) float64 {
	norm := cfg.TransferDistanceNormMeters
	if norm <= 0 {
		norm = 300
	}
	distanceScore := distanceMeters / norm
	if distanceScore > 1 {
		distanceScore = 1
	}

	inconvenience := 1 - convenienceScore/5
	return 0.6*distanceScore + 0.4*inconvenience
}

// StationConvenienceScore resolves a station's facility-weighted
// convenience score from whatever facility-score vector the network has
// recorded for it (drawn from any transfer entry touching that
// station), falling back to a neutral 2.5 when no facility data exists
// for the station at all. Mirrors mc_raptor.py's _get_convenience_score,
// which is keyed by station rather than by station/line pair.
func StationConvenienceScore(provider network.Provider, id network.StationID, profile network.Profile) float64 {
	scores, ok := provider.FacilityScoresAt(id, profile)
	if !ok || len(scores) == 0 {
		return 2.5
	}
	return ConvenienceScore(PreferenceWeights(provider, profile), scores)
}

// TransferWalkMinutes converts a transfer's walking distance into minutes
// using a profile's walking speed.
func TransferWalkMinutes(distanceMeters float64, profile network.Profile, cfg network.Config) float64 {
	speed := cfg.WalkingSpeedMetersPerSecond[profile]
	if speed <= 0 {
		speed = 0.98
	}
	metersPerMinute := speed * 60
	return distanceMeters / metersPerMinute
}
