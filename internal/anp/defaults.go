package anp

import "github.com/antigravity/transit-access/internal/network"

// DefaultFacilityPreferences is the mandatory fallback preference table
// (§6 of spec.md) used whenever a network.Provider has no
// PreferenceWeights data for a profile. Values mirror the original
// system's hand-tuned defaults.
func DefaultFacilityPreferences() map[network.Profile]map[string]float64 {
	return map[network.Profile]map[string]float64{
		network.ProfilePHY: {
			"elevator":      0.40,
			"escalator":     0.10,
			"transfer_walk": 0.25,
			"other_facil":   0.15,
			"staff_help":    0.10,
		},
		network.ProfileVIS: {
			"elevator":      0.20,
			"escalator":     0.25,
			"transfer_walk": 0.20,
			"other_facil":   0.15,
			"staff_help":    0.20,
		},
		network.ProfileAUD: {
			"elevator":      0.25,
			"escalator":     0.30,
			"transfer_walk": 0.25,
			"other_facil":   0.10,
			"staff_help":    0.10,
		},
		network.ProfileELD: {
			"elevator":      0.20,
			"escalator":     0.30,
			"transfer_walk": 0.20,
			"other_facil":   0.15,
			"staff_help":    0.15,
		},
	}
}

// PreferenceWeights resolves the facility-preference vector for a
// profile, falling back to DefaultFacilityPreferences when the provider
// has no data.
func PreferenceWeights(provider network.Provider, profile network.Profile) map[string]float64 {
	if w := provider.PreferenceWeights(profile); len(w) > 0 {
		return w
	}
	return DefaultFacilityPreferences()[profile]
}
