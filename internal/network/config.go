package network

import (
	_ "embed"

	"github.com/marcozac/go-jsonc"
)

//go:embed config.default.jsonc
var defaultConfigJSONC []byte

// Config holds the tunable constants the spec treats as fixed
// configuration rather than derived values. A caller can load an
// override file with LoadConfig; DefaultConfig ships compiled in so the
// module works out of the box.
type Config struct {
	// CircularLines lists line identifiers that use "in"/"out" direction
	// semantics instead of "up"/"down".
	CircularLines []LineID `json:"circular_lines"`

	// DefaultTransferDistanceMeters is used when a transfer record is
	// missing.
	DefaultTransferDistanceMeters float64 `json:"default_transfer_distance_meters"`

	// DefaultCongestion is used when a congestion entry is missing.
	DefaultCongestion float64 `json:"default_congestion"`

	// MaxLabelsPerState bounds the size of a single frontier bucket.
	MaxLabelsPerState int `json:"max_labels_per_state"`

	// CommercialSpeedMetersPerMinute is the assumed in-vehicle speed
	// used to derive ride segment times from distance.
	CommercialSpeedMetersPerMinute float64 `json:"commercial_speed_meters_per_minute"`

	// MinSegmentMinutes floors a single ride segment's travel time.
	MinSegmentMinutes float64 `json:"min_segment_minutes"`

	// TransferDistanceNormMeters normalizes transfer distance into
	// [0,1] for difficulty scoring.
	TransferDistanceNormMeters float64 `json:"transfer_distance_norm_meters"`

	// WalkingSpeedMetersPerSecond is indexed by profile.
	WalkingSpeedMetersPerSecond map[Profile]float64 `json:"walking_speed_m_per_s"`

	// Epsilon is the ε-similarity threshold indexed by profile.
	Epsilon map[Profile]float64 `json:"epsilon"`

	// ScoreNormalizers hold the divisors used by the weighted score.
	ScoreNormalizers ScoreNormalizers `json:"score_normalizers"`

	// DistanceNormalizers hold the divisors used by the ε-similarity
	// normalized cost vector.
	DistanceNormalizers DistanceNormalizers `json:"distance_normalizers"`
}

// ScoreNormalizers are the divisors in the weighted-score formula (§4.D).
type ScoreNormalizers struct {
	TravelTimeMinutes float64 `json:"travel_time_minutes"`
	Transfers         float64 `json:"transfers"`
	Convenience       float64 `json:"convenience"`
	Congestion        float64 `json:"congestion"`
}

// DistanceNormalizers are the divisors in the ε-similarity normalized
// cost vector (§4.D).
type DistanceNormalizers struct {
	TravelTimeMinutes float64 `json:"travel_time_minutes"`
	Transfers         float64 `json:"transfers"`
	Convenience       float64 `json:"convenience"`
	Congestion        float64 `json:"congestion"`
}

// DefaultConfig returns the module's compiled-in defaults, matching the
// constants listed in spec.md §6.
func DefaultConfig() Config {
	var cfg Config
	if err := jsonc.Unmarshal(defaultConfigJSONC, &cfg); err != nil {
		// The embedded file is part of the binary; a parse failure here
		// is a build-time defect, not a runtime condition callers can
		// recover from.
		panic("network: embedded default config is invalid jsonc: " + err.Error())
	}
	return cfg
}

// LoadConfig parses a JSONC-encoded config file (comments and trailing
// commas allowed) over DefaultConfig, so any field the file does not set
// keeps its default value.
func LoadConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := jsonc.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// IsCircular reports whether line is configured as a circular line.
func (c Config) IsCircular(line LineID) bool {
	for _, l := range c.CircularLines {
		if l == line {
			return true
		}
	}
	return false
}
