package network

import (
	"log"
	"time"
)

type lineStationKey struct {
	station StationID
	line    LineID
}

type transferKey struct {
	station  StationID
	fromLine LineID
	toLine   LineID
}

type congestionKey struct {
	station   StationID
	line      LineID
	direction Direction
	day       DayType
}

// MemoryProvider is an in-memory Provider, built once (typically by a
// Loader such as the Postgres-backed one in postgres.go) and thereafter
// read-only. All accessor methods are safe for concurrent use.
type MemoryProvider struct {
	cfg Config

	stations       map[StationID]Station
	stationsByName map[string][]StationID

	downstream map[lineStationKey]map[Direction][]StationID
	order      map[lineStationKey]int
	lineOrder  map[LineID][]StationID

	transfers map[transferKey]TransferRecord

	// stationFacilities holds the one facility-score vector per
	// (station, profile) that AddTransfer admits; see AddTransfer.
	stationFacilities map[StationID]map[Profile]map[string]float64

	congestion map[congestionKey]map[int]float64 // slot minute -> ratio

	preferences map[Profile]map[string]float64
}

// NewMemoryProvider builds an empty provider ready to be populated by a
// loader.
func NewMemoryProvider(cfg Config) *MemoryProvider {
	return &MemoryProvider{
		cfg:               cfg,
		stations:          make(map[StationID]Station),
		stationsByName:    make(map[string][]StationID),
		downstream:        make(map[lineStationKey]map[Direction][]StationID),
		order:             make(map[lineStationKey]int),
		lineOrder:         make(map[LineID][]StationID),
		transfers:         make(map[transferKey]TransferRecord),
		stationFacilities: make(map[StationID]map[Profile]map[string]float64),
		congestion:        make(map[congestionKey]map[int]float64),
		preferences:       make(map[Profile]map[string]float64),
	}
}

// AddStation registers a station record.
func (m *MemoryProvider) AddStation(s Station) {
	m.stations[s.ID] = s
	m.stationsByName[s.Name] = append(m.stationsByName[s.Name], s.ID)
}

// SetLineOrder registers the ordered station sequence for one line in one
// physical direction of travel, deriving both the order map and the
// downstream direction lists the way the teacher's line loader builds
// up/down from a single ordered sequence: for every station at index i,
// "down" is everything after it and "up" is everything before it
// (reversed, nearest first). Circular lines populate in/out instead.
func (m *MemoryProvider) SetLineOrder(line LineID, ordered []StationID) {
	circular := m.cfg.IsCircular(line)
	m.lineOrder[line] = append([]StationID(nil), ordered...)

	for i, id := range ordered {
		key := lineStationKey{id, line}
		m.order[key] = i

		down := append([]StationID(nil), ordered[i+1:]...)
		up := make([]StationID, 0, i)
		for j := i - 1; j >= 0; j-- {
			up = append(up, ordered[j])
		}

		entry := map[Direction][]StationID{
			DirUp:   nil,
			DirDown: nil,
			DirIn:   nil,
			DirOut:  nil,
		}
		if circular {
			entry[DirIn] = down
			entry[DirOut] = up
		} else {
			entry[DirUp] = up
			entry[DirDown] = down
		}
		m.downstream[key] = entry
	}
}

// AddTransfer registers a transfer record. Facility-score data is keyed
// by station alone (see FacilityScoresAt), so the first transfer entry
// registered for a station fixes that station's facility data for every
// line pair; a later entry for the same station with a differing
// facility-score payload is a loader bug, not an alternate reading, and
// is logged and discarded rather than silently decided by map iteration
// order.
func (m *MemoryProvider) AddTransfer(station StationID, fromLine, toLine LineID, rec TransferRecord) {
	m.transfers[transferKey{station, fromLine, toLine}] = rec

	if len(rec.FacilityScores) == 0 {
		return
	}
	if existing, ok := m.stationFacilities[station]; ok {
		if !facilityScoresEqual(existing, rec.FacilityScores) {
			log.Printf("network: conflicting facility scores for station %s on transfer %s->%s, keeping first-registered entry", station, fromLine, toLine)
		}
		return
	}
	m.stationFacilities[station] = rec.FacilityScores
}

func facilityScoresEqual(a, b map[Profile]map[string]float64) bool {
	if len(a) != len(b) {
		return false
	}
	for profile, scoresA := range a {
		scoresB, ok := b[profile]
		if !ok || len(scoresA) != len(scoresB) {
			return false
		}
		for facility, score := range scoresA {
			if scoresB[facility] != score {
				return false
			}
		}
	}
	return true
}

// SetCongestion registers one (station, line, direction, day, slot)
// congestion ratio.
func (m *MemoryProvider) SetCongestion(station StationID, line LineID, direction Direction, day DayType, slotMinute int, ratio float64) {
	key := congestionKey{station, line, direction, day}
	if m.congestion[key] == nil {
		m.congestion[key] = make(map[int]float64)
	}
	m.congestion[key][slotMinute] = ratio
}

// SetPreferenceWeights registers the facility-preference weight vector
// for a profile.
func (m *MemoryProvider) SetPreferenceWeights(profile Profile, weights map[string]float64) {
	m.preferences[profile] = weights
}

func (m *MemoryProvider) Station(id StationID) (Station, bool) {
	s, ok := m.stations[id]
	return s, ok
}

func (m *MemoryProvider) LinesAt(id StationID) []LineID {
	s, ok := m.stations[id]
	if !ok {
		return nil
	}
	seen := make(map[LineID]bool)
	var lines []LineID
	for _, cd := range m.stationsByName[s.Name] {
		other := m.stations[cd]
		if !seen[other.Line] {
			seen[other.Line] = true
			lines = append(lines, other.Line)
		}
	}
	return lines
}

func (m *MemoryProvider) Downstream(id StationID, line LineID) map[Direction][]StationID {
	entry, ok := m.downstream[lineStationKey{id, line}]
	if !ok {
		return map[Direction][]StationID{DirUp: nil, DirDown: nil, DirIn: nil, DirOut: nil}
	}
	return entry
}

func (m *MemoryProvider) Order(id StationID, line LineID) (int, bool) {
	o, ok := m.order[lineStationKey{id, line}]
	return o, ok
}

func (m *MemoryProvider) Transfer(id StationID, fromLine, toLine LineID) (TransferRecord, bool) {
	rec, ok := m.transfers[transferKey{id, fromLine, toLine}]
	return rec, ok
}

func (m *MemoryProvider) StationsOnLine(line LineID) []StationID {
	return m.lineOrder[line]
}

// FacilityScoresAt returns the facility-score vector AddTransfer
// recorded for id under profile, independent of which line pair
// carried it in (every transfer entry for a station is required to
// agree on facility data; see AddTransfer).
func (m *MemoryProvider) FacilityScoresAt(id StationID, profile Profile) (map[string]float64, bool) {
	scores, ok := m.stationFacilities[id][profile]
	if !ok || len(scores) == 0 {
		return nil, false
	}
	return scores, true
}

func (m *MemoryProvider) Congestion(id StationID, line LineID, direction Direction, instant time.Time) (float64, bool) {
	slots, ok := m.congestion[congestionKey{id, line, direction, DayTypeOf(instant)}]
	if !ok {
		return 0, false
	}
	ratio, ok := slots[TimeSlot(instant)]
	return ratio, ok
}

func (m *MemoryProvider) PreferenceWeights(profile Profile) map[string]float64 {
	return m.preferences[profile]
}

func (m *MemoryProvider) Config() Config {
	return m.cfg
}

// StationByNameOnLine resolves the station code with the given physical
// name on the given line.
func (m *MemoryProvider) StationByNameOnLine(name string, line LineID) (StationID, bool) {
	for _, cd := range m.stationsByName[name] {
		if m.stations[cd].Line == line {
			return cd, true
		}
	}
	return "", false
}
