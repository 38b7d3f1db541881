package label

import "github.com/antigravity/transit-access/internal/network"

// VisitedSet is a persistent, structurally-shared set of visited
// stations. The empty set is the nil *VisitedSet. Adding a station never
// mutates an existing set; it returns a new head node that shares the
// rest of the chain with every other label descended from the same
// ancestor, so branching a label tree is O(1) per edge instead of O(n)
// for a cloned set.
type VisitedSet struct {
	station network.StationID
	parent  *VisitedSet
}

// NewVisitedSet returns a set containing exactly one station.
func NewVisitedSet(station network.StationID) *VisitedSet {
	return &VisitedSet{station: station}
}

// With returns a new set containing everything in s plus station.
func (s *VisitedSet) With(station network.StationID) *VisitedSet {
	return &VisitedSet{station: station, parent: s}
}

// Contains reports whether station has been visited.
func (s *VisitedSet) Contains(station network.StationID) bool {
	for n := s; n != nil; n = n.parent {
		if n.station == station {
			return true
		}
	}
	return false
}
