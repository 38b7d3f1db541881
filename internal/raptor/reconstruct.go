package raptor

import (
	"sort"

	"github.com/antigravity/transit-access/internal/label"
	"github.com/antigravity/transit-access/internal/network"
)

// Path is the fully reconstructed station/line sequence for one terminal
// label, including the transfers taken along the way. Stations and
// Lines always have equal length; Lines[i] is the line the rider was on
// when they reached Stations[i].
type Path struct {
	Stations  []network.StationID
	Lines     []network.LineID
	Transfers []label.TransferInfo
}

// Reconstruct walks the parent chain from arena[terminalIdx] back to its
// root label and rebuilds the full ride, inserting intermediate stations
// skipped by the label-setting search (spec.md §4.F).
func Reconstruct(provider network.Provider, arena []label.Label, terminalIdx int) Path {
	chain := parentChain(arena, terminalIdx)

	root := arena[chain[0]]
	path := Path{
		Stations: []network.StationID{root.CurrentStation},
		Lines:    []network.LineID{root.CurrentLine},
	}
	if root.TransferInfo != nil {
		path.Transfers = append(path.Transfers, *root.TransferInfo)
	}

	for i := 1; i < len(chain); i++ {
		prev := arena[chain[i-1]]
		cur := arena[chain[i]]

		if cur.TransferInfo != nil {
			path.Transfers = append(path.Transfers, *cur.TransferInfo)
		}

		isTransfer := prev.CurrentLine != cur.CurrentLine
		if isTransfer {
			if cur.CurrentStation != prev.CurrentStation {
				path.Stations = append(path.Stations, cur.CurrentStation)
				path.Lines = append(path.Lines, cur.CurrentLine)
			}
			continue
		}

		intermediates := intermediateStations(provider, prev.CurrentStation, cur.CurrentStation, cur.CurrentLine)
		for range intermediates {
			path.Lines = append(path.Lines, cur.CurrentLine)
		}
		path.Stations = append(path.Stations, intermediates...)
	}

	return path
}

// parentChain returns arena indices from root to idx, inclusive.
func parentChain(arena []label.Label, idx int) []int {
	var chain []int
	for i := idx; i != -1; i = arena[i].ParentIdx {
		chain = append(chain, i)
	}
	for l, r := 0, len(chain)-1; l < r; l, r = l+1, r-1 {
		chain[l], chain[r] = chain[r], chain[l]
	}
	return chain
}

// intermediateStations enumerates every station strictly between from
// and to (exclusive of from, inclusive of to) on line, in traversal
// order, using the provider's station order map. If either endpoint's
// order is unknown, it falls back to just the destination station
// (spec.md §4.F's "missing station order" failure mode).
func intermediateStations(provider network.Provider, from, to network.StationID, line network.LineID) []network.StationID {
	fromOrder, okFrom := provider.Order(from, line)
	toOrder, okTo := provider.Order(to, line)
	if !okFrom || !okTo {
		return []network.StationID{to}
	}

	ascending := fromOrder < toOrder

	type candidate struct {
		order int
		id    network.StationID
	}
	var candidates []candidate
	for _, id := range provider.StationsOnLine(line) {
		order, ok := provider.Order(id, line)
		if !ok {
			continue
		}
		if ascending {
			if order > fromOrder && order <= toOrder {
				candidates = append(candidates, candidate{order, id})
			}
		} else if order >= toOrder && order < fromOrder {
			candidates = append(candidates, candidate{order, id})
		}
	}

	if len(candidates) == 0 {
		return []network.StationID{to}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if ascending {
			return candidates[i].order < candidates[j].order
		}
		return candidates[i].order > candidates[j].order
	})

	result := make([]network.StationID, len(candidates))
	for i, c := range candidates {
		result[i] = c.id
	}
	return result
}

// TransferSignature returns a stable key identifying the sequence of
// transfers taken to reach arena[idx], used to de-duplicate routes that
// differ only in which Pareto-optimal label produced them (spec.md §4.G).
func TransferSignature(arena []label.Label, idx int) []label.TransferInfo {
	var transfers []label.TransferInfo
	for i := idx; i != -1; i = arena[i].ParentIdx {
		if t := arena[i].TransferInfo; t != nil {
			transfers = append(transfers, *t)
		}
	}
	for l, r := 0, len(transfers)-1; l < r; l, r = l+1, r-1 {
		transfers[l], transfers[r] = transfers[r], transfers[l]
	}
	return transfers
}
