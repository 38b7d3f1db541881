// Package raptor implements the McRAPTOR routing engine: round-based
// label-setting search over (station, line, transfers) states, and the
// path reconstruction that turns a terminal label's parent chain into a
// station/line sequence. See spec.md §4.E and §4.F.
package raptor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/antigravity/transit-access/internal/anp"
	"github.com/antigravity/transit-access/internal/geo"
	"github.com/antigravity/transit-access/internal/label"
	"github.com/antigravity/transit-access/internal/network"
)

// ErrEmptyDestinations is a precondition violation: a query must name at
// least one destination station.
var ErrEmptyDestinations = errors.New("raptor: empty destination set")

// DefaultMaxRounds is used when a caller does not specify a round bound.
const DefaultMaxRounds = 5

// Destinations is the set of station codes a query accepts as terminal.
type Destinations map[network.StationID]struct{}

// NewDestinations builds a Destinations set from one or more station codes.
func NewDestinations(ids ...network.StationID) Destinations {
	d := make(Destinations, len(ids))
	for _, id := range ids {
		d[id] = struct{}{}
	}
	return d
}

// Engine runs McRAPTOR queries against a read-only network and ANP
// weight source. An Engine is safe for concurrent use by many queries:
// each call to FindRoutes owns its own label arena and frontier.
type Engine struct {
	Provider network.Provider
	ANP      *anp.Engine
	Geo      *geo.Calculator
}

// NewEngine builds an Engine from its three read-only collaborators.
func NewEngine(provider network.Provider, anpEngine *anp.Engine, geoCalc *geo.Calculator) *Engine {
	return &Engine{Provider: provider, ANP: anpEngine, Geo: geoCalc}
}

// Result holds everything a query produced: the label arena (referenced
// by index from the labels' parent chains) and the indices of labels
// whose current station is a destination.
type Result struct {
	Arena     []label.Label
	Terminals []int
}

// FindRoutes runs one McRAPTOR query from origin to any station in
// destinations, departing at departure under profile's accessibility
// weighting, relaxing at most maxRounds rounds. maxRounds==0 is a valid,
// deliberately infeasible request (no round ever runs, so only an
// origin that is itself a destination can produce a terminal label);
// callers wanting the library's usual default pass DefaultMaxRounds.
//
// Cancellation is cooperative: ctx is checked at the start of each round
// and after each expandable label finishes fanning out across its
// available lines; on cancellation FindRoutes returns whatever terminal
// labels have already been found (possibly none), never an error.
func (e *Engine) FindRoutes(
	ctx context.Context,
	origin network.StationID,
	destinations Destinations,
	departure time.Time,
	profile network.Profile,
	maxRounds int,
) (*Result, error) {
	if len(destinations) == 0 {
		return nil, ErrEmptyDestinations
	}
	if _, ok := e.Provider.Station(origin); !ok {
		return nil, fmt.Errorf("%w: %q", network.ErrUnknownStation, origin)
	}
	weights, err := e.ANP.Weights(profile)
	if err != nil {
		return nil, err
	}
	cfg := e.Provider.Config()
	epsilon := cfg.Epsilon[profile]

	originLines := e.Provider.LinesAt(origin)
	if len(originLines) == 0 {
		return &Result{}, nil
	}

	arena := make([]label.Label, 0, 256)
	frontier := label.NewFrontier()
	marked := make(map[network.StationID]bool, len(originLines))

	for _, line := range originLines {
		convenience := anp.StationConvenienceScore(e.Provider, origin, profile)
		congestion := e.congestionOrDefault(origin, line, network.DirUp, departure, cfg)

		arena = append(arena, label.Label{
			ArrivalTime:           0,
			Transfers:             0,
			ConvenienceSum:        convenience,
			CongestionSum:         congestion,
			MaxTransferDifficulty: 0,
			ParentIdx:             -1,
			CurrentStation:        origin,
			CurrentLine:           line,
			CurrentDirection:      "",
			Visited:               label.NewVisitedSet(origin),
			Depth:                 1,
			IsFirstMove:           true,
			CreatedRound:          0,
		})
		idx := len(arena) - 1
		frontier.Update(arena, idx, weights, epsilon, cfg, cfg.MaxLabelsPerState)
		marked[origin] = true
	}

roundLoop:
	for round := 1; round <= maxRounds; round++ {
		if len(marked) == 0 {
			break
		}
		if err := ctx.Err(); err != nil {
			break
		}

		nextMarked := make(map[network.StationID]bool)

		var toExplore []int
		for _, bucket := range frontier.AllBuckets() {
			if !marked[bucket.Station] {
				continue
			}
			for _, idx := range frontier.Labels(bucket) {
				if arena[idx].CreatedRound < round {
					toExplore = append(toExplore, idx)
				}
			}
		}

		for _, idx := range toExplore {
			l := arena[idx]
			station := l.CurrentStation

			if _, isDest := destinations[station]; isDest {
				continue
			}

			for _, line := range e.Provider.LinesAt(station) {
				isTransfer := l.Depth != 1 && line != l.CurrentLine
				transferCost := 0
				if isTransfer {
					transferCost = 1
				}
				if l.Transfers+transferCost > round {
					continue
				}

				if isTransfer {
					e.expandTransfer(&arena, frontier, l, idx, station, line, round, destinations, weights, epsilon, cfg, profile, departure, nextMarked)
				} else {
					e.expandRide(&arena, frontier, l, idx, station, line, round, departure, weights, epsilon, cfg, profile, nextMarked)
				}
			}

			if err := ctx.Err(); err != nil {
				marked = nextMarked
				break roundLoop
			}
		}

		marked = nextMarked
	}

	result := &Result{Arena: arena}
	for _, bucket := range frontier.AllBuckets() {
		if _, isDest := destinations[bucket.Station]; !isDest {
			continue
		}
		result.Terminals = append(result.Terminals, frontier.Labels(bucket)...)
	}
	return result, nil
}

// expandTransfer handles the "change lines at the same physical station"
// branch of a round (spec.md §4.E transfer branch).
func (e *Engine) expandTransfer(
	arena *[]label.Label,
	frontier *label.Frontier,
	l label.Label,
	idx int,
	station network.StationID,
	line network.LineID,
	round int,
	destinations Destinations,
	weights anp.Weights,
	epsilon float64,
	cfg network.Config,
	profile network.Profile,
	departure time.Time,
	nextMarked map[network.StationID]bool,
) {
	// Forbid two transfers in a row without an intervening ride.
	if l.IsFirstMove && l.ParentIdx != -1 {
		return
	}

	st, ok := e.Provider.Station(station)
	if !ok {
		return
	}
	resolver, ok := e.Provider.(network.StationByNameOnLine)
	if !ok {
		return
	}
	resolved, ok := resolver.StationByNameOnLine(st.Name, line)
	if !ok {
		return
	}
	if _, isDest := destinations[resolved]; isDest {
		return
	}

	distance := cfg.DefaultTransferDistanceMeters
	var facilityScores map[string]float64
	if rec, ok := e.Provider.Transfer(station, l.CurrentLine, line); ok {
		distance = rec.DistanceMeters
		facilityScores = rec.FacilityScores[profile]
	}

	convenienceAtTransfer := anp.ConvenienceScore(anp.PreferenceWeights(e.Provider, profile), facilityScores)
	difficulty := anp.TransferDifficulty(distance, convenienceAtTransfer, cfg)
	maxDifficulty := l.MaxTransferDifficulty
	if difficulty > maxDifficulty {
		maxDifficulty = difficulty
	}
	walkMinutes := anp.TransferWalkMinutes(distance, profile, cfg)

	arrivalTime := l.ArrivalTime + walkMinutes
	convenience := anp.StationConvenienceScore(e.Provider, resolved, profile)
	instant := departure.Add(time.Duration(arrivalTime * float64(time.Minute)))
	congestion := e.congestionOrDefault(resolved, line, "", instant, cfg)

	newLabel := label.Label{
		ArrivalTime:           arrivalTime,
		Transfers:             l.Transfers + 1,
		ConvenienceSum:        l.ConvenienceSum + convenience,
		CongestionSum:         l.CongestionSum + congestion,
		MaxTransferDifficulty: maxDifficulty,
		ParentIdx:             idx,
		CurrentStation:        resolved,
		CurrentLine:           line,
		CurrentDirection:      "",
		Visited:               l.Visited.With(resolved),
		Depth:                 l.Depth + 1,
		TransferInfo:          &label.TransferInfo{Station: resolved, FromLine: l.CurrentLine, ToLine: line},
		IsFirstMove:           true,
		CreatedRound:          round,
	}

	*arena = append(*arena, newLabel)
	newIdx := len(*arena) - 1
	if frontier.Update(*arena, newIdx, weights, epsilon, cfg, cfg.MaxLabelsPerState) {
		nextMarked[resolved] = true
	}
}

// expandRide handles the "keep riding the same line" branch of a round
// (spec.md §4.E ride branch), walking every candidate direction's
// downstream station list and inserting a label at each unvisited stop.
func (e *Engine) expandRide(
	arena *[]label.Label,
	frontier *label.Frontier,
	l label.Label,
	idx int,
	station network.StationID,
	line network.LineID,
	round int,
	departure time.Time,
	weights anp.Weights,
	epsilon float64,
	cfg network.Config,
	profile network.Profile,
	nextMarked map[network.StationID]bool,
) {
	downstream := e.Provider.Downstream(station, line)

	var directions []network.Direction
	if l.IsFirstMove || l.Depth == 1 {
		if cfg.IsCircular(line) {
			directions = []network.Direction{network.DirIn, network.DirOut}
		} else {
			directions = []network.Direction{network.DirUp, network.DirDown}
		}
	} else {
		directions = []network.Direction{l.CurrentDirection}
	}

	for _, direction := range directions {
		stations := downstream[direction]
		if len(stations) == 0 {
			continue
		}

		cumulative := 0.0
		previous := station

		for _, next := range stations {
			if l.Visited.Contains(next) {
				continue
			}

			cumulative += e.segmentMinutes(previous, next, cfg)

			arrivalTime := l.ArrivalTime + cumulative
			convenience := anp.StationConvenienceScore(e.Provider, next, profile)
			instant := departure.Add(time.Duration(arrivalTime * float64(time.Minute)))
			congestion := e.congestionOrDefault(next, line, direction, instant, cfg)

			newLabel := label.Label{
				ArrivalTime:           arrivalTime,
				Transfers:             l.Transfers,
				ConvenienceSum:        l.ConvenienceSum + convenience,
				CongestionSum:         l.CongestionSum + congestion,
				MaxTransferDifficulty: l.MaxTransferDifficulty,
				ParentIdx:             idx,
				CurrentStation:        next,
				CurrentLine:           line,
				CurrentDirection:      direction,
				Visited:               l.Visited.With(next),
				Depth:                 l.Depth + 1,
				IsFirstMove:           false,
				CreatedRound:          round,
			}

			*arena = append(*arena, newLabel)
			newIdx := len(*arena) - 1
			if frontier.Update(*arena, newIdx, weights, epsilon, cfg, cfg.MaxLabelsPerState) {
				nextMarked[next] = true
			}

			previous = next
		}
	}
}

// segmentMinutes converts the distance between two stations into ride
// minutes at the network's commercial speed, floored to the configured
// minimum segment time. Missing station coordinates fall back to a flat
// 2-minute segment rather than failing the query.
func (e *Engine) segmentMinutes(from, to network.StationID, cfg network.Config) float64 {
	fromStation, ok1 := e.Provider.Station(from)
	toStation, ok2 := e.Provider.Station(to)
	if !ok1 || !ok2 {
		return 2.0
	}

	speed := cfg.CommercialSpeedMetersPerMinute
	if speed <= 0 {
		speed = 550
	}
	minSegment := cfg.MinSegmentMinutes
	if minSegment <= 0 {
		minSegment = 1
	}

	distance := e.Geo.Distance(fromStation.Lat, fromStation.Lon, toStation.Lat, toStation.Lon)
	segment := distance / speed
	if segment < minSegment {
		return minSegment
	}
	return segment
}

// congestionOrDefault looks up a congestion ratio, falling back to the
// network's configured default when no entry exists for that bucket.
func (e *Engine) congestionOrDefault(
	station network.StationID,
	line network.LineID,
	direction network.Direction,
	instant time.Time,
	cfg network.Config,
) float64 {
	if v, ok := e.Provider.Congestion(station, line, direction, instant); ok {
		return v
	}
	if cfg.DefaultCongestion > 0 {
		return cfg.DefaultCongestion
	}
	return 0.57
}
