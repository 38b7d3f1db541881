package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/antigravity/transit-access/internal/anp"
	"github.com/antigravity/transit-access/internal/cache"
	"github.com/antigravity/transit-access/internal/network"
	"github.com/antigravity/transit-access/internal/rank"
	"github.com/antigravity/transit-access/internal/raptor"
)

// RouteHandler serves accessibility-ranked route queries over the
// McRAPTOR engine, with results memoized behind an optional cache.
type RouteHandler struct {
	Engine *raptor.Engine
	ANP    *anp.Engine
	Cache  *cache.RouteCache
}

// NewRouteHandler wires a RouteHandler to its collaborators. cache may
// be nil to run without memoization.
func NewRouteHandler(engine *raptor.Engine, anpEngine *anp.Engine, routeCache *cache.RouteCache) *RouteHandler {
	return &RouteHandler{Engine: engine, ANP: anpEngine, Cache: routeCache}
}

type transferView struct {
	Station  network.StationID `json:"station"`
	FromLine network.LineID    `json:"from_line"`
	ToLine   network.LineID    `json:"to_line"`
}

type routeView struct {
	Stations      []network.StationID `json:"stations"`
	Lines         []network.LineID    `json:"lines"`
	Transfers     []transferView      `json:"transfers"`
	ArrivalTime   float64             `json:"arrival_time_minutes"`
	TransferCount int                 `json:"transfer_count"`
	Score         float64             `json:"score"`
}

// GetRoute handles GET /api/v1/route?origin=...&destinations=a,b&profile=PHY.
func (h *RouteHandler) GetRoute(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	origin := network.StationID(q.Get("origin"))
	destParam := q.Get("destinations")
	if origin == "" || destParam == "" {
		http.Error(w, "origin and destinations query parameters are required", http.StatusBadRequest)
		return
	}

	var destIDs []network.StationID
	for _, d := range strings.Split(destParam, ",") {
		if d = strings.TrimSpace(d); d != "" {
			destIDs = append(destIDs, network.StationID(d))
		}
	}
	destinations := raptor.NewDestinations(destIDs...)

	profile := network.Profile(strings.ToUpper(q.Get("profile")))
	if profile == "" {
		profile = network.ProfilePHY
	}

	departure := time.Now()
	if ts := q.Get("departure"); ts != "" {
		parsed, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			http.Error(w, "departure must be RFC3339", http.StatusBadRequest)
			return
		}
		departure = parsed
	}

	maxRounds := raptor.DefaultMaxRounds
	if mr := q.Get("max_rounds"); mr != "" {
		if parsed, err := strconv.Atoi(mr); err == nil && parsed >= 0 {
			maxRounds = parsed
		}
	}

	topK := rank.DefaultTopK
	if k := q.Get("top_k"); k != "" {
		if parsed, err := strconv.Atoi(k); err == nil && parsed > 0 {
			topK = parsed
		}
	}

	// Bucket the departure time to 30-minute slots so nearby queries
	// share a cache entry instead of missing on every second's jitter.
	cacheKey := fmt.Sprintf("route:%s:%s:%s:%d:%d:%d",
		origin, destParam, profile, departure.Truncate(30*time.Minute).Unix(), maxRounds, topK)

	var cached []routeView
	if h.Cache.Get(r.Context(), cacheKey, &cached) {
		writeJSON(w, cached)
		return
	}

	result, err := h.Engine.FindRoutes(r.Context(), origin, destinations, departure, profile, maxRounds)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	weights, err := h.ANP.Weights(profile)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ranked := rank.Routes(result.Arena, result.Terminals, weights, h.Engine.Provider.Config(), topK)

	views := make([]routeView, 0, len(ranked))
	for _, entry := range ranked {
		lbl := result.Arena[entry.LabelIdx]
		path := raptor.Reconstruct(h.Engine.Provider, result.Arena, entry.LabelIdx)

		transfers := make([]transferView, len(path.Transfers))
		for i, t := range path.Transfers {
			transfers[i] = transferView{Station: t.Station, FromLine: t.FromLine, ToLine: t.ToLine}
		}

		views = append(views, routeView{
			Stations:      path.Stations,
			Lines:         path.Lines,
			Transfers:     transfers,
			ArrivalTime:   lbl.ArrivalTime,
			TransferCount: lbl.Transfers,
			Score:         entry.Score,
		})
	}

	h.Cache.Set(r.Context(), cacheKey, views)
	writeJSON(w, views)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
