package network

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Loader reads the static network from Postgres once at startup and
// builds an in-memory Provider. Mirrors the teacher's RAPTOR data
// loader: one pass per table, building dense in-memory structures that
// the engine then only ever reads.
type Loader struct {
	db  *pgxpool.Pool
	cfg Config
}

// NewLoader builds a Loader against an already-connected pool.
func NewLoader(db *pgxpool.Pool, cfg Config) *Loader {
	return &Loader{db: db, cfg: cfg}
}

// Load reads stations, line topology, transfers, congestion, and
// facility preferences, returning a ready-to-use Provider.
func (l *Loader) Load(ctx context.Context) (*MemoryProvider, error) {
	log.Println("network: loading static network from database...")
	start := time.Now()

	provider := NewMemoryProvider(l.cfg)

	if err := l.loadStations(ctx, provider); err != nil {
		return nil, err
	}
	if err := l.loadLineOrder(ctx, provider); err != nil {
		return nil, err
	}
	if err := l.loadTransfers(ctx, provider); err != nil {
		return nil, err
	}
	if err := l.loadCongestion(ctx, provider); err != nil {
		return nil, err
	}
	if err := l.loadPreferences(ctx, provider); err != nil {
		return nil, err
	}

	log.Printf("network: static network loaded in %s", time.Since(start))
	return provider, nil
}

func (l *Loader) loadStations(ctx context.Context, p *MemoryProvider) error {
	rows, err := l.db.Query(ctx, `SELECT code, name, line, lat, lon FROM stations`)
	if err != nil {
		return err
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var s Station
		if err := rows.Scan(&s.ID, &s.Name, &s.Line, &s.Lat, &s.Lon); err != nil {
			return err
		}
		p.AddStation(s)
		count++
	}
	log.Printf("network: loaded %d stations", count)
	return rows.Err()
}

func (l *Loader) loadLineOrder(ctx context.Context, p *MemoryProvider) error {
	rows, err := l.db.Query(ctx, `
		SELECT line, station_code
		FROM line_stations
		ORDER BY line, station_sequence
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	ordered := make(map[LineID][]StationID)
	for rows.Next() {
		var line LineID
		var code StationID
		if err := rows.Scan(&line, &code); err != nil {
			return err
		}
		ordered[line] = append(ordered[line], code)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for line, stations := range ordered {
		p.SetLineOrder(line, stations)
	}
	log.Printf("network: built direction topology for %d lines", len(ordered))
	return nil
}

func (l *Loader) loadTransfers(ctx context.Context, p *MemoryProvider) error {
	rows, err := l.db.Query(ctx, `
		SELECT station_code, from_line, to_line, distance_meters
		FROM transfers
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	type key struct {
		station        StationID
		fromLine       LineID
		toLine         LineID
		distanceMeters float64
	}
	var keys []key
	for rows.Next() {
		var k key
		if err := rows.Scan(&k.station, &k.fromLine, &k.toLine, &k.distanceMeters); err != nil {
			return err
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	facilityByStation, err := l.loadFacilityScores(ctx)
	if err != nil {
		return err
	}

	for _, k := range keys {
		p.AddTransfer(k.station, k.fromLine, k.toLine, TransferRecord{
			DistanceMeters: k.distanceMeters,
			FacilityScores: facilityByStation[k.station],
		})
	}
	log.Printf("network: loaded %d transfer records", len(keys))
	return nil
}

func (l *Loader) loadFacilityScores(ctx context.Context) (map[StationID]map[Profile]map[string]float64, error) {
	rows, err := l.db.Query(ctx, `
		SELECT station_code, profile, facility, score
		FROM station_facility_scores
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[StationID]map[Profile]map[string]float64)
	for rows.Next() {
		var station StationID
		var profile Profile
		var facility string
		var score float64
		if err := rows.Scan(&station, &profile, &facility, &score); err != nil {
			return nil, err
		}
		if out[station] == nil {
			out[station] = make(map[Profile]map[string]float64)
		}
		if out[station][profile] == nil {
			out[station][profile] = make(map[string]float64)
		}
		out[station][profile][facility] = score
	}
	return out, rows.Err()
}

func (l *Loader) loadCongestion(ctx context.Context, p *MemoryProvider) error {
	rows, err := l.db.Query(ctx, `
		SELECT station_code, line, direction, day_type, slot_minute, load_ratio
		FROM congestion
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var station StationID
		var line LineID
		var direction Direction
		var day DayType
		var slot int
		var ratio float64
		if err := rows.Scan(&station, &line, &direction, &day, &slot, &ratio); err != nil {
			return err
		}
		p.SetCongestion(station, line, direction, day, slot, ratio)
		count++
	}
	log.Printf("network: loaded %d congestion entries", count)
	return rows.Err()
}

func (l *Loader) loadPreferences(ctx context.Context, p *MemoryProvider) error {
	rows, err := l.db.Query(ctx, `
		SELECT profile, facility, weight
		FROM facility_preferences
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	byProfile := make(map[Profile]map[string]float64)
	for rows.Next() {
		var profile Profile
		var facility string
		var weight float64
		if err := rows.Scan(&profile, &facility, &weight); err != nil {
			return err
		}
		if byProfile[profile] == nil {
			byProfile[profile] = make(map[string]float64)
		}
		byProfile[profile][facility] = weight
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for profile, weights := range byProfile {
		p.SetPreferenceWeights(profile, weights)
	}
	log.Printf("network: loaded preference weights for %d profiles", len(byProfile))
	return nil
}
