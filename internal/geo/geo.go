// Package geo provides great-circle distance calculations between station
// coordinates, memoized the way a hot routing loop needs.
package geo

import (
	"math"

	"github.com/bluele/gcache"
)

// EarthRadiusMeters is the mean radius used for the haversine formula.
const EarthRadiusMeters = 6371000.0

// memoSize bounds the process-local distance memo. Keys repeat heavily
// across rounds of the same query and across concurrent queries sharing
// the same network, so an LRU of this size keeps lookups warm without
// growing unbounded over a long-lived process.
const memoSize = 200000

type coordKey struct {
	lat1, lon1, lat2, lon2 float64
}

// Calculator memoizes haversine distance lookups. The zero value is not
// usable; construct one with NewCalculator. A Calculator is safe for
// concurrent use.
type Calculator struct {
	memo gcache.Cache
}

// NewCalculator builds a Calculator with a process-local, concurrency-safe
// LRU memo.
func NewCalculator() *Calculator {
	return &Calculator{
		memo: gcache.New(memoSize).LRU().Build(),
	}
}

// Distance returns the great-circle distance, in meters, between two
// coordinates given in degrees. It is symmetric and zero iff both points
// coincide.
func (c *Calculator) Distance(lat1, lon1, lat2, lon2 float64) float64 {
	key := coordKey{lat1, lon1, lat2, lon2}
	if v, err := c.memo.Get(key); err == nil {
		return v.(float64)
	}

	d := Haversine(lat1, lon1, lat2, lon2)
	_ = c.memo.Set(key, d)
	return d
}

// Haversine computes great-circle distance in meters without memoization.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	rlat1 := lat1 * math.Pi / 180
	rlon1 := lon1 * math.Pi / 180
	rlat2 := lat2 * math.Pi / 180
	rlon2 := lon2 * math.Pi / 180

	dlat := rlat2 - rlat1
	dlon := rlon2 - rlon1

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(rlat1)*math.Cos(rlat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Asin(math.Sqrt(a))

	return EarthRadiusMeters * c
}
