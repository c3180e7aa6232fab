// Package proximity ranks businesses by great-circle distance from a
// customer's position.
package proximity

import (
	"math"
	"sort"
	"strings"

	"github.com/ray-remotestate/bazaar/apperror"
	"github.com/ray-remotestate/bazaar/models"
)

const (
	EarthRadiusKm   = 6371.0
	DefaultRadiusKm = 10.0
	MaxRadiusKm     = 50.0
	MaxResults      = 20
)

type Point struct {
	Lat float64
	Lng float64
}

func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lng, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Haversine returns the great-circle distance between a and b in kilometres.
func Haversine(a, b Point) float64 {
	dLat := radians(b.Lat - a.Lat)
	dLng := radians(b.Lng - a.Lng)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(a.Lat))*math.Cos(radians(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// EffectiveRadius applies the default and the upper bound to a requested
// radius in kilometres.
func EffectiveRadius(requested float64) float64 {
	if requested <= 0 || math.IsNaN(requested) {
		return DefaultRadiusKm
	}
	return math.Min(requested, MaxRadiusKm)
}

type Query struct {
	Origin   Point
	RadiusKm float64
	Type     string
}

func (q Query) Validate() error {
	if !q.Origin.Valid() {
		return apperror.Validation("lat must be within [-90, 90] and lng within [-180, 180]")
	}
	return nil
}

// Location returns the stored point of b, or false when b has none or it is
// unusable.
func Location(b *models.Business) (Point, bool) {
	if b.Latitude == nil || b.Longitude == nil {
		return Point{}, false
	}
	p := Point{Lat: *b.Latitude, Lng: *b.Longitude}
	return p, p.Valid()
}

// Nearby filters businesses to those within the effective radius of q.Origin,
// nearest first, keeping input order between equal distances, and returns at
// most MaxResults entries.
func Nearby(businesses []models.Business, q Query) ([]models.NearbyBusiness, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	radius := EffectiveRadius(q.RadiusKm)
	wantType := strings.TrimSpace(q.Type)

	hits := make([]models.NearbyBusiness, 0)
	for i := range businesses {
		b := businesses[i]
		if wantType != "" && !strings.EqualFold(b.Type, wantType) {
			continue
		}
		p, ok := Location(&b)
		if !ok {
			continue
		}
		d := Haversine(q.Origin, p)
		if d > radius {
			continue
		}
		hits = append(hits, models.NearbyBusiness{Business: b, Distance: d})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})
	if len(hits) > MaxResults {
		hits = hits[:MaxResults]
	}
	for i := range hits {
		hits[i].Distance = math.Round(hits[i].Distance*100) / 100
	}
	return hits, nil
}
