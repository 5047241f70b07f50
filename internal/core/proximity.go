package core

import (
	"sort"

	"github.com/UzumakiODZ/backEndChat/internal/geo"
)

// Neighbor is one proximity-query result. The username comes from the same
// cache snapshot as the coordinates, so a concurrent account deletion cannot
// leave a neighbor without a name.
type Neighbor struct {
	UserID     int64
	Username   string
	Location   geo.Point
	DistanceKm float64
}

// Proximity answers radius-bounded, distance-ordered queries over the
// location cache.
type Proximity struct {
	locations *Locations
}

// NewProximity builds a proximity index over the given location cache.
func NewProximity(locations *Locations) *Proximity {
	return &Proximity{locations: locations}
}

// Nearby returns the peers within radiusKm of the querying identity,
// ascending by distance. The radius is a strict upper bound. The querying
// identity itself and users without stored coordinates are excluded. Fails
// with ErrLocationUnavailable when the caller has no stored coordinates.
func (p *Proximity) Nearby(identity int64, radiusKm float64) ([]Neighbor, error) {
	origin, ok := p.locations.Get(identity)
	if !ok {
		return nil, ErrLocationUnavailable
	}

	neighbors := make([]Neighbor, 0)
	for _, ul := range p.locations.Snapshot() {
		if ul.UserID == identity {
			continue
		}
		d := geo.Distance(origin, ul.Location)
		if d < radiusKm {
			neighbors = append(neighbors, Neighbor{
				UserID:     ul.UserID,
				Username:   ul.Username,
				Location:   ul.Location,
				DistanceKm: d,
			})
		}
	}

	sort.Slice(neighbors, func(i, j int) bool {
		return neighbors[i].DistanceKm < neighbors[j].DistanceKm
	})
	return neighbors, nil
}
