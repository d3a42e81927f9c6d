// Package geocode resolves free-form addresses to coordinates.
package geocode

import (
	"context"

	"github.com/yungbote/placeshare-backend/internal/domain/place"
)

// MsgNoLocation is reported when the provider has no match for an address.
const MsgNoLocation = "Could not find location for the specified address."

// Geocoder turns an address into coordinates. Implementations return
// dependency-classified errors.
type Geocoder interface {
	GetCoordsForAddress(ctx context.Context, address string) (place.Location, error)
}

// Static always answers with the same coordinates. It stands in for the
// provider when no API key is configured.
type Static struct {
	Location place.Location
}

// DefaultStaticLocation is the Empire State Building.
var DefaultStaticLocation = place.Location{Lat: 40.7484474, Lng: -73.9871516}

func NewStatic() *Static {
	return &Static{Location: DefaultStaticLocation}
}

func (s *Static) GetCoordsForAddress(ctx context.Context, _ string) (place.Location, error) {
	if err := ctx.Err(); err != nil {
		return place.Location{}, dependencyError("context done before lookup", err)
	}
	return s.Location, nil
}
