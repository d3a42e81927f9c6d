package aggregates

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/placeshare-backend/internal/domain/place"
)

// PlaceAggregate owns the Place.Creator <-> User.Places edge. It is the only
// write path for either side of that edge.
type PlaceAggregate interface {
	Aggregate

	// Create inserts the place and appends its id to the creator's places in
	// one transaction.
	Create(ctx context.Context, in CreatePlaceInput) (*place.Place, error)
	// Delete removes the place and its id from the creator's places in one
	// transaction. A place that is already gone yields CodeNotFound.
	Delete(ctx context.Context, in DeletePlaceInput) error
}

type CreatePlaceInput struct {
	Title       string
	Description string
	Address     string
	Location    place.Location
	Image       string
	CreatorID   uuid.UUID
}

type DeletePlaceInput struct {
	PlaceID   uuid.UUID
	CreatorID uuid.UUID
}

// PlaceAggregateContract documents the place aggregate boundary.
var PlaceAggregateContract = Contract{
	Name:             "Places.Place",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	Notes:            "place row and creator.places are written together or not at all",
}
