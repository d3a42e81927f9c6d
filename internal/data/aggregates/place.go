package aggregates

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	placerepo "github.com/yungbote/placeshare-backend/internal/data/repos/place"
	userrepo "github.com/yungbote/placeshare-backend/internal/data/repos/user"
	domainagg "github.com/yungbote/placeshare-backend/internal/domain/aggregates"
	"github.com/yungbote/placeshare-backend/internal/domain/place"
	"github.com/yungbote/placeshare-backend/internal/platform/dbctx"
)

type PlaceAggregateDeps struct {
	Base BaseDeps

	Places placerepo.PlaceRepo
	Users  userrepo.UserRepo
}

type placeAggregate struct {
	deps PlaceAggregateDeps
}

func NewPlaceAggregate(deps PlaceAggregateDeps) domainagg.PlaceAggregate {
	deps.Base = deps.Base.withDefaults()
	deps.Base.Log = deps.Base.Log.With("aggregate", "PlaceAggregate")
	return &placeAggregate{deps: deps}
}

func (a *placeAggregate) Contract() domainagg.Contract {
	return domainagg.PlaceAggregateContract
}

func (a *placeAggregate) Create(ctx context.Context, in domainagg.CreatePlaceInput) (*place.Place, error) {
	const op = "Places.Place.Create"
	if in.CreatorID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing creator", nil)
	}
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Address) == "" {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "title and address are required", nil)
	}
	if a.deps.Places == nil || a.deps.Users == nil {
		return nil, domainagg.NewError(domainagg.CodeInternal, op, "place aggregate repos not configured", nil)
	}

	var out *place.Place
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		p := &place.Place{
			ID:          uuid.New(),
			Title:       strings.TrimSpace(in.Title),
			Description: strings.TrimSpace(in.Description),
			Address:     strings.TrimSpace(in.Address),
			Location:    in.Location,
			Image:       in.Image,
			CreatorID:   in.CreatorID,
		}
		if err := a.deps.Places.Create(dbc, p); err != nil {
			return err
		}

		creator, err := a.deps.Users.LockByID(dbc, in.CreatorID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domainagg.NewError(domainagg.CodeNotFound, op, "creator not found", err)
		}
		if err != nil {
			return err
		}
		if creator.HasPlace(p.ID) {
			return InvariantError(fmt.Sprintf("creator already references place %s", p.ID))
		}

		places := make([]uuid.UUID, 0, len(creator.Places)+1)
		places = append(places, creator.Places...)
		places = append(places, p.ID)
		if err := a.deps.Users.UpdatePlaces(dbc, creator.ID, places); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *placeAggregate) Delete(ctx context.Context, in domainagg.DeletePlaceInput) error {
	const op = "Places.Place.Delete"
	if in.PlaceID == uuid.Nil {
		return domainagg.NewError(domainagg.CodeValidation, op, "missing place_id", nil)
	}
	if in.CreatorID == uuid.Nil {
		return domainagg.NewError(domainagg.CodeValidation, op, "missing creator", nil)
	}
	if a.deps.Places == nil || a.deps.Users == nil {
		return domainagg.NewError(domainagg.CodeInternal, op, "place aggregate repos not configured", nil)
	}

	return executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		n, err := a.deps.Places.DeleteByID(dbc, in.PlaceID)
		if err != nil {
			return err
		}
		if n == 0 {
			return domainagg.NewError(domainagg.CodeNotFound, op, "place not found", nil)
		}

		creator, err := a.deps.Users.LockByID(dbc, in.CreatorID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return InvariantError(fmt.Sprintf("creator %s of place %s is missing", in.CreatorID, in.PlaceID))
		}
		if err != nil {
			return err
		}

		remaining := make([]uuid.UUID, 0, len(creator.Places))
		for _, id := range creator.Places {
			if id != in.PlaceID {
				remaining = append(remaining, id)
			}
		}
		if len(remaining) == len(creator.Places) {
			a.deps.Base.Log.Warn("Creator did not reference deleted place",
				"place_id", in.PlaceID.String(),
				"creator", in.CreatorID.String(),
			)
			return nil
		}
		return a.deps.Users.UpdatePlaces(dbc, creator.ID, remaining)
	})
}
