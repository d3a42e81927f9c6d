package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/yungbote/placeshare-backend/internal/authz"
	placerepo "github.com/yungbote/placeshare-backend/internal/data/repos/place"
	userrepo "github.com/yungbote/placeshare-backend/internal/data/repos/user"
	domainagg "github.com/yungbote/placeshare-backend/internal/domain/aggregates"
	"github.com/yungbote/placeshare-backend/internal/domain/place"
	"github.com/yungbote/placeshare-backend/internal/platform/dbctx"
	"github.com/yungbote/placeshare-backend/internal/platform/geocode"
	"github.com/yungbote/placeshare-backend/internal/platform/logger"
	"github.com/yungbote/placeshare-backend/internal/platform/objectstore"
)

const (
	MsgInvalidInputs      = "Invalid inputs passed, please check your data."
	MsgPlaceNotFound      = "Could not find place for the provided id."
	MsgUserPlacesNotFound = "Could not find places for the provided user id."
	MsgCreatorNotFound    = "Could not find user for provided id."
	MsgNotAllowedEdit     = "You are not allowed to edit this place."
	MsgNotAllowedDelete   = "You are not allowed to delete this place."
)

type CreatePlaceInput struct {
	Title       string
	Description string
	Address     string
	// Image is the object-store key of the already uploaded image.
	Image string
}

type UpdatePlaceInput struct {
	Title       string
	Description string
}

type PlaceService interface {
	GetPlace(ctx context.Context, id uuid.UUID) (*place.Place, error)
	ListPlacesByUser(ctx context.Context, userID uuid.UUID) ([]*place.Place, error)
	CreatePlace(ctx context.Context, in CreatePlaceInput, creatorID uuid.UUID) (*place.Place, error)
	UpdatePlace(ctx context.Context, placeID, actingUserID uuid.UUID, in UpdatePlaceInput) (*place.Place, error)
	DeletePlace(ctx context.Context, placeID, actingUserID uuid.UUID) error
}

type PlaceServiceDeps struct {
	Log       *logger.Logger
	Places    placerepo.PlaceRepo
	Users     userrepo.UserRepo
	Aggregate domainagg.PlaceAggregate
	Geocoder  geocode.Geocoder
	// Images may be nil, in which case image release is skipped.
	Images objectstore.Store
}

type placeService struct {
	log       *logger.Logger
	places    placerepo.PlaceRepo
	users     userrepo.UserRepo
	aggregate domainagg.PlaceAggregate
	geocoder  geocode.Geocoder
	images    objectstore.Store
}

func NewPlaceService(deps PlaceServiceDeps) PlaceService {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	return &placeService{
		log:       log.With("service", "PlaceService"),
		places:    deps.Places,
		users:     deps.Users,
		aggregate: deps.Aggregate,
		geocoder:  deps.Geocoder,
		images:    deps.Images,
	}
}

func (s *placeService) GetPlace(ctx context.Context, id uuid.UUID) (*place.Place, error) {
	const op = "PlaceService.GetPlace"
	p, err := s.places.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, outward(op, "Something went wrong, could not find a place.", err)
	}
	if p == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, MsgPlaceNotFound, nil)
	}
	return p, nil
}

// ListPlacesByUser returns the user's places in the order of user.places.
// A known user without places gets an empty slice.
func (s *placeService) ListPlacesByUser(ctx context.Context, userID uuid.UUID) ([]*place.Place, error) {
	const op = "PlaceService.ListPlacesByUser"
	const failMsg = "Fetching places failed, please try again later."
	dbc := dbctx.Context{Ctx: ctx}

	u, err := s.users.GetByID(dbc, userID)
	if err != nil {
		return nil, outward(op, failMsg, err)
	}
	if u == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, MsgUserPlacesNotFound, nil)
	}
	rows, err := s.places.GetByIDs(dbc, u.Places)
	if err != nil {
		return nil, outward(op, failMsg, err)
	}
	byID := make(map[uuid.UUID]*place.Place, len(rows))
	for _, p := range rows {
		byID[p.ID] = p
	}
	out := make([]*place.Place, 0, len(u.Places))
	for _, id := range u.Places {
		if p, ok := byID[id]; ok {
			out = append(out, p)
			continue
		}
		s.log.Warn("User references missing place", "user_id", userID.String(), "place_id", id.String())
	}
	return out, nil
}

func (s *placeService) CreatePlace(ctx context.Context, in CreatePlaceInput, creatorID uuid.UUID) (*place.Place, error) {
	const op = "PlaceService.CreatePlace"
	const failMsg = "Creating place failed, please try again."
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Address = strings.TrimSpace(in.Address)
	if err := validatePlaceFields(op, in.Title, in.Description); err != nil {
		return nil, err
	}
	if in.Address == "" {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, MsgInvalidInputs, errors.New("address is required"))
	}

	loc, err := s.geocoder.GetCoordsForAddress(ctx, in.Address)
	if err != nil {
		if domainagg.CodeOf(err) == "" {
			err = domainagg.NewError(domainagg.CodeDependency, op, geocode.MsgNoLocation, err)
		}
		return nil, err
	}

	creator, err := s.users.GetByID(dbctx.Context{Ctx: ctx}, creatorID)
	if err != nil {
		return nil, outward(op, failMsg, err)
	}
	if creator == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, MsgCreatorNotFound, nil)
	}

	p, err := s.aggregate.Create(ctx, domainagg.CreatePlaceInput{
		Title:       in.Title,
		Description: in.Description,
		Address:     in.Address,
		Location:    loc,
		Image:       in.Image,
		CreatorID:   creator.ID,
	})
	if err != nil {
		if domainagg.IsCode(err, domainagg.CodeNotFound) {
			return nil, domainagg.NewError(domainagg.CodeNotFound, op, MsgCreatorNotFound, err)
		}
		return nil, outward(op, failMsg, err)
	}
	s.log.Info("Place created", "place_id", p.ID.String(), "creator", creator.ID.String())
	return p, nil
}

func (s *placeService) UpdatePlace(ctx context.Context, placeID, actingUserID uuid.UUID, in UpdatePlaceInput) (*place.Place, error) {
	const op = "PlaceService.UpdatePlace"
	const failMsg = "Something went wrong, could not update place."
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if err := validatePlaceFields(op, in.Title, in.Description); err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}

	p, err := s.places.GetByID(dbc, placeID)
	if err != nil {
		return nil, outward(op, failMsg, err)
	}
	if p == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, MsgPlaceNotFound, nil)
	}
	if err := authz.AuthorizeWithMessage(p.CreatorID, actingUserID, MsgNotAllowedEdit); err != nil {
		return nil, err
	}

	n, err := s.places.UpdateFields(dbc, p.ID, map[string]any{
		"title":       in.Title,
		"description": in.Description,
		"updated_at":  time.Now().UTC(),
	})
	if err != nil {
		return nil, outward(op, failMsg, err)
	}
	if n == 0 {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, MsgPlaceNotFound, nil)
	}
	updated, err := s.places.GetByID(dbc, p.ID)
	if err != nil {
		return nil, outward(op, failMsg, err)
	}
	if updated == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, MsgPlaceNotFound, nil)
	}
	return updated, nil
}

func (s *placeService) DeletePlace(ctx context.Context, placeID, actingUserID uuid.UUID) error {
	const op = "PlaceService.DeletePlace"
	const failMsg = "Something went wrong, could not delete place."
	const notFoundMsg = "Could not find place for this id."
	dbc := dbctx.Context{Ctx: ctx}

	p, err := s.places.GetByID(dbc, placeID)
	if err != nil {
		return outward(op, failMsg, err)
	}
	if p == nil {
		return domainagg.NewError(domainagg.CodeNotFound, op, notFoundMsg, nil)
	}
	creator, err := s.users.GetByID(dbc, p.CreatorID)
	if err != nil {
		return outward(op, failMsg, err)
	}
	if creator == nil {
		s.log.Error("Place has no creator row", "place_id", p.ID.String(), "creator", p.CreatorID.String())
		return domainagg.NewError(domainagg.CodeInternal, op, failMsg, nil)
	}
	if err := authz.AuthorizeWithMessage(creator.ID, actingUserID, MsgNotAllowedDelete); err != nil {
		return err
	}

	if err := s.aggregate.Delete(ctx, domainagg.DeletePlaceInput{PlaceID: p.ID, CreatorID: creator.ID}); err != nil {
		if domainagg.IsCode(err, domainagg.CodeNotFound) {
			return domainagg.NewError(domainagg.CodeNotFound, op, notFoundMsg, err)
		}
		return outward(op, failMsg, err)
	}
	s.releaseImage(ctx, p)
	return nil
}

// releaseImage deletes the stored image. Failures are logged and left for
// the orphan sweep.
func (s *placeService) releaseImage(ctx context.Context, p *place.Place) {
	if s.images == nil || strings.TrimSpace(p.Image) == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()
	if err := s.images.Delete(ctx, p.Image); err != nil {
		s.log.Warn("Failed to release place image", "place_id", p.ID.String(), "image", p.Image, "error", err)
	}
}

func validatePlaceFields(op, title, description string) error {
	switch {
	case title == "":
		return domainagg.NewError(domainagg.CodeValidation, op, MsgInvalidInputs, errors.New("title is required"))
	case utf8.RuneCountInString(description) < place.MinDescriptionLength:
		return domainagg.NewError(domainagg.CodeValidation, op, MsgInvalidInputs, errors.New("description is too short"))
	}
	return nil
}

// outward keeps typed client-facing errors and rewrites dependency and
// internal failures with msg so raw storage errors never reach callers.
func outward(op, msg string, err error) error {
	switch code := domainagg.CodeOf(err); code {
	case "":
		return domainagg.NewError(domainagg.CodeDependency, op, msg, err)
	case domainagg.CodeDependency, domainagg.CodeInternal:
		return domainagg.NewError(code, op, msg, err)
	default:
		return err
	}
}
