package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/placeshare-backend/internal/data/aggregates"
	placerepo "github.com/yungbote/placeshare-backend/internal/data/repos/place"
	repotest "github.com/yungbote/placeshare-backend/internal/data/repos/testutil"
	userrepo "github.com/yungbote/placeshare-backend/internal/data/repos/user"
	domainagg "github.com/yungbote/placeshare-backend/internal/domain/aggregates"
	"github.com/yungbote/placeshare-backend/internal/domain/place"
	"github.com/yungbote/placeshare-backend/internal/platform/geocode"
	"github.com/yungbote/placeshare-backend/internal/platform/objectstore"
)

type fakeGeocoder struct {
	calls int
	loc   place.Location
	err   error
}

func (f *fakeGeocoder) GetCoordsForAddress(context.Context, string) (place.Location, error) {
	f.calls++
	return f.loc, f.err
}

type recordingStore struct {
	deleted []string
	err     error
}

func (s *recordingStore) Put(context.Context, string, io.Reader) error { return nil }
func (s *recordingStore) Delete(_ context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	return s.err
}
func (s *recordingStore) List(context.Context, string) ([]objectstore.Object, error) { return nil, nil }
func (s *recordingStore) PublicURL(key string) string                              { return key }

type placeFixture struct {
	db     *gorm.DB
	svc    PlaceService
	geo    *fakeGeocoder
	images *recordingStore
}

func newPlaceFixture(t *testing.T) *placeFixture {
	t.Helper()
	db := repotest.DB(t)
	log := repotest.Logger(t)
	places := placerepo.NewPlaceRepo(db, log)
	users := userrepo.NewUserRepo(db, log)
	geo := &fakeGeocoder{loc: place.Location{Lat: 40.7484405, Lng: -73.9878584}}
	images := &recordingStore{}
	svc := NewPlaceService(PlaceServiceDeps{
		Log:    log,
		Places: places,
		Users:  users,
		Aggregate: aggregates.NewPlaceAggregate(aggregates.PlaceAggregateDeps{
			Base:   aggregates.BaseDeps{DB: db, Log: log},
			Places: places,
			Users:  users,
		}),
		Geocoder: geo,
		Images:   images,
	})
	return &placeFixture{db: db, svc: svc, geo: geo, images: images}
}

func validCreate() CreatePlaceInput {
	return CreatePlaceInput{
		Title:       "Empire State Building",
		Description: "One of the most famous sky scrapers in the world!",
		Address:     "20 W 34th St, New York, NY 10001",
		Image:       "images/esb.jpg",
	}
}

func TestCreateThenGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newPlaceFixture(t)
	u := repotest.SeedUser(t, ctx, f.db, "max@test.com")

	created, err := f.svc.CreatePlace(ctx, validCreate(), u.ID)
	if err != nil {
		t.Fatalf("CreatePlace: %v", err)
	}
	got, err := f.svc.GetPlace(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetPlace: %v", err)
	}
	if got.Title != "Empire State Building" || got.CreatorID != u.ID {
		t.Fatalf("unexpected place: %+v", got)
	}
	if got.Location != f.geo.loc {
		t.Fatalf("location: want=%v got=%v", f.geo.loc, got.Location)
	}
	if reloaded := repotest.LoadUser(t, ctx, f.db, u.ID); !reloaded.HasPlace(created.ID) {
		t.Fatalf("creator should reference new place, got=%v", reloaded.Places)
	}
}

func TestCreateRejectsShortDescriptionBeforeGeocoding(t *testing.T) {
	ctx := context.Background()
	f := newPlaceFixture(t)
	u := repotest.SeedUser(t, ctx, f.db, "max@test.com")

	in := validCreate()
	in.Description = " abc "
	_, err := f.svc.CreatePlace(ctx, in, u.ID)
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("want code=%s got=%v", domainagg.CodeValidation, err)
	}
	if f.geo.calls != 0 {
		t.Fatalf("geocoder calls: want=0 got=%d", f.geo.calls)
	}
	if reloaded := repotest.LoadUser(t, ctx, f.db, u.ID); len(reloaded.Places) != 0 {
		t.Fatalf("no place may be persisted, got=%v", reloaded.Places)
	}
}

func TestCreateGeocodeFailureHasNoSideEffects(t *testing.T) {
	ctx := context.Background()
	f := newPlaceFixture(t)
	u := repotest.SeedUser(t, ctx, f.db, "max@test.com")
	f.geo.err = domainagg.NewError(domainagg.CodeDependency, "geocode", geocode.MsgNoLocation, nil)

	_, err := f.svc.CreatePlace(ctx, validCreate(), u.ID)
	if !domainagg.IsCode(err, domainagg.CodeDependency) || domainagg.MessageOf(err) != geocode.MsgNoLocation {
		t.Fatalf("want geocode dependency error got=%v", err)
	}
	if reloaded := repotest.LoadUser(t, ctx, f.db, u.ID); len(reloaded.Places) != 0 {
		t.Fatalf("no place may be persisted, got=%v", reloaded.Places)
	}
}

func TestCreateUntypedGeocodeFailureIsDependency(t *testing.T) {
	ctx := context.Background()
	f := newPlaceFixture(t)
	u := repotest.SeedUser(t, ctx, f.db, "max@test.com")
	f.geo.err = errors.New("socket hang up")

	if _, err := f.svc.CreatePlace(ctx, validCreate(), u.ID); !domainagg.IsCode(err, domainagg.CodeDependency) {
		t.Fatalf("want code=%s got=%v", domainagg.CodeDependency, err)
	}
}

func TestCreateUnknownCreator(t *testing.T) {
	f := newPlaceFixture(t)
	_, err := f.svc.CreatePlace(context.Background(), validCreate(), uuid.New())
	if !domainagg.IsCode(err, domainagg.CodeNotFound) || domainagg.MessageOf(err) != MsgCreatorNotFound {
		t.Fatalf("want not_found %q got=%v", MsgCreatorNotFound, err)
	}
}

func TestDeleteByNonOwnerLeavesRowsUnchanged(t *testing.T) {
	ctx := context.Background()
	f := newPlaceFixture(t)
	owner := repotest.SeedUser(t, ctx, f.db, "owner@test.com")
	intruder := repotest.SeedUser(t, ctx, f.db, "intruder@test.com")
	p := repotest.SeedPlace(t, ctx, f.db, owner, "Mine")

	err := f.svc.DeletePlace(ctx, p.ID, intruder.ID)
	if !domainagg.IsCode(err, domainagg.CodeUnauthorized) || domainagg.MessageOf(err) != MsgNotAllowedDelete {
		t.Fatalf("want unauthorized %q got=%v", MsgNotAllowedDelete, err)
	}
	if n := repotest.CountPlaces(t, ctx, f.db, p.ID); n != 1 {
		t.Fatalf("place rows: want=1 got=%d", n)
	}
	if reloaded := repotest.LoadUser(t, ctx, f.db, owner.ID); !reloaded.HasPlace(p.ID) {
		t.Fatalf("owner should still reference place, got=%v", reloaded.Places)
	}
	if len(f.images.deleted) != 0 {
		t.Fatalf("image must not be released, got=%v", f.images.deleted)
	}
}

func TestDeleteMissingPlace(t *testing.T) {
	ctx := context.Background()
	f := newPlaceFixture(t)
	u := repotest.SeedUser(t, ctx, f.db, "max@test.com")
	p := repotest.SeedPlace(t, ctx, f.db, u, "Stays")

	err := f.svc.DeletePlace(ctx, uuid.New(), u.ID)
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("want code=%s got=%v", domainagg.CodeNotFound, err)
	}
	if n := repotest.CountPlaces(t, ctx, f.db, p.ID); n != 1 {
		t.Fatalf("unrelated place must survive, rows=%d", n)
	}
}

func TestDeleteReleasesImageBestEffort(t *testing.T) {
	ctx := context.Background()
	f := newPlaceFixture(t)
	u := repotest.SeedUser(t, ctx, f.db, "max@test.com")
	p := repotest.SeedPlace(t, ctx, f.db, u, "Gone")
	f.images.err = errors.New("bucket unavailable")

	if err := f.svc.DeletePlace(ctx, p.ID, u.ID); err != nil {
		t.Fatalf("DeletePlace: %v", err)
	}
	if len(f.images.deleted) != 1 || f.images.deleted[0] != p.Image {
		t.Fatalf("released images: want=[%s] got=%v", p.Image, f.images.deleted)
	}
	if n := repotest.CountPlaces(t, ctx, f.db, p.ID); n != 0 {
		t.Fatalf("place rows: want=0 got=%d", n)
	}
	if reloaded := repotest.LoadUser(t, ctx, f.db, u.ID); len(reloaded.Places) != 0 {
		t.Fatalf("user places: want=[] got=%v", reloaded.Places)
	}
}

func TestListPlacesByUser(t *testing.T) {
	ctx := context.Background()
	f := newPlaceFixture(t)
	u := repotest.SeedUser(t, ctx, f.db, "max@test.com")
	empty := repotest.SeedUser(t, ctx, f.db, "empty@test.com")
	first := repotest.SeedPlace(t, ctx, f.db, u, "First")
	second := repotest.SeedPlace(t, ctx, f.db, u, "Second")

	got, err := f.svc.ListPlacesByUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("ListPlacesByUser: %v", err)
	}
	if len(got) != 2 || got[0].ID != first.ID || got[1].ID != second.ID {
		t.Fatalf("unexpected order: %+v", got)
	}

	none, err := f.svc.ListPlacesByUser(ctx, empty.ID)
	if err != nil || none == nil || len(none) != 0 {
		t.Fatalf("empty user: want=[] got=%v err=%v", none, err)
	}

	if _, err := f.svc.ListPlacesByUser(ctx, uuid.New()); !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("unknown user: want code=%s got=%v", domainagg.CodeNotFound, err)
	}
}

func TestUpdatePlace(t *testing.T) {
	ctx := context.Background()
	f := newPlaceFixture(t)
	owner := repotest.SeedUser(t, ctx, f.db, "owner@test.com")
	other := repotest.SeedUser(t, ctx, f.db, "other@test.com")
	p := repotest.SeedPlace(t, ctx, f.db, owner, "Before")

	_, err := f.svc.UpdatePlace(ctx, p.ID, other.ID, UpdatePlaceInput{Title: "Hijack", Description: "not yours at all"})
	if !domainagg.IsCode(err, domainagg.CodeUnauthorized) || domainagg.MessageOf(err) != MsgNotAllowedEdit {
		t.Fatalf("want unauthorized %q got=%v", MsgNotAllowedEdit, err)
	}

	updated, err := f.svc.UpdatePlace(ctx, p.ID, owner.ID, UpdatePlaceInput{Title: " After ", Description: "a fresh description"})
	if err != nil {
		t.Fatalf("UpdatePlace: %v", err)
	}
	if updated.Title != "After" || updated.Description != "a fresh description" || updated.Address != p.Address {
		t.Fatalf("unexpected update: %+v", updated)
	}

	if _, err := f.svc.UpdatePlace(ctx, p.ID, owner.ID, UpdatePlaceInput{Title: "x", Description: "abc"}); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("short description: want validation got=%v", err)
	}
	if _, err := f.svc.UpdatePlace(ctx, uuid.New(), owner.ID, UpdatePlaceInput{Title: "x", Description: "long enough"}); !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("missing place: want not_found got=%v", err)
	}
}

func TestOutwardHidesRawErrors(t *testing.T) {
	err := outward("op", "Creating place failed, please try again.", errors.New("pq: relation does not exist"))
	if !domainagg.IsCode(err, domainagg.CodeDependency) || domainagg.MessageOf(err) != "Creating place failed, please try again." {
		t.Fatalf("unexpected outward error: %v", err)
	}
	typed := domainagg.NewError(domainagg.CodeUnauthorized, "op", "nope", nil)
	if outward("op", "x", typed) != typed {
		t.Fatalf("typed client errors pass through")
	}
	if !strings.Contains(outward("op", "m", domainagg.NewError(domainagg.CodeInternal, "a", "b", nil)).Error(), "(internal)") {
		t.Fatalf("internal code is kept")
	}
}
