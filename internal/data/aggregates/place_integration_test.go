package aggregates_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/placeshare-backend/internal/data/aggregates"
	aggtest "github.com/yungbote/placeshare-backend/internal/data/aggregates/testutil"
	placerepo "github.com/yungbote/placeshare-backend/internal/data/repos/place"
	repotest "github.com/yungbote/placeshare-backend/internal/data/repos/testutil"
	userrepo "github.com/yungbote/placeshare-backend/internal/data/repos/user"
	domainagg "github.com/yungbote/placeshare-backend/internal/domain/aggregates"
	"github.com/yungbote/placeshare-backend/internal/domain/place"
	"github.com/yungbote/placeshare-backend/internal/platform/dbctx"
)

type failingUsers struct {
	userrepo.UserRepo
	err error
}

func (f failingUsers) UpdatePlaces(dbctx.Context, uuid.UUID, []uuid.UUID) error {
	return f.err
}

func createInput(creator uuid.UUID) domainagg.CreatePlaceInput {
	return domainagg.CreatePlaceInput{
		Title:       "Empire State Building",
		Description: "One of the most famous sky scrapers in the world!",
		Address:     "20 W 34th St, New York, NY 10001",
		Location:    place.Location{Lat: 40.7484405, Lng: -73.9878584},
		Image:       "uploads/images/esb.jpg",
		CreatorID:   creator,
	}
}

func TestPlaceAggregateCreateLinksCreator(t *testing.T) {
	ctx := context.Background()
	db := repotest.DB(t)
	log := repotest.Logger(t)
	hooks := &aggtest.HooksRecorder{}

	agg := aggregates.NewPlaceAggregate(aggregates.PlaceAggregateDeps{
		Base:   aggregates.BaseDeps{DB: db, Log: log, Hooks: hooks},
		Places: placerepo.NewPlaceRepo(db, log),
		Users:  userrepo.NewUserRepo(db, log),
	})
	u := repotest.SeedUser(t, ctx, db, "max@test.com")

	p, err := agg.Create(ctx, createInput(u.ID))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.ID == uuid.Nil || p.CreatorID != u.ID {
		t.Fatalf("unexpected place: %+v", p)
	}
	if n := repotest.CountPlaces(t, ctx, db, p.ID); n != 1 {
		t.Fatalf("place rows: want=1 got=%d", n)
	}
	got := repotest.LoadUser(t, ctx, db, u.ID)
	if len(got.Places) != 1 || got.Places[0] != p.ID {
		t.Fatalf("user places: want=[%s] got=%v", p.ID, got.Places)
	}
	if st := hooks.Statuses("Places.Place.Create"); len(st) != 1 || st[0] != "success" {
		t.Fatalf("hook statuses: %v", st)
	}
}

func TestPlaceAggregateCreateRollsBackPlaceWhenUserWriteFails(t *testing.T) {
	ctx := context.Background()
	db := repotest.DB(t)
	log := repotest.Logger(t)
	places := placerepo.NewPlaceRepo(db, log)

	agg := aggregates.NewPlaceAggregate(aggregates.PlaceAggregateDeps{
		Base:   aggregates.BaseDeps{DB: db, Log: log},
		Places: places,
		Users:  failingUsers{UserRepo: userrepo.NewUserRepo(db, log), err: errors.New("connection reset")},
	})
	u := repotest.SeedUser(t, ctx, db, "max@test.com")

	_, err := agg.Create(ctx, createInput(u.ID))
	if !domainagg.IsCode(err, domainagg.CodeDependency) {
		t.Fatalf("want code=%s got=%v", domainagg.CodeDependency, err)
	}
	keys, err := places.ListImageKeys(dbctx.Context{Ctx: ctx})
	if err != nil {
		t.Fatalf("ListImageKeys: %v", err)
	}
	if len(keys) != 0 {
		t.Fatalf("expected no place rows after rollback, got=%d", len(keys))
	}
	if got := repotest.LoadUser(t, ctx, db, u.ID); len(got.Places) != 0 {
		t.Fatalf("user places should be untouched, got=%v", got.Places)
	}
}

func TestPlaceAggregateCreateRollsBackOnCommitFailure(t *testing.T) {
	ctx := context.Background()
	db := repotest.DB(t)
	log := repotest.Logger(t)
	runner := &aggtest.InjectedTxRunner{DB: db, FailAfterBody: errors.New("injected commit failure")}

	agg := aggregates.NewPlaceAggregate(aggregates.PlaceAggregateDeps{
		Base:   aggregates.BaseDeps{DB: db, Log: log, Runner: runner},
		Places: placerepo.NewPlaceRepo(db, log),
		Users:  userrepo.NewUserRepo(db, log),
	})
	u := repotest.SeedUser(t, ctx, db, "max@test.com")

	if _, err := agg.Create(ctx, createInput(u.ID)); err == nil {
		t.Fatalf("expected injected failure")
	}
	if runner.BodyCalls != 1 || runner.Rollbacks != 1 || runner.Commits != 0 {
		t.Fatalf("unexpected runner counters body=%d rollbacks=%d commits=%d", runner.BodyCalls, runner.Rollbacks, runner.Commits)
	}
	if got := repotest.LoadUser(t, ctx, db, u.ID); len(got.Places) != 0 {
		t.Fatalf("user places should be untouched, got=%v", got.Places)
	}
}

func TestPlaceAggregateCreateUnknownCreator(t *testing.T) {
	ctx := context.Background()
	db := repotest.DB(t)
	log := repotest.Logger(t)
	places := placerepo.NewPlaceRepo(db, log)

	agg := aggregates.NewPlaceAggregate(aggregates.PlaceAggregateDeps{
		Base:   aggregates.BaseDeps{DB: db, Log: log},
		Places: places,
		Users:  userrepo.NewUserRepo(db, log),
	})

	_, err := agg.Create(ctx, createInput(uuid.New()))
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("want code=%s got=%v", domainagg.CodeNotFound, err)
	}
	keys, _ := places.ListImageKeys(dbctx.Context{Ctx: ctx})
	if len(keys) != 0 {
		t.Fatalf("place insert should roll back, got=%d rows", len(keys))
	}
}

func TestPlaceAggregateCreateValidatesInput(t *testing.T) {
	log := repotest.Logger(t)
	runner := &aggtest.InjectedTxRunner{}
	agg := aggregates.NewPlaceAggregate(aggregates.PlaceAggregateDeps{
		Base:   aggregates.BaseDeps{Runner: runner},
		Places: placerepo.NewPlaceRepo(nil, log),
		Users:  userrepo.NewUserRepo(nil, log),
	})
	in := createInput(uuid.Nil)
	if _, err := agg.Create(context.Background(), in); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("want code=%s got=%v", domainagg.CodeValidation, err)
	}
	if runner.BodyCalls != 0 {
		t.Fatalf("validation must not open a transaction")
	}
}

func TestPlaceAggregateDeleteUnlinksCreator(t *testing.T) {
	ctx := context.Background()
	db := repotest.DB(t)
	log := repotest.Logger(t)

	agg := aggregates.NewPlaceAggregate(aggregates.PlaceAggregateDeps{
		Base:   aggregates.BaseDeps{DB: db, Log: log},
		Places: placerepo.NewPlaceRepo(db, log),
		Users:  userrepo.NewUserRepo(db, log),
	})
	u := repotest.SeedUser(t, ctx, db, "max@test.com")
	keep := repotest.SeedPlace(t, ctx, db, u, "Keep")
	drop := repotest.SeedPlace(t, ctx, db, u, "Drop")

	if err := agg.Delete(ctx, domainagg.DeletePlaceInput{PlaceID: drop.ID, CreatorID: u.ID}); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if n := repotest.CountPlaces(t, ctx, db, drop.ID); n != 0 {
		t.Fatalf("deleted place rows: want=0 got=%d", n)
	}
	got := repotest.LoadUser(t, ctx, db, u.ID)
	if len(got.Places) != 1 || got.Places[0] != keep.ID {
		t.Fatalf("user places: want=[%s] got=%v", keep.ID, got.Places)
	}
}

func TestPlaceAggregateDeleteRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	db := repotest.DB(t)
	log := repotest.Logger(t)

	agg := aggregates.NewPlaceAggregate(aggregates.PlaceAggregateDeps{
		Base:   aggregates.BaseDeps{DB: db, Log: log},
		Places: placerepo.NewPlaceRepo(db, log),
		Users:  failingUsers{UserRepo: userrepo.NewUserRepo(db, log), err: errors.New("disk full")},
	})
	u := repotest.SeedUser(t, ctx, db, "max@test.com")
	p := repotest.SeedPlace(t, ctx, db, u, "Stays")

	if err := agg.Delete(ctx, domainagg.DeletePlaceInput{PlaceID: p.ID, CreatorID: u.ID}); err == nil {
		t.Fatalf("expected failure")
	}
	if n := repotest.CountPlaces(t, ctx, db, p.ID); n != 1 {
		t.Fatalf("place should survive rollback, rows=%d", n)
	}
	if got := repotest.LoadUser(t, ctx, db, u.ID); len(got.Places) != 1 {
		t.Fatalf("user places should be untouched, got=%v", got.Places)
	}
}

func TestPlaceAggregateDeleteMissingPlace(t *testing.T) {
	ctx := context.Background()
	db := repotest.DB(t)
	log := repotest.Logger(t)
	agg := aggregates.NewPlaceAggregate(aggregates.PlaceAggregateDeps{
		Base:   aggregates.BaseDeps{DB: db, Log: log},
		Places: placerepo.NewPlaceRepo(db, log),
		Users:  userrepo.NewUserRepo(db, log),
	})
	u := repotest.SeedUser(t, ctx, db, "max@test.com")

	err := agg.Delete(ctx, domainagg.DeletePlaceInput{PlaceID: uuid.New(), CreatorID: u.ID})
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("want code=%s got=%v", domainagg.CodeNotFound, err)
	}
}

func TestPlaceAggregateConcurrentDeleteSucceedsOnce(t *testing.T) {
	ctx := context.Background()
	db := repotest.DB(t)
	log := repotest.Logger(t)
	agg := aggregates.NewPlaceAggregate(aggregates.PlaceAggregateDeps{
		Base:   aggregates.BaseDeps{DB: db, Log: log},
		Places: placerepo.NewPlaceRepo(db, log),
		Users:  userrepo.NewUserRepo(db, log),
	})
	u := repotest.SeedUser(t, ctx, db, "max@test.com")
	p := repotest.SeedPlace(t, ctx, db, u, "Contended")

	const workers = 4
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = agg.Delete(ctx, domainagg.DeletePlaceInput{PlaceID: p.ID, CreatorID: u.ID})
		}(i)
	}
	wg.Wait()

	ok, notFound := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case domainagg.IsCode(err, domainagg.CodeNotFound):
			notFound++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || notFound != workers-1 {
		t.Fatalf("want ok=1 not_found=%d got ok=%d not_found=%d", workers-1, ok, notFound)
	}
	if got := repotest.LoadUser(t, ctx, db, u.ID); len(got.Places) != 0 {
		t.Fatalf("user places: want=[] got=%v", got.Places)
	}
}
