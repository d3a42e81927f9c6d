package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/placeshare-backend/internal/domain/place"
	"github.com/yungbote/placeshare-backend/internal/domain/user"
)

func SeedUser(tb testing.TB, ctx context.Context, db *gorm.DB, email string) *user.User {
	tb.Helper()
	hashed, err := user.HashPassword("pw-" + email)
	if err != nil {
		tb.Fatalf("hash password: %v", err)
	}
	u := &user.User{
		ID:       uuid.New(),
		Name:     "Max",
		Email:    email,
		Password: hashed,
		Image:    "uploads/images/" + uuid.NewString() + ".png",
		Places:   []uuid.UUID{},
	}
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

// SeedPlace inserts a place and links it to its creator in one transaction,
// mirroring what the place aggregate does.
func SeedPlace(tb testing.TB, ctx context.Context, db *gorm.DB, creator *user.User, title string) *place.Place {
	tb.Helper()
	p := &place.Place{
		ID:          uuid.New(),
		Title:       title,
		Description: "seeded place description",
		Address:     "20 W 34th St, New York, NY 10001",
		Location:    place.Location{Lat: 40.7484405, Lng: -73.9878584},
		Image:       "uploads/images/" + uuid.NewString() + ".jpg",
		CreatorID:   creator.ID,
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		creator.Places = append(creator.Places, p.ID)
		return tx.Model(&user.User{}).Where("id = ?", creator.ID).Update("places", creator.Places).Error
	})
	if err != nil {
		tb.Fatalf("seed place: %v", err)
	}
	return p
}

// LoadUser reads a user straight from the table.
func LoadUser(tb testing.TB, ctx context.Context, db *gorm.DB, id uuid.UUID) *user.User {
	tb.Helper()
	var u user.User
	if err := db.WithContext(ctx).Where("id = ?", id).Take(&u).Error; err != nil {
		tb.Fatalf("load user %s: %v", id, err)
	}
	return &u
}

// CountPlaces counts place rows with the given id.
func CountPlaces(tb testing.TB, ctx context.Context, db *gorm.DB, id uuid.UUID) int64 {
	tb.Helper()
	var n int64
	if err := db.WithContext(ctx).Model(&place.Place{}).Where("id = ?", id).Count(&n).Error; err != nil {
		tb.Fatalf("count places: %v", err)
	}
	return n
}
