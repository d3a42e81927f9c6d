package db

import (
	"gorm.io/gorm"

	"github.com/yungbote/placeshare-backend/internal/domain/place"
	"github.com/yungbote/placeshare-backend/internal/domain/user"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&user.User{},
		&place.Place{},
	)
}
