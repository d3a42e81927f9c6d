package app

import (
	"gorm.io/gorm"

	placerepo "github.com/yungbote/placeshare-backend/internal/data/repos/place"
	userrepo "github.com/yungbote/placeshare-backend/internal/data/repos/user"
	"github.com/yungbote/placeshare-backend/internal/platform/logger"
)

type Repos struct {
	Place placerepo.PlaceRepo
	User  userrepo.UserRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Place: placerepo.NewPlaceRepo(db, log),
		User:  userrepo.NewUserRepo(db, log),
	}
}
