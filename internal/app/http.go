package app

import (
	"gorm.io/gorm"

	httpserver "github.com/yungbote/placeshare-backend/internal/http"
	httpH "github.com/yungbote/placeshare-backend/internal/http/handlers"
	httpMW "github.com/yungbote/placeshare-backend/internal/http/middleware"
	"github.com/yungbote/placeshare-backend/internal/observability"
	"github.com/yungbote/placeshare-backend/internal/platform/logger"
	"github.com/yungbote/placeshare-backend/internal/platform/objectstore"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health *httpH.HealthHandler
	Place  *httpH.PlaceHandler
	User   *httpH.UserHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, services Services, images objectstore.Store, cfg Config) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health: httpH.NewHealthHandler(db),
		Place:  httpH.NewPlaceHandler(log, services.Place, images, cfg.MaxImageBytes),
		User:   httpH.NewUserHandler(services.User, images),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware, metrics *observability.Metrics) *httpserver.Server {
	rc := httpserver.RouterConfig{
		Log:            log,
		Metrics:        metrics,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AuthMiddleware: middleware.Auth,
		PlaceHandler:   handlers.Place,
		UserHandler:    handlers.User,
		HealthHandler:  handlers.Health,
	}
	if cfg.OtelEnabled {
		rc.ServiceName = cfg.OtelServiceName
	}
	if store := cfg.ObjectStore().Normalize(); store.Mode == objectstore.ModeLocal {
		rc.UploadsDir = store.LocalDir
	}
	return httpserver.NewServer(rc)
}
