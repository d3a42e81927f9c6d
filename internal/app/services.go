package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/placeshare-backend/internal/data/aggregates"
	"github.com/yungbote/placeshare-backend/internal/observability"
	"github.com/yungbote/placeshare-backend/internal/platform/geocode"
	"github.com/yungbote/placeshare-backend/internal/platform/logger"
	"github.com/yungbote/placeshare-backend/internal/platform/objectstore"
	"github.com/yungbote/placeshare-backend/internal/services"
)

type Services struct {
	Auth  services.AuthService
	Place services.PlaceService
	User  services.UserService

	Geocoder geocode.Geocoder
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, geocoder geocode.Geocoder, images objectstore.Store, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")
	placeAggregate := aggregates.NewPlaceAggregate(aggregates.PlaceAggregateDeps{
		Base: aggregates.BaseDeps{
			DB:    db,
			Log:   log,
			Hooks: aggregates.NewObservabilityHooks(metrics),
		},
		Places: repos.Place,
		Users:  repos.User,
	})
	return Services{
		Auth: services.NewAuthService(log, cfg.JWTSecretKey),
		Place: services.NewPlaceService(services.PlaceServiceDeps{
			Log:       log,
			Places:    repos.Place,
			Users:     repos.User,
			Aggregate: placeAggregate,
			Geocoder:  geocoder,
			Images:    images,
		}),
		User:     services.NewUserService(log, repos.User),
		Geocoder: geocoder,
	}
}

// wireGeocoder picks Google when an API key is set and the fixed-location
// fallback otherwise, behind the redis cache when REDIS_ADDR is set.
func wireGeocoder(ctx context.Context, log *logger.Logger, cfg Config, metrics *observability.Metrics) (geocode.Geocoder, *redis.Client, error) {
	var g geocode.Geocoder
	if strings.TrimSpace(cfg.GoogleAPIKey) == "" {
		log.Warn("GOOGLE_API_KEY not set; every address resolves to the fixed fallback location")
		g = geocode.NewStatic()
	} else {
		google, err := geocode.NewGoogle(geocode.Options{
			BaseURL:    cfg.GeocodeBaseURL,
			APIKey:     cfg.GoogleAPIKey,
			Timeout:    seconds(cfg.GeocodeTimeoutSeconds),
			MaxRetries: cfg.GeocodeMaxRetries,
			Log:        log,
			Metrics:    metrics,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("init geocoder: %w", err)
		}
		g = google
	}

	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return g, nil, nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: cfg.RedisPassword})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("Redis unreachable; geocode cache will fall through until it recovers", "addr", addr, "error", err)
	}
	return geocode.NewCached(g, rdb, seconds(cfg.GeocodeCacheTTLSeconds), log, metrics), rdb, nil
}
