package http

import (
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/placeshare-backend/internal/http/handlers"
	httpMW "github.com/yungbote/placeshare-backend/internal/http/middleware"
	"github.com/yungbote/placeshare-backend/internal/observability"
	"github.com/yungbote/placeshare-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log     *logger.Logger
	Metrics *observability.Metrics

	// ServiceName enables otelgin tracing when non-empty.
	ServiceName    string
	AllowedOrigins []string

	// UploadsDir is served under its base name when images are kept on
	// local disk, matching the local store's public URLs.
	UploadsDir string

	AuthMiddleware *httpMW.AuthMiddleware
	PlaceHandler   *httpH.PlaceHandler
	UserHandler    *httpH.UserHandler
	HealthHandler  *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(httpMW.Recovery(cfg.Log))
	if strings.TrimSpace(cfg.ServiceName) != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))
	r.Use(httpMW.ErrorHandler())
	r.NoRoute(httpMW.NotFound())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}
	if dir := strings.TrimSpace(cfg.UploadsDir); dir != "" {
		r.Static("/"+filepath.Base(filepath.Clean(dir)), dir)
	}

	api := r.Group("/api")
	{
		if cfg.UserHandler != nil {
			api.GET("/users", cfg.UserHandler.ListUsers)
		}
		if cfg.PlaceHandler != nil {
			api.GET("/places/user/:uid", cfg.PlaceHandler.ListUserPlaces)
			api.GET("/places/:pid", cfg.PlaceHandler.GetPlace)
		}
	}

	protected := api.Group("/")
	{
		// Middleware
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.PlaceHandler != nil {
			protected.POST("/places", cfg.PlaceHandler.CreatePlace)
			protected.PATCH("/places/:pid", cfg.PlaceHandler.UpdatePlace)
			protected.DELETE("/places/:pid", cfg.PlaceHandler.DeletePlace)
		}
	}

	return r
}
