package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/caarlos0/env/v11"
	"github.com/gin-gonic/gin"

	"github.com/yungbote/placeshare-backend/internal/platform/geocode"
	"github.com/yungbote/placeshare-backend/internal/platform/logger"
)

func TestNewWithConfigWiresSQLiteAndLocalStorage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	cfg, err := loadConfig(env.Options{Environment: map[string]string{
		"DB_DRIVER":        "sqlite",
		"SQLITE_PATH":      filepath.Join(dir, "places.db"),
		"IMAGE_UPLOAD_DIR": filepath.Join(dir, "uploads"),
		"LOG_MODE":         "development",
	}})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}

	a, err := NewWithConfig(context.Background(), logger.Nop(), cfg)
	if err != nil {
		t.Fatalf("NewWithConfig: %v", err)
	}
	defer a.Close()

	if _, ok := a.Services.Geocoder.(*geocode.Static); !ok {
		t.Fatalf("geocoder without api key: want *geocode.Static got=%T", a.Services.Geocoder)
	}
	if a.Sweeper == nil || a.Metrics == nil {
		t.Fatalf("sweeper and metrics should be wired")
	}

	for target, want := range map[string]int{
		"/healthcheck":                http.StatusOK,
		"/api/users":                  http.StatusOK,
		"/api/places/user/not-a-uuid": http.StatusNotFound,
		"/metrics":                    http.StatusOK,
	} {
		rec := httptest.NewRecorder()
		a.Server.Engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != want {
			t.Fatalf("%s: want=%d got=%d body=%s", target, want, rec.Code, rec.Body.String())
		}
	}

	a.Start()
	a.Start()
}
