package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/yungbote/placeshare-backend/internal/data/db"
	"github.com/yungbote/placeshare-backend/internal/observability"
	"github.com/yungbote/placeshare-backend/internal/platform/objectstore"
)

type Config struct {
	Port            string `env:"PORT" envDefault:"5000"`
	LogMode         string `env:"LOG_MODE" envDefault:"development"`
	JWTSecretKey    string `env:"JWT_SECRET_KEY" envDefault:"supersecret_dont_share"`
	ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT_SECONDS" envDefault:"15"`

	DBDriver         string `env:"DB_DRIVER" envDefault:"postgres"`
	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     string `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"postgres"`
	PostgresPassword string `env:"POSTGRES_PASSWORD"`
	PostgresName     string `env:"POSTGRES_NAME" envDefault:"places"`
	SQLitePath       string `env:"SQLITE_PATH" envDefault:"places.db"`

	ObjectStorageMode   string `env:"OBJECT_STORAGE_MODE" envDefault:"local"`
	ImageUploadDir      string `env:"IMAGE_UPLOAD_DIR" envDefault:"uploads"`
	ImageBucket         string `env:"IMAGE_GCS_BUCKET_NAME"`
	StorageEmulatorHost string `env:"STORAGE_EMULATOR_HOST"`
	GCPCredentialsJSON  string `env:"GCP_CREDENTIALS_JSON"`
	GCPCredentialsFile  string `env:"GOOGLE_APPLICATION_CREDENTIALS"`
	PublicBaseURL       string `env:"OBJECT_STORAGE_PUBLIC_BASE_URL" envDefault:"http://localhost:5000"`
	MaxImageBytes       int64  `env:"MAX_IMAGE_BYTES" envDefault:"500000"`

	GoogleAPIKey           string `env:"GOOGLE_API_KEY"`
	GeocodeBaseURL         string `env:"GEOCODE_BASE_URL"`
	GeocodeTimeoutSeconds  int    `env:"GEOCODE_TIMEOUT_SECONDS" envDefault:"10"`
	GeocodeMaxRetries      int    `env:"GEOCODE_MAX_RETRIES" envDefault:"2"`
	RedisAddr              string `env:"REDIS_ADDR"`
	RedisPassword          string `env:"REDIS_PASSWORD"`
	GeocodeCacheTTLSeconds int    `env:"GEOCODE_CACHE_TTL_SECONDS" envDefault:"86400"`

	ImageSweepEnabled         bool `env:"IMAGE_SWEEP_ENABLED" envDefault:"true"`
	ImageSweepIntervalSeconds int  `env:"IMAGE_SWEEP_INTERVAL_SECONDS" envDefault:"3600"`
	ImageSweepGraceSeconds    int  `env:"IMAGE_SWEEP_GRACE_SECONDS" envDefault:"86400"`

	MetricsEnabled  bool    `env:"METRICS_ENABLED" envDefault:"true"`
	OtelEnabled     bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OtelServiceName string  `env:"OTEL_SERVICE_NAME" envDefault:"placeshare-backend"`
	OtelEnvironment string  `env:"OTEL_ENVIRONMENT" envDefault:"development"`
	OtelVersion     string  `env:"OTEL_SERVICE_VERSION"`
	OtelEndpoint    string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelHeaders     string  `env:"OTEL_EXPORTER_OTLP_HEADERS"`
	OtelInsecure    bool    `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"false"`
	OtelSampleRatio float64 `env:"OTEL_SAMPLE_RATIO" envDefault:"1"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

// LoadConfig reads Config from the process environment.
func LoadConfig() (Config, error) {
	return loadConfig(env.Options{})
}

func loadConfig(opts env.Options) (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](opts)
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.DBDriver)) {
	case db.DriverPostgres, db.DriverSQLite:
	default:
		return fmt.Errorf("invalid DB_DRIVER=%q (allowed: %q, %q)", c.DBDriver, db.DriverPostgres, db.DriverSQLite)
	}
	if strings.TrimSpace(c.JWTSecretKey) == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.MaxImageBytes <= 0 {
		return fmt.Errorf("MAX_IMAGE_BYTES must be positive, got %d", c.MaxImageBytes)
	}
	return nil
}

func (c Config) DB() db.Config {
	return db.Config{
		Driver:           strings.ToLower(strings.TrimSpace(c.DBDriver)),
		PostgresHost:     c.PostgresHost,
		PostgresPort:     c.PostgresPort,
		PostgresUser:     c.PostgresUser,
		PostgresPassword: c.PostgresPassword,
		PostgresName:     c.PostgresName,
		SQLitePath:       c.SQLitePath,
	}
}

func (c Config) ObjectStore() objectstore.Config {
	return objectstore.Config{
		Mode:            objectstore.Mode(c.ObjectStorageMode),
		LocalDir:        c.ImageUploadDir,
		Bucket:          c.ImageBucket,
		EmulatorHost:    c.StorageEmulatorHost,
		CredentialsJSON: c.GCPCredentialsJSON,
		CredentialsFile: c.GCPCredentialsFile,
		PublicBaseURL:   c.PublicBaseURL,
	}
}

func (c Config) Otel() observability.OtelConfig {
	return observability.OtelConfig{
		Enabled:     c.OtelEnabled,
		ServiceName: c.OtelServiceName,
		Environment: c.OtelEnvironment,
		Version:     c.OtelVersion,
		Endpoint:    c.OtelEndpoint,
		Insecure:    c.OtelInsecure,
		Headers:     observability.ParseHeaders(c.OtelHeaders),
		SampleRatio: c.OtelSampleRatio,
	}
}

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }

// logFields is what startup logs about the config. Secrets are reported as
// set or unset only.
func (c Config) logFields() []interface{} {
	return []interface{}{
		"port", c.Port,
		"db_driver", c.DBDriver,
		"object_storage_mode", c.ObjectStorageMode,
		"geocoder", map[bool]string{true: "google", false: "static"}[strings.TrimSpace(c.GoogleAPIKey) != ""],
		"geocode_cache", strings.TrimSpace(c.RedisAddr) != "",
		"image_sweep", c.ImageSweepEnabled,
		"metrics", c.MetricsEnabled,
		"otel", c.OtelEnabled,
		"jwt_secret_default", c.JWTSecretKey == "supersecret_dont_share",
	}
}
