// Package objectstore keeps uploaded images on local disk or in a GCS bucket.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/yungbote/placeshare-backend/internal/platform/logger"
)

// ErrNotFound is returned when deleting a key that does not exist.
var ErrNotFound = errors.New("object not found")

type Object struct {
	Key     string
	Updated time.Time
}

type Store interface {
	Put(ctx context.Context, key string, r io.Reader) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]Object, error)
	PublicURL(key string) string
}

// New builds the backend selected by cfg.Mode.
func New(ctx context.Context, cfg Config, log *logger.Logger) (Store, error) {
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate object storage config: %w", err)
	}
	cfg = cfg.Normalize()
	if log == nil {
		log = logger.Nop()
	}
	switch cfg.Mode {
	case ModeLocal:
		return NewLocal(cfg.LocalDir, cfg.PublicBaseURL, log)
	default:
		return newGCS(ctx, cfg, log)
	}
}

// CleanKey rejects keys that could escape the store root.
func CleanKey(key string) (string, error) {
	key = strings.TrimSpace(strings.ReplaceAll(key, "\\", "/"))
	key = strings.TrimLeft(key, "/")
	if key == "" {
		return "", errors.New("empty object key")
	}
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return cleaned, nil
}

func contentTypeForKey(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	default:
		return ""
	}
}
