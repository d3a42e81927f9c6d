// Package imagesweep deletes stored images that no place or user references.
// Image release on place deletion is best-effort, so this sweep reconciles
// whatever was left behind.
package imagesweep

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/placeshare-backend/internal/observability"
	"github.com/yungbote/placeshare-backend/internal/platform/dbctx"
	"github.com/yungbote/placeshare-backend/internal/platform/logger"
	"github.com/yungbote/placeshare-backend/internal/platform/objectstore"
)

// ImageKeyLister is satisfied by the place and user repos.
type ImageKeyLister interface {
	ListImageKeys(dbc dbctx.Context) ([]string, error)
}

type Options struct {
	Store  objectstore.Store
	Owners []ImageKeyLister

	Prefix   string
	Interval time.Duration
	// Grace protects fresh uploads whose place row is not committed yet.
	Grace time.Duration

	Log     *logger.Logger
	Metrics *observability.Metrics
	Now     func() time.Time
}

type Result struct {
	Scanned int
	Deleted int
	Kept    int
}

type Sweeper struct {
	opts Options
	log  *logger.Logger
}

func New(opts Options) *Sweeper {
	if opts.Interval <= 0 {
		opts.Interval = time.Hour
	}
	if opts.Grace <= 0 {
		opts.Grace = 24 * time.Hour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	return &Sweeper{opts: opts, log: log.With("component", "ImageSweeper")}
}

// Start runs the sweep every Interval until ctx is done.
func (s *Sweeper) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.opts.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				res, err := s.RunOnce(ctx)
				if err != nil {
					s.log.Warn("Image sweep failed", "error", err)
					continue
				}
				if res.Deleted > 0 {
					s.log.Info("Image sweep removed orphans", "scanned", res.Scanned, "deleted", res.Deleted)
				}
			}
		}
	}()
}

// RunOnce performs a single reconciliation pass.
func (s *Sweeper) RunOnce(ctx context.Context) (Result, error) {
	if s.opts.Store == nil {
		return Result{}, errors.New("imagesweep: store not configured")
	}

	var (
		mu         sync.Mutex
		referenced = map[string]struct{}{}
		objects    []objectstore.Object
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, owner := range s.opts.Owners {
		owner := owner
		if owner == nil {
			continue
		}
		g.Go(func() error {
			keys, err := owner.ListImageKeys(dbctx.Context{Ctx: gctx})
			if err != nil {
				return err
			}
			mu.Lock()
			for _, k := range keys {
				if cleaned, err := objectstore.CleanKey(k); err == nil {
					referenced[cleaned] = struct{}{}
				}
			}
			mu.Unlock()
			return nil
		})
	}
	g.Go(func() error {
		objs, err := s.opts.Store.List(gctx, s.opts.Prefix)
		if err != nil {
			return err
		}
		objects = objs
		return nil
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	res := Result{Scanned: len(objects)}
	cutoff := s.opts.Now().Add(-s.opts.Grace)
	var orphans []string
	for _, obj := range objects {
		if _, ok := referenced[obj.Key]; ok || obj.Updated.After(cutoff) {
			res.Kept++
			continue
		}
		orphans = append(orphans, obj.Key)
	}

	var deleted int
	dg, dctx := errgroup.WithContext(ctx)
	dg.SetLimit(4)
	for _, key := range orphans {
		key := key
		dg.Go(func() error {
			err := s.opts.Store.Delete(dctx, key)
			if err != nil && !errors.Is(err, objectstore.ErrNotFound) {
				s.log.Warn("Failed to delete orphaned image", "key", key, "error", err)
				return nil
			}
			mu.Lock()
			deleted++
			mu.Unlock()
			return nil
		})
	}
	_ = dg.Wait()

	res.Deleted = deleted
	res.Kept += len(orphans) - deleted
	s.opts.Metrics.AddImagesSwept("deleted", res.Deleted)
	s.opts.Metrics.AddImagesSwept("kept", res.Kept)
	return res, nil
}
