package place

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domain "github.com/yungbote/placeshare-backend/internal/domain/place"
	"github.com/yungbote/placeshare-backend/internal/platform/dbctx"
	"github.com/yungbote/placeshare-backend/internal/platform/logger"
)

type PlaceRepo interface {
	Create(dbc dbctx.Context, p *domain.Place) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Place, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*domain.Place, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) (int64, error)
	DeleteByID(dbc dbctx.Context, id uuid.UUID) (int64, error)
	ListImageKeys(dbc dbctx.Context) ([]string, error)
}

type placeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlaceRepo(db *gorm.DB, baseLog *logger.Logger) PlaceRepo {
	return &placeRepo{db: db, log: baseLog.With("repo", "PlaceRepo")}
}

func (r *placeRepo) Create(dbc dbctx.Context, p *domain.Place) error {
	if p == nil {
		return fmt.Errorf("nil place")
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return dbc.DB(r.db).Create(p).Error
}

// GetByID returns (nil, nil) when no row matches.
func (r *placeRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Place, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*domain.Place
	if err := dbc.DB(r.db).
		Where("id = ?", id).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

// GetByIDs returns matching rows in no particular order.
func (r *placeRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*domain.Place, error) {
	var out []*domain.Place
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("id IN ?", ids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *placeRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) (int64, error) {
	if id == uuid.Nil {
		return 0, fmt.Errorf("missing id")
	}
	if len(updates) == 0 {
		return 0, nil
	}
	res := dbc.DB(r.db).
		Model(&domain.Place{}).
		Where("id = ?", id).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *placeRepo) DeleteByID(dbc dbctx.Context, id uuid.UUID) (int64, error) {
	if id == uuid.Nil {
		return 0, fmt.Errorf("missing id")
	}
	res := dbc.DB(r.db).
		Where("id = ?", id).
		Delete(&domain.Place{})
	return res.RowsAffected, res.Error
}

func (r *placeRepo) ListImageKeys(dbc dbctx.Context) ([]string, error) {
	var keys []string
	if err := dbc.DB(r.db).
		Model(&domain.Place{}).
		Where("image <> ''").
		Pluck("image", &keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}
