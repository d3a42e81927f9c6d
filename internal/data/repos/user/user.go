package user

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/yungbote/placeshare-backend/internal/domain/user"
	"github.com/yungbote/placeshare-backend/internal/platform/dbctx"
	"github.com/yungbote/placeshare-backend/internal/platform/logger"
)

type UserRepo interface {
	Create(dbc dbctx.Context, users []*domain.User) ([]*domain.User, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.User, error)
	List(dbc dbctx.Context) ([]*domain.User, error)
	LockByID(dbc dbctx.Context, id uuid.UUID) (*domain.User, error)
	UpdatePlaces(dbc dbctx.Context, id uuid.UUID, places []uuid.UUID) error
	ListImageKeys(dbc dbctx.Context) ([]string, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{db: db, log: baseLog.With("repo", "UserRepo")}
}

func (r *userRepo) Create(dbc dbctx.Context, users []*domain.User) ([]*domain.User, error) {
	if len(users) == 0 {
		return []*domain.User{}, nil
	}
	for _, u := range users {
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		if u.Places == nil {
			u.Places = datatypes.JSONSlice[uuid.UUID]{}
		}
	}
	if err := dbc.DB(r.db).Create(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// GetByID returns (nil, nil) when no row matches.
func (r *userRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.User, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*domain.User
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

func (r *userRepo) List(dbc dbctx.Context) ([]*domain.User, error) {
	var out []*domain.User
	if err := dbc.DB(r.db).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// LockByID loads the user row FOR UPDATE. It must run inside a transaction.
func (r *userRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*domain.User, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	if dbc.Tx == nil {
		return nil, fmt.Errorf("LockByID requires dbc.Tx")
	}
	var out domain.User
	if err := dbc.Tx.WithContext(dbc.Ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Take(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePlaces rewrites the user's places list. It must run inside a
// transaction that also writes the matching place row.
func (r *userRepo) UpdatePlaces(dbc dbctx.Context, id uuid.UUID, places []uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	if dbc.Tx == nil {
		return fmt.Errorf("UpdatePlaces requires dbc.Tx")
	}
	if places == nil {
		places = []uuid.UUID{}
	}
	res := dbc.Tx.WithContext(dbc.Ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Update("places", datatypes.JSONSlice[uuid.UUID](places))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepo) ListImageKeys(dbc dbctx.Context) ([]string, error) {
	var keys []string
	if err := dbc.DB(r.db).
		Model(&domain.User{}).
		Where("image <> ''").
		Pluck("image", &keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}
