package learning

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/studynotion-backend/internal/data/repos/repoutil"
	types "github.com/yungbote/studynotion-backend/internal/domain"
	"github.com/yungbote/studynotion-backend/internal/pkg/dbctx"
	"github.com/yungbote/studynotion-backend/internal/platform/apierr"
	"github.com/yungbote/studynotion-backend/internal/platform/logger"
)

type CategoryRepo interface {
	Create(dbc dbctx.Context, rows []*types.Category) ([]*types.Category, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Category, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Category, error)
	GetByName(dbc dbctx.Context, name string) (*types.Category, error)
	List(dbc dbctx.Context) ([]*types.Category, error)
}

type categoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCategoryRepo(db *gorm.DB, baseLog *logger.Logger) CategoryRepo {
	return &categoryRepo{db: db, log: baseLog.With("repo", "CategoryRepo")}
}

func (r *categoryRepo) Create(dbc dbctx.Context, rows []*types.Category) ([]*types.Category, error) {
	if len(rows) == 0 {
		return []*types.Category{}, nil
	}
	for _, c := range rows {
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		if repoutil.IsUniqueViolation(err) {
			return nil, apierr.Validation("category name already exists")
		}
		return nil, fmt.Errorf("create categories: %w", err)
	}
	return rows, nil
}

func (r *categoryRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Category, error) {
	var c types.Category
	if err := dbc.DB(r.db).Where("id = ?", id).Take(&c).Error; err != nil {
		return nil, repoutil.NotFound(err, "category", id)
	}
	return &c, nil
}

func (r *categoryRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Category, error) {
	ids = repoutil.Dedupe(ids)
	var out []*types.Category
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("get categories: %w", err)
	}
	return repoutil.OrderByIDs(ids, out, func(c *types.Category) uuid.UUID { return c.ID }), nil
}

// GetByName returns (nil, nil) when no category has that name.
func (r *categoryRepo) GetByName(dbc dbctx.Context, name string) (*types.Category, error) {
	var c types.Category
	err := dbc.DB(r.db).Where("name = ?", name).Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get category %q: %w", name, err)
	}
	return &c, nil
}

func (r *categoryRepo) List(dbc dbctx.Context) ([]*types.Category, error) {
	var out []*types.Category
	if err := dbc.DB(r.db).Order("name ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return out, nil
}
