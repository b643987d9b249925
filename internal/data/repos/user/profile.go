package user

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/studynotion-backend/internal/data/repos/repoutil"
	types "github.com/yungbote/studynotion-backend/internal/domain"
	"github.com/yungbote/studynotion-backend/internal/pkg/dbctx"
	"github.com/yungbote/studynotion-backend/internal/platform/logger"
)

type ProfileRepo interface {
	Create(dbc dbctx.Context, rows []*types.Profile) ([]*types.Profile, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Profile, error)
}

type profileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	return &profileRepo{db: db, log: baseLog.With("repo", "ProfileRepo")}
}

func (r *profileRepo) Create(dbc dbctx.Context, rows []*types.Profile) ([]*types.Profile, error) {
	if len(rows) == 0 {
		return []*types.Profile{}, nil
	}
	for _, p := range rows {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, fmt.Errorf("create profiles: %w", err)
	}
	return rows, nil
}

func (r *profileRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Profile, error) {
	ids = repoutil.Dedupe(ids)
	var out []*types.Profile
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("get profiles: %w", err)
	}
	return repoutil.OrderByIDs(ids, out, func(p *types.Profile) uuid.UUID { return p.ID }), nil
}
