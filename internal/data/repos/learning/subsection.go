package learning

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/studynotion-backend/internal/data/repos/repoutil"
	types "github.com/yungbote/studynotion-backend/internal/domain"
	"github.com/yungbote/studynotion-backend/internal/pkg/dbctx"
	"github.com/yungbote/studynotion-backend/internal/platform/logger"
)

type SubSectionRepo interface {
	Create(dbc dbctx.Context, rows []*types.SubSection) ([]*types.SubSection, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.SubSection, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.SubSection, error)
	ListBySectionIDs(dbc dbctx.Context, sectionIDs []uuid.UUID) ([]*types.SubSection, error)
	ListVideoKeys(dbc dbctx.Context) ([]string, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) (int64, error)
}

type subSectionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubSectionRepo(db *gorm.DB, baseLog *logger.Logger) SubSectionRepo {
	return &subSectionRepo{db: db, log: baseLog.With("repo", "SubSectionRepo")}
}

func (r *subSectionRepo) Create(dbc dbctx.Context, rows []*types.SubSection) ([]*types.SubSection, error) {
	if len(rows) == 0 {
		return []*types.SubSection{}, nil
	}
	for _, s := range rows {
		if s.ID == uuid.Nil {
			s.ID = uuid.New()
		}
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, fmt.Errorf("create sub-sections: %w", err)
	}
	return rows, nil
}

func (r *subSectionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.SubSection, error) {
	var s types.SubSection
	if err := dbc.DB(r.db).Where("id = ?", id).Take(&s).Error; err != nil {
		return nil, repoutil.NotFound(err, "sub-section", id)
	}
	return &s, nil
}

func (r *subSectionRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.SubSection, error) {
	ids = repoutil.Dedupe(ids)
	var out []*types.SubSection
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("get sub-sections: %w", err)
	}
	return repoutil.OrderByIDs(ids, out, func(s *types.SubSection) uuid.UUID { return s.ID }), nil
}

func (r *subSectionRepo) ListBySectionIDs(dbc dbctx.Context, sectionIDs []uuid.UUID) ([]*types.SubSection, error) {
	sectionIDs = repoutil.Dedupe(sectionIDs)
	var out []*types.SubSection
	if len(sectionIDs) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("section_id IN ?", sectionIDs).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list sub-sections: %w", err)
	}
	return out, nil
}

func (r *subSectionRepo) ListVideoKeys(dbc dbctx.Context) ([]string, error) {
	var keys []string
	if err := dbc.DB(r.db).Model(&types.SubSection{}).
		Where("video_key <> ''").
		Pluck("video_key", &keys).Error; err != nil {
		return nil, fmt.Errorf("list video keys: %w", err)
	}
	return keys, nil
}

func (r *subSectionRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return nil
	}
	res := dbc.DB(r.db).Model(&types.SubSection{}).Where("id = ?", id).Updates(repoutil.Touch(updates))
	if res.Error != nil {
		return fmt.Errorf("update sub-section %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return repoutil.NotFound(gorm.ErrRecordNotFound, "sub-section", id)
	}
	return nil
}

func (r *subSectionRepo) DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) (int64, error) {
	ids = repoutil.Dedupe(ids)
	if len(ids) == 0 {
		return 0, nil
	}
	res := dbc.DB(r.db).Where("id IN ?", ids).Delete(&types.SubSection{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete sub-sections: %w", res.Error)
	}
	return res.RowsAffected, nil
}
