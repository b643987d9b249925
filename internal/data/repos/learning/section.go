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

type SectionRepo interface {
	Create(dbc dbctx.Context, sections []*types.Section) ([]*types.Section, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Section, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Section, error)
	ListByCourseID(dbc dbctx.Context, courseID uuid.UUID) ([]*types.Section, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) (int64, error)
}

type sectionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSectionRepo(db *gorm.DB, baseLog *logger.Logger) SectionRepo {
	return &sectionRepo{db: db, log: baseLog.With("repo", "SectionRepo")}
}

func (r *sectionRepo) Create(dbc dbctx.Context, sections []*types.Section) ([]*types.Section, error) {
	if len(sections) == 0 {
		return []*types.Section{}, nil
	}
	for _, s := range sections {
		if s.ID == uuid.Nil {
			s.ID = uuid.New()
		}
	}
	if err := dbc.DB(r.db).Create(&sections).Error; err != nil {
		return nil, fmt.Errorf("create sections: %w", err)
	}
	return sections, nil
}

func (r *sectionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Section, error) {
	var s types.Section
	if err := dbc.DB(r.db).Where("id = ?", id).Take(&s).Error; err != nil {
		return nil, repoutil.NotFound(err, "section", id)
	}
	return &s, nil
}

func (r *sectionRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Section, error) {
	ids = repoutil.Dedupe(ids)
	var out []*types.Section
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("get sections: %w", err)
	}
	return repoutil.OrderByIDs(ids, out, func(s *types.Section) uuid.UUID { return s.ID }), nil
}

// ListByCourseID returns sections owned by courseID regardless of link state.
func (r *sectionRepo) ListByCourseID(dbc dbctx.Context, courseID uuid.UUID) ([]*types.Section, error) {
	var out []*types.Section
	if courseID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("course_id = ?", courseID).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	return out, nil
}

func (r *sectionRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return nil
	}
	res := dbc.DB(r.db).Model(&types.Section{}).Where("id = ?", id).Updates(repoutil.Touch(updates))
	if res.Error != nil {
		return fmt.Errorf("update section %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return repoutil.NotFound(gorm.ErrRecordNotFound, "section", id)
	}
	return nil
}

func (r *sectionRepo) DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) (int64, error) {
	ids = repoutil.Dedupe(ids)
	if len(ids) == 0 {
		return 0, nil
	}
	res := dbc.DB(r.db).Where("id IN ?", ids).Delete(&types.Section{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete sections: %w", res.Error)
	}
	return res.RowsAffected, nil
}
