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

// CourseFilter narrows List. Zero fields do not filter. Match runs in memory
// after the query for predicates the store cannot express.
type CourseFilter struct {
	Status       string
	InstructorID uuid.UUID
	CategoryID   uuid.UUID
	Match        func(*types.Course) bool
}

type CourseRepo interface {
	Create(dbc dbctx.Context, courses []*types.Course) ([]*types.Course, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Course, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Course, error)
	List(dbc dbctx.Context, filter CourseFilter) ([]*types.Course, error)
	ListByInstructor(dbc dbctx.Context, instructorID uuid.UUID) ([]*types.Course, error)
	ListThumbnailKeys(dbc dbctx.Context) ([]string, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	Save(dbc dbctx.Context, course *types.Course) error
	DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) (int64, error)
}

type courseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	repoLog := baseLog.With("repo", "CourseRepo")
	return &courseRepo{db: db, log: repoLog}
}

func (r *courseRepo) Create(dbc dbctx.Context, courses []*types.Course) ([]*types.Course, error) {
	if len(courses) == 0 {
		return []*types.Course{}, nil
	}
	for _, c := range courses {
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
	}
	if err := dbc.DB(r.db).Create(&courses).Error; err != nil {
		return nil, fmt.Errorf("create courses: %w", err)
	}
	return courses, nil
}

func (r *courseRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Course, error) {
	var c types.Course
	if err := dbc.DB(r.db).Where("id = ?", id).Take(&c).Error; err != nil {
		return nil, repoutil.NotFound(err, "course", id)
	}
	return &c, nil
}

func (r *courseRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Course, error) {
	ids = repoutil.Dedupe(ids)
	var results []*types.Course
	if len(ids) == 0 {
		return results, nil
	}
	if err := dbc.DB(r.db).Where("id IN ?", ids).Find(&results).Error; err != nil {
		return nil, fmt.Errorf("get courses: %w", err)
	}
	return repoutil.OrderByIDs(ids, results, func(c *types.Course) uuid.UUID { return c.ID }), nil
}

func (r *courseRepo) List(dbc dbctx.Context, filter CourseFilter) ([]*types.Course, error) {
	q := dbc.DB(r.db).Model(&types.Course{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.InstructorID != uuid.Nil {
		q = q.Where("instructor_id = ?", filter.InstructorID)
	}
	if filter.CategoryID != uuid.Nil {
		q = q.Where("category_id = ?", filter.CategoryID)
	}
	var results []*types.Course
	if err := q.Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	if filter.Match == nil {
		return results, nil
	}
	out := results[:0]
	for _, c := range results {
		if filter.Match(c) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *courseRepo) ListByInstructor(dbc dbctx.Context, instructorID uuid.UUID) ([]*types.Course, error) {
	if instructorID == uuid.Nil {
		return []*types.Course{}, nil
	}
	return r.List(dbc, CourseFilter{InstructorID: instructorID})
}

func (r *courseRepo) ListThumbnailKeys(dbc dbctx.Context) ([]string, error) {
	var keys []string
	if err := dbc.DB(r.db).Model(&types.Course{}).
		Where("thumbnail_key <> ''").
		Pluck("thumbnail_key", &keys).Error; err != nil {
		return nil, fmt.Errorf("list thumbnail keys: %w", err)
	}
	return keys, nil
}

func (r *courseRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return nil
	}
	res := dbc.DB(r.db).Model(&types.Course{}).Where("id = ?", id).Updates(repoutil.Touch(updates))
	if res.Error != nil {
		return fmt.Errorf("update course %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return repoutil.NotFound(gorm.ErrRecordNotFound, "course", id)
	}
	return nil
}

func (r *courseRepo) Save(dbc dbctx.Context, course *types.Course) error {
	if course == nil || course.ID == uuid.Nil {
		return fmt.Errorf("save course: missing id")
	}
	if err := dbc.DB(r.db).Save(course).Error; err != nil {
		return fmt.Errorf("save course %s: %w", course.ID, err)
	}
	return nil
}

func (r *courseRepo) DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) (int64, error) {
	ids = repoutil.Dedupe(ids)
	if len(ids) == 0 {
		return 0, nil
	}
	res := dbc.DB(r.db).Where("id IN ?", ids).Delete(&types.Course{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete courses: %w", res.Error)
	}
	return res.RowsAffected, nil
}
