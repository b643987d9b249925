package learning

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/studynotion-backend/internal/data/repos/repoutil"
	types "github.com/yungbote/studynotion-backend/internal/domain"
	"github.com/yungbote/studynotion-backend/internal/pkg/dbctx"
	"github.com/yungbote/studynotion-backend/internal/platform/logger"
)

type CourseProgressRepo interface {
	Create(dbc dbctx.Context, rows []*types.CourseProgress) ([]*types.CourseProgress, error)
	// GetByCourseAndUser returns (nil, nil) when the user has no progress row.
	GetByCourseAndUser(dbc dbctx.Context, courseID, userID uuid.UUID) (*types.CourseProgress, error)
	ListOrphaned(dbc dbctx.Context) ([]*types.CourseProgress, error)
	DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) (int64, error)
}

type courseProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseProgressRepo(db *gorm.DB, baseLog *logger.Logger) CourseProgressRepo {
	return &courseProgressRepo{db: db, log: baseLog.With("repo", "CourseProgressRepo")}
}

func (r *courseProgressRepo) Create(dbc dbctx.Context, rows []*types.CourseProgress) ([]*types.CourseProgress, error) {
	if len(rows) == 0 {
		return []*types.CourseProgress{}, nil
	}
	for _, p := range rows {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, fmt.Errorf("create course progress: %w", err)
	}
	return rows, nil
}

func (r *courseProgressRepo) GetByCourseAndUser(dbc dbctx.Context, courseID, userID uuid.UUID) (*types.CourseProgress, error) {
	var p types.CourseProgress
	err := dbc.DB(r.db).Where("course_id = ? AND user_id = ?", courseID, userID).Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get course progress: %w", err)
	}
	return &p, nil
}

// ListOrphaned returns progress rows whose course no longer exists.
func (r *courseProgressRepo) ListOrphaned(dbc dbctx.Context) ([]*types.CourseProgress, error) {
	db := dbc.DB(r.db)
	var out []*types.CourseProgress
	err := db.Where("NOT EXISTS (?)",
		db.Session(&gorm.Session{NewDB: true}).Model(&types.Course{}).Select("1").Where("course.id = course_progress.course_id"),
	).Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list orphaned progress: %w", err)
	}
	return out, nil
}

func (r *courseProgressRepo) DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) (int64, error) {
	ids = repoutil.Dedupe(ids)
	if len(ids) == 0 {
		return 0, nil
	}
	res := dbc.DB(r.db).Where("id IN ?", ids).Delete(&types.CourseProgress{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete course progress: %w", res.Error)
	}
	return res.RowsAffected, nil
}

type RatingAndReviewRepo interface {
	Create(dbc dbctx.Context, rows []*types.RatingAndReview) ([]*types.RatingAndReview, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.RatingAndReview, error)
}

type ratingAndReviewRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRatingAndReviewRepo(db *gorm.DB, baseLog *logger.Logger) RatingAndReviewRepo {
	return &ratingAndReviewRepo{db: db, log: baseLog.With("repo", "RatingAndReviewRepo")}
}

func (r *ratingAndReviewRepo) Create(dbc dbctx.Context, rows []*types.RatingAndReview) ([]*types.RatingAndReview, error) {
	if len(rows) == 0 {
		return []*types.RatingAndReview{}, nil
	}
	for _, rr := range rows {
		if rr.ID == uuid.Nil {
			rr.ID = uuid.New()
		}
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, fmt.Errorf("create reviews: %w", err)
	}
	return rows, nil
}

func (r *ratingAndReviewRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.RatingAndReview, error) {
	ids = repoutil.Dedupe(ids)
	var out []*types.RatingAndReview
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("get reviews: %w", err)
	}
	return repoutil.OrderByIDs(ids, out, func(rr *types.RatingAndReview) uuid.UUID { return rr.ID }), nil
}
