package jobs

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/studynotion-backend/internal/data/repos/repoutil"
	types "github.com/yungbote/studynotion-backend/internal/domain"
	"github.com/yungbote/studynotion-backend/internal/pkg/dbctx"
	"github.com/yungbote/studynotion-backend/internal/platform/logger"
)

type CascadeRunRepo interface {
	Create(dbc dbctx.Context, rows []*types.CascadeRun) ([]*types.CascadeRun, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.CascadeRun, error)
	ListByStatus(dbc dbctx.Context, status string, limit int) ([]*types.CascadeRun, error)
	ListByTarget(dbc dbctx.Context, targetID uuid.UUID) ([]*types.CascadeRun, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type cascadeRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCascadeRunRepo(db *gorm.DB, baseLog *logger.Logger) CascadeRunRepo {
	return &cascadeRunRepo{db: db, log: baseLog.With("repo", "CascadeRunRepo")}
}

func (r *cascadeRunRepo) Create(dbc dbctx.Context, rows []*types.CascadeRun) ([]*types.CascadeRun, error) {
	if len(rows) == 0 {
		return []*types.CascadeRun{}, nil
	}
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, fmt.Errorf("create cascade runs: %w", err)
	}
	return rows, nil
}

func (r *cascadeRunRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.CascadeRun, error) {
	var run types.CascadeRun
	if err := dbc.DB(r.db).Where("id = ?", id).Take(&run).Error; err != nil {
		return nil, repoutil.NotFound(err, "cascade run", id)
	}
	return &run, nil
}

func (r *cascadeRunRepo) ListByStatus(dbc dbctx.Context, status string, limit int) ([]*types.CascadeRun, error) {
	var out []*types.CascadeRun
	q := dbc.DB(r.db).Where("status = ?", status).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list cascade runs: %w", err)
	}
	return out, nil
}

func (r *cascadeRunRepo) ListByTarget(dbc dbctx.Context, targetID uuid.UUID) ([]*types.CascadeRun, error) {
	var out []*types.CascadeRun
	if targetID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("target_id = ?", targetID).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list cascade runs for %s: %w", targetID, err)
	}
	return out, nil
}

func (r *cascadeRunRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return nil
	}
	return dbc.DB(r.db).
		Model(&types.CascadeRun{}).
		Where("id = ?", id).
		Updates(repoutil.Touch(updates)).Error
}

type CascadeStepRepo interface {
	Create(dbc dbctx.Context, rows []*types.CascadeStep) ([]*types.CascadeStep, error)
	ListByRunID(dbc dbctx.Context, runID uuid.UUID) ([]*types.CascadeStep, error)
	ListFailed(dbc dbctx.Context, runIDs []uuid.UUID) ([]*types.CascadeStep, error)
}

type cascadeStepRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCascadeStepRepo(db *gorm.DB, baseLog *logger.Logger) CascadeStepRepo {
	return &cascadeStepRepo{db: db, log: baseLog.With("repo", "CascadeStepRepo")}
}

func (r *cascadeStepRepo) Create(dbc dbctx.Context, rows []*types.CascadeStep) ([]*types.CascadeStep, error) {
	if len(rows) == 0 {
		return []*types.CascadeStep{}, nil
	}
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, fmt.Errorf("create cascade steps: %w", err)
	}
	return rows, nil
}

func (r *cascadeStepRepo) ListByRunID(dbc dbctx.Context, runID uuid.UUID) ([]*types.CascadeStep, error) {
	var out []*types.CascadeStep
	if runID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("run_id = ?", runID).Order("seq ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list cascade steps: %w", err)
	}
	return out, nil
}

func (r *cascadeStepRepo) ListFailed(dbc dbctx.Context, runIDs []uuid.UUID) ([]*types.CascadeStep, error) {
	runIDs = repoutil.Dedupe(runIDs)
	var out []*types.CascadeStep
	if len(runIDs) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("run_id IN ? AND status = ?", runIDs, types.CascadeStepFailed).
		Order("run_id ASC, seq ASC").
		Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list failed cascade steps: %w", err)
	}
	return out, nil
}
