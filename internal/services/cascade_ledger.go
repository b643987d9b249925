package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/studynotion-backend/internal/data/aggregates"
	"github.com/yungbote/studynotion-backend/internal/data/repos"
	types "github.com/yungbote/studynotion-backend/internal/domain"
	"github.com/yungbote/studynotion-backend/internal/observability"
	"github.com/yungbote/studynotion-backend/internal/pkg/dbctx"
	"github.com/yungbote/studynotion-backend/internal/platform/logger"
)

const (
	StepUnlinkStudent    = "unlink_student"
	StepUnlinkCategory   = "unlink_category"
	StepUnlinkInstructor = "unlink_instructor"
	StepDeleteThumbnail  = "delete_thumbnail"
	StepDeleteVideo      = "delete_video"
	StepDeleteSubSection = "delete_sub_section"
	StepUnlinkSubSection = "unlink_sub_sections"
	StepDeleteSection    = "delete_section"
	StepUnlinkSection    = "unlink_section"
	StepDeleteCourse     = "delete_course"
	StepClearCourseLinks = "clear_course_links"
)

// StepOutcome is the result of one cascade sub-step.
type StepOutcome struct {
	Seq    int    `json:"seq"`
	Step   string `json:"step"`
	Target string `json:"target"`
	Error  string `json:"error,omitempty"`
}

func (o StepOutcome) OK() bool { return o.Error == "" }

// CascadeReport lists every sub-step of a cascading delete in execution order.
type CascadeReport struct {
	RunID    uuid.UUID     `json:"run_id"`
	Kind     string        `json:"kind"`
	CourseID uuid.UUID     `json:"course_id"`
	TargetID uuid.UUID     `json:"target_id"`
	Steps    []StepOutcome `json:"steps"`
	Failed   int           `json:"failed"`
}

// cascade collects outcomes. Failures are logged and counted, never returned.
type cascade struct {
	log    *logger.Logger
	report *CascadeReport
}

func newCascade(log *logger.Logger, kind string, courseID, targetID uuid.UUID) *cascade {
	return &cascade{
		log:    log,
		report: &CascadeReport{Kind: kind, CourseID: courseID, TargetID: targetID, Steps: []StepOutcome{}},
	}
}

func (c *cascade) record(step, target string, err error) {
	o := StepOutcome{Seq: len(c.report.Steps) + 1, Step: step, Target: target}
	if err != nil {
		o.Error = err.Error()
		c.report.Failed++
		c.log.Warn("Cascade step failed",
			"course_id", c.report.CourseID,
			"step", step,
			"target", target,
			"error", err,
		)
	}
	c.report.Steps = append(c.report.Steps, o)
	observability.Current().ObserveCascadeStep(c.report.Kind, step, err == nil)
}

// CascadeLedger persists cascade reports so partial cleanups can be found
// and finished later.
type CascadeLedger interface {
	Begin(ctx context.Context, kind string, targetID, actorID uuid.UUID) (uuid.UUID, error)
	Finish(ctx context.Context, report *CascadeReport) error
	// LastRun returns the newest run of kind against targetID, or nil.
	LastRun(ctx context.Context, kind string, targetID uuid.UUID) (*types.CascadeRun, error)
}

type cascadeLedger struct {
	log    *logger.Logger
	runner aggregates.TxRunner
	runs   repos.CascadeRunRepo
	steps  repos.CascadeStepRepo
}

func NewCascadeLedger(baseLog *logger.Logger, runner aggregates.TxRunner, runs repos.CascadeRunRepo, steps repos.CascadeStepRepo) CascadeLedger {
	return &cascadeLedger{
		log:    baseLog.With("service", "CascadeLedger"),
		runner: runner,
		runs:   runs,
		steps:  steps,
	}
}

func (l *cascadeLedger) Begin(ctx context.Context, kind string, targetID, actorID uuid.UUID) (uuid.UUID, error) {
	run := &types.CascadeRun{
		ID:       uuid.New(),
		Kind:     kind,
		TargetID: targetID,
		ActorID:  actorID,
		Status:   types.CascadeRunRunning,
	}
	if _, err := l.runs.Create(dbctx.Context{Ctx: ctx}, []*types.CascadeRun{run}); err != nil {
		return uuid.Nil, fmt.Errorf("begin cascade run: %w", err)
	}
	return run.ID, nil
}

func (l *cascadeLedger) Finish(ctx context.Context, report *CascadeReport) error {
	if report == nil || report.RunID == uuid.Nil {
		return fmt.Errorf("finish cascade run: missing run id")
	}
	status := types.CascadeRunSucceeded
	if report.Failed > 0 {
		status = types.CascadeRunPartial
	}
	detail, err := json.Marshal(map[string]string{"course_id": report.CourseID.String()})
	if err != nil {
		return fmt.Errorf("finish cascade run %s: %w", report.RunID, err)
	}

	rows := make([]*types.CascadeStep, 0, len(report.Steps))
	for _, s := range report.Steps {
		st := types.CascadeStepDone
		if !s.OK() {
			st = types.CascadeStepFailed
		}
		rows = append(rows, &types.CascadeStep{
			RunID:  report.RunID,
			Seq:    s.Seq,
			Step:   s.Step,
			Target: s.Target,
			Status: st,
			Error:  s.Error,
			Detail: datatypes.JSON(detail),
		})
	}

	err = l.runner.InTx(ctx, func(dbc dbctx.Context) error {
		if _, err := l.steps.Create(dbc, rows); err != nil {
			return err
		}
		return l.runs.UpdateFields(dbc, report.RunID, map[string]interface{}{
			"status":       status,
			"step_count":   len(report.Steps),
			"failed_count": report.Failed,
		})
	})
	if err == nil {
		observability.Current().ObserveCascadeRun(report.Kind, status)
	}
	return err
}

func (l *cascadeLedger) LastRun(ctx context.Context, kind string, targetID uuid.UUID) (*types.CascadeRun, error) {
	runs, err := l.runs.ListByTarget(dbctx.Context{Ctx: ctx}, targetID)
	if err != nil {
		return nil, err
	}
	for i := len(runs) - 1; i >= 0; i-- {
		if runs[i].Kind == kind {
			return runs[i], nil
		}
	}
	return nil, nil
}
