package jobs

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/studynotion-backend/internal/data/repos/testutil"
	types "github.com/yungbote/studynotion-backend/internal/domain"
	"github.com/yungbote/studynotion-backend/internal/platform/apierr"
)

func TestCascadeLedgerRepos(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := testutil.Ctx(tx)
	log := testutil.Logger(t)
	runs := NewCascadeRunRepo(db, log)
	steps := NewCascadeStepRepo(db, log)

	target := uuid.New()
	created, err := runs.Create(dbc, []*types.CascadeRun{{
		Kind:     types.CascadeKindCourseDelete,
		TargetID: target,
		Status:   types.CascadeRunRunning,
	}})
	if err != nil || len(created) != 1 {
		t.Fatalf("Create run: err=%v", err)
	}
	run := created[0]

	if _, err := steps.Create(dbc, []*types.CascadeStep{
		{RunID: run.ID, Seq: 2, Step: "delete_video", Target: "videos/b.mp4", Status: types.CascadeStepFailed, Error: "disk"},
		{RunID: run.ID, Seq: 1, Step: "unlink_student", Target: uuid.NewString(), Status: types.CascadeStepDone},
	}); err != nil {
		t.Fatalf("Create steps: %v", err)
	}

	if err := runs.UpdateFields(dbc, run.ID, map[string]interface{}{
		"status":       types.CascadeRunPartial,
		"step_count":   2,
		"failed_count": 1,
	}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}

	got, err := runs.GetByID(dbc, run.ID)
	if err != nil || got.Status != types.CascadeRunPartial || got.FailedCount != 1 {
		t.Fatalf("GetByID: err=%v run=%+v", err, got)
	}
	if _, err := runs.GetByID(dbc, uuid.New()); !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("GetByID missing: want=ErrNotFound got=%v", err)
	}

	byTarget, err := runs.ListByTarget(dbc, target)
	if err != nil || len(byTarget) != 1 {
		t.Fatalf("ListByTarget: err=%v len=%d", err, len(byTarget))
	}
	partial, err := runs.ListByStatus(dbc, types.CascadeRunPartial, 0)
	if err != nil {
		t.Fatalf("ListByStatus: %v", err)
	}
	found := false
	for _, r := range partial {
		found = found || r.ID == run.ID
	}
	if !found {
		t.Fatalf("ListByStatus: run %s missing", run.ID)
	}

	ordered, err := steps.ListByRunID(dbc, run.ID)
	if err != nil || len(ordered) != 2 {
		t.Fatalf("ListByRunID: err=%v len=%d", err, len(ordered))
	}
	if ordered[0].Seq != 1 || ordered[1].Seq != 2 {
		t.Fatalf("ListByRunID order: want=[1 2] got=[%d %d]", ordered[0].Seq, ordered[1].Seq)
	}
	failed, err := steps.ListFailed(dbc, []uuid.UUID{run.ID})
	if err != nil || len(failed) != 1 || failed[0].Step != "delete_video" {
		t.Fatalf("ListFailed: err=%v rows=%v", err, failed)
	}
}
