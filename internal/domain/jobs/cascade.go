package jobs

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	CascadeKindCourseDelete  = "course.delete"
	CascadeKindSectionDelete = "section.delete"

	CascadeRunRunning   = "running"
	CascadeRunSucceeded = "succeeded"
	CascadeRunPartial   = "partial"

	CascadeStepDone   = "done"
	CascadeStepFailed = "failed"
)

// CascadeRun is the ledger header of one cascading delete.
type CascadeRun struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Kind     string    `gorm:"column:kind;not null;index" json:"kind"`
	TargetID uuid.UUID `gorm:"type:uuid;column:target_id;not null;index" json:"target_id"`
	ActorID  uuid.UUID `gorm:"type:uuid;column:actor_id;index" json:"actor_id"`

	// running|succeeded|partial
	Status      string `gorm:"column:status;not null;index" json:"status"`
	StepCount   int    `gorm:"column:step_count;not null" json:"step_count"`
	FailedCount int    `gorm:"column:failed_count;not null" json:"failed_count"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (CascadeRun) TableName() string { return "cascade_run" }

// CascadeStep records the outcome of one sub-step, in execution order.
type CascadeStep struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RunID uuid.UUID `gorm:"type:uuid;column:run_id;not null;index:idx_cascade_step_run_seq,unique,priority:1" json:"run_id"`
	Seq   int       `gorm:"column:seq;not null;index:idx_cascade_step_run_seq,unique,priority:2" json:"seq"`

	// unlink_student|unlink_category|unlink_instructor|delete_thumbnail|delete_video|...
	Step   string         `gorm:"column:step;not null;index" json:"step"`
	Target string         `gorm:"column:target" json:"target"`
	Status string         `gorm:"column:status;not null;index" json:"status"`
	Error  string         `gorm:"column:error;type:text" json:"error,omitempty"`
	Detail datatypes.JSON `gorm:"column:detail" json:"detail,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (CascadeStep) TableName() string { return "cascade_step" }
