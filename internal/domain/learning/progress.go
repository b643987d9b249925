package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type RatingAndReview struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;column:user_id;not null;index" json:"user_id"`
	CourseID uuid.UUID `gorm:"type:uuid;column:course_id;not null;index" json:"course_id"`
	Rating   float64   `gorm:"column:rating;not null" json:"rating"`
	Review   string    `gorm:"column:review;type:text" json:"review"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (RatingAndReview) TableName() string { return "rating_and_review" }

// CourseProgress is written by the player; the hierarchy only reads it.
type CourseProgress struct {
	ID              uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID        uuid.UUID                   `gorm:"type:uuid;column:course_id;not null;index:idx_course_progress_user_course,unique,priority:2" json:"course_id"`
	UserID          uuid.UUID                   `gorm:"type:uuid;column:user_id;not null;index:idx_course_progress_user_course,unique,priority:1" json:"user_id"`
	CompletedVideos datatypes.JSONSlice[string] `gorm:"column:completed_videos" json:"completed_videos"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (CourseProgress) TableName() string { return "course_progress" }
