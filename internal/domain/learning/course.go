package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	CourseStatusDraft     = "Draft"
	CourseStatusPublished = "Published"
)

// Course is the root of a course tree. Ordered sections, enrolled students and
// reviews are ref_link rows keyed by this id.
type Course struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseName        string    `gorm:"column:course_name;not null" json:"course_name"`
	CourseDescription string    `gorm:"column:course_description;type:text;not null" json:"course_description"`
	WhatYouWillLearn  string    `gorm:"column:what_you_will_learn;type:text;not null" json:"what_you_will_learn"`
	Price             float64   `gorm:"column:price;not null" json:"price"`

	InstructorID uuid.UUID `gorm:"type:uuid;column:instructor_id;not null;index" json:"instructor_id"`
	CategoryID   uuid.UUID `gorm:"type:uuid;column:category_id;not null;index" json:"category_id"`

	Tag          datatypes.JSONSlice[string] `gorm:"column:tag" json:"tag"`
	Instructions datatypes.JSONSlice[string] `gorm:"column:instructions" json:"instructions"`

	// Draft|Published
	Status string `gorm:"column:status;not null;index" json:"status"`

	Thumbnail MediaRef `gorm:"embedded;embeddedPrefix:thumbnail_" json:"thumbnail"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Course) TableName() string { return "course" }

func (c *Course) IsDraft() bool { return c.Status != CourseStatusPublished }
