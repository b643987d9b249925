package learning

import (
	"time"

	"github.com/google/uuid"
)

type Section struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SectionName string    `gorm:"column:section_name;not null" json:"section_name"`
	// CourseID records the owning course; ordering lives in course.course_content links.
	CourseID uuid.UUID `gorm:"type:uuid;column:course_id;not null;index" json:"course_id"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Section) TableName() string { return "section" }

type SubSection struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SectionID    uuid.UUID `gorm:"type:uuid;column:section_id;not null;index" json:"section_id"`
	Title        string    `gorm:"column:title;not null" json:"title"`
	Description  string    `gorm:"column:description;type:text" json:"description"`
	TimeDuration string    `gorm:"column:time_duration" json:"time_duration"`

	Video MediaRef `gorm:"embedded;embeddedPrefix:video_" json:"video"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (SubSection) TableName() string { return "sub_section" }
