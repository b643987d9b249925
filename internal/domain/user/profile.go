package user

import (
	"time"

	"github.com/google/uuid"
)

// Profile holds the optional details shown next to an instructor.
type Profile struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Gender        string    `gorm:"column:gender" json:"gender,omitempty"`
	DateOfBirth   string    `gorm:"column:date_of_birth" json:"date_of_birth,omitempty"`
	About         string    `gorm:"column:about;type:text" json:"about,omitempty"`
	ContactNumber string    `gorm:"column:contact_number" json:"contact_number,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Profile) TableName() string { return "profile" }
