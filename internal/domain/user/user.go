package user

import (
	"time"

	"github.com/google/uuid"
)

const (
	AccountAdmin      = "Admin"
	AccountInstructor = "Instructor"
	AccountStudent    = "Student"
)

// User is the account record. Its enrolled/owned course list lives in ref_link
// under the user.courses field.
type User struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FirstName   string    `gorm:"column:first_name;not null" json:"first_name"`
	LastName    string    `gorm:"column:last_name;not null" json:"last_name"`
	Email       string    `gorm:"column:email;uniqueIndex;not null" json:"email"`
	AccountType string    `gorm:"column:account_type;not null;index" json:"account_type"`
	Image       string    `gorm:"column:image" json:"image"`

	AdditionalDetailsID *uuid.UUID `gorm:"type:uuid;column:additional_details_id;index" json:"additional_details_id,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string { return "user" }

func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}
