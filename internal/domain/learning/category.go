package learning

import (
	"time"

	"github.com/google/uuid"
)

// Category lists its courses through category.courses links.
type Category struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"column:name;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"column:description" json:"description"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Category) TableName() string { return "category" }
