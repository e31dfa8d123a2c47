package models

import (
	"time"

	"gorm.io/datatypes"
)

// CommitModel is a denormalized snapshot of an event's full state at
// migration time. Content holds the structured snapshot document; the
// scalar columns are the indexed summary fields.
type CommitModel struct {
	ID        uint           `gorm:"primarykey"`
	Summary   string         `gorm:"size:255"`
	Time      string         `gorm:"type:time"`
	AuthorID  uint           `gorm:"not null"`
	EventID   uint           `gorm:"not null;index"`
	Content   datatypes.JSON `gorm:"type:json"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CommitModel) TableName() string {
	return "commit"
}
