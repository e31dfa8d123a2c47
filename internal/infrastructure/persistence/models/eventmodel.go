package models

import "time"

// Event status vocabulary.
const (
	EventStatusPending  = "pending"
	EventStatusAdmitted = "admitted"
	EventStatusRejected = "rejected"
	EventStatusHidden   = "hidden"
)

// EventModel is a top-level content unit. Events form a tree through
// ParentID and reference their most recent admitted news item.
type EventModel struct {
	ID                   uint    `gorm:"primarykey"`
	Name                 string  `gorm:"not null;size:255"`
	Pinyin               *string `gorm:"size:255"`
	Description          string  `gorm:"type:text"`
	Status               string  `gorm:"not null;default:pending;size:20"`
	NeedContributor      bool    `gorm:"default:false"`
	OwnerID              uint    `gorm:"not null;default:1;index"`
	ParentID             *uint   `gorm:"index"`
	LatestAdmittedNewsID *uint
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (EventModel) TableName() string {
	return "event"
}
