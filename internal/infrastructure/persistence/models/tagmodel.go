package models

import "time"

// TagModel is a label, possibly hierarchical through ParentID, with an
// optional redirect to a canonical tag.
type TagModel struct {
	ID           uint    `gorm:"primarykey"`
	Name         string  `gorm:"not null;size:100"`
	Slug         *string `gorm:"size:100"`
	Description  *string `gorm:"type:text"`
	Path         *string `gorm:"size:255"`
	RedirectToID *uint
	ParentID     *uint  `gorm:"index"`
	Status       string `gorm:"not null;default:visible;size:20"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (TagModel) TableName() string {
	return "tag"
}
