package models

import "time"

// HeaderImageModel is the illustrative image of one event.
type HeaderImageModel struct {
	ID        uint    `gorm:"primarykey"`
	ImageURL  string  `gorm:"not null;size:500"`
	Source    string  `gorm:"size:100"`
	SourceURL *string `gorm:"size:500"`
	EventID   uint    `gorm:"not null;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (HeaderImageModel) TableName() string {
	return "header_image"
}
