package models

import "time"

// NewsModel is a leaf content record. News rows are globally unique by id
// and may be linked from multiple stacks and events.
type NewsModel struct {
	ID        uint   `gorm:"primarykey"`
	URL       string `gorm:"size:500"`
	Source    string `gorm:"size:100"`
	Title     string `gorm:"not null;size:255"`
	Abstract  string `gorm:"type:text"`
	Time      *time.Time
	Status    string  `gorm:"size:20"`
	Comment   *string `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (NewsModel) TableName() string {
	return "news"
}
