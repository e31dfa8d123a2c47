package models

import "time"

// EventStackNewsModel links an event, one of its stacks and a news item.
// A StackID of 0 marks off-shelf news attached to the event but to no
// stack. Identity is the full tuple.
type EventStackNewsModel struct {
	EventID   uint `gorm:"primaryKey;autoIncrement:false"`
	StackID   uint `gorm:"primaryKey;autoIncrement:false"`
	NewsID    uint `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (EventStackNewsModel) TableName() string {
	return "event_stack_news"
}

// EventTagModel links an event to a tag. Identity is the pair.
type EventTagModel struct {
	EventID   uint `gorm:"primaryKey;autoIncrement:false"`
	TagID     uint `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (EventTagModel) TableName() string {
	return "event_tag"
}
