package models

import "time"

// StackModel is an ordered grouping of news within one event. Order is the
// sort key; -1 marks a stack the source never ordered explicitly and sorts
// before all ordered stacks.
type StackModel struct {
	ID           uint   `gorm:"primarykey"`
	Title        string `gorm:"not null;size:255"`
	Description  string `gorm:"type:text"`
	Status       string `gorm:"size:20"`
	Order        int    `gorm:"column:order;default:-1"`
	Time         *time.Time
	EventID      uint  `gorm:"not null;index"`
	StackEventID *uint `gorm:"column:stack_event_id"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (StackModel) TableName() string {
	return "stack"
}
