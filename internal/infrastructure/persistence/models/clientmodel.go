package models

import (
	"time"

	"gorm.io/datatypes"
)

// Role values for ClientModel.
const (
	RoleAdmin       = "admin"
	RoleContributor = "contributor"
)

// AdminID is the fixed identifier of the administrator account. Scraped
// events without a resolvable owner are attributed to it.
const AdminID uint = 1

// ClientModel is a user account row. Besides the administrator, every row
// is a pseudo user synthesized for a distinct owner id observed upstream.
type ClientModel struct {
	ID            uint           `gorm:"primarykey"`
	Username      string         `gorm:"uniqueIndex;not null;size:100"`
	Name          string         `gorm:"not null;size:100"`
	Email         string         `gorm:"size:255"`
	Password      string         `gorm:"size:255"`
	Role          string         `gorm:"not null;default:contributor;size:20"`
	EmailVerified bool           `gorm:"default:false"`
	Settings      datatypes.JSON `gorm:"type:json"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (ClientModel) TableName() string {
	return "client"
}
