package models

import (
	"time"

	"gorm.io/datatypes"
)

// AclUserModel mirrors one user's role set in the relational store. Roles
// is a JSON array of role names; it must match the cache store's per-user
// role-set key at the end of a run.
type AclUserModel struct {
	UserID    uint           `gorm:"primarykey;autoIncrement:false;column:user_id"`
	Roles     datatypes.JSON `gorm:"type:json"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (AclUserModel) TableName() string {
	return "acl_users"
}

// AclRoleModel mirrors one role in the relational store. Users is a JSON
// array of user ids, Permissions a JSON object mapping resource names to
// permission arrays, Parents a JSON array of parent role names.
type AclRoleModel struct {
	Name        string         `gorm:"primarykey;size:100"`
	Users       datatypes.JSON `gorm:"type:json"`
	Permissions datatypes.JSON `gorm:"type:json"`
	Parents     datatypes.JSON `gorm:"type:json"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (AclRoleModel) TableName() string {
	return "acl_roles"
}
