// Package migration creates the destination relational schema.
package migration

import (
	"fmt"

	"gorm.io/gorm"

	"waveline/internal/infrastructure/persistence/models"
	"waveline/internal/shared/logger"
)

// AutoMigrateModels lists every table the seed pipeline writes, in
// dependency order.
func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.ClientModel{},
		&models.TagModel{},
		&models.EventModel{},
		&models.StackModel{},
		&models.NewsModel{},
		&models.EventStackNewsModel{},
		&models.EventTagModel{},
		&models.HeaderImageModel{},
		&models.CommitModel{},
		&models.AclUserModel{},
		&models.AclRoleModel{},
	}
}

// Run applies the schema.
func Run(db *gorm.DB) error {
	if err := db.AutoMigrate(AutoMigrateModels()...); err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}
	logger.Info("schema migration complete", "tables", len(AutoMigrateModels()))
	return nil
}
