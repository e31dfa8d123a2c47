package materializer

import (
	"fmt"

	"gorm.io/gorm"
)

// advanceSequence moves a table's id generator past the largest inserted
// source id, so rows created organically after the migration cannot
// collide with scraped ids. Only MySQL needs an explicit statement;
// sqlite's rowid allocator already continues from the current maximum.
func advanceSequence(tx *gorm.DB, table string, maxID uint) error {
	if maxID == 0 {
		return nil
	}
	if tx.Dialector.Name() != "mysql" {
		return nil
	}
	stmt := fmt.Sprintf("ALTER TABLE `%s` AUTO_INCREMENT = %d", table, maxID+1)
	if err := tx.Exec(stmt).Error; err != nil {
		return fmt.Errorf("failed to advance sequence for %s: %w", table, err)
	}
	return nil
}
