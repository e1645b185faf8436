package db

import (
	"fmt"

	"github.com/ryan12324/OpenAssistant-sub003/db/models"
	"gorm.io/gorm"
)

func AutoMigrate(gdb *gorm.DB) error {
	if gdb == nil {
		return fmt.Errorf("nil gorm db")
	}
	return gdb.AutoMigrate(
		&models.AuditEntry{},
	)
}
