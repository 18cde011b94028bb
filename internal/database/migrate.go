package database

import (
	"github.com/campusconnect/campus-connect-api/internal/domain"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.Account{})
}

// PendingMigrations lists models whose table does not exist yet.
func PendingMigrations(db *gorm.DB) []string {
	var pending []string
	models := []struct {
		name  string
		model any
	}{
		{"accounts", &domain.Account{}},
	}
	for _, m := range models {
		if !db.Migrator().HasTable(m.model) {
			pending = append(pending, m.name)
		}
	}
	return pending
}
