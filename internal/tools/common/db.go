package common

import (
	"gorm.io/gorm"

	"github.com/campusconnect/campus-connect-api/internal/config"
	"github.com/campusconnect/campus-connect-api/internal/database"
)

// OpenDB loads envFile, then opens the configured database.
func OpenDB(envFile string) (*gorm.DB, error) {
	if err := LoadEnvFile(envFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return database.Open(cfg)
}

func CloseDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
