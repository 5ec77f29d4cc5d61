package config

import (
	"errors"
	"fmt"
	"strings"

	"smartagro/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// IsSQLite reports whether dsn points at a sqlite database file.
func IsSQLite(dsn string) bool {
	return strings.HasPrefix(dsn, "file:") || strings.HasSuffix(dsn, ".db")
}

// OpenDatabase connects to postgres, or to sqlite for file DSNs, and migrates
// the sensor table. The returned handle is shared by every component.
func OpenDatabase(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	var dialector gorm.Dialector
	if IsSQLite(dsn) {
		dialector = sqlite.Open(dsn)
	} else {
		dialector = postgres.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := MigrateModels(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

// MigrateModels creates or updates the sensor table.
func MigrateModels(db *gorm.DB) error {
	return db.AutoMigrate(&models.SensorReading{})
}
