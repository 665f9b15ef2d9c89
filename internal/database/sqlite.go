package database

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ConnectSQLite opens a file-backed SQLite database. Used as the development
// fallback when no PostgreSQL DSN is configured.
func ConnectSQLite(path string) (*gorm.DB, error) {
	if path == "" {
		path = "gincana.db"
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	return db, nil
}
