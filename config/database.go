package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

// ConnectDatabase establishes a connection to the database.
// PostgreSQL is used in production; a sqlite URL ("sqlite://...") is
// accepted for local development and tests.
func ConnectDatabase() error {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		// Load() validates this too; guard again for callers that skip it
		return fmt.Errorf("DATABASE_URL is required")
	}

	var err error
	if path, ok := strings.CutPrefix(databaseURL, "sqlite://"); ok {
		DB, err = gorm.Open(sqlite.Open(path), &gorm.Config{})
	} else {
		DB, err = gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
	}
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Database connection established successfully")
	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}

// SetDB sets the database instance (primarily for testing)
func SetDB(db *gorm.DB) {
	DB = db
}
