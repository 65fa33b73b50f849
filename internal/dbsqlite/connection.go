package dbsqlite

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"chatlink/internal/config"
)

// NewSQLite returns a GORM DB instance backed by the local sqlite cache file.
func NewSQLite(cnf *config.Config) (*gorm.DB, error) {
	path := cnf.Database.Path
	if path == "" {
		return nil, fmt.Errorf("database path is not set")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("cannot create cache directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:      logger.Default.LogMode(logger.Silent),
		PrepareStmt: true,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot open sqlite cache: %w", err)
	}

	if err := db.AutoMigrate(&User{}, &Conversation{}, &Message{}); err != nil {
		return nil, fmt.Errorf("failed to migrate cache schema: %w", err)
	}

	return db, nil
}
