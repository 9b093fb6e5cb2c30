// Package databasetest opens throwaway SQLite databases for tests.
package databasetest

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/iyunix/go-gemchat/internal/database"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New returns a migrated database stored in t.TempDir.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := database.SQLiteDSN(filepath.Join(t.TempDir(), "test.db"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
