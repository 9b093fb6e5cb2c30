// File: internal/database/database.go
package database

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/iyunix/go-gemchat/internal/domain"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const sqlitePragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

// Open connects to the database named by databaseURL. Accepted forms are
// "sqlite:<path>", "sqlite::memory:", "postgres://..." and "postgresql://...".
func Open(databaseURL, logLevel string) (*gorm.DB, error) {
	dialector, err := Dialector(databaseURL)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: newGormLogger(logLevel)})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

// Dialector picks the gorm driver for databaseURL.
func Dialector(databaseURL string) (gorm.Dialector, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return postgres.Open(databaseURL), nil
	case strings.HasPrefix(databaseURL, "sqlite:"):
		return sqlite.Open(SQLiteDSN(strings.TrimPrefix(databaseURL, "sqlite:"))), nil
	case databaseURL == "":
		return nil, fmt.Errorf("DATABASE_URL is empty")
	default:
		return nil, fmt.Errorf("unsupported DATABASE_URL scheme: %q", databaseURL)
	}
}

// SQLiteDSN adds the pragmas every connection needs. Foreign keys are off by
// default in SQLite, so cascades would silently not happen without them.
func SQLiteDSN(path string) string {
	if path == "" || path == ":memory:" {
		return "file::memory:?cache=shared&" + sqlitePragmas
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Printf("[Database] could not create directory %s: %v", dir, err)
		}
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + sqlitePragmas
}

// Migrate creates or updates the Users, Conversations and Messages tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&domain.User{}, &domain.Conversation{}, &domain.Message{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

func newGormLogger(level string) logger.Interface {
	lvl := logger.Warn
	switch strings.ToLower(level) {
	case "silent":
		lvl = logger.Silent
	case "error":
		lvl = logger.Error
	case "info":
		lvl = logger.Info
	}
	return logger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  lvl,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}
