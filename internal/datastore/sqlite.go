package datastore

import (
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tphakala/vocab-manager/internal/logger"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// SQLiteStore implements Interface for SQLite.
type SQLiteStore struct {
	DataStore
	Path string
	opts Options
}

// Open creates the database file if needed and migrates the schema.
func (store *SQLiteStore) Open() error {
	if store.Path != MemoryPath && !strings.HasPrefix(store.Path, "file:") {
		if dir := filepath.Dir(store.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return dbError(err, "open", "path", store.Path)
			}
		}
	}

	db, err := gorm.Open(sqlite.Open(sqliteDSN(store.Path)), &gorm.Config{
		Logger:         logger.NewGormLoggerAdapter(store.log.Module("gorm"), store.opts.SlowThreshold),
		TranslateError: true,
	})
	if err != nil {
		store.log.Error("failed to open SQLite database", logger.String("path", store.Path), logger.Error(err))
		return dbError(err, "open", "path", store.Path)
	}

	// one connection keeps in-memory databases alive and serializes writers
	sqlDB, err := db.DB()
	if err != nil {
		return dbError(err, "open")
	}
	sqlDB.SetMaxOpenConns(1)

	store.DB = db
	store.log.Info("SQLite database opened", logger.String("path", store.Path))
	return store.migrate("sqlite")
}

// Close closes the database.
func (store *SQLiteStore) Close() error {
	return store.closeDB()
}

// sqliteDSN enables foreign key enforcement
func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on&_busy_timeout=5000"
}
