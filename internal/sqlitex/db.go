package sqlitex

import (
	"errors"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrStorageUnavailable marks a durable-store failure. Fatal for the
// session: without the local store there is no offline capability left.
var ErrStorageUnavailable = errors.New("storage unavailable")

// Unavailable wraps a driver error as ErrStorageUnavailable, keeping the cause.
func Unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrStorageUnavailable, err)
}

// Open opens (or creates) the terminal-local database and runs migrations
// for the given models. WAL keeps readers unblocked while a catalog replace
// is writing.
func Open(path string, models ...any) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path+"?_journal_mode=WAL&_busy_timeout=5000"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	return db, nil
}
