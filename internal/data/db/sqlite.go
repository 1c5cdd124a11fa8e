package db

import (
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yungbote/atlas-backend/internal/pkg/logger"
)

// SQLiteDSN adds the pragmas every connection needs. SQLite has no row
// locks, so writers rely on the busy timeout to queue behind each other.
func SQLiteDSN(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		path = "atlas.db"
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}
	return path + sep + "_busy_timeout=5000&_foreign_keys=on"
}

func openSQLite(path string, logg *logger.Logger) (*gorm.DB, error) {
	logg.Info("Opening sqlite", "path", path)
	db, err := gorm.Open(sqlite.Open(SQLiteDSN(path)), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// One writer at a time; also keeps in-memory databases on a single connection.
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}
