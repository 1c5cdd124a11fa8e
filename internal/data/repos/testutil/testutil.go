package testutil

import (
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/yungbote/atlas-backend/internal/data/db"
	types "github.com/yungbote/atlas-backend/internal/domain"
	"github.com/yungbote/atlas-backend/internal/pkg/logger"
)

var (
	pgOnce sync.Once
	pgDB   *gorm.DB
	pgErr  error

	logOnce sync.Once
	logg    *logger.Logger
	logErr  error
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logOnce.Do(func() {
		logg, logErr = logger.New("test")
	})
	if logErr != nil {
		tb.Fatalf("failed to init logger: %v", logErr)
	}
	return logg
}

// DB returns a migrated database for one test. By default every call gets its
// own in-memory SQLite database. With TEST_POSTGRES_DSN set, a shared Postgres
// database is used and all tables are truncated first; run those with -p 1.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	if dsn := os.Getenv("TEST_POSTGRES_DSN"); dsn != "" {
		return postgresDB(tb, dsn)
	}
	return sqliteDB(tb)
}

func sqliteDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	path := fmt.Sprintf("atlas-test-%s?mode=memory&cache=shared", uuid.NewString())
	svc, err := dbpkg.NewService(dbpkg.Config{Driver: dbpkg.DriverSQLite, SQLitePath: path}, Logger(tb))
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	tb.Cleanup(func() { _ = svc.Close() })
	if err := svc.AutoMigrateAll(); err != nil {
		tb.Fatalf("migrate sqlite: %v", err)
	}
	return svc.DB()
}

func postgresDB(tb testing.TB, dsn string) *gorm.DB {
	tb.Helper()
	pgOnce.Do(func() {
		pgDB, pgErr = dbpkg.OpenPostgresDSN(dsn, Logger(tb))
		if pgErr != nil {
			return
		}
		pgErr = dbpkg.AutoMigrateAll(pgDB)
	})
	if pgErr != nil {
		tb.Fatalf("failed to init test db: %v", pgErr)
	}
	for _, m := range types.All() {
		stmt := &gorm.Statement{DB: pgDB}
		if err := stmt.Parse(m); err != nil {
			tb.Fatalf("parse model: %v", err)
		}
		if err := pgDB.Exec("TRUNCATE TABLE " + stmt.Schema.Table + " CASCADE").Error; err != nil {
			tb.Fatalf("truncate %s: %v", stmt.Schema.Table, err)
		}
	}
	return pgDB
}

func Tx(tb testing.TB, db *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := db.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}
