package testutil

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/trit-recommender/internal/data/db"
	"github.com/yungbote/trit-recommender/internal/platform/logger"
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

// DB returns a database with the catalog schema and owned tables in place.
// With TEST_POSTGRES_DSN set it is a shared Postgres connection; otherwise a
// fresh in-memory SQLite database per test.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	if dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN")); dsn != "" {
		return postgresDB(tb, dsn)
	}
	return sqliteDB(tb)
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

func postgresDB(tb testing.TB, dsn string) *gorm.DB {
	tb.Helper()
	pgOnce.Do(func() {
		pgDB, pgErr = gorm.Open(postgres.Open(dsn), &gorm.Config{
			DisableForeignKeyConstraintWhenMigrating: true,
			Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
		})
		if pgErr != nil {
			return
		}
		pgErr = createSchema(pgDB, "TEXT[]")
	})
	if pgErr != nil {
		tb.Fatalf("failed to init test db: %v", pgErr)
	}
	return pgDB
}

func sqliteDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	name := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	gdb, err := gorm.Open(sqlite.Open(name), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	if err := createSchema(gdb, "TEXT"); err != nil {
		tb.Fatalf("create schema: %v", err)
	}
	tb.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

// catalogDDL mirrors the columns the recommender reads from the main backend.
var catalogDDL = []string{
	`CREATE TABLE IF NOT EXISTS users (id BIGINT PRIMARY KEY, nickname TEXT, country TEXT)`,
	`CREATE TABLE IF NOT EXISTS contents (id BIGINT PRIMARY KEY, category TEXT, thumbnail TEXT, title TEXT, description TEXT, creator_id BIGINT)`,
	`CREATE TABLE IF NOT EXISTS location (id BIGINT PRIMARY KEY, place_name TEXT, address TEXT, latitude DOUBLE PRECISION, longitude DOUBLE PRECISION, google_map_id TEXT)`,
	`CREATE TABLE IF NOT EXISTS contents_location (contents_id BIGINT, location_id BIGINT)`,
	`CREATE TABLE IF NOT EXISTS creator (id BIGINT PRIMARY KEY, user_id BIGINT, category %s, youtube TEXT, introduction TEXT)`,
	`CREATE TABLE IF NOT EXISTS watched_history (users_id BIGINT, contents_id BIGINT, watched_at TIMESTAMP)`,
	`CREATE TABLE IF NOT EXISTS liked_history (users_id BIGINT, contents_id BIGINT, liked_at TIMESTAMP)`,
	`CREATE TABLE IF NOT EXISTS playlist (id BIGINT PRIMARY KEY, user_id BIGINT, updated_at TIMESTAMP)`,
	`CREATE TABLE IF NOT EXISTS playlist_contents_list (playlist_id BIGINT, contents_list_id BIGINT)`,
	`CREATE TABLE IF NOT EXISTS hashtags (id BIGINT PRIMARY KEY, name TEXT)`,
	`CREATE TABLE IF NOT EXISTS hashtags_contents_mapping (hashtags_id BIGINT, contents_id BIGINT)`,
}

func createSchema(gdb *gorm.DB, arrayType string) error {
	for _, stmt := range catalogDDL {
		if strings.Contains(stmt, "%s") {
			stmt = fmt.Sprintf(stmt, arrayType)
		}
		if err := gdb.Exec(stmt).Error; err != nil {
			return fmt.Errorf("%s: %w", stmt, err)
		}
	}
	return db.AutoMigrate(gdb)
}

// Ptr is a small helper for nullable seed columns.
func Ptr[T any](v T) *T { return &v }
