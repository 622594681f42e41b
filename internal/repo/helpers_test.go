package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-society-bot/internal/domain"
)

func newRepoDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Use a unique in-memory database per test to avoid schema leakage across tests.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// seedListing inserts a listing with an explicit creation time.
func seedListing(t *testing.T, db *gorm.DB, l domain.Listing, createdAt time.Time, ttl time.Duration) *domain.Listing {
	t.Helper()
	if l.Message == "" {
		l.Message = "listing"
	}
	if err := InsertListing(context.Background(), db, &l, ttl, createdAt); err != nil {
		t.Fatalf("insert listing: %v", err)
	}
	return &l
}

func strp(s string) *string { return &s }
