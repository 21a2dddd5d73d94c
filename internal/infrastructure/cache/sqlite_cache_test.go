package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"juryboard/internal/infrastructure/persistence/sqlite/model"
)

func setupCache(t *testing.T) *SQLiteCache {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "cache.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(&model.BoardKV{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return NewSQLiteCache(db)
}

func TestSetGetDelete(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()

	if _, found, err := c.Get(ctx, "counts:candidate:1"); err != nil || found {
		t.Fatalf("expected miss, found=%v err=%v", found, err)
	}

	if err := c.Set(ctx, "counts:candidate:1", "3", 5*time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, found, err := c.Get(ctx, "counts:candidate:1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !found || value != "3" {
		t.Fatalf("expected hit with 3, got %q found=%v", value, found)
	}

	// Upsert replaces the value in place.
	if err := c.Set(ctx, "counts:candidate:1", "4", 5*time.Minute); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	value, _, err = c.Get(ctx, "counts:candidate:1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if value != "4" {
		t.Fatalf("expected 4, got %q", value)
	}

	if err := c.Delete(ctx, "counts:candidate:1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, found, err := c.Get(ctx, "counts:candidate:1"); err != nil || found {
		t.Fatalf("expected miss after delete, found=%v err=%v", found, err)
	}
}

func TestBlankKeyRejected(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "  ", "x", time.Minute); err == nil {
		t.Fatalf("expected error for blank key")
	}
	if _, _, err := c.Get(ctx, ""); err == nil {
		t.Fatalf("expected error for blank key")
	}
	if err := c.Delete(ctx, ""); err == nil {
		t.Fatalf("expected error for blank key")
	}
}
