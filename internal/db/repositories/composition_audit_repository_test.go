package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"gorm.io/driver/sqlite"
	gormlib "gorm.io/gorm"

	"infinite-experiment/briefing/internal/models/gorm"
)

func setupTestDB(t *testing.T) *CompositionAuditRepository {
	t.Helper()

	orm, err := gormlib.Open(sqlite.Open(":memory:"), &gormlib.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := orm.AutoMigrate(&gorm.CompositionAudit{}); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	sqlDB, err := orm.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	// one connection so every query sees the same in-memory database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	return NewCompositionAuditRepository(orm, sqlx.NewDb(sqlDB, "sqlite3"))
}

func TestCompositionAuditRepository_RecordComposition_FillsDefaults(t *testing.T) {
	repo := setupTestDB(t)

	audit := &gorm.CompositionAudit{
		RequestID:       "req-1",
		DepartureICAO:   "SBGR",
		DestinationICAO: "SBSP",
		DateOfFlight:    "20250101",
		DegradedLookups: 2,
		DurationMs:      120,
	}
	if err := repo.RecordComposition(context.Background(), audit); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if audit.ID == "" {
		t.Error("Expected ID to be generated")
	}
	if audit.CreatedAt.IsZero() {
		t.Error("Expected CreatedAt to be set")
	}

	n, err := repo.Count(context.Background())
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 audit, got %d", n)
	}
}

func TestCompositionAuditRepository_ListRecent_NewestFirst(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, icao := range []string{"SBGR", "SBKP", "SBRJ"} {
		err := repo.RecordComposition(ctx, &gorm.CompositionAudit{
			DepartureICAO:   icao,
			DestinationICAO: "SBSP",
			DateOfFlight:    "20250101",
			CreatedAt:       base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Failed to insert audit: %v", err)
		}
	}

	audits, err := repo.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(audits) != 2 {
		t.Fatalf("Expected 2 audits, got %d", len(audits))
	}
	if audits[0].DepartureICAO != "SBRJ" || audits[1].DepartureICAO != "SBKP" {
		t.Errorf("Expected newest first, got %s then %s", audits[0].DepartureICAO, audits[1].DepartureICAO)
	}
	if audits[0].DestinationICAO != "SBSP" || audits[0].ID == "" {
		t.Errorf("Expected all columns to be scanned, got %+v", audits[0])
	}
}

func TestCompositionAuditRepository_ListRecent_Empty(t *testing.T) {
	repo := setupTestDB(t)

	audits, err := repo.ListRecent(context.Background(), 20)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if audits == nil || len(audits) != 0 {
		t.Errorf("Expected empty non-nil slice, got %#v", audits)
	}
}
