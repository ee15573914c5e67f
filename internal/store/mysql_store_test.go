package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/evyataryagoni/visitortrack/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// setupMockDB creates a mock database for testing
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	})

	// Same transaction setting as NewMySQLStore, so the mock sees the
	// single upsert statement production emits
	db, err := gorm.Open(dialector, &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("failed to open gorm db: %v", err)
	}

	return db, mock, sqlDB
}

var testBucket = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

// TestMySQLStore_RegisterVisit_SingleUpsertStatement tests that the
// upsert runs as one INSERT ... ON DUPLICATE KEY UPDATE statement
func TestMySQLStore_RegisterVisit_SingleUpsertStatement(t *testing.T) {
	db, mock, sqlDB := setupMockDB(t)
	defer sqlDB.Close()

	store := &MySQLStore{db: db}

	mock.ExpectExec("INSERT INTO `visitors` .*ON DUPLICATE KEY UPDATE `visits`=visits \\+ 1").
		WithArgs("203.0.113.5-2025/06/15 10:00AM", "United States", "California", "Mountain View", "94043", -122.0838, 37.386, int64(1), testBucket).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := store.RegisterVisit(context.Background(), testRecord())

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

// TestMySQLStore_RegisterVisit_StoreError tests write failures surface
func TestMySQLStore_RegisterVisit_StoreError(t *testing.T) {
	db, mock, sqlDB := setupMockDB(t)
	defer sqlDB.Close()

	store := &MySQLStore{db: db}

	mock.ExpectExec("INSERT INTO `visitors` .*").
		WillReturnError(errors.New("connection refused"))

	err := store.RegisterVisit(context.Background(), testRecord())

	if err == nil {
		t.Error("expected error, got nil")
	}
}

// TestMySQLStore_FindByID_Success tests successful lookup
func TestMySQLStore_FindByID_Success(t *testing.T) {
	db, mock, sqlDB := setupMockDB(t)
	defer sqlDB.Close()

	store := &MySQLStore{db: db}

	rows := sqlmock.NewRows([]string{"id", "country", "state", "city", "postal", "longitude", "latitude", "visits", "bucket_time"}).
		AddRow("203.0.113.5-2025/06/15 10:00AM", "United States", "California", "Mountain View", "94043", -122.0838, 37.386, 3, testBucket)

	mock.ExpectQuery("SELECT \\* FROM `visitors` WHERE id = \\? .*").
		WithArgs("203.0.113.5-2025/06/15 10:00AM", 1).
		WillReturnRows(rows)

	record, err := store.FindByID(context.Background(), "203.0.113.5-2025/06/15 10:00AM")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.Country != "United States" {
		t.Errorf("expected country 'United States', got %q", record.Country)
	}
	if record.Visits != 3 {
		t.Errorf("expected 3 visits, got %d", record.Visits)
	}
	if !record.BucketTime.Equal(testBucket) {
		t.Errorf("expected bucket time %v, got %v", testBucket, record.BucketTime)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

// TestMySQLStore_FindByID_NotFound tests the ErrNotFound mapping
func TestMySQLStore_FindByID_NotFound(t *testing.T) {
	db, mock, sqlDB := setupMockDB(t)
	defer sqlDB.Close()

	store := &MySQLStore{db: db}

	mock.ExpectQuery("SELECT \\* FROM `visitors` WHERE id = \\? .*").
		WithArgs("missing-key", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "country", "state", "city", "postal", "longitude", "latitude", "visits", "bucket_time"}))

	record, err := store.FindByID(context.Background(), "missing-key")

	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if record != nil {
		t.Error("expected nil record, got data")
	}
}

// TestMySQLStore_ScanAll tests reading the full record set
func TestMySQLStore_ScanAll(t *testing.T) {
	db, mock, sqlDB := setupMockDB(t)
	defer sqlDB.Close()

	store := &MySQLStore{db: db}

	rows := sqlmock.NewRows([]string{"id", "country", "state", "city", "postal", "longitude", "latitude", "visits", "bucket_time"}).
		AddRow("203.0.113.5-2025/06/15 10:00AM", "United States", "California", "Mountain View", "94043", -122.0838, 37.386, 2, testBucket).
		AddRow("198.51.100.1-2025/06/15 10:05AM", "France", "Ile-de-France", "Paris", "75001", 2.3522, 48.8566, 1, testBucket.Add(5*time.Minute))

	mock.ExpectQuery("SELECT \\* FROM `visitors`").WillReturnRows(rows)

	records, err := store.ScanAll(context.Background())

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Visits+records[1].Visits != 3 {
		t.Errorf("expected total of 3 visits, got %d", records[0].Visits+records[1].Visits)
	}
}

// TestMySQLStore_ScanAll_Empty tests an empty table
func TestMySQLStore_ScanAll_Empty(t *testing.T) {
	db, mock, sqlDB := setupMockDB(t)
	defer sqlDB.Close()

	store := &MySQLStore{db: db}

	mock.ExpectQuery("SELECT \\* FROM `visitors`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "country", "state", "city", "postal", "longitude", "latitude", "visits", "bucket_time"}))

	records, err := store.ScanAll(context.Background())

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected 0 records, got %d", len(records))
	}
}

func testRecord() *models.VisitorRecord {
	return &models.VisitorRecord{
		ID:         "203.0.113.5-2025/06/15 10:00AM",
		Country:    "United States",
		State:      "California",
		City:       "Mountain View",
		Postal:     "94043",
		Longitude:  -122.0838,
		Latitude:   37.386,
		Visits:     1,
		BucketTime: testBucket,
	}
}
