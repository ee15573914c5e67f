package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/evyataryagoni/visitortrack/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// visitorModel is the GORM model for the visitors table
type visitorModel struct {
	ID         string    `gorm:"column:id;primaryKey"`
	Country    string    `gorm:"column:country"`
	State      string    `gorm:"column:state"`
	City       string    `gorm:"column:city"`
	Postal     string    `gorm:"column:postal"`
	Longitude  float64   `gorm:"column:longitude"`
	Latitude   float64   `gorm:"column:latitude"`
	Visits     int64     `gorm:"column:visits"`
	BucketTime time.Time `gorm:"column:bucket_time"`
}

// TableName overrides GORM's pluralized default ("visitor_models")
func (visitorModel) TableName() string {
	return "visitors"
}

// MySQLStore implements Store using MySQL with GORM
type MySQLStore struct {
	db *gorm.DB
}

// NewMySQLStore creates a new MySQL store using GORM
//
// Parameters:
//   - dsn: Data Source Name (connection string)
//     Format: user:password@tcp(host:port)/dbname?parseTime=true
//
// Returns:
//   - *MySQLStore: pointer to the created store
//   - error: any error that occurred during connection
func NewMySQLStore(dsn string) (*MySQLStore, error) {
	config := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		// Every write is a single atomic upsert statement; wrapping it in
		// a transaction would add nothing but round trips.
		SkipDefaultTransaction: true,
	}

	db, err := gorm.Open(mysql.Open(dsn), config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL with GORM: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// Configure connection pool. The pool hands out per-call connections,
	// so the shared store handle is safe under concurrent tracking calls.
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping MySQL database: %w", err)
	}

	return &MySQLStore{db: db}, nil
}

// FindByID looks up a visitor record by its composite key
func (s *MySQLStore) FindByID(ctx context.Context, id string) (*models.VisitorRecord, error) {
	var record visitorModel

	result := s.db.WithContext(ctx).Where("id = ?", id).First(&record)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database query failed: %w", result.Error)
	}

	return toDomain(&record), nil
}

// RegisterVisit performs the insert-or-increment upsert in one statement:
//
//	INSERT INTO visitors (...) VALUES (...)
//	ON DUPLICATE KEY UPDATE visits = visits + 1
//
// The increment runs inside MySQL, so concurrent calls for the same key
// never lose counts and a crashed caller can never leave a half-applied
// record behind.
func (s *MySQLStore) RegisterVisit(ctx context.Context, record *models.VisitorRecord) error {
	model := visitorModel{
		ID:         record.ID,
		Country:    record.Country,
		State:      record.State,
		City:       record.City,
		Postal:     record.Postal,
		Longitude:  record.Longitude,
		Latitude:   record.Latitude,
		Visits:     1,
		BucketTime: record.BucketTime,
	}

	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"visits": gorm.Expr("visits + 1")}),
	}).Create(&model)

	if result.Error != nil {
		return fmt.Errorf("failed to register visit: %w", result.Error)
	}

	return nil
}

// ScanAll reads every visitor record
func (s *MySQLStore) ScanAll(ctx context.Context) ([]models.VisitorRecord, error) {
	var rows []visitorModel

	result := s.db.WithContext(ctx).Find(&rows)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to scan visitors: %w", result.Error)
	}

	records := make([]models.VisitorRecord, 0, len(rows))
	for i := range rows {
		records = append(records, *toDomain(&rows[i]))
	}

	return records, nil
}

// Migrate creates or updates the visitors table schema
func (s *MySQLStore) Migrate() error {
	if err := s.db.AutoMigrate(&visitorModel{}); err != nil {
		return fmt.Errorf("failed to migrate visitors table: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *MySQLStore) Close() error {
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}

// toDomain converts the GORM model to the domain model
func toDomain(m *visitorModel) *models.VisitorRecord {
	return &models.VisitorRecord{
		ID:         m.ID,
		Country:    m.Country,
		State:      m.State,
		City:       m.City,
		Postal:     m.Postal,
		Longitude:  m.Longitude,
		Latitude:   m.Latitude,
		Visits:     m.Visits,
		BucketTime: m.BucketTime,
	}
}
