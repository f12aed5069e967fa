package persistence

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// CartBlob is one stored value
type CartBlob struct {
	Key       string `gorm:"primaryKey;size:255"`
	Value     []byte `gorm:"not null"`
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (CartBlob) TableName() string {
	return "cart_blobs"
}

// SQLiteStorage keeps values in a local SQLite database via GORM
type SQLiteStorage struct {
	db *gorm.DB
}

// NewSQLiteStorage opens (or creates) the database at path and migrates the
// cart_blobs table. A nil logger keeps GORM silent.
func NewSQLiteStorage(path string, logger gormlogger.Interface) (*SQLiteStorage, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
		}
	}
	if logger == nil {
		logger = gormlogger.Default.LogMode(gormlogger.Silent)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:                 logger,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Use(otelgorm.NewPlugin(otelgorm.WithDBName("cart"), otelgorm.WithoutQueryVariables())); err != nil {
		return nil, fmt.Errorf("registering tracing plugin: %w", err)
	}
	return NewSQLiteStorageWithDB(db)
}

// NewSQLiteStorageWithDB uses an existing connection
func NewSQLiteStorageWithDB(db *gorm.DB) (*SQLiteStorage, error) {
	if err := db.AutoMigrate(&CartBlob{}); err != nil {
		return nil, fmt.Errorf("failed to migrate cart_blobs: %w", err)
	}
	return &SQLiteStorage{db: db}, nil
}

// Load returns the value stored under key
func (s *SQLiteStorage) Load(ctx context.Context, key string) ([]byte, error) {
	var blob CartBlob
	err := s.db.WithContext(ctx).Where(clause.Eq{Column: clause.Column{Name: "key"}, Value: key}).First(&blob).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return blob.Value, nil
}

// Save upserts data under key
func (s *SQLiteStorage) Save(ctx context.Context, key string, data []byte) error {
	blob := CartBlob{Key: key, Value: data, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&blob).Error
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying connection
func (s *SQLiteStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
