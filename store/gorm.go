package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"smartagro/models"

	"gorm.io/gorm"
)

// SensorStore reads and writes the soil_data table through gorm.
type SensorStore struct {
	db *gorm.DB
}

// NewSensorStore wraps an opened database handle.
func NewSensorStore(db *gorm.DB) *SensorStore {
	return &SensorStore{db: db}
}

// DB exposes the underlying handle for migrations and health checks.
func (s *SensorStore) DB() *gorm.DB {
	return s.db
}

func (s *SensorStore) Latest(ctx context.Context) (*models.SensorReading, error) {
	var reading models.SensorReading
	err := s.db.WithContext(ctx).Order("monitored_at desc").Limit(1).Take(&reading).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest reading: %w", err)
	}
	return &reading, nil
}

func (s *SensorStore) Range(ctx context.Context, since time.Time, limit int) ([]models.SensorReading, error) {
	readings := []models.SensorReading{}
	q := s.db.WithContext(ctx).Where("monitored_at >= ?", since.UTC()).Order("monitored_at asc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&readings).Error; err != nil {
		return nil, fmt.Errorf("query readings since %s: %w", since.Format(time.RFC3339), err)
	}
	return readings, nil
}

// Insert stores a new reading and fills in its ID. Timestamps are stored in
// UTC so text-backed drivers compare them correctly.
func (s *SensorStore) Insert(ctx context.Context, r *models.SensorReading) error {
	r.MonitoredAt = r.MonitoredAt.UTC()
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		return fmt.Errorf("insert reading: %w", err)
	}
	return nil
}

// InsertBatch stores readings in one statement.
func (s *SensorStore) InsertBatch(ctx context.Context, rs []models.SensorReading) error {
	if len(rs) == 0 {
		return nil
	}
	for i := range rs {
		rs[i].MonitoredAt = rs[i].MonitoredAt.UTC()
	}
	if err := s.db.WithContext(ctx).Create(&rs).Error; err != nil {
		return fmt.Errorf("insert %d readings: %w", len(rs), err)
	}
	return nil
}

// Ping checks that the database answers.
func (s *SensorStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
