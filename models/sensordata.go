package models

import "time"

// SensorReading is one row of the soil_data table. Rows are ordered by
// MonitoredAt, which is not guaranteed to follow insertion order.
type SensorReading struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Temperature  float64   `json:"temperature"`
	Humidity     float64   `json:"humidity"`
	SoilMoisture float64   `json:"soil_moisture"`
	PestDetected *bool     `json:"pest_detected,omitempty"`
	MonitoredAt  time.Time `json:"monitored_at" gorm:"index;not null"`
}

// TableName keeps the table name stable regardless of gorm's naming strategy.
func (SensorReading) TableName() string {
	return "soil_data"
}

// HasPestFlag reports whether the row carries a pest detection value.
func (r SensorReading) HasPestFlag() bool {
	return r.PestDetected != nil
}
