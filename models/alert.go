package models

// Level grades how far a measurement sits from its optimal band.
type Level string

const (
	LevelGood     Level = "good"
	LevelWarning  Level = "warning"
	LevelCritical Level = "critical"
)

// Alert describes one measurement outside its optimal band.
type Alert struct {
	Field string  `json:"field"`
	Value float64 `json:"value"`
	Level Level   `json:"level"`
}
