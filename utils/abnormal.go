package utils

import "smartagro/models"

// Band is the inclusive optimal range of a measurement.
type Band struct {
	Min, Max float64
}

// Optimal bands used by the dashboard cards.
var (
	TemperatureBand  = Band{Min: 20, Max: 28}
	HumidityBand     = Band{Min: 60, Max: 80}
	SoilMoistureBand = Band{Min: 40, Max: 70}
)

// criticalMargin is how far outside a band a value must be to be critical.
const criticalMargin = 5

// Classify grades value against band.
func Classify(value float64, band Band) models.Level {
	if value >= band.Min && value <= band.Max {
		return models.LevelGood
	}
	if value < band.Min-criticalMargin || value > band.Max+criticalMargin {
		return models.LevelCritical
	}
	return models.LevelWarning
}

// CheckAbnormality returns one alert per measurement outside its band,
// plus a critical alert when pests were detected.
func CheckAbnormality(r models.SensorReading) []models.Alert {
	var alerts []models.Alert
	check := func(field string, value float64, band Band) {
		if level := Classify(value, band); level != models.LevelGood {
			alerts = append(alerts, models.Alert{Field: field, Value: value, Level: level})
		}
	}
	check("temperature", r.Temperature, TemperatureBand)
	check("humidity", r.Humidity, HumidityBand)
	check("soil_moisture", r.SoilMoisture, SoilMoistureBand)
	if r.PestDetected != nil && *r.PestDetected {
		alerts = append(alerts, models.Alert{Field: "pest_detected", Value: 1, Level: models.LevelCritical})
	}
	return alerts
}

// IsAbnormal reports whether any alert fires for r.
func IsAbnormal(r models.SensorReading) bool {
	return len(CheckAbnormality(r)) > 0
}
