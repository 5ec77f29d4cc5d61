package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"smartagro/models"
)

// WriteCSV writes readings with a header row.
func WriteCSV(w io.Writer, readings []models.SensorReading) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"monitored_at", "temperature", "humidity", "soil_moisture", "pest_detected"}); err != nil {
		return err
	}
	for _, r := range readings {
		pest := ""
		if r.PestDetected != nil {
			pest = strconv.FormatBool(*r.PestDetected)
		}
		row := []string{
			r.MonitoredAt.Format(time.RFC3339),
			fmt.Sprintf("%.2f", r.Temperature),
			fmt.Sprintf("%.2f", r.Humidity),
			fmt.Sprintf("%.2f", r.SoilMoisture),
			pest,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
