package controllers

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"smartagro/middlewares"
	"smartagro/models"
	"smartagro/sensors"
	"smartagro/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ReceiveData stores a reading posted by an authenticated device.
func (s *Server) ReceiveData(c *gin.Context) {
	var data models.SensorReading
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
		return
	}
	data.ID = 0
	if data.MonitoredAt.IsZero() {
		data.MonitoredAt = time.Now().UTC()
	}

	if err := s.Store.Insert(c.Request.Context(), &data); err != nil {
		s.Log.Error("failed to store reading", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store reading"})
		return
	}

	alerts := utils.CheckAbnormality(data)
	if len(alerts) > 0 {
		s.Log.Warn("abnormal reading",
			zap.String("device", c.GetString(middlewares.DeviceIDKey)),
			zap.Uint("id", data.ID),
			zap.Any("alerts", alerts))
	}

	if s.publishesLocally() {
		row := data
		s.Hub.Publish(models.ChangeEvent{Kind: models.EventInsert, New: &row})
	}

	c.JSON(http.StatusOK, gin.H{"message": "Data received successfully", "data": data, "alerts": alerts})
}

// GetLatest returns the most recent reading, or null when there is none.
func (s *Server) GetLatest(c *gin.Context) {
	reading, err := s.Store.Latest(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": reading})
}

// historyWindow reads since/hours and limit from the query string.
func historyWindow(c *gin.Context) (time.Time, int, error) {
	limit := sensors.DefaultHistoryLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return time.Time{}, 0, fmt.Errorf("invalid limit %q", v)
		}
		if n > 0 {
			limit = n
		}
	}

	if v := c.Query("since"); v != "" {
		since, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return time.Time{}, 0, fmt.Errorf("invalid since %q", v)
		}
		return since, limit, nil
	}

	hours := float64(sensors.DefaultWindowHours)
	if v := c.Query("hours"); v != "" {
		h, err := strconv.ParseFloat(v, 64)
		if err != nil || h < 0 || math.IsNaN(h) || math.IsInf(h, 0) {
			return time.Time{}, 0, fmt.Errorf("invalid hours %q", v)
		}
		hours = sensors.ClampWindow(h)
	}
	return time.Now().Add(-time.Duration(hours * float64(time.Hour))), limit, nil
}

// GetHistory returns readings in a window, oldest first.
func (s *Server) GetHistory(c *gin.Context) {
	since, limit, err := historyWindow(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	readings, err := s.Store.Range(c.Request.Context(), since, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": readings})
}

// DownloadCSV sends a window of readings as a CSV file.
func (s *Server) DownloadCSV(c *gin.Context) {
	since, limit, err := historyWindow(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	readings, err := s.Store.Range(c.Request.Context(), since, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=sensor_data.csv")
	if err := utils.WriteCSV(c.Writer, readings); err != nil {
		s.Log.Error("failed to write CSV", zap.Error(err))
	}
}

// Health runs the same latest-row query the dashboard uses as a connection test.
func (s *Server) Health(c *gin.Context) {
	ctx := c.Request.Context()
	if err := s.Store.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": err.Error()})
		return
	}
	reading, err := s.Store.Latest(ctx)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": err.Error()})
		return
	}
	data := []models.SensorReading{}
	if reading != nil {
		data = append(data, *reading)
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "Connection successful",
		"data":        data,
		"subscribers": s.Hub.Subscribers(),
	})
}
