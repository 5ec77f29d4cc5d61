package controllers

import (
	"net/http"

	"smartagro/chat"
	"smartagro/config"
	"smartagro/middlewares"
	"smartagro/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server holds the handles every route needs.
type Server struct {
	Store        *store.SensorStore
	Hub          *store.Hub
	Proxy        *chat.Proxy
	Log          *zap.Logger
	IngestSecret []byte
	// RealtimeMode decides whether ingestion publishes to the hub itself.
	RealtimeMode string
}

// NewRouter wires the public API.
func NewRouter(s *Server) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middlewares.RequestLogger(s.Log))
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Accept", "Authorization", "Content-Type", "Content-Length",
			"X-Client-Info", "Apikey", "X-Requested-With",
		},
	}))

	r.POST("/ai-chat", s.Chat)
	r.OPTIONS("/ai-chat", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.GET("/health", s.Health)
	r.GET("/ws", s.HandleWebSocket)
	r.GET("/sensor-data/latest", s.GetLatest)
	r.GET("/sensor-data", s.GetHistory)
	r.GET("/download-csv", s.DownloadCSV)
	r.POST("/sensor-data", middlewares.DeviceAuth(s.IngestSecret), s.ReceiveData)

	return r
}

func (s *Server) publishesLocally() bool {
	return s.RealtimeMode != config.RealtimeNotify
}
