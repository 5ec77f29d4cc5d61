package controllers

import (
	"net/http"
	"sync"
	"time"

	"smartagro/models"
	"smartagro/store"
	"smartagro/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeWait = 10 * time.Second

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// wsClient serialises writes to one websocket connection.
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (w *wsClient) send(msg models.StreamMessage) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return w.conn.WriteJSON(msg)
}

// HandleWebSocket streams sensor row changes and subscription status to the
// client until it disconnects.
func (s *Server) HandleWebSocket(c *gin.Context) {
	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	client := &wsClient{conn: conn}

	sub := s.Hub.Subscribe(models.SubscriptionFilter{Table: store.DefaultTable},
		func(ev models.ChangeEvent) {
			msg := models.StreamMessage{Type: "change", Event: &ev}
			if ev.New != nil {
				msg.Alerts = utils.CheckAbnormality(*ev.New)
			}
			if err := client.send(msg); err != nil {
				s.Log.Debug("websocket write failed", zap.Error(err))
				conn.Close()
			}
		},
		func(status models.SubscriptionStatus, err error) {
			if err != nil {
				s.Log.Warn("realtime status", zap.String("status", string(status)), zap.Error(err))
			}
			if werr := client.send(models.StreamMessage{Type: "status", Status: status}); werr != nil {
				conn.Close()
			}
		},
	)
	defer func() {
		sub.Cancel()
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
