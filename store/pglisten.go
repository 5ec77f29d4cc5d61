package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"smartagro/models"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NotifyChannel is the postgres channel the soil_data trigger publishes on.
const NotifyChannel = "soil_data_changes"

const notifyTriggerSQL = `
CREATE OR REPLACE FUNCTION soil_data_notify() RETURNS trigger AS $$
BEGIN
	PERFORM pg_notify('` + NotifyChannel + `', json_build_object(
		'eventType', TG_OP,
		'new', CASE WHEN TG_OP = 'DELETE' THEN NULL ELSE row_to_json(NEW) END,
		'old', CASE WHEN TG_OP = 'INSERT' THEN NULL ELSE row_to_json(OLD) END
	)::text);
	RETURN NULL;
END;
$$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS soil_data_notify ON soil_data;
CREATE TRIGGER soil_data_notify
	AFTER INSERT OR UPDATE OR DELETE ON soil_data
	FOR EACH ROW EXECUTE FUNCTION soil_data_notify();
`

// InstallNotifyTrigger makes postgres announce every soil_data row change.
func InstallNotifyTrigger(db *gorm.DB) error {
	if err := db.Exec(notifyTriggerSQL).Error; err != nil {
		return fmt.Errorf("install notify trigger: %w", err)
	}
	return nil
}

// DecodeNotification parses a trigger payload into a change event.
func DecodeNotification(payload string) (models.ChangeEvent, error) {
	var ev models.ChangeEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return ev, fmt.Errorf("decode notification: %w", err)
	}
	switch ev.Kind {
	case models.EventInsert, models.EventUpdate, models.EventDelete:
	default:
		return ev, fmt.Errorf("decode notification: unknown event type %q", ev.Kind)
	}
	return ev, nil
}

// Listener forwards postgres notifications into a Hub so rows written by any
// process reach realtime subscribers.
type Listener struct {
	DSN        string
	Hub        *Hub
	Log        *zap.Logger
	RetryDelay time.Duration
}

// Run listens until ctx is cancelled, reconnecting after failures. Each
// failure is broadcast to subscribers as CHANNEL_ERROR, each reconnect as
// SUBSCRIBED.
func (l *Listener) Run(ctx context.Context) error {
	delay := l.RetryDelay
	if delay <= 0 {
		delay = 5 * time.Second
	}
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return nil
		}
		l.Log.Warn("postgres listener stopped, retrying", zap.Error(err), zap.Duration("delay", delay))
		l.Hub.Broadcast(models.StatusChannelError, err)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, l.DSN)
	if err != nil {
		return fmt.Errorf("connect listener: %w", err)
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{NotifyChannel}.Sanitize()); err != nil {
		return fmt.Errorf("listen %s: %w", NotifyChannel, err)
	}
	l.Log.Info("listening for sensor changes", zap.String("channel", NotifyChannel))
	l.Hub.Broadcast(models.StatusSubscribed, nil)

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait for notification: %w", err)
		}
		ev, err := DecodeNotification(n.Payload)
		if err != nil {
			l.Log.Warn("skipping notification", zap.Error(err))
			continue
		}
		l.Hub.Publish(ev)
	}
}
