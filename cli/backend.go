package cli

import (
	"context"
	"net/http"

	"smartagro/config"
	"smartagro/store"

	"go.uber.org/zap"
)

// openStore opens the database at dsn without any realtime machinery. The
// returned func closes the connection pool.
func openStore(dsn string) (*store.SensorStore, func(), error) {
	db, err := config.OpenDatabase(dsn)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	return store.NewSensorStore(db), closeFn, nil
}

// openDirect opens the database named by DATABASE_URL. For postgres it also
// follows row changes through LISTEN/NOTIFY, which needs the trigger the
// server installs in notify mode.
func openDirect(ctx context.Context) (*store.Local, func(), error) {
	st, closeStore, err := openStore(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	hub := store.NewHub(logger)

	listenCtx, cancel := context.WithCancel(ctx)
	if !config.IsSQLite(cfg.DatabaseURL) {
		l := &store.Listener{DSN: cfg.DatabaseURL, Hub: hub, Log: logger}
		go func() {
			if err := l.Run(listenCtx); err != nil {
				logger.Warn("listener exited", zap.Error(err))
			}
		}()
	}

	closeFn := func() {
		cancel()
		hub.Close()
		closeStore()
	}
	return store.NewLocal(st, hub), closeFn, nil
}

// openBackend returns the direct database backend when direct is set and the
// server's REST/websocket backend otherwise.
func openBackend(ctx context.Context, direct bool) (store.Backend, func(), error) {
	if direct {
		local, closeFn, err := openDirect(ctx)
		if err != nil {
			return nil, nil, err
		}
		return local, closeFn, nil
	}
	return store.NewRemote(cfg.ServerURL, &http.Client{Timeout: cfg.ProviderTimeout}, logger), func() {}, nil
}

// openQuerier is for one-shot reads: the database when DATABASE_URL is set,
// the server otherwise.
func openQuerier() (store.Querier, func(), error) {
	if cfg.DatabaseURL != "" {
		st, closeFn, err := openStore(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return st, closeFn, nil
	}
	return store.NewRemote(cfg.ServerURL, &http.Client{Timeout: cfg.ProviderTimeout}, logger), func() {}, nil
}
