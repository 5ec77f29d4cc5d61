package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"smartagro/chat"
	"smartagro/config"
	"smartagro/controllers"
	"smartagro/store"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API, realtime stream and chat proxy",
	Long: `Serve the sensor REST API, the /ws realtime stream and the /ai-chat proxy.

In notify realtime mode a postgres trigger announces every soil_data change
and the server forwards it to websocket subscribers, so rows written by other
ingestion paths are streamed too.`,
	RunE: runServe,
}

// newProxy wires the chat proxy from configuration.
func newProxy(readings store.Querier) *chat.Proxy {
	hf := &chat.HuggingFace{
		APIKey:    cfg.HuggingFaceKey,
		BaseURL:   cfg.HFBaseURL,
		TextModel: cfg.HFTextModel,
		Client:    &http.Client{Timeout: cfg.ProviderTimeout},
	}
	pc := chat.ProxyConfig{
		Readings: readings,
		Generators: map[string]chat.TextGenerator{
			chat.ModeHuggingFace: hf,
			chat.ModeGemini:      &chat.Gemini{APIKey: cfg.GeminiKey, Model: cfg.GeminiModel},
		},
		DefaultMode: chat.ModeHuggingFace,
		Timeout:     cfg.ProviderTimeout,
		Log:         logger.Named("chat"),
	}
	if cfg.TTSEnabled {
		pc.Speaker = hf
	}
	return chat.NewProxy(pc)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	db, err := config.OpenDatabase(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	st := store.NewSensorStore(db)
	hub := store.NewHub(logger.Named("realtime"))
	defer hub.Close()

	mode := cfg.RealtimeMode
	if mode == config.RealtimeNotify && config.IsSQLite(cfg.DatabaseURL) {
		logger.Warn("notify realtime mode needs postgres, using local mode")
		mode = config.RealtimeLocal
	}
	if mode == config.RealtimeNotify {
		if err := store.InstallNotifyTrigger(db); err != nil {
			return err
		}
	}

	gin.SetMode(gin.ReleaseMode)
	router := controllers.NewRouter(&controllers.Server{
		Store:        st,
		Hub:          hub,
		Proxy:        newProxy(st),
		Log:          logger.Named("http"),
		IngestSecret: []byte(cfg.IngestSecret),
		RealtimeMode: mode,
	})
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", zap.String("addr", srv.Addr), zap.String("realtime", mode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		hub.Close()
		return srv.Shutdown(shutdownCtx)
	})
	if mode == config.RealtimeNotify {
		listener := &store.Listener{DSN: cfg.DatabaseURL, Hub: hub, Log: logger.Named("listener")}
		g.Go(func() error { return listener.Run(gctx) })
	}

	err = g.Wait()
	logger.Info("server stopped")
	return err
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
