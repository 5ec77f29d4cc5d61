// Package cli holds the smartagro commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"smartagro/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg    config.Config
	logger = zap.NewNop()

	serverURL string
	logLevel  string
)

var rootCmd = &cobra.Command{
	Use:   "smartagro",
	Short: "Farm sensor backend and chat assistant",
	Long: `smartagro serves the latest farm sensor readings, streams row changes in
real time, and answers questions through an LLM grounded on the latest reading.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		if serverURL != "" {
			cfg.ServerURL = serverURL
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		l, err := config.NewLogger(cfg)
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "smartagro server URL (default $SERVER_URL)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (default $LOG_LEVEL)")
}
