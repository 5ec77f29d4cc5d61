package cli

import (
	"fmt"
	"time"

	"smartagro/middlewares"

	"github.com/spf13/cobra"
)

var (
	tokenDevice string
	tokenTTL    time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an ingestion token for a sensor device",
	Long: `Sign a token with INGEST_SECRET that lets a device POST /sensor-data.

Example:
  smartagro token --device esp32-field-1 --ttl 8760h`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if tokenDevice == "" {
			return fmt.Errorf("--device is required")
		}
		token, err := middlewares.IssueDeviceToken([]byte(cfg.IngestSecret), tokenDevice, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenDevice, "device", "", "device identifier")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 365*24*time.Hour, "token lifetime")
	rootCmd.AddCommand(tokenCmd)
}
