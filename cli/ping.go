package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pingDirect bool

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Test the connection to the sensor backend",
	Long: `Run the latest-reading query as a connection test and print the result.

Exits non-zero when the backend cannot be reached.`,
	Args: cobra.NoArgs,
	RunE: runPing,
}

func runPing(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	backend, closeFn, err := openBackend(ctx, pingDirect)
	if err != nil {
		return err
	}
	defer closeFn()

	reading, err := backend.Latest(ctx)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Connection successful")
	if reading == nil {
		fmt.Fprintln(out, "No readings stored yet.")
		return nil
	}
	fmt.Fprintln(out, formatReading(*reading))
	return nil
}

func init() {
	pingCmd.Flags().BoolVar(&pingDirect, "direct", false, "test the database in DATABASE_URL instead of the server")
	rootCmd.AddCommand(pingCmd)
}
