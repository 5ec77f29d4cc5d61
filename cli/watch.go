package cli

import (
	"fmt"
	"time"

	"smartagro/models"
	"smartagro/sensors"
	"smartagro/utils"

	"github.com/spf13/cobra"
)

var watchDirect bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the latest sensor reading in real time",
	Long: `Print the latest reading and every change after it until interrupted.

By default the server's REST API and /ws stream are used. With --direct the
database in DATABASE_URL is queried and, for postgres, followed through
LISTEN/NOTIFY.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	backend, closeFn, err := openBackend(ctx, watchDirect)
	if err != nil {
		return err
	}
	defer closeFn()

	out := cmd.OutOrStdout()
	client := sensors.NewSyncClient(backend, logger.Named("sync"), func(s sensors.Snapshot) {
		fmt.Fprintln(out, formatSnapshot(s))
	})
	client.Start(ctx)
	defer client.Stop()

	<-ctx.Done()
	return nil
}

func formatSnapshot(s sensors.Snapshot) string {
	state := "disconnected"
	if s.State.Connected {
		state = "connected"
	}
	if s.State.LastError != "" {
		state += " (" + s.State.LastError + ")"
	}

	switch {
	case s.Loading:
		return fmt.Sprintf("[%s] loading...", state)
	case s.Error != "":
		return fmt.Sprintf("[%s] error: %s", state, s.Error)
	case s.Reading == nil:
		return fmt.Sprintf("[%s] no readings yet", state)
	}
	return fmt.Sprintf("[%s] %s", state, formatReading(*s.Reading))
}

func formatReading(r models.SensorReading) string {
	line := fmt.Sprintf("%s  temp %.1f°C  humidity %.1f%%  soil %.1f%%",
		r.MonitoredAt.Local().Format(time.DateTime), r.Temperature, r.Humidity, r.SoilMoisture)
	if r.HasPestFlag() {
		line += fmt.Sprintf("  pests %t", *r.PestDetected)
	}
	for _, a := range utils.CheckAbnormality(r) {
		line += fmt.Sprintf("  !%s=%s", a.Field, a.Level)
	}
	return line
}

func init() {
	watchCmd.Flags().BoolVar(&watchDirect, "direct", false, "read the database in DATABASE_URL instead of the server")
	rootCmd.AddCommand(watchCmd)
}
