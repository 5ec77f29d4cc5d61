package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"smartagro/sensors"
	"smartagro/utils"

	"github.com/spf13/cobra"
)

var (
	historyHours  float64
	historyLimit  int
	historyCSV    bool
	historyDirect bool
)

var historyCmd = &cobra.Command{
	Use:     "history",
	Aliases: []string{"h"},
	Short:   "List readings from a recent time window",
	Long: `List readings monitored within the last --hours, oldest first.

Examples:
  smartagro history --hours 6
  smartagro history --limit 500 --csv > readings.csv`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	backend, closeFn, err := openBackend(ctx, historyDirect)
	if err != nil {
		return err
	}
	defer closeFn()

	client := sensors.NewHistoryClient(backend, logger.Named("history"))
	result := client.Fetch(ctx, historyHours, historyLimit)
	if result.Error != "" {
		return errors.New(result.Error)
	}

	out := cmd.OutOrStdout()
	if historyCSV {
		return utils.WriteCSV(out, result.Readings)
	}
	if len(result.Readings) == 0 {
		fmt.Fprintln(out, "No readings in this window.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MONITORED AT\tTEMP °C\tHUMIDITY %\tSOIL %\tPESTS\tALERTS")
	for _, r := range result.Readings {
		pests := "-"
		if r.HasPestFlag() {
			pests = fmt.Sprintf("%t", *r.PestDetected)
		}
		fmt.Fprintf(w, "%s\t%.1f\t%.1f\t%.1f\t%s\t%d\n",
			r.MonitoredAt.Local().Format("2006-01-02 15:04:05"),
			r.Temperature, r.Humidity, r.SoilMoisture, pests, len(utils.CheckAbnormality(r)))
	}
	return w.Flush()
}

func init() {
	historyCmd.Flags().Float64Var(&historyHours, "hours", sensors.DefaultWindowHours, "window size in hours")
	historyCmd.Flags().IntVar(&historyLimit, "limit", sensors.DefaultHistoryLimit, "maximum number of readings")
	historyCmd.Flags().BoolVar(&historyCSV, "csv", false, "write CSV instead of a table")
	historyCmd.Flags().BoolVar(&historyDirect, "direct", false, "read the database in DATABASE_URL instead of the server")
	rootCmd.AddCommand(historyCmd)
}
