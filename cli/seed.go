package cli

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"smartagro/models"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	seedCount    int
	seedInterval time.Duration
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert sample readings for development",
	Long: `Insert --count readings spaced --interval apart, ending now, with values
drifting along smooth curves around typical field conditions.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

// sampleReadings returns n readings ending at end, oldest first.
func sampleReadings(n int, interval time.Duration, end time.Time, rng *rand.Rand) []models.SensorReading {
	round := func(v float64) float64 { return math.Round(v*10) / 10 }
	noise := func(spread float64) float64 { return (rng.Float64() - 0.5) * spread }

	out := make([]models.SensorReading, 0, n)
	for i := 0; i < n; i++ {
		x := float64(i)
		pest := rng.Float64() < 0.1
		out = append(out, models.SensorReading{
			Temperature:  round(25 + math.Sin(x*0.1)*5 + noise(2)),
			Humidity:     round(65 + math.Sin(x*0.15)*15 + noise(5)),
			SoilMoisture: round(50 + math.Sin(x*0.2)*20 + noise(5)),
			PestDetected: &pest,
			MonitoredAt:  end.Add(-time.Duration(n-1-i) * interval).UTC(),
		})
	}
	return out
}

func runSeed(cmd *cobra.Command, args []string) error {
	if seedCount <= 0 {
		return fmt.Errorf("count must be positive, got %d", seedCount)
	}
	st, closeFn, err := openStore(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer closeFn()

	now := time.Now()
	rng := rand.New(rand.NewPCG(uint64(now.UnixNano()), 0))
	readings := sampleReadings(seedCount, seedInterval, now, rng)
	if err := st.InsertBatch(cmd.Context(), readings); err != nil {
		return err
	}
	logger.Info("seeded readings", zap.Int("count", len(readings)), zap.Duration("interval", seedInterval))
	fmt.Fprintf(cmd.OutOrStdout(), "Inserted %d readings.\n", len(readings))
	return nil
}

func init() {
	seedCmd.Flags().IntVar(&seedCount, "count", 48, "number of readings")
	seedCmd.Flags().DurationVar(&seedInterval, "interval", 30*time.Minute, "time between readings")
	rootCmd.AddCommand(seedCmd)
}
