package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/law-makers/encuestas/internal/pipeline"
	"github.com/law-makers/encuestas/internal/retry"
)

var (
	runAttempts   int
	runRetryDelay string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Probe the source, then refresh both tables",
	Long: `Runs the daily job: availability check, then both refreshes in parallel.
Transient failures (network errors, 5xx and 429 responses, lost database
connections) retry the whole job after a fixed delay.`,
	Example: `  # Daily job with the default single retry after five minutes
  encuestas run

  # No retries
  encuestas run --attempts 1`,
	Args: cobra.NoArgs,
	RunE: runJob,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntVar(&runAttempts, "attempts", 0, "Total attempts (default from config)")
	runCmd.Flags().StringVar(&runRetryDelay, "retry-delay", "", "Delay between attempts (default from config)")
}

func runJob(cmd *cobra.Command, args []string) error {
	a := GetApp(cmd)
	ctx := cmd.Context()

	cfg, err := retryConfig(a.Config.Retry.Attempts, a.Config.Retry.Delay, runAttempts, runRetryDelay)
	if err != nil {
		return err
	}

	attachProgress(a)
	p := a.Pipeline()

	var results []*pipeline.Result
	err = retry.WithRetry(ctx, cfg, func(attempt int) error {
		zerolog.Ctx(ctx).Info().Int("attempt", attempt).Msg("Starting job")

		if err := a.Probe(ctx); err != nil {
			return err
		}
		res, err := p.RefreshAll(ctx)
		results = res
		return err
	})
	printResults(cmd.OutOrStdout(), a.Config.Quiet, results...)
	return err
}
