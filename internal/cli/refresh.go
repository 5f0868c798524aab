package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/law-makers/encuestas/internal/pipeline"
	"github.com/law-makers/encuestas/internal/ui"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh <candidates|parties|all>",
	Short: "Replace destination tables with the current page snapshot",
	Long: `Fetches the source page, extracts the requested table and replaces the
contents of its destination table in a single transaction.

"all" refreshes both tables concurrently; a failure in one does not stop
the other.`,
	Example: `  # Refresh the candidate table
  encuestas refresh candidates

  # Refresh both tables against a local database
  encuestas refresh all --db-host localhost --db-login airflow`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"candidates", "parties", "all"},
	RunE:      runRefresh,
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}

func runRefresh(cmd *cobra.Command, args []string) error {
	a := GetApp(cmd)
	attachProgress(a)
	p := a.Pipeline()

	if args[0] == "all" {
		results, err := p.RefreshAll(cmd.Context())
		printResults(cmd.OutOrStdout(), a.Config.Quiet, results...)
		return err
	}

	v, err := pipeline.ParseVariant(args[0])
	if err != nil {
		return err
	}
	res, err := p.Refresh(cmd.Context(), v)
	if err != nil {
		return err
	}
	printResults(cmd.OutOrStdout(), a.Config.Quiet, res)
	return nil
}

func printResults(w io.Writer, quiet bool, results ...*pipeline.Result) {
	if quiet {
		return
	}
	for _, r := range results {
		fmt.Fprintln(w, ui.Success(fmt.Sprintf("%s: %d rows loaded into %s", r.Variant, r.Rows, ui.Bold(r.Table))),
			ui.Info(fmt.Sprintf("(run %s, %s)", r.RunID, r.Elapsed.Round(time.Millisecond))))
	}
}
