package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/law-makers/encuestas/internal/ui"
	urlutil "github.com/law-makers/encuestas/internal/utils/url"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check that the source page is reachable",
	Long: `Issues a GET against the source URL and exits non-zero unless it answers
with a 2xx status. Schedulers can use it to gate a refresh.`,
	Args: cobra.NoArgs,
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
}

func runProbe(cmd *cobra.Command, args []string) error {
	a := GetApp(cmd)
	if err := a.Probe(cmd.Context()); err != nil {
		return err
	}
	if !a.Config.Quiet {
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("source available: "+urlutil.Redact(a.Config.Source.URL)))
	}
	return nil
}
