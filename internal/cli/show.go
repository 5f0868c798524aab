package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/law-makers/encuestas/internal/pipeline"
	"github.com/law-makers/encuestas/internal/ui"
	"github.com/law-makers/encuestas/internal/utils/output"
)

var (
	showOutput string
	showRaw    bool
)

var showCmd = &cobra.Command{
	Use:   "show <candidates|parties>",
	Short: "Print the current page snapshot without loading it",
	Long: `Fetches and extracts one table exactly as a refresh would, but prints the
records instead of writing them to the destination.

With --raw the anchored table is printed as served, converted to Markdown,
which helps when the page layout drifts from the configured columns.`,
	Example: `  # Inspect the candidate table
  encuestas show candidates

  # Export the party table
  encuestas show parties --output partidos.csv

  # See every column of the source table
  encuestas show parties --raw`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"candidates", "parties"},
	RunE:      runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().StringVarP(&showOutput, "output", "o", "", "File path to save output (supports .csv, .json, .md)")
	showCmd.Flags().BoolVar(&showRaw, "raw", false, "Print the source table as Markdown instead of extracted records")
}

func runShow(cmd *cobra.Command, args []string) error {
	a := GetApp(cmd)
	v, err := pipeline.ParseVariant(args[0])
	if err != nil {
		return err
	}
	p := a.Pipeline()
	out := cmd.OutOrStdout()

	if showRaw {
		tableHTML, err := p.SourceTable(cmd.Context(), v)
		if err != nil {
			return err
		}
		md, err := output.TableMarkdown(tableHTML)
		if err != nil {
			return fmt.Errorf("failed to convert table: %w", err)
		}
		fmt.Fprintln(out, md)
		return nil
	}

	snap, err := p.Preview(cmd.Context(), v)
	if err != nil {
		return err
	}

	if showOutput != "" {
		if err := output.Save(showOutput, snap.Headers, snap.Records); err != nil {
			return fmt.Errorf("failed to write %s: %w", showOutput, err)
		}
		if !a.Config.Quiet {
			fmt.Fprintln(out, ui.Success(fmt.Sprintf("Saved %d rows to %s", len(snap.Records), showOutput)))
		}
		return nil
	}

	output.RenderTable(out, snap.Headers, snap.Records)
	return nil
}
