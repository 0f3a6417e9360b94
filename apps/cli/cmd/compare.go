package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/mcbench/packages/analysis"
)

var compareFormatFlag string

var compareCmd = &cobra.Command{
	Use:   "compare <run-dir|csv> <run-dir|csv>...",
	Short: "Compare benchmark runs side by side",
	Long: `Compare response time and size across runs. The first run is the baseline;
later runs show their mean response time change relative to it.

Examples:
  mcbench compare /app/benchmark_results/run_20251024_134507 /app/benchmark_results/run_20251025_090000
  mcbench compare a.csv b.csv --format json`,
	Args: cobra.MinimumNArgs(2),
	RunE: compareCommand,
}

func init() {
	compareCmd.Flags().StringVarP(&compareFormatFlag, "format", "o", "console", "Output format: console, json")
}

func compareCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd, nil)
	if err != nil {
		return err
	}

	summaries := make([]*analysis.Summary, 0, len(args))
	for _, arg := range args {
		csvPath, err := analysis.ResolveCSV(arg)
		if err != nil {
			return withExitCode(ExitUsageError, fmt.Errorf("%s: %w", arg, err))
		}
		records, err := analysis.LoadCSV(csvPath)
		if err != nil {
			return fmt.Errorf("%s: %w", csvPath, err)
		}
		summaries = append(summaries, analysis.Summarize(runLabel(csvPath), records))
	}

	reporter := analysis.NewReporter(
		analysis.WithWriter(cmd.OutOrStdout()),
		analysis.WithNoColor(cfg.GetNoColor()),
	)
	rows := analysis.Compare(summaries)

	switch strings.ToLower(compareFormatFlag) {
	case "json":
		return reporter.JSONComparison(rows)
	case "console":
		reporter.Comparison(rows)
		return nil
	default:
		return withExitCode(ExitUsageError, fmt.Errorf("unknown format %q (want console or json)", compareFormatFlag))
	}
}
