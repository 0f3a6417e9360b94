package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/mcbench/packages/analysis"
	"github.com/abdul-hamid-achik/mcbench/packages/core/config"
	"github.com/abdul-hamid-achik/mcbench/packages/store"
)

var (
	historyDBFlag     string
	historyLimitFlag  int
	historyFormatFlag string
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List runs stored in the SQLite history",
	Long: `List runs recorded with 'mcbench run --db'. With a run id, summarize that
run from the stored records.

Examples:
  mcbench history --db sqlite://history.db
  mcbench history --db sqlite://history.db --limit 5 --format json
  mcbench history 6f1c0d9e-... --db sqlite://history.db`,
	Args: cobra.MaximumNArgs(1),
	RunE: historyCommand,
}

func init() {
	historyCmd.Flags().StringVar(&historyDBFlag, "db", "", "SQLite history, e.g. sqlite://history.db (env: MCBENCH_DB)")
	historyCmd.Flags().IntVarP(&historyLimitFlag, "limit", "n", 20, "Show at most this many runs, 0 for all")
	historyCmd.Flags().StringVarP(&historyFormatFlag, "format", "o", "console", "Output format: console, json")
}

func historyCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd, &config.Config{Database: historyDBFlag})
	if err != nil {
		return err
	}
	if cfg.Database == "" {
		return withExitCode(ExitUsageError, fmt.Errorf("no history database configured (use --db or MCBENCH_DB)"))
	}

	s, err := store.Open(cfg.Database)
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}
	defer s.Close()

	ctx := context.Background()
	asJSON := strings.ToLower(historyFormatFlag) == "json"
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		records, err := s.Records(ctx, args[0])
		if errors.Is(err, store.ErrRunNotFound) {
			return withExitCode(ExitUsageError, err)
		}
		if err != nil {
			return err
		}
		summary := analysis.Summarize(args[0], records)
		if asJSON {
			encoder := json.NewEncoder(out)
			encoder.SetIndent("", "  ")
			return encoder.Encode(summary)
		}
		analysis.NewReporter(analysis.WithWriter(out), analysis.WithNoColor(cfg.GetNoColor())).Summary(summary)
		return nil
	}

	runs, err := s.ListRuns(ctx, historyLimitFlag)
	if err != nil {
		return err
	}

	if asJSON {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded.")
		return nil
	}

	bold := color.New(color.Bold)
	if cfg.GetNoColor() {
		bold.DisableColor()
	}
	bold.Fprintf(out, "%-36s  %-19s  %8s  %s\n", "ID", "STARTED", "REQUESTS", "RESULTS")
	for _, run := range runs {
		fmt.Fprintf(out, "%-36s  %-19s  %8d  %s\n",
			run.ID, run.StartedAt.Local().Format("2006-01-02 15:04:05"), run.Requests, run.CSVPath)
	}
	return nil
}
