package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/mcbench/packages/analysis"
	"github.com/abdul-hamid-achik/mcbench/packages/export/metrics"
)

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

var summaryCmd = &cobra.Command{
	Use:   "summary [run-dir|csv]",
	Short: "Summarize a benchmark run",
	Long: `Print mean, standard deviation and percentiles for every column of a run.

Without an argument the latest run under $BENCHMARK_RESULTS_DIR
(default <base-dir>/benchmark_results) is used.

Examples:
  mcbench summary
  mcbench summary /app/benchmark_results/run_20251024_134507
  mcbench summary --format json --output-file summary.json
  mcbench summary --format prometheus --output-file /var/lib/node_exporter/mcbench.prom
  mcbench summary --format datadog --datadog-tags env:staging
  mcbench summary --watch`,
	Args: cobra.MaximumNArgs(1),
	RunE: summaryCommand,
}

var (
	formatFlag        string
	outputFileFlag    string
	watchFlag         bool
	metricsPortFlag   int
	datadogAPIKeyFlag string
	datadogSiteFlag   string
	datadogTagsFlag   string
)

func init() {
	summaryCmd.Flags().StringVarP(&formatFlag, "format", "o", getEnvString("MCBENCH_FORMAT", "console"), "Output format: console, json, prometheus, datadog (env: MCBENCH_FORMAT)")
	summaryCmd.Flags().StringVar(&outputFileFlag, "output-file", "", "Write output to file (default: stdout)")
	summaryCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Re-summarize whenever the CSV changes")
	summaryCmd.Flags().IntVar(&metricsPortFlag, "metrics-port", 0, "With --format prometheus, also serve /metrics on this port")
	summaryCmd.Flags().StringVar(&datadogAPIKeyFlag, "datadog-api-key", "", "DataDog API key (env: DD_API_KEY)")
	summaryCmd.Flags().StringVar(&datadogSiteFlag, "datadog-site", "datadoghq.com", "DataDog site")
	summaryCmd.Flags().StringVar(&datadogTagsFlag, "datadog-tags", "", "Comma-separated DataDog tags")
}

func summaryCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd, nil)
	if err != nil {
		return err
	}

	target := resultsRoot(cfg)
	if len(args) == 1 {
		target = args[0]
	}

	csvPath, err := analysis.ResolveCSV(target)
	if err != nil {
		return withExitCode(ExitUsageError, fmt.Errorf("no results found: %w", err))
	}

	outFile, err := openOutput(outputFileFlag)
	if err != nil {
		return err
	}
	var out io.Writer = cmd.OutOrStdout()
	if outFile != nil {
		defer outFile.Close()
		out = outFile
	}

	exporter, err := newSummaryExporter(out, cfg.GetNoColor())
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}
	defer exporter.Close()

	summarize := func() error {
		records, err := analysis.LoadCSV(csvPath)
		if err != nil {
			return err
		}
		return exporter.Export(analysis.Summarize(runLabel(csvPath), records))
	}

	if err := summarize(); err != nil {
		return err
	}

	if !watchFlag {
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return watchFile(ctx, cmd, csvPath, summarize)
}

// runLabel names a run after its directory
func runLabel(csvPath string) string {
	return filepath.Base(filepath.Dir(csvPath))
}

// consoleExporter adapts the analysis reporter to the Exporter interface
type consoleExporter struct {
	reporter *analysis.Reporter
}

func (c *consoleExporter) Export(s *analysis.Summary) error {
	c.reporter.Summary(s)
	return nil
}

func (c *consoleExporter) Close() error { return nil }

func newSummaryExporter(out io.Writer, noColor bool) (metrics.Exporter, error) {
	switch strings.ToLower(formatFlag) {
	case "console":
		return &consoleExporter{reporter: analysis.NewReporter(analysis.WithWriter(out), analysis.WithNoColor(noColor))}, nil
	case "json":
		return metrics.NewJSONExporter(metrics.WithJSONWriter(out)), nil
	case "prometheus":
		opts := []metrics.PrometheusOption{metrics.WithPrometheusWriter(out)}
		if metricsPortFlag > 0 {
			opts = append(opts, metrics.WithPrometheusHTTP(metricsPortFlag))
		}
		return metrics.NewPrometheusExporter(opts...), nil
	case "datadog":
		opts := []metrics.DataDogOption{metrics.WithDataDogSite(datadogSiteFlag)}
		if datadogAPIKeyFlag != "" {
			opts = append(opts, metrics.WithDataDogAPIKey(datadogAPIKeyFlag))
		}
		if datadogTagsFlag != "" {
			opts = append(opts, metrics.WithDataDogTags(strings.Split(datadogTagsFlag, ",")))
		}
		return metrics.NewCollector(
			metrics.NewDataDogExporter(opts...),
			&consoleExporter{reporter: analysis.NewReporter(analysis.WithWriter(out), analysis.WithNoColor(true))},
		), nil
	default:
		return nil, fmt.Errorf("unknown format %q (want console, json, prometheus or datadog)", formatFlag)
	}
}

// watchFile calls onChange, debounced, whenever path is written
func watchFile(ctx context.Context, cmd *cobra.Command, path string, onChange func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s for changes... (press Ctrl+C to stop)\n", path)

	// onChange runs on this goroutine, so calls never overlap and none is
	// in flight once watchFile returns.
	var debounce <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			debounce = time.After(WatchDebounceDelay)

		case <-debounce:
			debounce = nil
			if err := onChange(); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "watcher error: %v\n", err)
		}
	}
}
