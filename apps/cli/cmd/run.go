package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abdul-hamid-achik/mcbench/packages/bench"
	"github.com/abdul-hamid-achik/mcbench/packages/core/config"
	"github.com/abdul-hamid-achik/mcbench/packages/core/env"
	"github.com/abdul-hamid-achik/mcbench/packages/http"
	"github.com/abdul-hamid-achik/mcbench/packages/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the model card benchmark",
	Long: `Send 100 sequential GET requests to the model card endpoint and write one
CSV row per request to <base-dir>/benchmark_results/run_YYYYMMDD_HHMMSS/get_modelcard.csv.

The request count and the endpoint are fixed.

Examples:
  mcbench run
  mcbench run --base-dir ./out
  mcbench run --rate 5 --db sqlite://history.db
  mcbench run --schema modelcard.schema.json --env-file .env`,
	Args: cobra.NoArgs,
	RunE: runCommand,
}

var (
	baseDirFlag  string
	rateFlag     float64
	dbFlag       string
	schemaFlag   string
	proxyFlag    string
	insecureFlag bool
	tempDirFlag  string
)

func init() {
	runCmd.Flags().StringVar(&baseDirFlag, "base-dir", "", "Directory that receives benchmark_results/ (default /app) (env: MCBENCH_BASE_DIR)")
	runCmd.Flags().Float64VarP(&rateFlag, "rate", "r", 0, "Maximum requests per second, 0 for back-to-back (env: MCBENCH_RATE)")
	runCmd.Flags().StringVar(&dbFlag, "db", "", "Also store the run in a SQLite history, e.g. sqlite://history.db (env: MCBENCH_DB)")
	runCmd.Flags().StringVar(&schemaFlag, "schema", "", "JSON schema every response body is checked against (env: MCBENCH_SCHEMA)")
	runCmd.Flags().StringVar(&proxyFlag, "proxy", "", "Proxy URL for HTTP requests (env: MCBENCH_PROXY)")
	runCmd.Flags().BoolVarP(&insecureFlag, "insecure", "k", false, "Disable SSL certificate validation (env: MCBENCH_INSECURE)")
	runCmd.Flags().StringVar(&tempDirFlag, "temp-dir", "", "Directory for per-request response buffers")
}

func runCommand(cmd *cobra.Command, args []string) error {
	overrides := &config.Config{
		BaseDir:  baseDirFlag,
		Rate:     rateFlag,
		Database: dbFlag,
		Schema:   schemaFlag,
		Proxy:    proxyFlag,
	}
	if insecureFlag {
		overrides.ValidateSSL = config.BoolPtr(false)
	}

	cfg, err := loadSettings(cmd, overrides)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	benchCfg := bench.DefaultConfig()
	benchCfg.BaseDir = cfg.BaseDir
	benchCfg.Rate = cfg.Rate
	benchCfg.TempDir = tempDirFlag

	if err := http.ValidateURL(benchCfg.URL); err != nil {
		return withExitCode(ExitConfigError, err)
	}

	expander := env.NewExpander(nil)
	expander.SetWarnFunc(logger.Sugar().Warnf)

	clientOpts := []http.ClientOption{
		http.WithFollowRedirects(cfg.GetFollowRedirects()),
		http.WithMaxRedirects(cfg.MaxRedirects),
		http.WithValidateSSL(cfg.GetValidateSSL()),
		http.WithDefaultHeaders(expander.ExpandAll(cfg.Headers)),
	}
	if cfg.Timeout > 0 {
		clientOpts = append(clientOpts, http.WithTimeout(cfg.TimeoutDuration()))
	}
	if cfg.Proxy != "" {
		clientOpts = append(clientOpts, http.WithProxy(cfg.Proxy))
	}

	runnerOpts := []bench.RunnerOption{
		bench.WithFetcher(http.NewClient(clientOpts...)),
		bench.WithReporter(bench.NewReporter(
			bench.WithWriter(cmd.OutOrStdout()),
			bench.WithNoColor(cfg.GetNoColor()),
		)),
		bench.WithLogger(logger),
	}

	if cfg.Schema != "" {
		inspector, err := bench.NewInspector(cfg.Schema)
		if err != nil {
			return withExitCode(ExitConfigError, err)
		}
		runnerOpts = append(runnerOpts, bench.WithInspector(inspector))
	}

	if cfg.Database != "" {
		history, err := store.Open(cfg.Database)
		if err != nil {
			return withExitCode(ExitConfigError, fmt.Errorf("opening history: %w", err))
		}
		defer history.Close()
		runnerOpts = append(runnerOpts, bench.WithHistory(history))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := bench.NewRunner(benchCfg, runnerOpts...).Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			written := 0
			if result != nil {
				written = len(result.Records)
				logger.Warn("benchmark interrupted", zap.Int("recorded", written), zap.String("results", result.CSVPath))
			}
			return withExitCode(ExitInterrupted, fmt.Errorf("interrupted after %d requests", written))
		}
		return withExitCode(ExitRunFailure, err)
	}

	if result.Failed > 0 {
		logger.Warn("some requests failed", zap.Int("failed", result.Failed), zap.Int("total", len(result.Records)))
	}
	return nil
}
