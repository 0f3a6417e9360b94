package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abdul-hamid-achik/mcbench/packages/bench"
	"github.com/abdul-hamid-achik/mcbench/packages/core/config"
	"github.com/abdul-hamid-achik/mcbench/packages/core/env"
	"github.com/abdul-hamid-achik/mcbench/packages/logging"
)

var (
	configFlag   string
	envFileFlag  string
	logLevelFlag string
	noColorFlag  bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", getEnvString("MCBENCH_CONFIG", ""), "Path to config file (env: MCBENCH_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&envFileFlag, "env-file", getEnvString("MCBENCH_ENV_FILE", ""), "Path to .env file loaded before configuration (env: MCBENCH_ENV_FILE)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Diagnostic log level on stderr: debug, info, warn, error (env: MCBENCH_LOG_LEVEL)")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", getEnvBool("MCBENCH_NO_COLOR", false), "Disable colored output (env: MCBENCH_NO_COLOR)")
}

// loadSettings resolves the effective configuration. Precedence, lowest
// first: defaults, config file, MCBENCH_* environment, overrides (flags).
func loadSettings(cmd *cobra.Command, overrides *config.Config) (*config.Config, error) {
	if envFile := flagOrEnv(cmd, "env-file", envFileFlag, "MCBENCH_ENV_FILE"); envFile != "" {
		if _, err := env.LoadAndExportDotEnv(envFile); err != nil {
			return nil, withExitCode(ExitConfigError, err)
		}
	}

	fileConfig, err := config.LoadConfig(flagOrEnv(cmd, "config", configFlag, "MCBENCH_CONFIG"))
	if err != nil {
		return nil, withExitCode(ExitConfigError, fmt.Errorf("loading config: %w", err))
	}

	envConfig, err := config.FromEnv(env.LoadSystemEnv(config.EnvPrefix))
	if err != nil {
		return nil, withExitCode(ExitConfigError, err)
	}

	if overrides == nil {
		overrides = &config.Config{}
	}
	if logLevelFlag != "" {
		overrides.LogLevel = logLevelFlag
	}
	if cmd.Flags().Changed("no-color") {
		overrides.NoColor = config.BoolPtr(noColorFlag)
	}

	cfg := fileConfig.Merge(envConfig).Merge(overrides)
	if err := cfg.Validate(); err != nil {
		return nil, withExitCode(ExitConfigError, err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	logger, err := logging.NewLogger(false, cfg.LogLevel)
	if err != nil {
		return nil, withExitCode(ExitConfigError, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err))
	}
	return logger, nil
}

// resultsRoot is where summary and compare look for runs when given no path
func resultsRoot(cfg *config.Config) string {
	return getEnvString("BENCHMARK_RESULTS_DIR", bench.ResultsRoot(cfg.BaseDir))
}

func openOutput(path string) (*os.File, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("cannot create output file: %w", err)
	}
	return f, nil
}
