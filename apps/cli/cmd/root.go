package cmd

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/mcbench/packages/bench"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "mcbench",
	Short: "Benchmark the model card endpoint.",
	Long: `mcbench sends 100 sequential GET requests to the model card endpoint and
records total time, DNS lookup, TCP connect, time to first byte, pretransfer
time and response size for each one in a timestamped CSV file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	if err := rootCmd.Execute(); err != nil {
		reportError(os.Stderr, noColorFlag, err)
		os.Exit(exitCode(err))
	}
}

func reportError(w io.Writer, noColor bool, err error) {
	bench.NewReporter(bench.WithWriter(w), bench.WithNoColor(noColor)).Error("%v", err)
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mockCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return withExitCode(ExitUsageError, err)
	})
	for _, c := range rootCmd.Commands() {
		c.Args = usageArgs(c.Args)
	}
}

// usageArgs marks positional argument errors as usage errors
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	if validate == nil {
		return nil
	}
	return func(cmd *cobra.Command, args []string) error {
		return withExitCode(ExitUsageError, validate(cmd, args))
	}
}

// exitError carries a process exit code out of a command
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withExitCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	// cobra reports unknown subcommands as plain errors
	if strings.HasPrefix(err.Error(), "unknown command") {
		return ExitUsageError
	}
	return ExitRunFailure
}

func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

// flagOrEnv returns the flag value when it was set on the command line and
// otherwise re-reads key, which may have been exported by --env-file after
// flag defaults were computed.
func flagOrEnv(cmd *cobra.Command, name, flagVal, key string) string {
	if cmd.Flags().Changed(name) {
		return flagVal
	}
	return getEnvString(key, flagVal)
}
