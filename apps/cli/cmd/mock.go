package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/mcbench/packages/logging"
	"github.com/abdul-hamid-achik/mcbench/packages/mock"
)

var (
	mockPortFlag  int
	mockDelayFlag string
	mockSizeFlag  int
)

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Start a mock model card server",
	Long: `Start an HTTP server that answers GET /modelcard/{id} with a JSON model card,
so the benchmark can be exercised without the real service.

Examples:
  mcbench mock
  mcbench mock --port 5002 --delay 20ms
  mcbench mock --size 65536`,
	Args: cobra.NoArgs,
	RunE: mockCommand,
}

func init() {
	mockCmd.Flags().IntVarP(&mockPortFlag, "port", "p", 5002, "Port to run the mock server on")
	mockCmd.Flags().StringVarP(&mockDelayFlag, "delay", "d", "0", "Delay to add to all responses (e.g., 100ms, 1s)")
	mockCmd.Flags().IntVarP(&mockSizeFlag, "size", "s", 0, "Pad model card bodies to this many bytes")
}

func mockCommand(cmd *cobra.Command, args []string) error {
	var delay time.Duration
	if mockDelayFlag != "0" {
		var err error
		delay, err = time.ParseDuration(mockDelayFlag)
		if err != nil {
			return withExitCode(ExitUsageError, fmt.Errorf("invalid delay value %q: %w", mockDelayFlag, err))
		}
	}

	level := logLevelFlag
	if level == "" {
		level = getEnvString("MCBENCH_LOG_LEVEL", "info")
	}
	logger, err := logging.NewLogger(false, level)
	if err != nil {
		return withExitCode(ExitConfigError, fmt.Errorf("invalid log level %q: %w", level, err))
	}
	defer func() { _ = logger.Sync() }()

	server := mock.NewServer(
		mock.WithPort(mockPortFlag),
		mock.WithDelay(delay),
		mock.WithSize(mockSizeFlag),
		mock.WithLogger(logger),
	)

	for _, route := range server.GetRoutes() {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s %s\n", route.Method, route.PathPattern)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(cmd.OutOrStdout(), "\nShutting down mock server...")
		cancel()
	}()

	return server.StartWithContext(ctx)
}
