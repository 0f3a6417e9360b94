package cmd

// Exit codes for the mcbench CLI
const (
	// ExitSuccess indicates the run finished, whatever the individual request outcomes
	ExitSuccess = 0

	// ExitRunFailure indicates the run could not be completed (e.g. the results file could not be written)
	ExitRunFailure = 1

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64

	// ExitInterrupted indicates the run was stopped by SIGINT or SIGTERM
	ExitInterrupted = 130
)
