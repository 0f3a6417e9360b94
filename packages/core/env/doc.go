// Package env handles environment files and variable expansion for mcbench.
//
// It provides functionality for:
//   - Loading dotenv files passed with --env-file
//   - Expanding {{$VAR}} and {{name}} placeholders in configured header values
//   - Collecting prefixed variables (MCBENCH_*) from the process environment
package env
