// Package cmd implements the mcbench CLI commands using Cobra.
//
// Available commands:
//   - run: Benchmark the model card endpoint and write a CSV
//   - summary: Summarize a finished (or in-progress) run
//   - compare: Compare several runs side by side
//   - history: List runs stored in the SQLite history
//   - mock: Serve a mock model card endpoint
//   - init: Write a starter mcbench.yaml
//   - version: Show mcbench version information
package cmd
