// Package config handles configuration loading and management for mcbench.
//
// It provides functionality for:
//   - Loading configuration from .mcbench.json, mcbench.json, mcbench.yaml or mcbench.yml
//   - Default configuration values
//   - Merging file settings with command-line overrides
package config
