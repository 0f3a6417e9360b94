package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/mcbench/packages/core/config"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize mcbench configuration",
	Long: `Initialize mcbench in the current directory.

This creates:
  - mcbench.yaml            - Configuration file with the default settings
  - modelcard.schema.json   - JSON schema for --schema response checks

Examples:
  mcbench init
  mcbench init --force`,
	Args: cobra.NoArgs,
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite existing files")
}

const modelCardSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "Model card",
  "type": "object",
  "required": ["id", "name"],
  "properties": {
    "id": {"type": "string"},
    "name": {"type": "string"},
    "version": {"type": "string"},
    "author": {"type": "string"},
    "short_description": {"type": "string"},
    "categories": {"type": "array", "items": {"type": "string"}}
  }
}
`

func initCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	configFile := filepath.Join(cwd, "mcbench.yaml")
	schemaFile := filepath.Join(cwd, "modelcard.schema.json")

	if !forceInit {
		for _, f := range []string{configFile, schemaFile} {
			if _, err := os.Stat(f); err == nil {
				return withExitCode(ExitUsageError, fmt.Errorf("file already exists: %s (use --force to overwrite)", f))
			}
		}
	}

	cfg := config.DefaultConfig()
	cfg.BaseDir = "."
	cfg.Headers = map[string]string{"Accept": "application/json"}
	cfg.Schema = "modelcard.schema.json"

	if err := cfg.SaveConfig(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)

	if err := os.WriteFile(schemaFile, []byte(modelCardSchema), 0644); err != nil {
		return fmt.Errorf("failed to create schema file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", schemaFile)

	fmt.Fprintf(cmd.OutOrStdout(), "\nmcbench initialized!\n")
	fmt.Fprintf(cmd.OutOrStdout(), "Run 'mcbench mock' in one terminal and 'mcbench run' in another to try it.\n")

	return nil
}
