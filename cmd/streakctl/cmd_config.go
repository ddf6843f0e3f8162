package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the resolved configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show [KEY]",
	Short: "Print the effective configuration",
	Long: `Print the configuration the server would start with, after env files and
defaults are applied. Credentials are masked unless --show-secrets is given.

Examples:
  streakctl config show
  streakctl config show --format json
  streakctl config show DEDUP_TTL`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigShow,
}

func init() {
	configCmd.AddCommand(configShowCmd)

	configShowCmd.Flags().String("format", "yaml", "Output format (yaml, json)")
	configShowCmd.Flags().Bool("show-secrets", false, "Print credentials in clear text")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	showSecrets, _ := cmd.Flags().GetBool("show-secrets")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var value any = cfg.Effective(showSecrets)
	if len(args) == 1 {
		v, ok := cfg.Effective(showSecrets)[args[0]]
		if !ok {
			return fmt.Errorf("unknown setting: %s", args[0])
		}
		value = v
	}

	out := cmd.OutOrStdout()
	switch format {
	case "yaml":
		yamlData, err := yaml.Marshal(value)
		if err != nil {
			return fmt.Errorf("marshal YAML: %w", err)
		}
		fmt.Fprint(out, string(yamlData))
	case "json":
		jsonData, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal JSON: %w", err)
		}
		fmt.Fprintln(out, string(jsonData))
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
	return nil
}
