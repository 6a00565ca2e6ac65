package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/gleyba/uber-poet/config"
	"github.com/gleyba/uber-poet/display"
)

// ConfigCmd groups configuration inspection commands
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and initialise uberpoet configuration",
	Long: `Inspect and initialise uberpoet configuration.

Configuration sources (later overrides earlier):
1. Built-in defaults
2. System config (/etc/uberpoet/uberpoet.toml)
3. User config (~/.uberpoet/uberpoet.toml)
4. Project config (./uberpoet.toml, searched upwards)
5. File given with --config
6. Environment variables (UBERPOET_* prefix, e.g. UBERPOET_GENERATION_MODULE_COUNT)
7. Command line flags

Examples:
  uberpoet config show                 # Effective configuration as TOML
  uberpoet config show --format yaml   # ... as YAML
  uberpoet config where                # Where every setting comes from
  uberpoet config init                 # Write ./uberpoet.toml with defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := loadViper(cmd)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		data, err := config.Render(v, format)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configWhereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where each setting is loaded from",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := loadViper(cmd)
		if err != nil {
			return err
		}
		settings := config.Introspect(v)

		if display.ShouldOutputJSON(cmd) {
			return display.WriteJSON(cmd.OutOrStdout(), settings)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Config files checked (later overrides earlier):")
		for _, p := range config.SearchPaths() {
			state := pterm.Gray("missing")
			if _, err := os.Stat(p.Path); err == nil {
				state = pterm.Green("found")
			}
			fmt.Fprintf(out, "  [%-7s] %s (%s)\n", p.Source, p.Path, state)
		}
		fmt.Fprintln(out)

		rows := make([][]string, 0, len(settings))
		for _, s := range settings {
			rows = append(rows, []string{s.Key, fmt.Sprint(s.Value), string(s.Source), s.SourcePath})
		}
		return display.Table(out, []string{"KEY", "VALUE", "SOURCE", "FROM"}, rows)
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := loadConfig(cmd); err != nil {
			return err
		}
		pterm.Success.WithWriter(cmd.OutOrStdout()).Println("Configuration is valid")
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a config file holding every default",
	Long: `Write a TOML config file holding every default setting.

The file defaults to ./uberpoet.toml. An existing file is only replaced
with --force, and is kept as <path>.back1 (up to three backups).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultConfigFileName
		if len(args) == 1 {
			path = config.ExpandHome(args[0])
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}

		force, _ := cmd.Flags().GetBool("force")
		if err := config.WriteDefaults(abs, force); err != nil {
			return err
		}
		pterm.Success.WithWriter(cmd.OutOrStdout()).Printf("Wrote %s\n", abs)
		return nil
	},
}

func init() {
	configShowCmd.Flags().String("format", config.FormatTOML, "Output format: toml, json, yaml")
	configInitCmd.Flags().Bool("force", false, "Replace an existing file (a backup is kept)")

	ConfigCmd.AddCommand(configShowCmd)
	ConfigCmd.AddCommand(configWhereCmd)
	ConfigCmd.AddCommand(configValidateCmd)
	ConfigCmd.AddCommand(configInitCmd)
}
