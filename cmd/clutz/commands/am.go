package commands

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/clutz/am"
	"github.com/teranos/clutz/errors"
)

// AmCmd represents the am (configuration) command
var AmCmd = &cobra.Command{
	Use:   "am",
	Short: "Manage clutz configuration",
	Long: `am - Manage clutz configuration

Display and manage clutz configuration settings.

Configuration sources (in order of precedence):
1. Command line flags
2. Environment variables (CLUTZ_* prefix)
3. Project config (am.toml in the working directory or a parent)
4. User config (~/.clutz/am.toml)
5. System config (/etc/clutz/am.toml)
6. Default values

Examples:
  clutz am show                      # Show current configuration
  clutz am show --format json        # Show configuration in JSON format
  clutz am show --sources            # Show where each setting came from
  clutz am init                      # Write a default ./am.toml
  clutz am set emit.workers 8        # Update one setting in ./am.toml
  clutz am get output.path           # Get specific config value`,
}

var amShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runAmShow,
}

var amInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default am.toml",
	RunE:  runAmInit,
}

var amSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set one configuration value in am.toml",
	Long:  "Set a value using dot notation (e.g., emit.workers 8, emit.entry_points a.b,c.d)",
	Args:  cobra.ExactArgs(2),
	RunE:  runAmSet,
}

var amGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runAmGet,
}

var amValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate current configuration",
	RunE:  runAmValidate,
}

var (
	configFormat string
	showSources  bool
	amPath       string
	amForce      bool
)

func init() {
	amShowCmd.Flags().StringVar(&configFormat, "format", "toml", "Output format: toml, json, yaml")
	amShowCmd.Flags().BoolVar(&showSources, "sources", false, "Show the source of every setting")
	amInitCmd.Flags().StringVar(&amPath, "path", am.ConfigFileName, "File to write")
	amInitCmd.Flags().BoolVar(&amForce, "force", false, "Overwrite an existing file (kept as .back1)")
	amSetCmd.Flags().StringVar(&amPath, "path", am.ConfigFileName, "File to update")

	AmCmd.AddCommand(amShowCmd)
	AmCmd.AddCommand(amInitCmd)
	AmCmd.AddCommand(amSetCmd)
	AmCmd.AddCommand(amGetCmd)
	AmCmd.AddCommand(amValidateCmd)
}

func runAmShow(cmd *cobra.Command, args []string) error {
	if showSources {
		return showConfigSources(cmd)
	}

	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	out := cmd.OutOrStdout()
	switch configFormat {
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to JSON")
		}
		fmt.Fprintln(out, string(data))

	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to YAML")
		}
		fmt.Fprintf(out, "# clutz configuration\n%s", string(data))

	case "toml":
		data, err := toml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to TOML")
		}
		fmt.Fprintf(out, "# clutz configuration\n%s", string(data))

	default:
		return errors.Newf("unsupported format: %s (supported: toml, json, yaml)", configFormat)
	}
	return nil
}

func showConfigSources(cmd *cobra.Command) error {
	in, err := am.GetConfigIntrospection()
	if err != nil {
		return err
	}
	rows := [][]string{{"Key", "Value", "Source", "From"}}
	for _, s := range in.Settings {
		rows = append(rows, []string{s.Key, fmt.Sprint(s.Value), string(s.Source), s.SourcePath})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(rows).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), table)
	return nil
}

func runAmInit(cmd *cobra.Command, args []string) error {
	if err := am.Init(amPath, amForce); err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), pterm.Success.Sprintf("Wrote %s\n", amPath))
	return nil
}

func runAmSet(cmd *cobra.Command, args []string) error {
	if err := am.Set(amPath, args[0], parseValue(args[0], args[1])); err != nil {
		return err
	}

	// Reject the write if it made the file invalid
	cfg, err := am.LoadFromFile(amPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return errors.WithHint(
			errors.Wrapf(err, "%s is now invalid", amPath),
			"the previous file is kept as "+amPath+".back1")
	}
	fmt.Fprint(cmd.OutOrStdout(), pterm.Success.Sprintf("%s = %s\n", args[0], args[1]))
	return nil
}

// parseValue types a command-line value: lists for list keys, then bool,
// then int, then string.
func parseValue(key, raw string) interface{} {
	if key == "emit.entry_points" {
		var list []string
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				list = append(list, part)
			}
		}
		return list
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	return raw
}

func runAmGet(cmd *cobra.Command, args []string) error {
	key := args[0]

	v := am.GetViper()
	if !v.IsSet(key) {
		return errors.Newf("configuration key %q not found", key)
	}
	fmt.Fprintln(cmd.OutOrStdout(), am.Get(key))
	return nil
}

func runAmValidate(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "configuration validation failed")
	}
	fmt.Fprint(cmd.OutOrStdout(), pterm.Success.Sprintln("Configuration is valid"))
	return nil
}
