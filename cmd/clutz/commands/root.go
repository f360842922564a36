package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/clutz/am"
	"github.com/teranos/clutz/errors"
	"github.com/teranos/clutz/logger"
)

// RootCmd is the clutz command tree
var RootCmd = &cobra.Command{
	Use:   "clutz",
	Short: "clutz - Closure type graph to TypeScript declarations",
	Long: `clutz - Translate Closure-annotated JavaScript type information into
TypeScript declaration (.d.ts) files.

The input is a type graph dump produced by an oracle (JSON, YAML or TOML).
Each goog.provide / goog.module unit becomes canonical declarations under
the internal namespace plus 'goog:<namespace>' and path alias modules.

Available commands:
  generate - Write declarations for a dump
  check    - Verify committed declarations are up to date
  watch    - Regenerate when the dump changes
  am       - Manage clutz configuration
  version  - Show version information

Examples:
  clutz generate graph.json -o index.d.ts
  clutz check graph.json --golden index.d.ts
  clutz am show`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		jsonLogs, _ := cmd.Flags().GetBool("log-json")
		if !cmd.Flags().Changed("log-json") {
			// Config errors surface in the command itself
			if cfg, err := am.Load(); err == nil {
				jsonLogs = cfg.Log.JSON
			}
		}
		verbose, _ := cmd.Flags().GetCount("verbose")
		if err := logger.Initialize(jsonLogs, verbose); err != nil {
			return errors.Wrap(err, "failed to initialize logger")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	RootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	RootCmd.PersistentFlags().Bool("json", false, "Print summaries as JSON")
	RootCmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON (log.json)")
	RootCmd.PersistentFlags().String("config", "", "Read configuration from this file only (plus CLUTZ_* variables)")

	RootCmd.AddCommand(GenerateCmd)
	RootCmd.AddCommand(CheckCmd)
	RootCmd.AddCommand(WatchCmd)
	RootCmd.AddCommand(AmCmd)
	RootCmd.AddCommand(VersionCmd)
}

// ExitCode maps a command error to the process exit status: 0 success,
// 1 out-of-date declarations, 2 any other failure.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errors.ErrOutOfDate):
		return 1
	default:
		return 2
	}
}
