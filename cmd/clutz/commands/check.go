package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/clutz/errors"
	"github.com/teranos/clutz/output"
)

// CheckCmd checks committed declarations against a fresh run
var CheckCmd = &cobra.Command{
	Use:   "check [dump]",
	Short: "Check if committed declarations are up to date",
	Long: `Check if committed declarations match what the dump produces now.

Declarations are generated in memory (dir mode: into a temporary directory)
and compared with the golden copy. // Generated from lines are ignored
unless --exact is given, since their paths vary between checkouts.

Exit codes:
  0 - Declarations are up to date
  1 - Declarations are out of date (files listed)
  2 - Error during check

Examples:
  clutz check graph.json --golden index.d.ts
  clutz check --mode dir --golden types/`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	addEmitFlags(CheckCmd)
	CheckCmd.Flags().String("golden", "", "Committed declaration file or directory (default: output.path)")
	CheckCmd.Flags().Bool("exact", false, "Also compare // Generated from header lines")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	golden, _ := cmd.Flags().GetString("golden")
	if golden == "" {
		golden = cfg.Output.Path
	}
	if golden == "" {
		return errors.WithHint(errors.New("nothing to check against"), "pass --golden or set output.path")
	}

	res, elapsed, err := runOnce(cmd.Context(), cfg, dumpPath(cfg, args))
	if err != nil {
		return err
	}

	mode, err := output.ParseMode(cfg.Output.Mode)
	if err != nil {
		return err
	}
	if mode == output.ModeStdout {
		mode = output.ModeFile
	}
	exact, _ := cmd.Flags().GetBool("exact")

	result, err := output.Check(res, golden, mode, !exact)
	if err != nil {
		return errors.Wrap(err, "failed to compare declarations")
	}

	if err := report(cmd, res, elapsed, nil); err != nil {
		return err
	}

	out := cmd.ErrOrStderr()
	if result.UpToDate {
		fmt.Fprint(out, pterm.Success.Sprintln("Declarations are up to date"))
		return strictErr(cmd, res)
	}

	fmt.Fprint(out, pterm.Error.Sprintln("Declarations are out of date"))
	for _, f := range result.Differences {
		fmt.Fprintf(out, "  changed %s\n", f)
	}
	for _, f := range result.Missing {
		fmt.Fprintf(out, "  missing %s\n", f)
	}
	for _, f := range result.Stale {
		fmt.Fprintf(out, "  stale   %s\n", f)
	}
	return result.Err()
}
