package commands

import (
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/teranos/clutz/diag"
	"github.com/teranos/clutz/display"
	"github.com/teranos/clutz/emit"
	"github.com/teranos/clutz/output"
)

// GenerateCmd writes TypeScript declarations for an oracle dump
var GenerateCmd = &cobra.Command{
	Use:   "generate [dump]",
	Short: "Generate .d.ts declarations from an oracle dump",
	Long: `Generate TypeScript declaration files from a Closure type graph dump.

The dump is read from the argument, oracle.input, or the stdout of
oracle.command. Declarations go to stdout unless output.mode is file or dir.
Units whose own declaration cannot be built are skipped and reported;
everything else is emitted.

Examples:
  clutz generate graph.json                  # Declarations to stdout
  clutz generate graph.yaml -o index.d.ts    # One concatenated file
  clutz generate --mode dir -o types/        # One file per unit
  clutz generate --partial --entry goog:a.b  # Forward-declare missing names`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

func init() {
	addEmitFlags(GenerateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	res, elapsed, err := runOnce(cmd.Context(), cfg, dumpPath(cfg, args))
	if err != nil {
		return err
	}

	mode, err := output.ParseMode(cfg.Output.Mode)
	if err != nil {
		return err
	}
	w := &output.Writer{Mode: mode, Path: cfg.Output.Path, Stdout: cmd.OutOrStdout()}
	written, err := w.Write(res)
	if err != nil {
		return err
	}

	if err := report(cmd, res, elapsed, written); err != nil {
		return err
	}
	return strictErr(cmd, res)
}

// report prints the run summary and diagnostics table to stderr; stdout
// may be carrying declarations.
func report(cmd *cobra.Command, res *emit.Result, elapsed time.Duration, written []string) error {
	summary := display.RunSummary{
		Units:       len(res.Units),
		Skipped:     res.Skipped,
		Diagnostics: len(res.Diagnostics),
		Duration:    elapsed,
		Written:     written,
	}
	for _, u := range res.Units {
		if u.Text != "" {
			summary.Emitted++
		}
	}

	out := cmd.ErrOrStderr()
	if display.ShouldOutputJSON(cmd) {
		return writeJSON(out, struct {
			display.RunSummary
			List []diag.Diagnostic `json:"diagnostic_list"`
		}{summary, res.Diagnostics})
	}

	if err := display.PrintRunSummary(out, summary); err != nil {
		return err
	}
	return display.PrintDiagnostics(out, res.Diagnostics, verbosity(cmd) > 0)
}

func writeJSON(w io.Writer, v interface{}) error {
	data, err := display.MarshalJSON(v)
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

func verbosity(cmd *cobra.Command) int {
	v, _ := cmd.Root().PersistentFlags().GetCount("verbose")
	return v
}
