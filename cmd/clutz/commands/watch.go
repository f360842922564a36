package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/teranos/clutz/errors"
	"github.com/teranos/clutz/logger"
	"github.com/teranos/clutz/output"
	"github.com/teranos/clutz/watch"
)

// WatchCmd regenerates declarations whenever the dump changes
var WatchCmd = &cobra.Command{
	Use:   "watch [dump]",
	Short: "Regenerate declarations when the dump changes",
	Long: `Generate declarations, then watch the dump and regenerate on change.

Bursts of writes are coalesced (watch.debounce_ms) and regenerations are
spaced at least watch.min_interval_ms apart. A failed regeneration is
logged and the previous output is left in place.

Examples:
  clutz watch graph.json --mode dir -o types/`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	addEmitFlags(WatchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	path := dumpPath(cfg, args)
	if path == "" {
		return errors.WithHint(
			errors.New("watch needs a dump file"),
			"pass a dump path or set oracle.input; oracle.command output cannot be watched")
	}
	mode, err := output.ParseMode(cfg.Output.Mode)
	if err != nil {
		return err
	}
	if mode == output.ModeStdout {
		return errors.WithHint(
			errors.New("watch cannot write to stdout"),
			"pass -o <file> or --mode dir -o <dir>")
	}
	w := &output.Writer{Mode: mode, Path: cfg.Output.Path}

	regenerate := func(ctx context.Context, _ []string) error {
		res, elapsed, err := runOnce(ctx, cfg, path)
		if err != nil {
			return err
		}
		written, err := w.Write(res)
		if err != nil {
			return err
		}
		return report(cmd, res, elapsed, written)
	}

	ctx := cmd.Context()
	if err := regenerate(ctx, nil); err != nil {
		// Keep watching: the next write may fix the dump
		logger.Errorw("initial generation failed", logger.FieldError, err)
	}

	watcher, err := watch.New([]string{path}, watch.Options{
		Debounce:    time.Duration(cfg.Watch.DebounceMS) * time.Millisecond,
		MinInterval: time.Duration(cfg.Watch.MinIntervalMS) * time.Millisecond,
	}, regenerate)
	if err != nil {
		return err
	}
	defer watcher.Close()

	logger.Infow("watching for changes", logger.FieldPath, path)
	return watcher.Run(ctx)
}
