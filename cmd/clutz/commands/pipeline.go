package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/teranos/clutz/am"
	"github.com/teranos/clutz/diag"
	"github.com/teranos/clutz/emit"
	"github.com/teranos/clutz/errors"
	"github.com/teranos/clutz/logger"
	"github.com/teranos/clutz/oracle"
	"github.com/teranos/clutz/output"
)

// addEmitFlags registers the flags shared by generate, check and watch.
// Each one overrides the matching am.toml key only when set.
func addEmitFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("out", "o", "", "Output file or directory (output.path)")
	f.String("mode", "", "Output mode: stdout, file, dir (output.mode)")
	f.String("namespace", "", "Internal namespace prefix (emit.internal_namespace)")
	f.Bool("partial", false, "Forward-declare names missing from the input (emit.partial_input)")
	f.Int("workers", 0, "Parallel unit emission (emit.workers)")
	f.StringSlice("entry", nil, "Only emit these units (emit.entry_points)")
	f.String("skip", "", "Regexp of qualified names to drop (emit.skip_emit_pattern)")
	f.Bool("no-header", false, "Omit the // Generated from header (emit.generated_header=false)")
	f.String("oracle-cmd", "", "Command printing a JSON dump on stdout (oracle.command)")
	f.Bool("strict", false, "Fail when any unit is skipped")
}

// loadConfig loads am configuration, applies flag overrides and validates.
func loadConfig(cmd *cobra.Command) (*am.Config, error) {
	var (
		loaded *am.Config
		err    error
	)
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err = am.LoadFromFile(path)
	} else {
		loaded, err = am.Load()
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}

	// Copy: am.Load returns the shared cached config
	cfg := *loaded
	cfg.Emit.EntryPoints = append([]string(nil), loaded.Emit.EntryPoints...)

	f := cmd.Flags()
	if f.Changed("out") {
		cfg.Output.Path, _ = f.GetString("out")
		if !f.Changed("mode") && cfg.Output.Mode == am.DefaultOutputMode {
			cfg.Output.Mode = string(output.ModeFile)
		}
	}
	if f.Changed("mode") {
		cfg.Output.Mode, _ = f.GetString("mode")
	}
	if f.Changed("namespace") {
		cfg.Emit.InternalNamespace, _ = f.GetString("namespace")
	}
	if f.Changed("partial") {
		cfg.Emit.PartialInput, _ = f.GetBool("partial")
	}
	if f.Changed("workers") {
		cfg.Emit.Workers, _ = f.GetInt("workers")
	}
	if f.Changed("entry") {
		cfg.Emit.EntryPoints, _ = f.GetStringSlice("entry")
	}
	if f.Changed("skip") {
		cfg.Emit.SkipEmitPattern, _ = f.GetString("skip")
	}
	if f.Changed("no-header") {
		noHeader, _ := f.GetBool("no-header")
		cfg.Emit.GeneratedHeader = !noHeader
	}
	if f.Changed("oracle-cmd") {
		cfg.Oracle.Command, _ = f.GetString("oracle-cmd")
		cfg.Oracle.Input = ""
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.WithHint(
			errors.Wrap(err, "configuration validation failed"),
			"check am.toml or run clutz am show --sources")
	}
	return &cfg, nil
}

// dumpPath picks the dump from the command line, then oracle.input.
func dumpPath(cfg *am.Config, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	if cfg.Oracle.Command != "" {
		return ""
	}
	return cfg.Oracle.Input
}

// readDump loads the dump from path, or runs oracle.command without one.
func readDump(ctx context.Context, cfg *am.Config, path string) (*oracle.Dump, error) {
	var (
		d   *oracle.Dump
		err error
	)
	switch {
	case path != "":
		d, err = oracle.Load(path)
	case cfg.Oracle.Command != "":
		d, err = oracle.RunCommand(ctx, cfg.Oracle.Command)
	default:
		return nil, errors.WithHint(
			errors.New("no oracle dump given"),
			"pass a dump path, or set oracle.input or oracle.command in am.toml")
	}
	if err != nil {
		return nil, err
	}
	if err := oracle.CheckVersion(d, cfg.Oracle.VersionConstraint); err != nil {
		return nil, err
	}
	return d, nil
}

// runOnce turns a dump into declarations. Graph-building diagnostics are
// folded into the emission result.
func runOnce(ctx context.Context, cfg *am.Config, path string) (*emit.Result, time.Duration, error) {
	start := time.Now()
	log := logger.LoggerFromContext(ctx)

	d, err := readDump(ctx, cfg, path)
	if err != nil {
		return nil, 0, err
	}

	buildDiags := diag.NewCollector()
	g, err := oracle.Build(d, buildDiags)
	if err != nil {
		return nil, 0, errors.Wrap(err, "build symbol graph")
	}

	skip, err := cfg.SkipEmit()
	if err != nil {
		return nil, 0, err
	}
	e, err := emit.New(g, emit.Options{
		InternalNamespace: cfg.Emit.InternalNamespace,
		PartialInput:      cfg.Emit.PartialInput,
		Workers:           cfg.Emit.Workers,
		TypeCacheSize:     cfg.Emit.TypeCacheSize,
		GeneratedHeader:   cfg.Emit.GeneratedHeader,
		SkipEmit:          skip,
		EntryPoints:       cfg.Emit.EntryPoints,
	})
	if err != nil {
		return nil, 0, err
	}
	for _, dg := range buildDiags.All() {
		e.Diagnostics().Report(dg)
	}

	res, err := e.Emit(ctx)
	if err != nil {
		return nil, 0, err
	}
	log.Debugw("run complete",
		logger.FieldUnits, len(res.Units),
		logger.FieldDiagnostics, len(res.Diagnostics))
	return res, time.Since(start), nil
}

// strictErr fails a run with skipped units when --strict is set.
func strictErr(cmd *cobra.Command, res *emit.Result) error {
	strict, _ := cmd.Flags().GetBool("strict")
	if !strict || len(res.Skipped) == 0 {
		return nil
	}
	err := errors.Wrapf(errors.ErrFatalGraph, "%d units skipped", len(res.Skipped))
	for _, name := range res.Skipped {
		err = errors.WithDetailf(err, "skipped: %s", name)
	}
	return err
}
