package am

import (
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/teranos/clutz/errors"
)

var namespacePart = regexp.MustCompile(`^[\p{L}_$][\p{L}\p{N}_$]*$`)

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	// Internal namespace: dotted identifiers, never empty
	if c.Emit.InternalNamespace == "" {
		return errors.New("emit.internal_namespace cannot be empty")
	}
	for _, part := range strings.Split(c.Emit.InternalNamespace, ".") {
		if !namespacePart.MatchString(part) {
			return errors.Newf("emit.internal_namespace %q is not a dotted identifier", c.Emit.InternalNamespace)
		}
	}

	// Workers and cache: 0 = use default, negative = invalid
	if c.Emit.Workers < 0 {
		return errors.Newf("emit.workers must be >= 0, got %d", c.Emit.Workers)
	}
	if c.Emit.TypeCacheSize < 0 {
		return errors.Newf("emit.type_cache_size must be >= 0, got %d", c.Emit.TypeCacheSize)
	}

	if c.Emit.SkipEmitPattern != "" {
		if _, err := regexp.Compile(c.Emit.SkipEmitPattern); err != nil {
			return errors.Wrapf(err, "emit.skip_emit_pattern %q", c.Emit.SkipEmitPattern)
		}
	}

	switch c.Output.Mode {
	case "", "stdout":
	case "file", "dir":
		if c.Output.Path == "" {
			return errors.Newf("output.path is required when output.mode is %s", c.Output.Mode)
		}
	default:
		return errors.Newf("output.mode must be stdout, file or dir, got %q", c.Output.Mode)
	}

	if c.Oracle.Input != "" && c.Oracle.Command != "" {
		return errors.New("oracle.input and oracle.command are mutually exclusive")
	}
	if c.Oracle.VersionConstraint != "" {
		if _, err := semver.NewConstraint(c.Oracle.VersionConstraint); err != nil {
			return errors.Wrapf(err, "oracle.version_constraint %q", c.Oracle.VersionConstraint)
		}
	}

	// Watch timings: 0 = no debounce / no throttle, negative = invalid
	if c.Watch.DebounceMS < 0 {
		return errors.Newf("watch.debounce_ms must be >= 0, got %d", c.Watch.DebounceMS)
	}
	if c.Watch.MinIntervalMS < 0 {
		return errors.Newf("watch.min_interval_ms must be >= 0, got %d", c.Watch.MinIntervalMS)
	}

	return nil
}

// SkipEmit compiles emit.skip_emit_pattern, or returns nil when unset
func (c *Config) SkipEmit() (*regexp.Regexp, error) {
	if c.Emit.SkipEmitPattern == "" {
		return nil, nil
	}
	re, err := regexp.Compile(c.Emit.SkipEmitPattern)
	if err != nil {
		return nil, errors.Wrapf(err, "emit.skip_emit_pattern %q", c.Emit.SkipEmitPattern)
	}
	return re, nil
}
