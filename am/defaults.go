package am

import (
	"fmt"

	"github.com/spf13/viper"
)

// Defaults shared with the packages that consume them
const (
	DefaultInternalNamespace = "ಠ_ಠ.clutz"
	DefaultVersionConstraint = ">=1.0.0 <2.0.0"
	DefaultOutputMode        = "stdout"
	DefaultWorkers           = 4
	DefaultTypeCacheSize     = 4096
	DefaultDebounceMS        = 200
	DefaultMinIntervalMS     = 1000
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Emission defaults
	v.SetDefault("emit.internal_namespace", DefaultInternalNamespace)
	v.SetDefault("emit.partial_input", false)
	v.SetDefault("emit.workers", DefaultWorkers)
	v.SetDefault("emit.type_cache_size", DefaultTypeCacheSize)
	v.SetDefault("emit.skip_emit_pattern", "")
	v.SetDefault("emit.entry_points", []string{})
	v.SetDefault("emit.generated_header", true)

	// Output defaults
	v.SetDefault("output.mode", DefaultOutputMode)
	v.SetDefault("output.path", "")

	// Oracle defaults
	v.SetDefault("oracle.input", "")
	v.SetDefault("oracle.command", "")
	v.SetDefault("oracle.version_constraint", DefaultVersionConstraint)

	v.SetDefault("log.json", false)

	// Watch defaults
	v.SetDefault("watch.debounce_ms", DefaultDebounceMS)        // Editors write in bursts
	v.SetDefault("watch.min_interval_ms", DefaultMinIntervalMS) // At most one regeneration per second
}

// BindEnvVars explicitly binds settings commonly overridden from CI
func BindEnvVars(v *viper.Viper) {
	v.BindEnv("oracle.input", "CLUTZ_ORACLE_INPUT")
	v.BindEnv("oracle.command", "CLUTZ_ORACLE_COMMAND")
	v.BindEnv("output.path", "CLUTZ_OUTPUT_PATH")
	v.BindEnv("output.mode", "CLUTZ_OUTPUT_MODE")
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Emit: {Namespace: %s, Workers: %d}, Output: {Mode: %s, Path: %s}, Oracle: {Input: %s}}",
		c.Emit.InternalNamespace, c.Emit.Workers, c.Output.Mode, c.Output.Path, c.Oracle.Input)
}
