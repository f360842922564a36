package am

// Config represents the clutz configuration
type Config struct {
	Emit   EmitConfig   `mapstructure:"emit" toml:"emit"`
	Output OutputConfig `mapstructure:"output" toml:"output"`
	Oracle OracleConfig `mapstructure:"oracle" toml:"oracle"`
	Log    LogConfig    `mapstructure:"log" toml:"log"`
	Watch  WatchConfig  `mapstructure:"watch" toml:"watch"`
}

// EmitConfig configures declaration emission
type EmitConfig struct {
	InternalNamespace string   `mapstructure:"internal_namespace" toml:"internal_namespace"` // Prefix of every declaration (default: ಠ_ಠ.clutz)
	PartialInput      bool     `mapstructure:"partial_input" toml:"partial_input"`           // Forward-declare names missing from the input
	Workers           int      `mapstructure:"workers" toml:"workers"`                       // Parallel unit emission (0 = default 4)
	TypeCacheSize     int      `mapstructure:"type_cache_size" toml:"type_cache_size"`       // Translated-type cache entries (0 = default)
	SkipEmitPattern   string   `mapstructure:"skip_emit_pattern" toml:"skip_emit_pattern"`   // Regexp of qualified names to drop
	EntryPoints       []string `mapstructure:"entry_points" toml:"entry_points"`             // Units to emit (empty = all)
	GeneratedHeader   bool     `mapstructure:"generated_header" toml:"generated_header"`     // Prefix units with `// Generated from <file>`
}

// OutputConfig configures where declarations are written
type OutputConfig struct {
	Mode string `mapstructure:"mode" toml:"mode"` // stdout, file or dir
	Path string `mapstructure:"path" toml:"path"` // Output file or directory
}

// OracleConfig configures where the type graph comes from
type OracleConfig struct {
	Input             string `mapstructure:"input" toml:"input"`                           // Dump file (.json, .yaml, .toml)
	Command           string `mapstructure:"command" toml:"command"`                       // Command printing a JSON dump on stdout
	VersionConstraint string `mapstructure:"version_constraint" toml:"version_constraint"` // Accepted dump schema versions
}

// LogConfig configures logging
type LogConfig struct {
	JSON bool `mapstructure:"json" toml:"json"` // Production JSON encoder instead of the console encoder
}

// WatchConfig configures watch mode
type WatchConfig struct {
	DebounceMS    int `mapstructure:"debounce_ms" toml:"debounce_ms"`         // Quiet period after the last change
	MinIntervalMS int `mapstructure:"min_interval_ms" toml:"min_interval_ms"` // Minimum time between regenerations
}

// File system constants
const (
	DefaultDirPermissions  = 0755 // Standard directory permissions (rwxr-xr-x)
	DefaultFilePermissions = 0644 // Standard file permissions (rw-r--r--)
)

// Config file names and locations
const (
	ConfigFileName   = "am.toml"
	SystemConfigPath = "/etc/clutz/am.toml"
	UserConfigDir    = ".clutz"
	EnvPrefix        = "CLUTZ"
)
