package am

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/teranos/clutz/errors"
	"github.com/teranos/clutz/logger"
)

// createBackup creates rotating backups (.back1, .back2, .back3) before modifying config
func createBackup(configPath string) error {
	// Check if file exists before backing up
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil // No file to backup
	}

	// Rotate backups: .back3 -> delete, .back2 -> .back3, .back1 -> .back2, current -> .back1
	back3 := configPath + ".back3"
	back2 := configPath + ".back2"
	back1 := configPath + ".back1"

	// Delete oldest backup if exists
	if err := os.Remove(back3); err != nil && !os.IsNotExist(err) {
		// Log deletion failures (but don't fail config save)
		logger.Warnw("Failed to delete old config backup", logger.FieldPath, back3, logger.FieldError, err)
	}

	if _, err := os.Stat(back2); err == nil {
		if err := os.Rename(back2, back3); err != nil {
			return errors.Wrap(err, "failed to rotate .back2 to .back3")
		}
	}

	if _, err := os.Stat(back1); err == nil {
		if err := os.Rename(back1, back2); err != nil {
			return errors.Wrap(err, "failed to rotate .back1 to .back2")
		}
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		return errors.Wrap(err, "failed to read config for backup")
	}

	if err := os.WriteFile(back1, content, DefaultFilePermissions); err != nil {
		return errors.Wrap(err, "failed to create .back1")
	}

	return nil
}

// DefaultConfig returns the configuration SetDefaults describes
func DefaultConfig() *Config {
	return &Config{
		Emit: EmitConfig{
			InternalNamespace: DefaultInternalNamespace,
			Workers:           DefaultWorkers,
			TypeCacheSize:     DefaultTypeCacheSize,
			EntryPoints:       []string{},
			GeneratedHeader:   true,
		},
		Output: OutputConfig{Mode: DefaultOutputMode},
		Oracle: OracleConfig{VersionConstraint: DefaultVersionConstraint},
		Watch: WatchConfig{
			DebounceMS:    DefaultDebounceMS,
			MinIntervalMS: DefaultMinIntervalMS,
		},
	}
}

// Init writes a default am.toml to path. An existing file is kept unless
// force is set, in which case it is rotated into the backups first.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.WithHint(
			errors.Newf("%s already exists", path),
			"pass --force to overwrite it (the old file is kept as .back1)")
	}

	data, err := toml.Marshal(DefaultConfig())
	if err != nil {
		return errors.Wrap(err, "failed to marshal default config")
	}
	return writeConfig(path, data)
}

// Set updates one dotted key in the TOML file at path, creating the file
// and intermediate tables as needed. Other settings are preserved.
func Set(path, key string, value interface{}) error {
	parts := strings.Split(key, ".")
	for _, p := range parts {
		if p == "" {
			return errors.Newf("invalid config key %q", key)
		}
	}

	config := make(map[string]interface{})
	if data, err := os.ReadFile(path); err == nil {
		if err := toml.Unmarshal(data, &config); err != nil {
			return errors.Wrapf(err, "failed to parse %s", path)
		}
	} else if !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to read %s", path)
	}

	table := config
	for _, p := range parts[:len(parts)-1] {
		next, ok := table[p].(map[string]interface{})
		if !ok {
			next = make(map[string]interface{})
			table[p] = next
		}
		table = next
	}
	table[parts[len(parts)-1]] = value

	data, err := toml.Marshal(config)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}
	return writeConfig(path, data)
}

// writeConfig backs up any existing file and writes data
func writeConfig(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), DefaultDirPermissions); err != nil {
		return errors.Wrapf(err, "failed to create %s", filepath.Dir(path))
	}
	if err := createBackup(path); err != nil {
		return errors.Wrap(err, "failed to create backup")
	}
	if err := os.WriteFile(path, data, DefaultFilePermissions); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}
