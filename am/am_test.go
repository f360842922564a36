package am

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME and the working directory at fresh temp dirs so no
// real user or project config leaks into a test
func isolate(t *testing.T) (home, project string) {
	t.Helper()
	Reset()
	t.Cleanup(Reset)

	root := t.TempDir()
	home = filepath.Join(root, "home")
	project = filepath.Join(root, "project")
	require.NoError(t, os.MkdirAll(filepath.Join(home, UserConfigDir), 0755))
	require.NoError(t, os.MkdirAll(project, 0755))

	t.Setenv("HOME", home)
	t.Chdir(project)
	return home, project
}

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := LoadWithViper(v)
	require.NoError(t, err)

	assert.Equal(t, "ಠ_ಠ.clutz", cfg.Emit.InternalNamespace)
	assert.Equal(t, DefaultWorkers, cfg.Emit.Workers)
	assert.Equal(t, "stdout", cfg.Output.Mode)
	assert.Equal(t, DefaultVersionConstraint, cfg.Oracle.VersionConstraint)
	assert.True(t, cfg.Emit.GeneratedHeader)
	assert.NoError(t, cfg.Validate())
}

func TestDefaultConfigMatchesSetDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	cfg, err := LoadWithViper(v)
	require.NoError(t, err)
	assert.Equal(t, cfg, DefaultConfig())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero workers uses default", func(c *Config) { c.Emit.Workers = 0 }, false},
		{"negative workers", func(c *Config) { c.Emit.Workers = -1 }, true},
		{"negative cache", func(c *Config) { c.Emit.TypeCacheSize = -5 }, true},
		{"empty namespace", func(c *Config) { c.Emit.InternalNamespace = "" }, true},
		{"namespace with empty part", func(c *Config) { c.Emit.InternalNamespace = "a..b" }, true},
		{"namespace with dash", func(c *Config) { c.Emit.InternalNamespace = "my-ns" }, true},
		{"custom namespace", func(c *Config) { c.Emit.InternalNamespace = "$gen.decl_1" }, false},
		{"bad skip pattern", func(c *Config) { c.Emit.SkipEmitPattern = "(" }, true},
		{"skip pattern", func(c *Config) { c.Emit.SkipEmitPattern = `^goog\.` }, false},
		{"unknown mode", func(c *Config) { c.Output.Mode = "s3" }, true},
		{"dir without path", func(c *Config) { c.Output.Mode = "dir" }, true},
		{"dir with path", func(c *Config) { c.Output.Mode = "dir"; c.Output.Path = "out" }, false},
		{"input and command", func(c *Config) { c.Oracle.Input = "a.json"; c.Oracle.Command = "dump" }, true},
		{"bad constraint", func(c *Config) { c.Oracle.VersionConstraint = "one point oh" }, true},
		{"negative debounce", func(c *Config) { c.Watch.DebounceMS = -1 }, true},
		{"zero interval is unthrottled", func(c *Config) { c.Watch.MinIntervalMS = 0 }, false},
		{"negative interval", func(c *Config) { c.Watch.MinIntervalMS = -1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSkipEmit(t *testing.T) {
	cfg := DefaultConfig()
	re, err := cfg.SkipEmit()
	require.NoError(t, err)
	assert.Nil(t, re)

	cfg.Emit.SkipEmitPattern = `\.internal\.`
	re, err = cfg.SkipEmit()
	require.NoError(t, err)
	assert.True(t, re.MatchString("ಠ_ಠ.clutz.a.internal.X"))
}

func TestLoadPrecedence(t *testing.T) {
	home, project := isolate(t)

	require.NoError(t, os.WriteFile(filepath.Join(home, UserConfigDir, ConfigFileName), []byte(`
[emit]
workers = 2
partial_input = true

[output]
mode = "dir"
path = "user-out"
`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(project, ConfigFileName), []byte(`
[output]
path = "types"
`), 0644))
	t.Setenv("CLUTZ_EMIT_WORKERS", "7")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Emit.Workers, "environment beats files")
	assert.True(t, cfg.Emit.PartialInput, "user file applies")
	assert.Equal(t, "dir", cfg.Output.Mode, "user file applies")
	assert.Equal(t, "types", cfg.Output.Path, "project beats user")
	assert.Equal(t, DefaultInternalNamespace, cfg.Emit.InternalNamespace, "default remains")

	again, err := Load()
	require.NoError(t, err)
	assert.Same(t, cfg, again)
}

func TestFindProjectConfigWalksUp(t *testing.T) {
	_, project := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(project, ConfigFileName), []byte("[log]\njson = true\n"), 0644))

	nested := filepath.Join(project, "src", "js")
	require.NoError(t, os.MkdirAll(nested, 0755))
	t.Chdir(nested)

	found := FindProjectConfig()
	require.NotEmpty(t, found)
	resolved, err := filepath.EvalSymlinks(found)
	require.NoError(t, err)
	want, err := filepath.EvalSymlinks(filepath.Join(project, ConfigFileName))
	require.NoError(t, err)
	assert.Equal(t, want, resolved)

	assert.True(t, GetBool("log.json"))
}

func TestInitAndSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", ConfigFileName)

	require.NoError(t, Init(path, false))
	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	assert.Error(t, Init(path, false), "existing file is kept")
	require.NoError(t, Init(path, true))
	assert.FileExists(t, path+".back1")

	require.NoError(t, Set(path, "emit.workers", 8))
	require.NoError(t, Set(path, "oracle.input", "graph.json"))
	cfg, err = LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Emit.Workers)
	assert.Equal(t, "graph.json", cfg.Oracle.Input)
	assert.Equal(t, DefaultInternalNamespace, cfg.Emit.InternalNamespace, "other settings survive")
	assert.FileExists(t, path+".back3")

	assert.Error(t, Set(path, "emit..workers", 1))
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}
