package am

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func settingByKey(t *testing.T, in *ConfigIntrospection, key string) SettingInfo {
	t.Helper()
	for _, s := range in.Settings {
		if s.Key == key {
			return s
		}
	}
	t.Fatalf("setting %s not reported", key)
	return SettingInfo{}
}

func TestConfigIntrospectionSources(t *testing.T) {
	home, project := isolate(t)

	userPath := filepath.Join(home, UserConfigDir, ConfigFileName)
	require.NoError(t, os.WriteFile(userPath, []byte("[emit]\nworkers = 3\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(project, ConfigFileName), []byte("[output]\nmode = \"file\"\npath = \"a.d.ts\"\n"), 0644))
	t.Setenv("CLUTZ_ORACLE_INPUT", "dump.json")

	in, err := GetConfigIntrospection()
	require.NoError(t, err)

	workers := settingByKey(t, in, "emit.workers")
	assert.Equal(t, SourceUser, workers.Source)
	assert.Equal(t, userPath, workers.SourcePath)

	mode := settingByKey(t, in, "output.mode")
	assert.Equal(t, SourceProject, mode.Source)
	assert.Contains(t, mode.SourcePath, ConfigFileName)

	input := settingByKey(t, in, "oracle.input")
	assert.Equal(t, SourceEnvironment, input.Source)
	assert.Equal(t, "CLUTZ_ORACLE_INPUT", input.SourcePath)

	ns := settingByKey(t, in, "emit.internal_namespace")
	assert.Equal(t, SourceDefault, ns.Source)
	assert.Equal(t, DefaultInternalNamespace, ns.Value)
}

func TestIntrospectionKeysAreSorted(t *testing.T) {
	isolate(t)

	in, err := GetConfigIntrospection()
	require.NoError(t, err)
	require.NotEmpty(t, in.Settings)
	for i := 1; i < len(in.Settings); i++ {
		assert.Less(t, in.Settings[i-1].Key, in.Settings[i].Key)
	}
}

func TestEnvVarName(t *testing.T) {
	assert.Equal(t, "CLUTZ_EMIT_INTERNAL_NAMESPACE", EnvVarName("emit.internal_namespace"))
	assert.Equal(t, "CLUTZ_WATCH_DEBOUNCE_MS", EnvVarName("watch.debounce_ms"))
}
