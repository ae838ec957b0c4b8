package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandHasSubcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"serve", "refresh", "status"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}

func TestResolveConfigPathPrefersFlag(t *testing.T) {
	assert.Equal(t, "custom.yaml", resolveConfigPath("custom.yaml"))
}

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	data := filepath.Join(dir, "teams.csv")
	require.NoError(t, os.WriteFile(data, []byte("Team,Country\nLakers,USA\nReal Madrid,Spain\n"), 0644))

	cfg := filepath.Join(dir, "config.yaml")
	body := "source:\n" +
		"  provider: local\n" +
		"  local_path: " + data + "\n" +
		"  fallback_path: " + data + "\n" +
		"map:\n" +
		"  path: " + filepath.Join(dir, "map.html") + "\n"
	require.NoError(t, os.WriteFile(cfg, []byte(body), 0644))
	return cfg
}

func clearSourceEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"DATA_PROVIDER", "LOCAL_DATA_PATH", "FALLBACK_DATA_PATH", "MAP_PATH", "CACHE_TIMEOUT", "DATA_REFRESH_INTERVAL"} {
		t.Setenv(key, "")
	}
}

func TestRefreshCommand(t *testing.T) {
	clearSourceEnv(t)
	cfg := writeTestConfig(t)

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"refresh", "--config", cfg})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "loaded 2 teams from local")
	_, err := os.Stat(filepath.Join(filepath.Dir(cfg), "map.html"))
	assert.NoError(t, err)
}

func TestStatusCommand(t *testing.T) {
	clearSourceEnv(t)
	cfg := writeTestConfig(t)

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"status", "--config", cfg})
	require.NoError(t, root.Execute())

	var body map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &body))
	assert.Equal(t, true, body["data"]["loaded"])
	assert.EqualValues(t, 2, body["data"]["teams_count"])
}

func TestRefreshCommandFails(t *testing.T) {
	clearSourceEnv(t)
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.yaml")
	missing := filepath.Join(dir, "missing.xlsx")
	require.NoError(t, os.WriteFile(cfg, []byte("source:\n  local_path: "+missing+"\n  fallback_path: "+missing+"\n"), 0644))

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"refresh", "--config", cfg})
	assert.Error(t, root.Execute())
}
