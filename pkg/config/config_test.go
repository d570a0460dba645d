package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, 10, cfg.Scan.ProjectBatchSize)
	assert.Equal(t, 10, cfg.Scan.FileBatchSize)
	assert.Equal(t, "127.0.0.1:7465", cfg.Server.ListenAddr)
	assert.False(t, cfg.Notify)
	assert.NotEmpty(t, cfg.DataDir)
}

func TestDataDirLayout(t *testing.T) {
	dataDir := filepath.Join("/", "home", "user", ".assistant")
	assert.Equal(t, filepath.Join(dataDir, "settings.json"), UserSettingsPath(dataDir))
	assert.Equal(t, filepath.Join(dataDir, "index.json"), IndexPath(dataDir))
	assert.Equal(t, filepath.Join(dataDir, "projects"), ProjectsDir(dataDir))

	project := filepath.Join("/", "home", "user", "myapp")
	assert.Equal(t, filepath.Join(project, ".assistant", "settings.json"),
		ProjectSettingsPath(project))
	assert.Equal(t, filepath.Join(project, ".assistant", "settings.local.json"),
		ProjectLocalSettingsPath(project))
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Scan.ProjectBatchSize)
	assert.Equal(t, "127.0.0.1:7465", cfg.Server.ListenAddr)
}

func TestLoadConfigReadsFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "credsweep")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(
		"data_dir: /srv/assistant\nscan:\n  project_batch_size: 4\nserver:\n  listen_addr: 127.0.0.1:9000\nnotify: true\n",
	), 0o644))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "/srv/assistant", cfg.DataDir)
	assert.Equal(t, 4, cfg.Scan.ProjectBatchSize)
	assert.Equal(t, 10, cfg.Scan.FileBatchSize, "unset fields fall back to defaults")
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.ListenAddr)
	assert.True(t, cfg.Notify)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CREDSWEEP_DATA_DIR", "/mnt/other")
	t.Setenv("CREDSWEEP_SCAN_FILE_BATCH_SIZE", "3")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "/mnt/other", cfg.DataDir)
	assert.Equal(t, 3, cfg.Scan.FileBatchSize)
}

func TestLoadConfigClampsBatchSizes(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "credsweep")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(
		"scan:\n  project_batch_size: 0\n  file_batch_size: -2\n",
	), 0o644))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Scan.ProjectBatchSize)
	assert.Equal(t, 10, cfg.Scan.FileBatchSize)
}

func TestInitializeDefaultConfigIsIdempotent(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	require.NoError(t, InitializeDefaultConfig())
	path, err := GetConfigPath()
	require.NoError(t, err)
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	// A second call must not clobber an existing file.
	require.NoError(t, os.WriteFile(path, []byte("notify: true\n"), 0o644))
	require.NoError(t, InitializeDefaultConfig())
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEqual(t, string(first), string(second))
	assert.Equal(t, "notify: true\n", string(second))
}
