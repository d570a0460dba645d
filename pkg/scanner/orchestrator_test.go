package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credsweep/credsweep/pkg/cache"
	"github.com/credsweep/credsweep/pkg/config"
	"github.com/credsweep/credsweep/pkg/scan"
)

const (
	anthropicToken = "sk-ant-REDACTED"
	githubToken    = "ghp_abcdEFGH12345678901234"
)

func testOrchestrator(t *testing.T) (*Orchestrator, *cache.Store, string) {
	t.Helper()
	dataDir := t.TempDir()
	cfg := config.Defaults()
	cfg.DataDir = dataDir

	store := cache.NewStore(filepath.Join(t.TempDir(), "scan-cache.json"))
	return New(store, cfg), store, dataDir
}

func writeDoc(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func writeSession(t *testing.T, dataDir, encodedDir, session, content string) string {
	t.Helper()
	path := filepath.Join(config.ProjectsDir(dataDir), encodedDir, session+".jsonl")
	writeDoc(t, path, content)
	return path
}

func TestBackgroundScanHappyPath(t *testing.T) {
	orch, store, dataDir := testOrchestrator(t)
	writeSession(t, dataDir, "-home-user-myapp", "s1",
		fmt.Sprintf(`{"type":"user","content":"here: %s"}`+"\n", anthropicToken))

	require.NoError(t, orch.RunBackgroundScan(context.Background()))

	c := store.Load()
	assert.Equal(t, cache.StatusCompleted, c.ScanStatus)
	assert.True(t, c.DiscussionsScanned)
	assert.Equal(t, 1, c.DiscussionCount)
	assert.False(t, c.LastScanTimestamp.IsZero())
	assert.Empty(t, c.ScanError)
	require.Len(t, c.Tokens, 1)
	assert.Equal(t, "anthropic_key", c.Tokens[0].Type)
}

func TestBackgroundScanReplacesTokens(t *testing.T) {
	orch, store, _ := testOrchestrator(t)

	stale := cache.Defaults()
	stale.Tokens = []scan.TokenMatch{{
		ID:   "stale",
		Type: "github_token",
		Location: scan.DiscussionLocation{
			EncodedProjectDir: "-gone", SessionID: "old", FilePath: "/gone.jsonl",
		},
	}}
	require.NoError(t, store.Save(stale))

	// Empty data dir: the scan finds nothing, and the old findings must not
	// survive the replacement.
	require.NoError(t, orch.RunBackgroundScan(context.Background()))
	c := store.Load()
	assert.Equal(t, cache.StatusCompleted, c.ScanStatus)
	assert.Empty(t, c.Tokens)
}

func TestBackgroundScanNoOpWhileRunning(t *testing.T) {
	orch, store, dataDir := testOrchestrator(t)
	writeSession(t, dataDir, "-p", "s1",
		fmt.Sprintf(`{"type":"user","content":"%s"}`+"\n", anthropicToken))

	running := cache.Defaults()
	running.ScanStatus = cache.StatusRunning
	require.NoError(t, store.Save(running))

	require.NoError(t, orch.RunBackgroundScan(context.Background()))

	c := store.Load()
	assert.Equal(t, cache.StatusRunning, c.ScanStatus)
	assert.True(t, c.LastScanTimestamp.IsZero(), "a no-op must not touch the scan timestamp")
	assert.Empty(t, c.Tokens)
}

func TestBackgroundScanCanceledSetsError(t *testing.T) {
	orch, store, dataDir := testOrchestrator(t)
	for i := 0; i < 12; i++ {
		writeSession(t, dataDir, fmt.Sprintf("-p%02d", i), "s1",
			`{"type":"user","content":"hi"}`+"\n")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := orch.RunBackgroundScan(ctx)
	require.Error(t, err)

	c := store.Load()
	assert.Equal(t, cache.StatusError, c.ScanStatus)
	assert.NotEmpty(t, c.ScanError)
}

func TestSettingsScanUpdatesCacheKeepingDiscussionFindings(t *testing.T) {
	orch, store, dataDir := testOrchestrator(t)

	existing := cache.Defaults()
	existing.Tokens = []scan.TokenMatch{
		{
			ID:   "disc",
			Type: "github_token",
			Location: scan.DiscussionLocation{
				EncodedProjectDir: "-p", SessionID: "s", FilePath: "/p/s.jsonl",
			},
		},
		{
			ID:   "old-settings",
			Type: "anthropic_key",
			Location: scan.SettingsLocation{
				Scope: scan.ScopeUser, SettingsKey: "removedSinceLastScan",
			},
		},
	}
	require.NoError(t, store.Save(existing))

	writeDoc(t, config.UserSettingsPath(dataDir),
		fmt.Sprintf(`{"apiKey": %q}`, anthropicToken))

	matches, err := orch.RunSettingsScan()
	require.NoError(t, err)
	require.Len(t, matches, 1)

	c := store.Load()
	assert.True(t, c.SettingsScanned)
	require.Len(t, c.Tokens, 2)

	var ids []string
	for _, m := range c.Tokens {
		ids = append(ids, m.ID)
	}
	assert.Contains(t, ids, "disc")
	assert.NotContains(t, ids, "old-settings")
}
