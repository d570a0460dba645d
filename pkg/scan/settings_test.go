package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credsweep/credsweep/pkg/config"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func setupDataDir(t *testing.T) (dataDir, projectPath string) {
	t.Helper()
	dataDir = t.TempDir()
	projectPath = t.TempDir()

	writeFile(t, config.IndexPath(dataDir),
		fmt.Sprintf(`{"projects":{%q:{}}}`, projectPath))
	return dataDir, projectPath
}

func TestScanSettingsProjectScope(t *testing.T) {
	dataDir, projectPath := setupDataDir(t)
	writeFile(t, config.ProjectSettingsPath(projectPath),
		fmt.Sprintf(`{"apiKey": %q}`, anthropicToken))

	matches := ScanSettings(dataDir)
	require.Len(t, matches, 1)

	m := matches[0]
	assert.Equal(t, "anthropic_key", m.Type)
	assert.Equal(t, "critical", m.Severity)
	assert.Equal(t, anthropicToken, m.FullPattern)
	assert.Equal(t, "sk-a...7890", m.RedactedValue)

	loc, ok := m.Location.(SettingsLocation)
	require.True(t, ok)
	assert.Equal(t, ScopeProject, loc.Scope)
	assert.Equal(t, projectPath, loc.ProjectPath)
	assert.Equal(t, "apiKey", loc.SettingsKey)
}

func TestScanSettingsAllScopes(t *testing.T) {
	dataDir, projectPath := setupDataDir(t)

	writeFile(t, config.UserSettingsPath(dataDir),
		fmt.Sprintf(`{"env":{"ANTHROPIC_API_KEY": %q}}`, anthropicToken))
	writeFile(t, config.ProjectSettingsPath(projectPath),
		fmt.Sprintf(`{"hooks":[{"command":"curl -H 'Authorization: %s'"}]}`, githubToken))
	writeFile(t, config.ProjectLocalSettingsPath(projectPath),
		`{"theme":"dark"}`)

	matches := ScanSettings(dataDir)
	require.Len(t, matches, 2)

	byScope := map[string]TokenMatch{}
	for _, m := range matches {
		byScope[m.Location.(SettingsLocation).Scope] = m
	}

	user := byScope[ScopeUser]
	assert.Equal(t, "anthropic_key", user.Type)
	assert.Equal(t, "env.ANTHROPIC_API_KEY", user.Location.(SettingsLocation).SettingsKey)
	assert.Empty(t, user.Location.(SettingsLocation).ProjectPath)

	project := byScope[ScopeProject]
	assert.Equal(t, "github_token", project.Type)
	assert.Equal(t, "hooks[0].command", project.Location.(SettingsLocation).SettingsKey)
}

func TestScanSettingsMissingAndCorruptDocsSkipped(t *testing.T) {
	dataDir, projectPath := setupDataDir(t)

	// User settings absent, project settings corrupt, local settings valid.
	writeFile(t, config.ProjectSettingsPath(projectPath), `{not json`)
	writeFile(t, config.ProjectLocalSettingsPath(projectPath),
		fmt.Sprintf(`{"token": %q}`, githubToken))

	matches := ScanSettings(dataDir)
	require.Len(t, matches, 1)
	assert.Equal(t, ScopeProjectLocal, matches[0].Location.(SettingsLocation).Scope)
}

func TestScanSettingsCorruptIndexMeansNoProjects(t *testing.T) {
	dataDir := t.TempDir()
	writeFile(t, config.IndexPath(dataDir), `not json at all`)
	writeFile(t, config.UserSettingsPath(dataDir),
		fmt.Sprintf(`{"apiKey": %q}`, anthropicToken))

	matches := ScanSettings(dataDir)
	require.Len(t, matches, 1)
	assert.Equal(t, ScopeUser, matches[0].Location.(SettingsLocation).Scope)
}

func TestScanSettingsIdempotent(t *testing.T) {
	dataDir, projectPath := setupDataDir(t)
	writeFile(t, config.UserSettingsPath(dataDir),
		fmt.Sprintf(`{"a": %q, "b": {"c": %q}}`, anthropicToken, githubToken))
	writeFile(t, config.ProjectSettingsPath(projectPath),
		fmt.Sprintf(`{"nested":[%q]}`, jwtToken))

	type key struct {
		typ, redacted string
		loc           SettingsLocation
	}
	snapshot := func(matches []TokenMatch) []key {
		var out []key
		for _, m := range matches {
			out = append(out, key{m.Type, m.RedactedValue, m.Location.(SettingsLocation)})
		}
		sort.Slice(out, func(i, j int) bool {
			return fmt.Sprint(out[i]) < fmt.Sprint(out[j])
		})
		return out
	}

	first := ScanSettings(dataDir)
	second := ScanSettings(dataDir)
	require.Len(t, first, 3)
	assert.Equal(t, snapshot(first), snapshot(second))
}

func TestScanSettingsFalsePositivesFiltered(t *testing.T) {
	dataDir, _ := setupDataDir(t)
	writeFile(t, config.UserSettingsPath(dataDir),
		`{"apiKey": "sk-ant-${ANTHROPIC_API_KEY}"}`)

	assert.Empty(t, ScanSettings(dataDir))
}
