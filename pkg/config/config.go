package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetConfigDir returns credsweep's own configuration directory
// (~/.config/credsweep).
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %v", err)
	}
	return filepath.Join(home, ".config", "credsweep"), nil
}

// EnsureConfigDir creates the config directory if it doesn't exist.
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %v", err)
	}
	return configDir, nil
}

// GetConfigPath returns the path to config.yaml.
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.yaml"), nil
}

// GetCachePath returns the path to the scan cache file.
func GetCachePath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "scan-cache.json"), nil
}

// DefaultDataDir returns the assistant data directory scanned by default
// (~/.assistant).
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".assistant"
	}
	return filepath.Join(home, ".assistant")
}

// UserSettingsPath returns the user-scope settings document inside a data dir.
func UserSettingsPath(dataDir string) string {
	return filepath.Join(dataDir, "settings.json")
}

// IndexPath returns the project index document inside a data dir.
func IndexPath(dataDir string) string {
	return filepath.Join(dataDir, "index.json")
}

// ProjectsDir returns the transcript root inside a data dir: one
// encoded-name subdirectory per project, each holding .jsonl transcripts.
func ProjectsDir(dataDir string) string {
	return filepath.Join(dataDir, "projects")
}

// ProjectSettingsPath returns a project's shared settings document.
func ProjectSettingsPath(projectPath string) string {
	return filepath.Join(projectPath, ".assistant", "settings.json")
}

// ProjectLocalSettingsPath returns a project's local (uncommitted) settings
// document.
func ProjectLocalSettingsPath(projectPath string) string {
	return filepath.Join(projectPath, ".assistant", "settings.local.json")
}
