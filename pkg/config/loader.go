package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the tool configuration loaded from config.yaml, with
// CREDSWEEP_* environment overrides.
type Config struct {
	DataDir string         `yaml:"data_dir" mapstructure:"data_dir"`
	Scan    ScanSettings   `yaml:"scan" mapstructure:"scan"`
	Server  ServerSettings `yaml:"server" mapstructure:"server"`
	Notify  bool           `yaml:"notify" mapstructure:"notify"`
}

// ScanSettings bounds the discussion scan's parallelism.
type ScanSettings struct {
	ProjectBatchSize int `yaml:"project_batch_size" mapstructure:"project_batch_size"`
	FileBatchSize    int `yaml:"file_batch_size" mapstructure:"file_batch_size"`
}

// ServerSettings configures the local HTTP surface.
type ServerSettings struct {
	ListenAddr string `yaml:"listen_addr" mapstructure:"listen_addr"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		DataDir: DefaultDataDir(),
		Scan: ScanSettings{
			ProjectBatchSize: 10,
			FileBatchSize:    10,
		},
		Server: ServerSettings{
			ListenAddr: "127.0.0.1:7465",
		},
		Notify: false,
	}
}

// InitializeDefaultConfig writes config.yaml with defaults if it doesn't
// exist yet.
func InitializeDefaultConfig() error {
	if _, err := EnsureConfigDir(); err != nil {
		return err
	}
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(configPath); err == nil {
		return nil
	}

	data, err := yaml.Marshal(Defaults())
	if err != nil {
		return fmt.Errorf("failed to encode default config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to create config.yaml: %v", err)
	}
	return nil
}

// LoadConfig loads configuration from config.yaml, applying defaults for
// missing fields and CREDSWEEP_* environment overrides
// (e.g. CREDSWEEP_DATA_DIR, CREDSWEEP_SERVER_LISTEN_ADDR).
func LoadConfig() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("credsweep")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := Defaults()
	v.SetDefault("data_dir", defaults.DataDir)
	v.SetDefault("scan.project_batch_size", defaults.Scan.ProjectBatchSize)
	v.SetDefault("scan.file_batch_size", defaults.Scan.FileBatchSize)
	v.SetDefault("server.listen_addr", defaults.Server.ListenAddr)
	v.SetDefault("notify", defaults.Notify)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and env cover it.
		if !os.IsNotExist(err) {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config file: %v", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %v", err)
	}

	if cfg.Scan.ProjectBatchSize <= 0 {
		cfg.Scan.ProjectBatchSize = defaults.Scan.ProjectBatchSize
	}
	if cfg.Scan.FileBatchSize <= 0 {
		cfg.Scan.FileBatchSize = defaults.Scan.FileBatchSize
	}
	return &cfg, nil
}
