/*
Package config manages TOML config for ampidx's ingestion, server, and CLI.

InitConfig handles automatic config file creation and loading with fallback
to defaults. LoadConfig and SaveConfig provide direct file access for
runtime changes. Update allows targeted parameter changes with persistence.
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/ncloudioj/ampidx/internal/utils"
	"github.com/ncloudioj/ampidx/pkg/ingest"
)

// Config holds the entire config structure.
type Config struct {
	Build  BuildConfig  `toml:"build"`
	Server ServerConfig `toml:"server"`
	CLI    CliConfig    `toml:"cli"`
}

// BuildConfig has ingestion and index-build related options.
type BuildConfig struct {
	DataDir          string `toml:"data_dir"`
	MaxRecords       int    `toml:"max_records"`
	RejectOnMismatch bool   `toml:"reject_on_mismatch"`
}

// ServerConfig has IPC server related options.
type ServerConfig struct {
	MaxPrefixLen int  `toml:"max_prefix_len"`
	CacheSize    int  `toml:"cache_size"`
	EnableCache  bool `toml:"enable_cache"`
}

// CliConfig holds interactive CLI options.
type CliConfig struct {
	WarnOnRepetitive bool   `toml:"warn_on_repetitive"`
	PromptStyle      string `toml:"prompt_style"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Build: BuildConfig{
			DataDir:          "data",
			MaxRecords:       1_000_000,
			RejectOnMismatch: true,
		},
		Server: ServerConfig{
			MaxPrefixLen: 64,
			CacheSize:    4096,
			EnableCache:  true,
		},
		CLI: CliConfig{
			WarnOnRepetitive: true,
			PromptStyle:      "default",
		},
	}
}

// InitConfig loads config from file or creates default if missing.
func InitConfig(configPath string) (*Config, error) {
	dir := filepath.Dir(configPath)
	if status := utils.CheckDirStatus(dir); status.Error != nil {
		return nil, status.Error
	}
	if !utils.FileExists(configPath) {
		cfg := DefaultConfig()
		if err := SaveConfig(cfg, configPath); err != nil {
			return nil, err
		}
		log.Debugf("created default config file at: ( %s )", utils.GetAbsolutePath(configPath))
		return cfg, nil
	}
	cfg, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("failed to load config, using defaults: %v", err)
		return DefaultConfig(), nil
	}
	return cfg, nil
}

// LoadConfig loads from a TOML file, falling back to a partial recovery
// pass over the raw table if strict decoding fails.
func LoadConfig(configPath string) (*Config, error) {
	var cfg Config
	if err := utils.LoadTOMLFile(configPath, &cfg); err != nil {
		recovered, recErr := recoverPartialConfig(configPath)
		if recErr != nil {
			return nil, err
		}
		return recovered, nil
	}
	return &cfg, nil
}

// recoverPartialConfig reads the server section's max_prefix_len,
// cache_size and enable_cache from a TOML file that failed strict decoding;
// every other setting, including the build and cli sections, keeps its
// default.
func recoverPartialConfig(configPath string) (*Config, error) {
	data, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if server, ok := utils.ExtractSection(data, "server"); ok {
		if v, ok := utils.ExtractInt64(server, "max_prefix_len"); ok {
			cfg.Server.MaxPrefixLen = v
		}
		if v, ok := utils.ExtractInt64(server, "cache_size"); ok {
			cfg.Server.CacheSize = v
		}
		if v, ok := utils.ExtractBool(server, "enable_cache"); ok {
			cfg.Server.EnableCache = v
		}
	}
	log.Warnf("recovered partial config from %s", utils.GetAbsolutePath(configPath))
	return cfg, nil
}

// SaveConfig saves into a TOML file.
func SaveConfig(cfg *Config, configPath string) error {
	return utils.SaveTOMLFile(cfg, configPath)
}

// LoadConfigWithPriority resolves a config in priority order: an explicit
// path argument, then the AMPIDX_CONFIG environment variable, then the
// platform config directory's default file. A missing file at the chosen
// path is created with defaults. If no platform config path can be
// resolved, in-memory defaults are returned with an empty path. Returns the
// config and the path it was loaded from or created at.
func LoadConfigWithPriority(explicitPath string) (*Config, string, error) {
	if explicitPath != "" {
		cfg, err := InitConfig(explicitPath)
		return cfg, explicitPath, err
	}
	if envPath := os.Getenv("AMPIDX_CONFIG"); envPath != "" {
		cfg, err := InitConfig(envPath)
		return cfg, envPath, err
	}

	resolver, err := ingest.NewPathResolver()
	if err != nil {
		log.Warnf("failed to resolve default config directory: %v", err)
		return DefaultConfig(), "", nil
	}
	path, err := resolver.GetConfigPath("ampidx.toml")
	if err != nil {
		log.Warnf("failed to resolve config path: %v", err)
		return DefaultConfig(), "", nil
	}
	cfg, err := InitConfig(path)
	return cfg, path, err
}

// Update changes config values and saves to file.
func (c *Config) Update(configPath string, maxPrefixLen, cacheSize *int, enableCache *bool) error {
	server := &c.Server
	if maxPrefixLen != nil {
		server.MaxPrefixLen = *maxPrefixLen
	}
	if cacheSize != nil {
		server.CacheSize = *cacheSize
	}
	if enableCache != nil {
		server.EnableCache = *enableCache
	}
	return SaveConfig(c, configPath)
}
