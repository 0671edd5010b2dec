// Package config handles loading todosync.toml configuration files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/amonks/todosync/internal/paths"
	internalstrings "github.com/amonks/todosync/internal/strings"
)

// ProjectFile is the name of the per-directory config file.
const ProjectFile = "todosync.toml"

// DefaultPort is used by `tl serve` when no port is configured.
const DefaultPort = 8099

// DefaultCacheTTL applies when a Redis URL is configured without a TTL.
const DefaultCacheTTL = 30 * time.Second

// Environment variables that override file settings.
const (
	EnvAddr     = "TL_ADDR"
	EnvAPIKey   = "TL_API_KEY"
	EnvRedisURL = "TL_REDIS_URL"
	EnvDebug    = "TL_DEBUG"
)

// Config represents the todosync.toml configuration file.
type Config struct {
	// Debug enables debug logging.
	Debug bool `toml:"debug"`

	Remote Remote `toml:"remote"`
	Cache  Cache  `toml:"cache"`
	Server Server `toml:"server"`
}

// Remote configures the connection to the todolist service.
type Remote struct {
	// BaseURL is the service root. Empty means the public service.
	BaseURL string `toml:"base-url"`

	// APIKey is sent with every request.
	APIKey string `toml:"api-key"`

	// Timeout bounds each request, e.g. "10s".
	Timeout time.Duration `toml:"timeout"`
}

// Cache configures the optional Redis response cache.
type Cache struct {
	// RedisURL enables caching when set, e.g. "redis://localhost:6379/0".
	RedisURL string `toml:"redis-url"`

	// TTL is how long cached lists stay fresh.
	TTL time.Duration `toml:"ttl"`
}

// Server configures `tl serve`.
type Server struct {
	Port int `toml:"port"`

	// APIKey, when set, is required from clients.
	APIKey string `toml:"api-key"`
}

// Load loads configuration from dir and the global config file, then
// applies non-blank environment overrides. Returns an empty config if no
// config files exist.
func Load(dir string) (*Config, error) {
	return load(dir, os.LookupEnv)
}

func load(dir string, lookupEnv func(string) (string, bool)) (*Config, error) {
	globalPath, err := paths.DefaultConfigPath()
	if err != nil {
		return nil, err
	}

	globalCfg, globalMeta, err := loadConfigFile(globalPath)
	if err != nil {
		return nil, err
	}

	projectCfg, projectMeta, err := loadConfigFile(filepath.Join(dir, ProjectFile))
	if err != nil {
		return nil, err
	}

	merged := mergeConfigs(globalCfg, projectCfg, globalMeta, projectMeta)
	if err := applyEnv(merged, lookupEnv); err != nil {
		return nil, err
	}
	if merged.Cache.RedisURL != "" && merged.Cache.TTL == 0 {
		merged.Cache.TTL = DefaultCacheTTL
	}
	return merged, nil
}

func loadConfigFile(path string) (*Config, toml.MetaData, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, toml.MetaData{}, nil
	}
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("read config file %s: %w", path, err)
	}

	var cfg Config
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	if cfg.Remote.Timeout < 0 || cfg.Cache.TTL < 0 {
		return nil, toml.MetaData{}, fmt.Errorf("parse config file %s: durations must not be negative", path)
	}

	return &cfg, meta, nil
}

func mergeConfigs(globalCfg, projectCfg *Config, globalMeta, projectMeta toml.MetaData) *Config {
	if globalCfg == nil {
		globalCfg = &Config{}
	}
	if projectCfg == nil {
		projectCfg = &Config{}
	}

	merged := Config{}
	merged.Debug = mergeValue(projectMeta.IsDefined("debug"), projectCfg.Debug, globalCfg.Debug)
	merged.Remote.BaseURL = mergeString(projectMeta.IsDefined("remote", "base-url"), projectCfg.Remote.BaseURL, globalCfg.Remote.BaseURL)
	merged.Remote.APIKey = mergeString(projectMeta.IsDefined("remote", "api-key"), projectCfg.Remote.APIKey, globalCfg.Remote.APIKey)
	merged.Remote.Timeout = mergeValue(projectMeta.IsDefined("remote", "timeout"), projectCfg.Remote.Timeout, globalCfg.Remote.Timeout)
	merged.Cache.RedisURL = mergeString(projectMeta.IsDefined("cache", "redis-url"), projectCfg.Cache.RedisURL, globalCfg.Cache.RedisURL)
	merged.Cache.TTL = mergeValue(projectMeta.IsDefined("cache", "ttl"), projectCfg.Cache.TTL, globalCfg.Cache.TTL)
	merged.Server.Port = mergeValue(projectMeta.IsDefined("server", "port"), projectCfg.Server.Port, globalCfg.Server.Port)
	merged.Server.APIKey = mergeString(projectMeta.IsDefined("server", "api-key"), projectCfg.Server.APIKey, globalCfg.Server.APIKey)

	return &merged
}

func mergeString(projectDefined bool, projectValue, globalValue string) string {
	return strings.TrimSpace(mergeValue(projectDefined, projectValue, globalValue))
}

func mergeValue[T any](projectDefined bool, projectValue, globalValue T) T {
	if projectDefined {
		return projectValue
	}
	return globalValue
}

func applyEnv(cfg *Config, lookupEnv func(string) (string, bool)) error {
	if value, ok := lookupEnv(EnvAddr); ok && !internalstrings.IsBlank(value) {
		cfg.Remote.BaseURL = strings.TrimSpace(value)
	}
	if value, ok := lookupEnv(EnvAPIKey); ok && !internalstrings.IsBlank(value) {
		cfg.Remote.APIKey = strings.TrimSpace(value)
	}
	if value, ok := lookupEnv(EnvRedisURL); ok && !internalstrings.IsBlank(value) {
		cfg.Cache.RedisURL = strings.TrimSpace(value)
	}
	if value, ok := lookupEnv(EnvDebug); ok && !internalstrings.IsBlank(value) {
		debug, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvDebug, err)
		}
		cfg.Debug = debug
	}
	return nil
}

// ResolveListenAddr returns the address `tl serve` listens on. An explicit
// addr wins; a bare port is bound on localhost.
func ResolveListenAddr(cfg *Config, addr string) (string, error) {
	if !internalstrings.IsBlank(addr) {
		return normalizeAddr(addr)
	}
	port := 0
	if cfg != nil {
		port = cfg.Server.Port
	}
	if port == 0 {
		port = DefaultPort
	}
	return normalizeAddr(strconv.Itoa(port))
}

func normalizeAddr(addr string) (string, error) {
	trimmed := strings.TrimSpace(addr)
	if trimmed == "" {
		return "", fmt.Errorf("address is required")
	}
	if strings.Contains(trimmed, ":") {
		return trimmed, nil
	}
	port, err := strconv.Atoi(trimmed)
	if err != nil {
		return "", fmt.Errorf("invalid port %q", trimmed)
	}
	if port <= 0 || port > 65535 {
		return "", fmt.Errorf("port out of range: %d", port)
	}
	return fmt.Sprintf("127.0.0.1:%d", port), nil
}
