// Package config loads the TOML configuration file and applies
// environment overrides on top of built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

type Config struct {
	General   GeneralConfig   `toml:"general"`
	Provider  ProviderConfig  `toml:"provider"`
	Catalog   CatalogConfig   `toml:"catalog"`
	Store     StoreConfig     `toml:"store"`
	Server    ServerConfig    `toml:"server"`
	Gateway   GatewayConfig   `toml:"gateway"`
	Recommend RecommendConfig `toml:"recommend"`
	Logging   LoggingConfig   `toml:"logging"`
}

type GeneralConfig struct {
	DataDir string `toml:"data_dir"`
}

type ProviderConfig struct {
	BaseURL string `toml:"base_url"`
	// APIKey is optional: model listing works without it, while
	// endpoint/parameter detail and embeddings require it.
	APIKey         string  `toml:"api_key"`
	EmbeddingModel string  `toml:"embedding_model"`
	EmbedRate      float64 `toml:"embed_rate"`
}

type CatalogConfig struct {
	TTLMS          int64 `toml:"ttl_ms"`
	EmbeddingTTLMS int64 `toml:"embedding_ttl_ms"`
}

type StoreConfig struct {
	// Backend selects the durable cache: "file" or "sqlite".
	Backend string `toml:"backend"`
	Path    string `toml:"path"`
}

type ServerConfig struct {
	ListenAddr string `toml:"listen_addr"`
}

type GatewayConfig struct {
	RequestTimeout  string        `toml:"request_timeout"`
	RequestTimeoutD time.Duration `toml:"-"`
}

type RecommendConfig struct {
	DefaultLimit     int    `toml:"default_limit"`
	DefaultVerbosity string `toml:"default_verbosity"`
	DefaultStrategy  string `toml:"default_strategy"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".modelscout")

	return &Config{
		General: GeneralConfig{
			DataDir: dataDir,
		},
		Provider: ProviderConfig{
			BaseURL:        "https://openrouter.ai/api/v1",
			APIKey:         "",
			EmbeddingModel: "openai/text-embedding-3-small",
			EmbedRate:      2,
		},
		Catalog: CatalogConfig{
			TTLMS:          600_000,
			EmbeddingTTLMS: 86_400_000,
		},
		Store: StoreConfig{
			Backend: "file",
			Path:    filepath.Join(dataDir, "cache"),
		},
		Server: ServerConfig{
			ListenAddr: "127.0.0.1:9090",
		},
		Gateway: GatewayConfig{
			RequestTimeout: "30s",
		},
		Recommend: RecommendConfig{
			DefaultLimit:     5,
			DefaultVerbosity: "compact",
			DefaultStrategy:  "weighted",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			File:   "",
		},
	}
}

func LoadFromFile(path string) (*Config, error) {
	expandedPath, err := expandPath(path)
	if err != nil {
		return nil, fmt.Errorf("expand path: %w", err)
	}

	data, err := os.ReadFile(expandedPath)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("decode TOML: %w", err)
	}

	if err := cfg.postProcess(); err != nil {
		return nil, fmt.Errorf("post process config: %w", err)
	}

	return cfg, nil
}

func (c *Config) postProcess() error {
	var err error

	if c.Gateway.RequestTimeoutD, err = time.ParseDuration(c.Gateway.RequestTimeout); err != nil {
		return fmt.Errorf("parse gateway.request_timeout: %w", err)
	}

	c.General.DataDir, err = expandPath(c.General.DataDir)
	if err != nil {
		return fmt.Errorf("expand general.data_dir: %w", err)
	}

	c.Store.Path, err = expandPath(c.Store.Path)
	if err != nil {
		return fmt.Errorf("expand store.path: %w", err)
	}

	c.Logging.File, err = expandPath(c.Logging.File)
	if err != nil {
		return fmt.Errorf("expand logging.file: %w", err)
	}

	return nil
}

func (c *Config) Validate() error {
	if c.Catalog.TTLMS <= 0 {
		return fmt.Errorf("catalog.ttl_ms must be positive, got %d", c.Catalog.TTLMS)
	}

	if c.Catalog.EmbeddingTTLMS <= 0 {
		return fmt.Errorf("catalog.embedding_ttl_ms must be positive, got %d", c.Catalog.EmbeddingTTLMS)
	}

	if c.Provider.EmbedRate <= 0 {
		return fmt.Errorf("provider.embed_rate must be positive, got %.2f", c.Provider.EmbedRate)
	}

	switch c.Store.Backend {
	case "file", "sqlite":
	default:
		return fmt.Errorf("invalid store backend: %s (valid: file, sqlite)", c.Store.Backend)
	}

	if c.Recommend.DefaultLimit < 1 {
		return fmt.Errorf("recommend.default_limit must be at least 1, got %d", c.Recommend.DefaultLimit)
	}

	switch c.Recommend.DefaultVerbosity {
	case "ids", "compact", "standard", "raw":
	default:
		return fmt.Errorf("invalid default verbosity: %s (valid: ids, compact, standard, raw)", c.Recommend.DefaultVerbosity)
	}

	switch c.Recommend.DefaultStrategy {
	case "ordinal", "weighted":
	default:
		return fmt.Errorf("invalid default strategy: %s (valid: ordinal, weighted)", c.Recommend.DefaultStrategy)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid logging level: %s (valid: debug, info, warn, error)", c.Logging.Level)
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		return fmt.Errorf("invalid logging format: %s (valid: json, text)", c.Logging.Format)
	}

	return nil
}

func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MODELSCOUT_DATA_DIR"); v != "" {
		cfg.General.DataDir = v
	}
	if v := os.Getenv("MODELSCOUT_BASE_URL"); v != "" {
		cfg.Provider.BaseURL = v
	}
	if v := os.Getenv("OPENROUTER_API_KEY"); v != "" {
		cfg.Provider.APIKey = v
	}
	if v := os.Getenv("MODELSCOUT_API_KEY"); v != "" {
		cfg.Provider.APIKey = v
	}
	if v := os.Getenv("MODELSCOUT_EMBEDDING_MODEL"); v != "" {
		cfg.Provider.EmbeddingModel = v
	}
	if v := os.Getenv("MODELSCOUT_CATALOG_TTL_MS"); v != "" {
		if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Catalog.TTLMS = ms
		}
	}
	if v := os.Getenv("MODELSCOUT_EMBEDDING_TTL_MS"); v != "" {
		if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Catalog.EmbeddingTTLMS = ms
		}
	}
	if v := os.Getenv("MODELSCOUT_STORE_BACKEND"); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv("MODELSCOUT_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("MODELSCOUT_LISTEN"); v != "" {
		cfg.Server.ListenAddr = v
	}
	if v := os.Getenv("MODELSCOUT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get user home directory: %w", err)
		}
		return filepath.Join(homeDir, path[2:]), nil
	}

	return path, nil
}

// Load resolves the effective configuration: .env file, then the TOML
// file if given, then environment overrides, then validation.
func Load(configPath string) (*Config, error) {
	// Missing .env is normal.
	_ = godotenv.Load()

	var cfg *Config
	var err error

	if configPath != "" {
		cfg, err = LoadFromFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("load config from %s: %w", configPath, err)
		}
	} else {
		cfg = Default()
	}

	ApplyEnvOverrides(cfg)

	if err := cfg.postProcess(); err != nil {
		return nil, fmt.Errorf("post process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}
