package config

import (
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/shiikun-cn/tarot-mcp/internal/logger"
)

type Config struct {
	AppPort string

	APIKey     string
	APIKeyHash string

	RedisAddr     string
	RedisPassword string

	DatabaseDSN string

	// Candidate CSV paths, tried in order; the first readable one wins.
	DeckPaths []string
}

// fileConfig mirrors Config for the optional TOML config file.
type fileConfig struct {
	AppPort       string   `toml:"app_port"`
	APIKey        string   `toml:"api_key"`
	APIKeyHash    string   `toml:"api_key_hash"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	DatabaseDSN   string   `toml:"database_dsn"`
	DeckPaths     []string `toml:"deck_paths"`
}

// Load builds the config from the environment, with an optional TOML file
// (CONFIG_FILE) supplying defaults. Environment variables win over the file.
func Load() Config {

	var cfg Config

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		var fc fileConfig
		if _, err := toml.DecodeFile(path, &fc); err != nil {
			logger.Warn("failed to read config file, using environment only", map[string]any{
				"path":  path,
				"error": err.Error(),
			})
		} else {
			cfg = Config{
				AppPort:       fc.AppPort,
				APIKey:        fc.APIKey,
				APIKeyHash:    fc.APIKeyHash,
				RedisAddr:     fc.RedisAddr,
				RedisPassword: fc.RedisPassword,
				DatabaseDSN:   fc.DatabaseDSN,
				DeckPaths:     fc.DeckPaths,
			}
		}
	}

	overlay(&cfg.AppPort, "APP_PORT")
	overlay(&cfg.APIKey, "API_KEY")
	overlay(&cfg.APIKeyHash, "API_KEY_HASH")
	overlay(&cfg.RedisAddr, "REDIS_ADDR")
	overlay(&cfg.RedisPassword, "REDIS_PASSWORD")
	overlay(&cfg.DatabaseDSN, "DATABASE_DSN")

	if v := os.Getenv("TAROT_CSV"); v != "" {
		cfg.DeckPaths = cfg.DeckPaths[:0]
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				cfg.DeckPaths = append(cfg.DeckPaths, p)
			}
		}
	}

	if cfg.AppPort == "" {
		cfg.AppPort = "8080"
	}
	if len(cfg.DeckPaths) == 0 {
		cfg.DeckPaths = []string{"data/tarot.csv", "data/tarot_sample.csv"}
	}

	return cfg

}

func overlay(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
