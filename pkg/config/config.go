package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	Feed      FeedConfig
	Auth      AuthConfig
	Assistant AssistantConfig
}

// ServerConfig holds listener addresses.
type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
	TCPAddr  string `mapstructure:"tcp_addr"` // change-feed TCP listener
	UDPAddr  string `mapstructure:"udp_addr"` // push-notification registry
}

type DatabaseConfig struct {
	Path string
}

// CacheConfig selects the cache backend. RedisAddr empty means the
// file-backed store under Dir is used.
type CacheConfig struct {
	Dir       string
	RedisAddr string        `mapstructure:"redis_addr"`
	RedisDB   int           `mapstructure:"redis_db"`
	TTL       time.Duration `mapstructure:"ttl"`
}

// FeedConfig holds upstream deals-feed settings.
type FeedConfig struct {
	URL       string
	APIKey    string `mapstructure:"api_key"`
	MirrorURL string `mapstructure:"mirror_url"`
	Cron      string // cron spec for in-process sync; empty disables
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	JWTIssuer string        `mapstructure:"jwt_issuer"`
	JWTTTL    time.Duration `mapstructure:"jwt_ttl"`
}

// AssistantConfig points at a hosted chat-completion API. Endpoint empty
// disables the assistant routes.
type AssistantConfig struct {
	Endpoint string
	APIKey   string `mapstructure:"api_key"`
	Model    string
}

// Load reads configuration from defaults, an optional config file and
// OFFERSMONKEY_* environment variables (env wins).
func Load() (Config, error) {
	v := viper.New()

	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}
	base := filepath.Join(home, ".offersmonkey")

	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("server.tcp_addr", ":7070")
	v.SetDefault("server.udp_addr", ":7071")
	v.SetDefault("database.path", filepath.Join(base, "data.db"))
	v.SetDefault("cache.dir", filepath.Join(base, "cache"))
	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.ttl", time.Hour)
	v.SetDefault("feed.url", "")
	v.SetDefault("feed.api_key", "")
	v.SetDefault("feed.mirror_url", "http://localhost:9000")
	v.SetDefault("feed.cron", "")
	v.SetDefault("auth.jwt_secret", "dev-secret-change-me")
	v.SetDefault("auth.jwt_issuer", "offersmonkey")
	v.SetDefault("auth.jwt_ttl", 24*time.Hour)
	v.SetDefault("assistant.endpoint", "")
	v.SetDefault("assistant.api_key", "")
	v.SetDefault("assistant.model", "gpt-4o-mini")

	v.SetConfigType("yaml")
	if p := os.Getenv("OFFERSMONKEY_CONFIG"); p != "" {
		v.SetConfigFile(p)
	} else {
		v.AddConfigPath(base)
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("OFFERSMONKEY")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// config file is optional
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// MustLoad is Load with a fatal on error, for package main.
func MustLoad() Config {
	c, err := Load()
	if err != nil {
		panic(fmt.Sprintf("load config: %v", err))
	}
	return c
}
