package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds server and CLI settings. Values come from defaults, then an
// optional YAML file, then environment variables.
type Config struct {
	HTTPPort        string
	MongoURI        string
	MongoDatabase   string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	JWTSecret       string
	TokenTTL        time.Duration
	LogLevel        string
	HeatmapCacheTTL time.Duration
}

// DefaultConfig returns the built-in settings
func DefaultConfig() *Config {
	return &Config{
		HTTPPort:        "8080",
		MongoURI:        "mongodb://localhost:27017",
		MongoDatabase:   "quiz2biz",
		RedisAddr:       "localhost:6379",
		JWTSecret:       "super-secret-key-change-in-production",
		TokenTTL:        24 * time.Hour,
		LogLevel:        "info",
		HeatmapCacheTTL: 300 * time.Second,
	}
}

// LoadConfig reads a YAML config file over the defaults. A missing file is
// not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Durations are written as strings ("5m")
	type yamlConfig struct {
		HTTPPort  string `yaml:"http_port"`
		LogLevel  string `yaml:"log_level"`
		TokenTTL  string `yaml:"token_ttl"`
		JWTSecret string `yaml:"jwt_secret"`
		Mongo     struct {
			URI      string `yaml:"uri"`
			Database string `yaml:"database"`
		} `yaml:"mongo"`
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
		Heatmap struct {
			CacheTTL string `yaml:"cache_ttl"`
		} `yaml:"heatmap"`
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if yc.HTTPPort != "" {
		cfg.HTTPPort = yc.HTTPPort
	}
	if yc.LogLevel != "" {
		cfg.LogLevel = yc.LogLevel
	}
	if yc.JWTSecret != "" {
		cfg.JWTSecret = yc.JWTSecret
	}
	if yc.TokenTTL != "" {
		d, err := time.ParseDuration(yc.TokenTTL)
		if err != nil {
			return nil, fmt.Errorf("invalid token_ttl format %q: %w", yc.TokenTTL, err)
		}
		cfg.TokenTTL = d
	}
	if yc.Mongo.URI != "" {
		cfg.MongoURI = yc.Mongo.URI
	}
	if yc.Mongo.Database != "" {
		cfg.MongoDatabase = yc.Mongo.Database
	}
	if yc.Redis.Addr != "" {
		cfg.RedisAddr = stripRedisScheme(yc.Redis.Addr)
	}
	if yc.Redis.Password != "" {
		cfg.RedisPassword = yc.Redis.Password
	}
	if yc.Redis.DB != 0 {
		cfg.RedisDB = yc.Redis.DB
	}
	if yc.Heatmap.CacheTTL != "" {
		d, err := time.ParseDuration(yc.Heatmap.CacheTTL)
		if err != nil {
			return nil, fmt.Errorf("invalid heatmap.cache_ttl format %q: %w", yc.Heatmap.CacheTTL, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("heatmap.cache_ttl must be positive, got %s", d)
		}
		cfg.HeatmapCacheTTL = d
	}

	return cfg, nil
}

// ApplyEnv overrides settings from the environment
func (c *Config) ApplyEnv() error {
	c.HTTPPort = getEnv("PORT", c.HTTPPort)
	c.MongoURI = getEnv("MONGO_URI", c.MongoURI)
	c.MongoDatabase = getEnv("MONGO_DATABASE", c.MongoDatabase)
	c.RedisAddr = stripRedisScheme(getEnv("REDIS_URI", c.RedisAddr))
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	if v := os.Getenv("REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid REDIS_DB %q: %w", v, err)
		}
		c.RedisDB = db
	}
	if v := os.Getenv("HEATMAP_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid HEATMAP_CACHE_TTL %q: %w", v, err)
		}
		c.HeatmapCacheTTL = d
	}
	return nil
}

// Load reads path (if any) and then applies the environment
func Load(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func stripRedisScheme(addr string) string {
	return strings.TrimPrefix(addr, "redis://")
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
