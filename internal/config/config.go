package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/unkn0wn-root/entitycache"
	"github.com/unkn0wn-root/entitycache/gate"
	redisstore "github.com/unkn0wn-root/entitycache/store/redis"
	"gopkg.in/yaml.v3"
)

// RedisConfig holds the connection to the shared store
type RedisConfig struct {
	Addr         string        `yaml:"addr"`
	Username     string        `yaml:"username"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"` // 0 => redisstore.DefaultDB
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	PoolSize     int           `yaml:"pool_size"`
}

// CacheConfig holds entity cache configuration
type CacheConfig struct {
	Namespace string `yaml:"namespace"`
	Gate      string `yaml:"gate"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config represents the complete CLI configuration
type Config struct {
	Redis   RedisConfig   `yaml:"redis"`
	Cache   CacheConfig   `yaml:"cache"`
	Logging LoggingConfig `yaml:"logging"`
}

// LoadConfig loads configuration from a file. An empty path yields the
// defaults.
func LoadConfig(filePath string) (*Config, error) {
	var cfg Config
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	setDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Redis.DB == 0 {
		cfg.Redis.DB = redisstore.DefaultDB
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = 5 * time.Second
	}
	if cfg.Redis.ReadTimeout == 0 {
		cfg.Redis.ReadTimeout = 3 * time.Second
	}
	if cfg.Redis.WriteTimeout == 0 {
		cfg.Redis.WriteTimeout = 3 * time.Second
	}
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = 10
	}

	if cfg.Cache.Namespace == "" {
		cfg.Cache.Namespace = entitycache.DefaultNamespace
	} else {
		// whitespace-only stays blank so Validate rejects it
		cfg.Cache.Namespace = strings.TrimSpace(cfg.Cache.Namespace)
	}
	if cfg.Cache.Gate == "" {
		cfg.Cache.Gate = gate.Full.String()
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Redis.DB < 1 || c.Redis.DB > 15 {
		return fmt.Errorf("redis db must be in [1, 15], got %d", c.Redis.DB)
	}
	if c.Redis.PoolSize < 0 {
		return fmt.Errorf("redis pool size must not be negative")
	}
	if strings.TrimSpace(c.Cache.Namespace) == "" {
		return fmt.Errorf("cache namespace must not be blank")
	}
	if _, err := gate.ParsePolicy(c.Cache.Gate); err != nil {
		return err
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format: %q", c.Logging.Format)
	}
	return nil
}

// DialConfig converts the redis section for redisstore.Dial.
func (r RedisConfig) DialConfig() redisstore.DialConfig {
	return redisstore.DialConfig{
		Addr:         r.Addr,
		Username:     r.Username,
		Password:     r.Password,
		DB:           r.DB,
		DialTimeout:  r.DialTimeout,
		ReadTimeout:  r.ReadTimeout,
		WriteTimeout: r.WriteTimeout,
		PoolSize:     r.PoolSize,
	}
}
