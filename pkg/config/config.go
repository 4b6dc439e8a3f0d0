// Package config loads the foodapp process configuration.
//
// Values are resolved in three layers: built-in defaults, an optional YAML
// file, then FOODAPP_* environment variables (FOODAPP_CACHE_BACKEND
// overrides cache.backend).
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Sternrassler/foodapp/pkg/cache"
	"github.com/Sternrassler/foodapp/pkg/sweeper"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FOODAPP"

// Cache backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config is the complete process configuration.
type Config struct {
	Log   LogConfig   `mapstructure:"log"`
	HTTP  HTTPConfig  `mapstructure:"http"`
	Cache CacheConfig `mapstructure:"cache"`
	Redis RedisConfig `mapstructure:"redis"`
	Sweep SweepConfig `mapstructure:"sweep"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// HTTPConfig configures the health and metrics listener.
type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// CacheConfig selects and sizes the cache backend.
type CacheConfig struct {
	Backend             string `mapstructure:"backend"`
	MaxEntriesPerRegion int    `mapstructure:"max_entries_per_region"`
	KeyPrefix           string `mapstructure:"key_prefix"`
}

// RedisConfig contains Redis connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// ConnectAttempts and ConnectBackoff bound the startup ping.
	ConnectAttempts int           `mapstructure:"connect_attempts"`
	ConnectBackoff  time.Duration `mapstructure:"connect_backoff"`
}

// Connect returns the startup ping policy.
func (r RedisConfig) Connect() cache.ConnectConfig {
	cfg := cache.DefaultConnectConfig()
	cfg.MaxAttempts = r.ConnectAttempts
	cfg.InitialBackoff = r.ConnectBackoff
	return cfg
}

// SweepConfig contains the region sweep schedules.
type SweepConfig struct {
	FoodDailyAt     string        `mapstructure:"food_daily_at"`
	Location        string        `mapstructure:"location"`
	BillEvery       time.Duration `mapstructure:"bill_every"`
	RestaurantEvery time.Duration `mapstructure:"restaurant_every"`
	UserEvery       time.Duration `mapstructure:"user_every"`
	OrderEvery      time.Duration `mapstructure:"order_every"`
}

// Load resolves the configuration. An empty path, or a path that does not
// exist, leaves defaults and environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	sched := sweeper.DefaultSchedules()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.shutdown_timeout", "10s")

	v.SetDefault("cache.backend", BackendMemory)
	v.SetDefault("cache.max_entries_per_region", cache.DefaultMaxEntriesPerRegion)
	v.SetDefault("cache.key_prefix", cache.DefaultKeyPrefix)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.connect_attempts", cache.DefaultConnectConfig().MaxAttempts)
	v.SetDefault("redis.connect_backoff", cache.DefaultConnectConfig().InitialBackoff)

	v.SetDefault("sweep.food_daily_at", sched.FoodDailyAt)
	v.SetDefault("sweep.location", "Local")
	v.SetDefault("sweep.bill_every", sched.BillEvery)
	v.SetDefault("sweep.restaurant_every", sched.RestaurantEvery)
	v.SetDefault("sweep.user_every", sched.UserEvery)
	v.SetDefault("sweep.order_every", sched.OrderEvery)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("cache.backend must be %q or %q, got %q", BackendMemory, BackendRedis, c.Cache.Backend)
	}
	if c.Cache.MaxEntriesPerRegion < 0 {
		return fmt.Errorf("cache.max_entries_per_region must not be negative, got %d", c.Cache.MaxEntriesPerRegion)
	}
	if c.Cache.Backend == BackendRedis && c.Redis.Addr == "" {
		return errors.New("redis.addr is required for the redis backend")
	}
	if c.Redis.ConnectAttempts < 1 {
		return fmt.Errorf("redis.connect_attempts must be at least 1, got %d", c.Redis.ConnectAttempts)
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		return fmt.Errorf("http.shutdown_timeout must be positive, got %s", c.HTTP.ShutdownTimeout)
	}

	if _, err := sweeper.DailySpec(c.Sweep.FoodDailyAt); err != nil {
		return fmt.Errorf("sweep.food_daily_at: %w", err)
	}
	if _, err := c.Sweep.Loc(); err != nil {
		return fmt.Errorf("sweep.location: %w", err)
	}
	intervals := []struct {
		name string
		d    time.Duration
	}{
		{"sweep.bill_every", c.Sweep.BillEvery},
		{"sweep.restaurant_every", c.Sweep.RestaurantEvery},
		{"sweep.user_every", c.Sweep.UserEvery},
		{"sweep.order_every", c.Sweep.OrderEvery},
	}
	for _, iv := range intervals {
		if iv.d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", iv.name, iv.d)
		}
	}
	return nil
}

// Loc resolves Location. "Local" and the empty string select time.Local.
func (s SweepConfig) Loc() (*time.Location, error) {
	if s.Location == "" || s.Location == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(s.Location)
}

// Schedules converts the sweep settings for the sweeper.
func (s SweepConfig) Schedules() sweeper.Schedules {
	return sweeper.Schedules{
		FoodDailyAt:     s.FoodDailyAt,
		BillEvery:       s.BillEvery,
		RestaurantEvery: s.RestaurantEvery,
		UserEvery:       s.UserEvery,
		OrderEvery:      s.OrderEvery,
	}
}
