package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/bankdesk/internal/gravatar"
	"github.com/spf13/viper"
)

type CacheType string

const (
	CacheTypeMemory CacheType = "memory"
	CacheTypeRedis  CacheType = "redis"
	CacheTypeSQLite CacheType = "sqlite"
)

// Config holds the configuration for the bankdesk server and its dependencies.
type Config struct {
	// Listen is the address the bankdesk server will listen on.
	Listen string `yaml:"listen" mapstructure:"listen"`
	// ServerURL is the base URL of the bankdesk server.
	ServerURL string `yaml:"server_url" mapstructure:"server_url"`
	// SessionKey is the key used to sign the session cookie.
	SessionKey string `yaml:"session_key" mapstructure:"session_key"`
	// SessionMaxAge is the maximum age of a session in seconds.
	// Session state is dropped from the cache after the same time.
	SessionMaxAge int `yaml:"session_max_age" mapstructure:"session_max_age"`
	// SecureCookie marks the session cookie as HTTPS only.
	SecureCookie bool `yaml:"secure_cookie" mapstructure:"secure_cookie"`
	// DataSource holds the random data API configuration.
	DataSource *DataSourceConfig `yaml:"datasource" mapstructure:"datasource"`
	// Cache holds the session state cache configuration.
	Cache *CacheConfig `yaml:"cache" mapstructure:"cache"`
	// Gravatar holds the configuration for Gravatar profile pictures.
	Gravatar *GravatarConfig `yaml:"gravatar" mapstructure:"gravatar"`
}

// DataSourceConfig holds the configuration for the random data API.
type DataSourceConfig struct {
	// URL is the base URL of the random data API.
	URL string `yaml:"url" mapstructure:"url"`
	// Timeout is the timeout for a single request.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// UserAgent is sent with every request.
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`
	// SeedCount is how many users and banks a new session starts with.
	SeedCount int `yaml:"seed_count" mapstructure:"seed_count"`
	// AddCount is how many records the "add" buttons request.
	AddCount int `yaml:"add_count" mapstructure:"add_count"`
	// MaxAddCount caps the number of records a single add may request.
	MaxAddCount int `yaml:"max_add_count" mapstructure:"max_add_count"`
}

// CacheConfig holds the configuration for the session state cache.
type CacheConfig struct {
	// Type is the type of cache engine to use (e.g., "memory", "redis").
	Type CacheType `yaml:"type" mapstructure:"type"`
	// RedisURL is the address of the Redis server if using Redis.
	RedisURL string `yaml:"redis_url" mapstructure:"redis_url"`
	// SQLitePath is the database file if using SQLite.
	SQLitePath string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	// PruneInterval is how often expired sessions are removed from SQLite.
	PruneInterval time.Duration `yaml:"prune_interval" mapstructure:"prune_interval"`
}

// GravatarConfig holds the configuration for Gravatar profile pictures.
type GravatarConfig struct {
	// Enabled indicates whether Gravatar avatars are shown next to users.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// DefaultImage is the default image to use when no Gravatar is found.
	// Valid values: "404", "mp", "identicon", "monsterid", "wavatar", "retro", "robohash", "blank"
	DefaultImage string `yaml:"default_image" mapstructure:"default_image"`
	// Rating is the maximum rating for Gravatar images.
	// Valid values: "g", "pg", "r", "x"
	Rating string `yaml:"rating" mapstructure:"rating"`
	// Size is the size of the Gravatar image in pixels (1-2048).
	Size int `yaml:"size" mapstructure:"size"`
}

// Options converts the config for the avatar resolver. Nil stays nil.
func (g *GravatarConfig) Options() *gravatar.Options {
	if g == nil {
		return nil
	}
	return &gravatar.Options{
		Enabled:      g.Enabled,
		DefaultImage: g.DefaultImage,
		Rating:       g.Rating,
		Size:         g.Size,
	}
}

// SessionTTL returns the session max age as a duration.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionMaxAge) * time.Second
}

// Load reads the configuration from the specified path and returns a Config struct.
// If path is empty, it will use default search paths for config files.
// Without any config file the defaults and environment variables are used.
func Load(path string) (*Config, error) {
	v := viper.New()

	bindNestedEnv(v)

	setDefaults(v)

	v.SetConfigType("yaml")
	v.SetEnvPrefix("BANKDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.bankdesk")
		v.AddConfigPath("/etc/bankdesk")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Debug("No config file found, using defaults and environment")
	} else {
		log.Debug("Using config file", "file", v.ConfigFileUsed())
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	sanitizeConfig(&c)

	if err := validateConfig(&c); err != nil {
		return nil, err
	}

	return &c, nil
}

// setDefaults sets default values for the configuration.
func setDefaults(v *viper.Viper) {
	v.SetDefault("listen", "0.0.0.0:3003")
	v.SetDefault("server_url", "http://localhost:3003")
	v.SetDefault("session_key", "")
	v.SetDefault("session_max_age", 86400) // 24 hours
	v.SetDefault("secure_cookie", false)

	// Data source defaults
	v.SetDefault("datasource.url", "https://random-data-api.com")
	v.SetDefault("datasource.timeout", 30*time.Second)
	v.SetDefault("datasource.user_agent", "bankdesk")
	v.SetDefault("datasource.seed_count", 5)
	v.SetDefault("datasource.add_count", 1)
	v.SetDefault("datasource.max_add_count", 100)

	// Cache defaults
	v.SetDefault("cache.type", CacheTypeMemory)
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.sqlite_path", "./data/bankdesk.db")
	v.SetDefault("cache.prune_interval", 10*time.Minute)

	// Gravatar defaults
	v.SetDefault("gravatar.enabled", false)
	v.SetDefault("gravatar.default_image", "identicon")
	v.SetDefault("gravatar.rating", "g")
	v.SetDefault("gravatar.size", 32)
}

// AutomaticEnv only reaches keys viper already knows about. Keys without a
// default have to be bound by hand.
func bindNestedEnv(v *viper.Viper) {
	v.MustBindEnv("session_key", "BANKDESK_SESSION_KEY")
	v.MustBindEnv("cache.redis_url", "BANKDESK_CACHE_REDIS_URL")
}

// validateConfig validates the configuration.
func validateConfig(c *Config) error {
	if c == nil {
		return fmt.Errorf("missing bankdesk config")
	}

	if c.Listen == "" {
		return fmt.Errorf("listen address is required")
	}

	if c.SessionMaxAge <= 0 {
		return fmt.Errorf("session max age must be greater than 0")
	}

	if c.DataSource == nil {
		return fmt.Errorf("missing datasource config")
	}
	if c.DataSource.URL == "" {
		return fmt.Errorf("datasource URL is required")
	}
	if c.DataSource.Timeout <= 0 {
		return fmt.Errorf("datasource timeout must be greater than 0")
	}
	if c.DataSource.SeedCount <= 0 {
		return fmt.Errorf("datasource seed count must be greater than 0")
	}
	if c.DataSource.MaxAddCount <= 0 {
		return fmt.Errorf("datasource max add count must be greater than 0")
	}
	if c.DataSource.AddCount <= 0 || c.DataSource.AddCount > c.DataSource.MaxAddCount {
		return fmt.Errorf("datasource add count must be between 1 and %d", c.DataSource.MaxAddCount)
	}

	if c.Cache != nil {
		switch c.Cache.Type {
		case CacheTypeMemory:
		case CacheTypeRedis:
			if c.Cache.RedisURL == "" {
				return fmt.Errorf("Redis URL is required when Redis cache is enabled") //nolint:staticcheck
			}
		case CacheTypeSQLite:
			if c.Cache.SQLitePath == "" {
				return fmt.Errorf("SQLite path is required when SQLite cache is enabled") //nolint:staticcheck
			}
			if c.Cache.PruneInterval <= 0 {
				return fmt.Errorf("cache prune interval must be greater than 0")
			}
		case "":
			return fmt.Errorf("cache type is required")
		default:
			return fmt.Errorf("unknown cache type %q", c.Cache.Type)
		}
	} else {
		c.Cache = &CacheConfig{
			Type: CacheTypeMemory,
		}
	}

	if c.Gravatar != nil && c.Gravatar.Enabled {
		if c.Gravatar.DefaultImage != "" && !gravatar.IsValidDefaultImage(c.Gravatar.DefaultImage) {
			return fmt.Errorf("invalid gravatar default image %q", c.Gravatar.DefaultImage)
		}
		if c.Gravatar.Rating != "" && !gravatar.IsValidRating(c.Gravatar.Rating) {
			return fmt.Errorf("invalid gravatar rating %q", c.Gravatar.Rating)
		}
		if c.Gravatar.Size != 0 && !gravatar.IsValidSize(c.Gravatar.Size) {
			return fmt.Errorf("gravatar size must be between 1 and 2048")
		}
	}

	return nil
}

// sanitizeConfig sanitizes the configuration values.
func sanitizeConfig(c *Config) {
	if c == nil {
		return
	}

	c.Listen = urlSanitize(c.Listen)

	if c.DataSource != nil {
		c.DataSource.URL = urlSanitize(c.DataSource.URL)
	}

	if c.ServerURL != "" {
		c.ServerURL = urlSanitize(c.ServerURL)
	}
}

func urlSanitize(url string) string {
	return strings.TrimSuffix(strings.TrimSpace(url), "/")
}
