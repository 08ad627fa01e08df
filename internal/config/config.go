// Package config loads the server configuration from a YAML file with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	defaultHost           = "0.0.0.0"
	defaultPort           = 1780
	defaultMaxConnections = 10000

	defaultRedisAddr = "localhost:6379"

	defaultCatalogDB = "data/catalog.db"

	defaultMinPlayers            = 4
	defaultMaxPlayers            = 12
	defaultWaitingTimeout        = 30 // minutes
	defaultSessionTTL            = 120
	defaultSubstitutionMarker    = "Flamethrower"
	defaultShutdownTimeout       = 30 // minutes
	defaultShutdownCheckInterval = 10 // seconds
	defaultCleanupDelay          = 5
	defaultReconnectTimeout      = 120 // seconds

	defaultMessagesPerSecond = 20
	defaultConnectsPerSecond = 10
	defaultConnectsPerMinute = 60
	defaultConnectBanSeconds = 60
)

// Config is the server configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Redis    RedisConfig    `yaml:"redis"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Game     GameConfig     `yaml:"game"`
	Security SecurityConfig `yaml:"security"`
}

// ServerConfig is the websocket listener.
type ServerConfig struct {
	Host           string `yaml:"host" env:"SERVER_HOST"`
	Port           int    `yaml:"port" env:"SERVER_PORT"`
	MaxConnections int    `yaml:"max_connections" env:"SERVER_MAX_CONNECTIONS"`
}

// RedisConfig is where sessions are persisted.
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
}

// CatalogConfig locates the card catalog.
type CatalogConfig struct {
	DBPath   string `yaml:"db_path" env:"CATALOG_DB_PATH"`
	SeedFile string `yaml:"seed_file" env:"CATALOG_SEED_FILE"` // loaded into the db on start when set
}

// GameConfig holds the lobby rules.
type GameConfig struct {
	MinPlayers            int    `yaml:"min_players" env:"GAME_MIN_PLAYERS"`
	MaxPlayers            int    `yaml:"max_players" env:"GAME_MAX_PLAYERS"`
	WaitingTimeout        int    `yaml:"waiting_timeout" env:"GAME_WAITING_TIMEOUT"` // minutes
	SessionTTL            int    `yaml:"session_ttl" env:"GAME_SESSION_TTL"`         // minutes
	SubstitutionEnabled   bool   `yaml:"substitution_enabled" env:"GAME_SUBSTITUTION_ENABLED"`
	SubstitutionMarker    string `yaml:"substitution_marker" env:"GAME_SUBSTITUTION_MARKER"`
	ShutdownTimeout       int    `yaml:"shutdown_timeout" env:"GAME_SHUTDOWN_TIMEOUT"`               // minutes
	ShutdownCheckInterval int    `yaml:"shutdown_check_interval" env:"GAME_SHUTDOWN_CHECK_INTERVAL"` // seconds
	CleanupDelay          int    `yaml:"cleanup_delay" env:"GAME_CLEANUP_DELAY"`                     // seconds
	ReconnectTimeout      int    `yaml:"reconnect_timeout" env:"GAME_RECONNECT_TIMEOUT"`             // seconds
}

// SecurityConfig guards the websocket endpoint.
type SecurityConfig struct {
	AllowedOrigins []string           `yaml:"allowed_origins" env:"SECURITY_ALLOWED_ORIGINS" envSeparator:","`
	RateLimit      RateLimitConfig    `yaml:"rate_limit"`
	MessageLimit   MessageLimitConfig `yaml:"message_limit"`
}

// RateLimitConfig throttles new connections per IP.
type RateLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second" env:"SECURITY_RATE_LIMIT_PER_SECOND"`
	MaxPerMinute int `yaml:"max_per_minute" env:"SECURITY_RATE_LIMIT_PER_MINUTE"`
	BanDuration  int `yaml:"ban_duration" env:"SECURITY_RATE_LIMIT_BAN"` // seconds
}

// BanDurationTime returns how long an offending IP is refused.
func (c *RateLimitConfig) BanDurationTime() time.Duration {
	return time.Duration(c.BanDuration) * time.Second
}

// MessageLimitConfig throttles a connected client.
type MessageLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second" env:"SECURITY_MESSAGE_LIMIT"`
}

// WaitingTimeoutDuration returns how long a game may wait for players.
func (c *GameConfig) WaitingTimeoutDuration() time.Duration {
	return time.Duration(c.WaitingTimeout) * time.Minute
}

// SessionTTLDuration returns how long a stored session outlives its last write.
func (c *GameConfig) SessionTTLDuration() time.Duration {
	return time.Duration(c.SessionTTL) * time.Minute
}

// ShutdownTimeoutDuration returns how long shutdown waits for running games.
func (c *GameConfig) ShutdownTimeoutDuration() time.Duration {
	return time.Duration(c.ShutdownTimeout) * time.Minute
}

// ShutdownCheckIntervalDuration returns how often shutdown polls running games.
func (c *GameConfig) ShutdownCheckIntervalDuration() time.Duration {
	return time.Duration(c.ShutdownCheckInterval) * time.Second
}

// CleanupDelayDuration returns the grace period before connections are closed.
func (c *GameConfig) CleanupDelayDuration() time.Duration {
	return time.Duration(c.CleanupDelay) * time.Second
}

// ReconnectTimeoutDuration returns how long a dropped player keeps their seat
// in a running game.
func (c *GameConfig) ReconnectTimeoutDuration() time.Duration {
	return time.Duration(c.ReconnectTimeout) * time.Second
}

// Load reads the config file, fills in defaults and applies environment
// overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.applyDefaults()

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("environment overrides: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the defaults with environment overrides applied. A bad
// environment is ignored.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	_ = env.Parse(&cfg)
	return &cfg
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.Game.MinPlayers < 1 || c.Game.MinPlayers > c.Game.MaxPlayers {
		return fmt.Errorf("game: invalid player bounds %d..%d", c.Game.MinPlayers, c.Game.MaxPlayers)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server: invalid port %d", c.Server.Port)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = defaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaultPort
	}
	if c.Server.MaxConnections == 0 {
		c.Server.MaxConnections = defaultMaxConnections
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = defaultRedisAddr
	}
	if c.Catalog.DBPath == "" {
		c.Catalog.DBPath = defaultCatalogDB
	}
	if c.Game.MinPlayers == 0 {
		c.Game.MinPlayers = defaultMinPlayers
	}
	if c.Game.MaxPlayers == 0 {
		c.Game.MaxPlayers = defaultMaxPlayers
	}
	if c.Game.WaitingTimeout == 0 {
		c.Game.WaitingTimeout = defaultWaitingTimeout
	}
	if c.Game.SessionTTL == 0 {
		c.Game.SessionTTL = defaultSessionTTL
	}
	if c.Game.SubstitutionMarker == "" {
		c.Game.SubstitutionMarker = defaultSubstitutionMarker
	}
	if c.Game.ShutdownTimeout == 0 {
		c.Game.ShutdownTimeout = defaultShutdownTimeout
	}
	if c.Game.ShutdownCheckInterval == 0 {
		c.Game.ShutdownCheckInterval = defaultShutdownCheckInterval
	}
	if c.Game.CleanupDelay == 0 {
		c.Game.CleanupDelay = defaultCleanupDelay
	}
	if c.Game.ReconnectTimeout == 0 {
		c.Game.ReconnectTimeout = defaultReconnectTimeout
	}
	if len(c.Security.AllowedOrigins) == 0 {
		c.Security.AllowedOrigins = []string{"*"}
	}
	if c.Security.RateLimit.MaxPerSecond == 0 {
		c.Security.RateLimit.MaxPerSecond = defaultConnectsPerSecond
	}
	if c.Security.RateLimit.MaxPerMinute == 0 {
		c.Security.RateLimit.MaxPerMinute = defaultConnectsPerMinute
	}
	if c.Security.RateLimit.BanDuration == 0 {
		c.Security.RateLimit.BanDuration = defaultConnectBanSeconds
	}
	if c.Security.MessageLimit.MaxPerSecond == 0 {
		c.Security.MessageLimit.MaxPerSecond = defaultMessagesPerSecond
	}
}
