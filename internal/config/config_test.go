package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
server:
  host: "127.0.0.1"
  port: 8080
  max_connections: 5000

redis:
  addr: "redis:6379"
  password: "secret"
  db: 1

catalog:
  db_path: "/var/lib/lacosa/catalog.db"
  seed_file: "configs/catalog.yaml"

game:
  min_players: 5
  max_players: 10
  waiting_timeout: 15
  session_ttl: 60
  substitution_enabled: true
  substitution_marker: "Lanzallamas"

security:
  allowed_origins:
    - "http://localhost:3000"
    - "https://example.com"
  rate_limit:
    max_per_second: 20
    max_per_minute: 120
    ban_duration: 120
  message_limit:
    max_per_second: 50
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5000, cfg.Server.MaxConnections)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, "secret", cfg.Redis.Password)
	assert.Equal(t, 1, cfg.Redis.DB)
	assert.Equal(t, "/var/lib/lacosa/catalog.db", cfg.Catalog.DBPath)
	assert.Equal(t, "configs/catalog.yaml", cfg.Catalog.SeedFile)
	assert.Equal(t, 5, cfg.Game.MinPlayers)
	assert.Equal(t, 10, cfg.Game.MaxPlayers)
	assert.True(t, cfg.Game.SubstitutionEnabled)
	assert.Equal(t, "Lanzallamas", cfg.Game.SubstitutionMarker)
	assert.Len(t, cfg.Security.AllowedOrigins, 2)
	assert.Equal(t, 120, cfg.Security.RateLimit.MaxPerMinute)
	assert.Equal(t, 2*time.Minute, cfg.Security.RateLimit.BanDurationTime())
	assert.Equal(t, 50, cfg.Security.MessageLimit.MaxPerSecond)
}

func TestLoad_FileNotFound(t *testing.T) {
	t.Parallel()

	cfg, err := Load("/nonexistent/path/config.yaml")
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, "invalid: yaml: :::"))
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_InvalidBounds(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, "game:\n  min_players: 8\n  max_players: 6\n"))
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_AppliesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, `{}`))
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, defaultHost, cfg.Server.Host)
	assert.Equal(t, defaultPort, cfg.Server.Port)
	assert.Equal(t, defaultMaxConnections, cfg.Server.MaxConnections)
	assert.Equal(t, defaultRedisAddr, cfg.Redis.Addr)
	assert.Equal(t, defaultCatalogDB, cfg.Catalog.DBPath)
	assert.Equal(t, defaultMinPlayers, cfg.Game.MinPlayers)
	assert.Equal(t, defaultMaxPlayers, cfg.Game.MaxPlayers)
	assert.False(t, cfg.Game.SubstitutionEnabled)
	assert.Equal(t, []string{"*"}, cfg.Security.AllowedOrigins)
	assert.Equal(t, defaultConnectsPerSecond, cfg.Security.RateLimit.MaxPerSecond)
	assert.Equal(t, defaultMessagesPerSecond, cfg.Security.MessageLimit.MaxPerSecond)
}

func TestDefault(t *testing.T) {
	// not parallel, Default reads the environment

	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, defaultHost, cfg.Server.Host)
	assert.Equal(t, defaultPort, cfg.Server.Port)
	assert.Equal(t, defaultMinPlayers, cfg.Game.MinPlayers)
	assert.NoError(t, cfg.Validate())
}

func TestGameConfig_DurationMethods(t *testing.T) {
	t.Parallel()

	cfg := &GameConfig{
		WaitingTimeout:        10,
		SessionTTL:            120,
		ShutdownTimeout:       60,
		ShutdownCheckInterval: 5,
		CleanupDelay:          20,
		ReconnectTimeout:      90,
	}

	assert.Equal(t, 10*time.Minute, cfg.WaitingTimeoutDuration())
	assert.Equal(t, 2*time.Hour, cfg.SessionTTLDuration())
	assert.Equal(t, 60*time.Minute, cfg.ShutdownTimeoutDuration())
	assert.Equal(t, 5*time.Second, cfg.ShutdownCheckIntervalDuration())
	assert.Equal(t, 20*time.Second, cfg.CleanupDelayDuration())
	assert.Equal(t, 90*time.Second, cfg.ReconnectTimeoutDuration())
}

func TestLoadFromEnv(t *testing.T) {
	// not parallel, modifies the environment

	t.Setenv("SERVER_HOST", "env-host")
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("REDIS_ADDR", "env-redis:6380")
	t.Setenv("GAME_MIN_PLAYERS", "6")
	t.Setenv("GAME_SUBSTITUTION_ENABLED", "true")
	t.Setenv("SECURITY_ALLOWED_ORIGINS", "http://a.com,http://b.com")
	t.Setenv("SECURITY_MESSAGE_LIMIT", "7")

	cfg, err := Load(writeConfig(t, "server:\n  port: 8080\n"))
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "env-host", cfg.Server.Host)
	assert.Equal(t, 9999, cfg.Server.Port, "environment wins over the file")
	assert.Equal(t, "env-redis:6380", cfg.Redis.Addr)
	assert.Equal(t, 6, cfg.Game.MinPlayers)
	assert.True(t, cfg.Game.SubstitutionEnabled)
	assert.Equal(t, []string{"http://a.com", "http://b.com"}, cfg.Security.AllowedOrigins)
	assert.Equal(t, 7, cfg.Security.MessageLimit.MaxPerSecond)
}

func TestLoadFromEnv_Invalid(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-port")

	cfg, err := Load(writeConfig(t, `{}`))
	assert.Error(t, err)
	assert.Nil(t, cfg)
}
