package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, BackendMemory, cfg.Session.Backend)
	assert.Equal(t, 24*time.Hour, cfg.Session.Expiration)
	assert.Equal(t, 3*time.Second, cfg.Submit.AutoClose)
	assert.Equal(t, "contact", cfg.Submit.ContactFormName)
	assert.Empty(t, cfg.Catalog.Path)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CLUBS_SERVER_PORT", "9000")
	t.Setenv("CLUBS_SESSION_BACKEND", "redis")
	t.Setenv("CLUBS_REDIS_ADDRESS", "cache:6379")
	t.Setenv("CLUBS_SUBMIT_AUTO_CLOSE", "5s")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, BackendRedis, cfg.Session.Backend)
	assert.Equal(t, "cache:6379", cfg.Redis.Address)
	assert.Equal(t, 5*time.Second, cfg.Submit.AutoClose)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CLUBS_SUBMIT_TOKEN=from-dotenv\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("CLUBS_SUBMIT_TOKEN") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Submit.Token)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "clubs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "7000"
session:
  backend: postgres
database:
  url: postgres://clubs@localhost/clubs
submit:
  join_endpoint: https://example.org/exec
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.Server.Port)
	assert.Equal(t, BackendPostgres, cfg.Session.Backend)
	assert.Equal(t, "https://example.org/exec", cfg.Submit.JoinEndpoint)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Load("does-not-exist.yaml")
	assert.ErrorContains(t, err, "failed to read config")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:  ServerConfig{Port: "8080"},
			Session: SessionConfig{Backend: BackendMemory, Expiration: time.Hour, VisitorIdle: time.Minute, SweepInterval: time.Minute},
		}
	}

	tests := map[string]struct {
		mutate  func(c *Config)
		wantErr string
	}{
		"valid":              {mutate: func(c *Config) {}},
		"no port":            {mutate: func(c *Config) { c.Server.Port = "" }, wantErr: "server.port"},
		"unknown backend":    {mutate: func(c *Config) { c.Session.Backend = "disk" }, wantErr: "unknown session backend"},
		"postgres no url":    {mutate: func(c *Config) { c.Session.Backend = BackendPostgres }, wantErr: "database.url"},
		"redis no address":   {mutate: func(c *Config) { c.Session.Backend = BackendRedis }, wantErr: "redis.address"},
		"zero expiration":    {mutate: func(c *Config) { c.Session.Expiration = 0 }, wantErr: "session.expiration"},
		"negative autoclose": {mutate: func(c *Config) { c.Submit.AutoClose = -time.Second }, wantErr: "auto_close"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
