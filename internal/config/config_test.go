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
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const sampleConfig = `
client:
  token: abc123
  application_id: "42"
  guild_id: "99"
ark:
  servers:
    - name: island
      emoji: "🏝️"
      rcon_host: 127.0.0.1
      rcon_port: 27020
      rcon_password: secret
      docker_service: ark-island
    - name: scorched
      docker_service: ark-scorched
`

func TestLoad(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, sampleConfig))
		require.NoError(t, err)

		assert.Equal(t, 3600, cfg.Ark.DinoWipe.CooldownSeconds)
		assert.Equal(t, time.Hour, cfg.Ark.DinoWipe.Cooldown())
		assert.Equal(t, 5*time.Minute, cfg.Ark.DinoWipe.PollDuration())
		assert.Equal(t, 3, cfg.Ark.MaxServers)
		assert.Equal(t, "/home/ark/docker-compose.yaml", cfg.Ark.ComposeFile)
		assert.Equal(t, "hlna.db", cfg.Database.Path)
		assert.Equal(t, "info", cfg.Log.Level)
	})

	t.Run("environment overrides token and database path", func(t *testing.T) {
		t.Setenv("HLNA_TOKEN", "env-token")
		t.Setenv("HLNA_DATABASE_PATH", "/tmp/env.db")

		cfg, err := Load(writeConfig(t, sampleConfig))
		require.NoError(t, err)
		assert.Equal(t, "env-token", cfg.Client.Token)
		assert.Equal(t, "/tmp/env.db", cfg.Database.Path)
	})

	t.Run("missing file errors", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	valid := func(t *testing.T) *Config {
		cfg, err := Load(writeConfig(t, sampleConfig))
		require.NoError(t, err)
		return cfg
	}

	t.Run("accepts a complete config", func(t *testing.T) {
		assert.NoError(t, valid(t).Validate())
	})

	t.Run("rejects missing token", func(t *testing.T) {
		cfg := valid(t)
		cfg.Client.Token = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects no servers", func(t *testing.T) {
		cfg := valid(t)
		cfg.Ark.Servers = nil
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects duplicate server names", func(t *testing.T) {
		cfg := valid(t)
		cfg.Ark.Servers[1].Name = "island"
		assert.Error(t, cfg.Validate())
	})
}

func TestArkServer(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	t.Run("lookup by name", func(t *testing.T) {
		srv, ok := cfg.Ark.Server("island")
		require.True(t, ok)
		assert.Equal(t, "ark-island", srv.DockerService)

		_, ok = cfg.Ark.Server("aberration")
		assert.False(t, ok)
	})

	t.Run("label includes emoji when set", func(t *testing.T) {
		island, _ := cfg.Ark.Server("island")
		assert.Equal(t, "🏝️ island", island.Label())

		scorched, _ := cfg.Ark.Server("scorched")
		assert.Equal(t, "scorched", scorched.Label())
	})

	t.Run("rcon availability", func(t *testing.T) {
		island, _ := cfg.Ark.Server("island")
		assert.True(t, island.HasRcon())

		scorched, _ := cfg.Ark.Server("scorched")
		assert.False(t, scorched.HasRcon())
	})
}
