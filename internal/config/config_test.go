package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "0.0.0.0:8080", cfg.Network.Addr())
	assert.Equal(t, time.Second/60, cfg.Room.TickDuration())
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.yaml")
	data := []byte(`
network:
  port: 9000
  protocol: kcp
room:
  bots: 2
  bot_difficulty: hard
  round_duration: 90s
  map_rows: 13
security:
  jwt_secret: s3cret
timeouts:
  write_timeout: 500ms
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 9000, cfg.Network.Port)
	assert.Equal(t, "kcp", cfg.Network.Protocol)
	assert.Equal(t, "0.0.0.0", cfg.Network.BindAddress)
	assert.Equal(t, 2, cfg.Room.Bots)
	assert.Equal(t, "hard", cfg.Room.BotDifficulty)
	assert.Equal(t, 90*time.Second, cfg.Room.RoundDuration)
	assert.Equal(t, 13, cfg.Room.MapRows)
	assert.Equal(t, 15, cfg.Room.MapColumns)
	assert.Equal(t, "s3cret", cfg.Security.JWTSecret)
	assert.Equal(t, 500*time.Millisecond, cfg.Timeouts.WriteTimeout)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("room: [1, 2"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Server)
	}{
		{"unknown protocol", func(c *Server) { c.Network.Protocol = "udp" }},
		{"even rows", func(c *Server) { c.Room.MapRows = 12 }},
		{"even columns", func(c *Server) { c.Room.MapColumns = 14 }},
		{"too small", func(c *Server) { c.Room.MapRows, c.Room.MapColumns = 5, 5 }},
		{"zero tps", func(c *Server) { c.Room.TPS = 0 }},
		{"too many players", func(c *Server) { c.Room.MaxPlayers = 9 }},
		{"bots fill every seat", func(c *Server) { c.Room.Bots = c.Room.MaxPlayers }},
		{"unknown difficulty", func(c *Server) { c.Room.BotDifficulty = "insane" }},
		{"fill over 100", func(c *Server) { c.Room.FillPercent = 101 }},
		{"no session ttl", func(c *Server) { c.Security.SessionTTL = 0 }},
		{"no input burst", func(c *Server) { c.Flood.InputBurst = 0 }},
		{"empty send queue", func(c *Server) { c.Timeouts.SendQueueSize = 0 }},
		{"heartbeat timeout shorter than interval", func(c *Server) { c.Timeouts.HeartbeatTimeout = time.Second }},
		{"read timeout within heartbeat", func(c *Server) { c.Timeouts.ReadTimeout = c.Timeouts.HeartbeatInterval }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}
