package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 4, cfg.Players)
	assert.Equal(t, 0.3, cfg.Epsilon)
	assert.Equal(t, 0.1, cfg.Alpha)
	assert.Equal(t, 0.9, cfg.Gamma)
	assert.Equal(t, BackendFile, cfg.CheckpointBackend)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"one player", func(c *Config) { c.Players = 1 }, true},
		{"full deck of players", func(c *Config) { c.Players = 52 }, true},
		{"no players", func(c *Config) { c.Players = 0 }, false},
		{"too many players", func(c *Config) { c.Players = 53 }, false},
		{"zero idle rounds", func(c *Config) { c.MaxIdleRounds = 0 }, false},
		{"negative episodes", func(c *Config) { c.Episodes = -1 }, false},
		{"zero checkpoint interval", func(c *Config) { c.CheckpointEvery = 0 }, false},
		{"epsilon above one", func(c *Config) { c.Epsilon = 1.5 }, false},
		{"zero alpha", func(c *Config) { c.Alpha = 0 }, false},
		{"negative gamma", func(c *Config) { c.Gamma = -0.1 }, false},
		{"greedy opponent", func(c *Config) { c.Opponent = "Greedy" }, true},
		{"unknown opponent", func(c *Config) { c.Opponent = "minimax" }, false},
		{"redis backend", func(c *Config) { c.CheckpointBackend = BackendRedis }, true},
		{"redis without addr", func(c *Config) {
			c.CheckpointBackend = BackendRedis
			c.RedisAddr = ""
		}, false},
		{"file without dir", func(c *Config) { c.CheckpointDir = "" }, false},
		{"unknown backend", func(c *Config) { c.CheckpointBackend = "s3" }, false},
		{"nats without subject", func(c *Config) {
			c.NATSURL = "nats://localhost:4222"
			c.NATSSubject = ""
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
