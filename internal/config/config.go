// Package config holds settings shared by every sevens command.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/cartridge/sevens/internal/engine"
)

// Checkpoint backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Config holds all simulator and training configuration
type Config struct {
	// Game settings
	Players       int   `mapstructure:"players"`
	Seed          int64 `mapstructure:"seed"`
	Verbose       bool  `mapstructure:"verbose"`
	MaxIdleRounds int   `mapstructure:"max_idle_rounds"`

	// RL model used by play --mode demo
	ModelPath string `mapstructure:"model_path"`

	// Training
	Episodes        int     `mapstructure:"episodes"`
	CheckpointEvery int     `mapstructure:"checkpoint_every"`
	Epsilon         float64 `mapstructure:"epsilon"`
	Alpha           float64 `mapstructure:"alpha"`
	Gamma           float64 `mapstructure:"gamma"`
	Opponent        string  `mapstructure:"opponent"`

	// Checkpoint storage
	CheckpointBackend string        `mapstructure:"checkpoint_backend"`
	CheckpointDir     string        `mapstructure:"checkpoint_dir"`
	RedisAddr         string        `mapstructure:"redis_addr"`
	RedisPassword     string        `mapstructure:"redis_password"`
	RedisDB           int           `mapstructure:"redis_db"`
	RedisPrefix       string        `mapstructure:"redis_prefix"`
	RedisTTL          time.Duration `mapstructure:"redis_ttl"`

	// Transcripts
	ReplayCapacity uint64 `mapstructure:"replay_capacity"`

	// Event fan-out; empty NATSURL disables publishing
	NATSURL     string `mapstructure:"nats_url"`
	NATSSubject string `mapstructure:"nats_subject"`

	// Logging
	LogLevel string `mapstructure:"log_level"`
}

// Default returns a config with sensible defaults
func Default() *Config {
	return &Config{
		Players:           4,
		Seed:              time.Now().UnixNano(),
		MaxIdleRounds:     engine.DefaultMaxIdleRounds,
		Episodes:          1000,
		CheckpointEvery:   100,
		Epsilon:           0.3,
		Alpha:             0.1,
		Gamma:             0.9,
		Opponent:          "random",
		CheckpointBackend: BackendFile,
		CheckpointDir:     ".",
		RedisAddr:         "localhost:6379",
		RedisPrefix:       "sevens",
		ReplayCapacity:    100000,
		NATSSubject:       "sevens",
		LogLevel:          "info",
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Players < engine.MinPlayers || c.Players > engine.MaxPlayers {
		return fmt.Errorf("players must be between %d and %d", engine.MinPlayers, engine.MaxPlayers)
	}
	if c.MaxIdleRounds <= 0 {
		return fmt.Errorf("max_idle_rounds must be positive")
	}
	if c.Episodes < 0 {
		return fmt.Errorf("episodes must not be negative")
	}
	if c.CheckpointEvery <= 0 {
		return fmt.Errorf("checkpoint_every must be positive")
	}
	if c.Epsilon < 0 || c.Epsilon > 1 {
		return fmt.Errorf("epsilon must be in [0, 1]")
	}
	if c.Alpha <= 0 || c.Alpha > 1 {
		return fmt.Errorf("alpha must be in (0, 1]")
	}
	if c.Gamma < 0 || c.Gamma > 1 {
		return fmt.Errorf("gamma must be in [0, 1]")
	}
	switch strings.ToLower(c.Opponent) {
	case "random", "greedy":
	default:
		return fmt.Errorf("unknown opponent %q", c.Opponent)
	}
	switch c.CheckpointBackend {
	case BackendFile:
		if c.CheckpointDir == "" {
			return fmt.Errorf("checkpoint_dir is required")
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("redis_addr is required")
		}
	default:
		return fmt.Errorf("unknown checkpoint_backend %q", c.CheckpointBackend)
	}
	if c.NATSURL != "" && c.NATSSubject == "" {
		return fmt.Errorf("nats_subject is required when nats_url is set")
	}
	return nil
}
