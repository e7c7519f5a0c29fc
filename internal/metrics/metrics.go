// Package metrics emits structured metric log lines.
package metrics

import (
	"time"

	"github.com/rs/zerolog"
)

// Collector for simulator and training metrics
type Collector struct {
	logger zerolog.Logger
}

func NewCollector(logger zerolog.Logger) *Collector {
	return &Collector{
		logger: logger,
	}
}

// Track a finished training or play episode
func (c *Collector) EpisodeCompleted(runID string, episode, rounds, winner int, duration time.Duration) {
	c.logger.Info().
		Str("metric", "episode_completed").
		Str("run_id", runID).
		Int("episode", episode).
		Int("rounds", rounds).
		Int("winner", winner).
		Dur("duration", duration).
		Msg("Episode metric")
}

// Track model checkpoints
func (c *Collector) CheckpointSaved(runID, name string, entries int, duration time.Duration) {
	c.logger.Info().
		Str("metric", "checkpoint_saved").
		Str("run_id", runID).
		Str("name", name).
		Int("entries", entries).
		Dur("duration", duration).
		Msg("Checkpoint metric")
}

// Track dynamically loaded strategies
func (c *Collector) StrategyLoaded(path, name string) {
	c.logger.Info().
		Str("metric", "strategy_loaded").
		Str("path", path).
		Str("name", name).
		Msg("Strategy load metric")
}

// Track strategy load failures
func (c *Collector) StrategyLoadFailed(path string, err error) {
	c.logger.Warn().
		Str("metric", "strategy_load_failed").
		Str("path", path).
		Err(err).
		Msg("Strategy load failure")
}
