// Package trainer runs self-play episodes for the RL agent against fixed
// opponents and checkpoints its model as it learns.
package trainer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cartridge/sevens/internal/cards"
	"github.com/cartridge/sevens/internal/checkpoint"
	"github.com/cartridge/sevens/internal/config"
	"github.com/cartridge/sevens/internal/engine"
	"github.com/cartridge/sevens/internal/events"
	"github.com/cartridge/sevens/internal/metrics"
	"github.com/cartridge/sevens/internal/replay"
	"github.com/cartridge/sevens/internal/strategy"
	"github.com/cartridge/sevens/internal/strategy/rl"
)

// AgentSeat is where the learning agent always sits.
const AgentSeat = 0

// Summary reports the outcome of a training run.
type Summary struct {
	RunID       string
	Episodes    int
	Wins        int
	Checkpoints []string
}

// WinRate is wins over completed episodes.
func (s Summary) WinRate() float64 {
	if s.Episodes == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Episodes)
}

// Trainer plays the agent against opponents for a fixed number of episodes.
type Trainer struct {
	cfg    *config.Config
	agent  *rl.Agent
	store  checkpoint.Store
	engine *engine.Engine
	runID  string

	publisher events.Publisher
	collector *metrics.Collector
	backend   replay.Backend
	recorder  *replay.Recorder
	logger    zerolog.Logger
}

// Option customises a Trainer.
type Option func(*Trainer)

// WithLogger sets the trainer logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(t *Trainer) { t.logger = logger }
}

// WithPublisher fans progress and results out to p.
func WithPublisher(p events.Publisher) Option {
	return func(t *Trainer) { t.publisher = p }
}

// WithCollector records per-episode metrics.
func WithCollector(c *metrics.Collector) Option {
	return func(t *Trainer) { t.collector = c }
}

// WithReplay stores every episode transcript in backend.
func WithReplay(backend replay.Backend) Option {
	return func(t *Trainer) { t.backend = backend }
}

// WithRunID overrides the generated run ID.
func WithRunID(id string) Option {
	return func(t *Trainer) { t.runID = id }
}

// New builds a trainer. The agent takes seat 0 and the remaining
// cfg.Players-1 seats get cfg.Opponent strategies.
func New(cfg *config.Config, agent *rl.Agent, store checkpoint.Store, opts ...Option) (*Trainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	t := &Trainer{
		cfg:       cfg,
		agent:     agent,
		store:     store,
		runID:     uuid.New().String(),
		publisher: events.NoopPublisher{},
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.collector == nil {
		t.collector = metrics.NewCollector(t.logger)
	}

	t.engine = engine.New(cfg.Seed,
		engine.WithLogger(t.logger),
		engine.WithMaxIdleRounds(cfg.MaxIdleRounds),
	)
	t.engine.RegisterStrategy(AgentSeat, agent)
	for id := 1; id < cfg.Players; id++ {
		opp, err := strategy.New(strategy.Kind(cfg.Opponent), cfg.Seed+int64(id))
		if err != nil {
			return nil, err
		}
		t.engine.RegisterStrategy(id, opp)
	}
	if t.backend != nil {
		t.recorder = replay.NewRecorder(t.backend, t.runID)
		t.engine.AddObserver(t.recorder)
	}

	return t, nil
}

// RunID identifies this training run in transcripts, events and metrics.
func (t *Trainer) RunID() string { return t.runID }

// Resume merges a previously saved model into the agent.
func (t *Trainer) Resume(ctx context.Context, name string) (int, error) {
	n, err := t.store.Load(ctx, name, t.agent)
	if err != nil {
		return n, err
	}
	t.logger.Info().Str("checkpoint", name).Int("entries", n).Msg("Resumed model")
	return n, nil
}

// Run plays cfg.Episodes episodes. Cancellation is honoured between
// episodes; the final checkpoint is written either way.
func (t *Trainer) Run(ctx context.Context) (Summary, error) {
	summary := Summary{RunID: t.runID}

	t.logger.Info().
		Str("run_id", t.runID).
		Int("episodes", t.cfg.Episodes).
		Int("players", t.cfg.Players).
		Str("opponent", t.cfg.Opponent).
		Msg("Starting training")

	var runErr error
	for ep := 1; ep <= t.cfg.Episodes; ep++ {
		if err := ctx.Err(); err != nil {
			t.logger.Info().Int("episode", ep).Msg("Context cancelled, stopping training")
			runErr = err
			break
		}

		won, err := t.runEpisode(ctx, ep)
		if err != nil {
			runErr = err
			break
		}
		summary.Episodes++
		if won {
			summary.Wins++
		}

		if ep%t.cfg.CheckpointEvery == 0 {
			name := checkpoint.EpisodeName(ep)
			if err := t.save(ctx, name); err != nil {
				runErr = err
				break
			}
			summary.Checkpoints = append(summary.Checkpoints, name)
			t.progress(ctx, summary, name, false)
		}
	}

	// Save even when interrupted so the learned values are not lost.
	saveCtx := context.WithoutCancel(ctx)
	if err := t.save(saveCtx, checkpoint.FinalName); err != nil {
		if runErr == nil {
			runErr = err
		}
	} else {
		summary.Checkpoints = append(summary.Checkpoints, checkpoint.FinalName)
	}
	t.progress(saveCtx, summary, checkpoint.FinalName, true)

	return summary, runErr
}

func (t *Trainer) runEpisode(ctx context.Context, ep int) (bool, error) {
	start := time.Now()
	episodeID := uuid.New().String()
	if t.recorder != nil {
		episodeID = t.recorder.Begin()
	}

	if err := t.engine.Setup(t.cfg.Players); err != nil {
		return false, fmt.Errorf("episode %d: %w", ep, err)
	}
	standings := t.engine.RunEpisode(t.cfg.Verbose)
	won := AgentWon(standings)

	if t.recorder != nil {
		if err := t.recorder.Flush(ctx); err != nil {
			t.logger.Warn().Err(err).Int("episode", ep).Msg("Failed to store transcript")
		}
	}

	t.collector.EpisodeCompleted(t.runID, ep, t.engine.Rounds(), t.engine.Winner(), time.Since(start))

	result := events.GameResultEvent{
		RunID:      t.runID,
		EpisodeID:  episodeID,
		Rounds:     t.engine.Rounds(),
		Turns:      t.engine.Turns(),
		Winner:     t.engine.Winner(),
		Stalled:    t.engine.Stalled(),
		Placements: Placements(standings),
	}
	if err := t.publisher.PublishGameResult(ctx, result); err != nil {
		t.logger.Warn().Err(err).Int("episode", ep).Msg("Failed to publish game result")
	}

	return won, nil
}

func (t *Trainer) save(ctx context.Context, name string) error {
	start := time.Now()
	if err := t.store.Save(ctx, name, t.agent); err != nil {
		return err
	}
	t.collector.CheckpointSaved(t.runID, name, cards.DeckSize, time.Since(start))
	return nil
}

func (t *Trainer) progress(ctx context.Context, s Summary, checkpointName string, final bool) {
	t.logger.Info().
		Int("episode", s.Episodes).
		Int("wins", s.Wins).
		Float64("win_rate", s.WinRate()).
		Str("checkpoint", checkpointName).
		Msg("Training progress")

	err := t.publisher.PublishTrainingProgress(ctx, events.ProgressEvent{
		RunID:      t.runID,
		Episode:    s.Episodes,
		Episodes:   t.cfg.Episodes,
		Wins:       s.Wins,
		WinRate:    s.WinRate(),
		Epsilon:    t.agent.Params().Epsilon,
		Checkpoint: checkpointName,
		Final:      final,
	})
	if err != nil {
		t.logger.Warn().Err(err).Msg("Failed to publish training progress")
	}
}

// AgentWon reports whether the agent ranked first. A stalled game has no
// winner but still ranks the player holding the fewest cards first.
func AgentWon(standings []engine.Standing) bool {
	return len(standings) > 0 && standings[0].PlayerID == AgentSeat
}

// Placements converts engine standings to event placements.
func Placements(standings []engine.Standing) []events.Placement {
	out := make([]events.Placement, len(standings))
	for i, s := range standings {
		out[i] = events.Placement{
			PlayerID:  s.PlayerID,
			Name:      s.Name,
			Rank:      s.Rank,
			Remaining: s.Remaining,
		}
	}
	return out
}
