package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cartridge/sevens/internal/checkpoint"
	"github.com/cartridge/sevens/internal/config"
	"github.com/cartridge/sevens/internal/metrics"
	"github.com/cartridge/sevens/internal/replay"
	"github.com/cartridge/sevens/internal/strategy/rl"
	"github.com/cartridge/sevens/internal/trainer"
)

func newTrainCmd() *cobra.Command {
	var resume string

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the RL strategy by playing against fixed opponents",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrain(background(cmd), resume)
		},
	}

	d := config.Default()
	flags := cmd.Flags()
	flags.StringVar(&resume, "resume", "", "Checkpoint name to continue training from")
	flags.Int("episodes", d.Episodes, "Number of training episodes")
	flags.Int("checkpoint-every", d.CheckpointEvery, "Save a checkpoint every N episodes")
	flags.Float64("epsilon", d.Epsilon, "Exploration rate")
	flags.Float64("alpha", d.Alpha, "Learning rate")
	flags.Float64("gamma", d.Gamma, "Discount factor")
	flags.String("opponent", d.Opponent, "Opponent strategy (random, greedy)")
	flags.String("checkpoint-backend", d.CheckpointBackend, "Checkpoint storage (file, redis)")
	flags.String("checkpoint-dir", d.CheckpointDir, "Directory for file checkpoints")
	flags.String("redis-addr", d.RedisAddr, "Redis address for redis checkpoints")
	flags.String("redis-password", d.RedisPassword, "Redis password")
	flags.Int("redis-db", d.RedisDB, "Redis database")
	flags.String("redis-prefix", d.RedisPrefix, "Redis key prefix")
	flags.Duration("redis-ttl", d.RedisTTL, "Redis checkpoint expiry (0 keeps forever)")
	flags.Uint64("replay-capacity", d.ReplayCapacity, "Transcript events kept in memory (0 disables)")

	return cmd
}

func runTrain(ctx context.Context, resume string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			logger.Info().Msg("Shutdown signal received, stopping after current episode")
			cancel()
		case <-ctx.Done():
		}
	}()

	store, closeStore, err := newCheckpointStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	publisher, closePublisher, err := newPublisher()
	if err != nil {
		return err
	}
	defer closePublisher()

	params := rl.Params{
		Epsilon: cfg.Epsilon,
		Alpha:   cfg.Alpha,
		Gamma:   cfg.Gamma,
		Steps:   rl.DefaultParams().Steps,
	}
	agent := rl.New(params, cfg.Seed, rl.WithLogger(logger))

	opts := []trainer.Option{
		trainer.WithLogger(logger),
		trainer.WithPublisher(publisher),
		trainer.WithCollector(metrics.NewCollector(logger)),
	}
	var backend *replay.MemoryBackend
	if cfg.ReplayCapacity > 0 {
		backend = replay.NewMemoryBackend(cfg.ReplayCapacity)
		defer backend.Close()
		opts = append(opts, trainer.WithReplay(backend))
	}

	tr, err := trainer.New(cfg, agent, store, opts...)
	if err != nil {
		return err
	}
	if resume != "" {
		if _, err := tr.Resume(ctx, resume); err != nil {
			return err
		}
	}

	summary, err := tr.Run(ctx)
	if backend != nil {
		if stats, statsErr := backend.GetStats(context.WithoutCancel(ctx), tr.RunID()); statsErr == nil {
			logger.Info().
				Uint64("events", stats.TotalEvents).
				Uint64("episodes", stats.TotalEpisodes).
				Uint64("moves", stats.Moves).
				Uint64("passes", stats.Passes).
				Msg("Transcript stats")
		}
	}
	if err != nil && ctx.Err() == nil {
		return err
	}

	logger.Info().
		Int("episodes", summary.Episodes).
		Int("wins", summary.Wins).
		Str("win_rate", fmt.Sprintf("%.2f%%", 100*summary.WinRate())).
		Msg("Training finished")
	return nil
}

func newCheckpointStore(ctx context.Context) (checkpoint.Store, func(), error) {
	switch cfg.CheckpointBackend {
	case config.BackendRedis:
		client, err := checkpoint.NewRedisClient(ctx, checkpoint.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := client.Close(); err != nil {
				logger.Warn().Err(err).Msg("Failed to close redis client")
			}
		}
		return checkpoint.NewRedisStore(client, cfg.RedisPrefix, cfg.RedisTTL), closeFn, nil
	default:
		if err := os.MkdirAll(cfg.CheckpointDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create checkpoint dir: %w", err)
		}
		return checkpoint.NewFileStore(cfg.CheckpointDir), func() {}, nil
	}
}
