package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cartridge/sevens/internal/engine"
	"github.com/cartridge/sevens/internal/events"
	"github.com/cartridge/sevens/internal/loader"
	"github.com/cartridge/sevens/internal/metrics"
	"github.com/cartridge/sevens/internal/trainer"
)

func newCompeteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compete <strategy.so|strategy.lua>...",
		Short: "Play one game between dynamically loaded strategies",
		Long: `Play one game between dynamically loaded strategies.

Each argument is a Go plugin (.so) or Lua script (.lua) exporting a
strategy factory. Strategies take seats in argument order and are named
<Name>-<seat>.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			publisher, closePublisher, err := newPublisher()
			if err != nil {
				return err
			}
			defer closePublisher()

			standings, eng, err := runCompetition(args)
			if err != nil {
				return err
			}
			printStandings(cmd.OutOrStdout(), "Competition Results", standings)

			result := events.GameResultEvent{
				RunID:      uuid.New().String(),
				EpisodeID:  uuid.New().String(),
				Rounds:     eng.Rounds(),
				Turns:      eng.Turns(),
				Winner:     eng.Winner(),
				Stalled:    eng.Stalled(),
				Placements: trainer.Placements(standings),
			}
			if err := publisher.PublishGameResult(background(cmd), result); err != nil {
				logger.Warn().Err(err).Msg("Failed to publish game result")
			}
			return nil
		},
	}
}

func runCompetition(paths []string) ([]engine.Standing, *engine.Engine, error) {
	ld := loader.New(logger)
	collector := metrics.NewCollector(logger)

	eng := engine.New(cfg.Seed,
		engine.WithLogger(logger),
		engine.WithMaxIdleRounds(cfg.MaxIdleRounds),
	)

	handles := make([]*loader.Handle, 0, len(paths))
	defer func() {
		for _, h := range handles {
			if err := h.Release(); err != nil {
				logger.Warn().Err(err).Str("path", h.Path()).Msg("Failed to release strategy")
			}
		}
	}()

	names := make([]string, 0, len(paths))
	for id, path := range paths {
		logger.Info().Str("path", path).Msg("Loading strategy")
		h, err := ld.Load(path)
		if err != nil {
			collector.StrategyLoadFailed(path, err)
			return nil, nil, err
		}
		handles = append(handles, h)
		collector.StrategyLoaded(path, h.Name())

		h.Initialize(id)
		eng.RegisterStrategy(id, h)
		name := fmt.Sprintf("%s-%d", h.Name(), id)
		names = append(names, name)
		logger.Info().Str("name", name).Msg("Registered strategy")
	}

	logger.Info().Int("players", len(names)).Msg("Starting competition")
	standings, err := eng.RunNamed(names, cfg.Verbose)
	if err != nil {
		return nil, nil, err
	}
	return standings, eng, nil
}

// newPublisher connects to NATS when configured. The returned func closes
// the connection.
func newPublisher() (events.Publisher, func(), error) {
	if cfg.NATSURL == "" {
		return events.NoopPublisher{}, func() {}, nil
	}
	pub, err := events.NewNATSPublisher(cfg.NATSURL, cfg.NATSSubject, logger)
	if err != nil {
		return nil, nil, err
	}
	logger.Info().Str("url", cfg.NATSURL).Str("subject", cfg.NATSSubject).Msg("Publishing events to NATS")
	return pub, pub.Close, nil
}

// background is used where cobra has not supplied a context.
func background(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
