package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cartridge/sevens/internal/engine"
	"github.com/cartridge/sevens/internal/strategy"
	"github.com/cartridge/sevens/internal/strategy/rl"
)

func newPlayCmd() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play one game with built-in strategies",
		Long: `Play one game with built-in strategies.

Modes:
  internal  every seat plays RandomStrategy
  demo      RandomStrategy against GreedyStrategy, plus an RL player when
            --rl-model is given`,
		RunE: func(cmd *cobra.Command, args []string) error {
			standings, err := runPlay(mode)
			if err != nil {
				return err
			}
			printStandings(cmd.OutOrStdout(), "Final Rankings", standings)
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "internal", "Game mode (internal, demo)")
	cmd.Flags().String("rl-model", cfg.ModelPath, "Trained RL model to seat in demo mode")

	return cmd
}

func runPlay(mode string) ([]engine.Standing, error) {
	eng := engine.New(cfg.Seed,
		engine.WithLogger(logger),
		engine.WithMaxIdleRounds(cfg.MaxIdleRounds),
	)

	var names []string
	switch mode {
	case "internal":
		for id := 0; id < cfg.Players; id++ {
			eng.RegisterStrategy(id, strategy.NewRandom(cfg.Seed+int64(id)))
			names = append(names, fmt.Sprintf("Random-%d", id))
		}
	case "demo":
		eng.RegisterStrategy(0, strategy.NewRandom(cfg.Seed))
		eng.RegisterStrategy(1, strategy.NewGreedy())
		names = []string{"Random", "Greedy"}
		if cfg.ModelPath != "" {
			params := rl.DefaultParams()
			params.Epsilon = 0
			agent := rl.New(params, cfg.Seed, rl.WithLogger(logger))
			n, err := agent.LoadModel(cfg.ModelPath)
			if err != nil {
				return nil, fmt.Errorf("load rl model: %w", err)
			}
			logger.Info().Str("path", cfg.ModelPath).Int("entries", n).Msg("Loaded RL model")
			eng.RegisterStrategy(2, agent)
			names = append(names, "RL")
		}
	default:
		return nil, fmt.Errorf("unknown mode %q", mode)
	}

	logger.Info().Str("mode", mode).Int("players", len(names)).Msg("Starting game")
	return eng.RunNamed(names, cfg.Verbose)
}

func printStandings(w io.Writer, title string, standings []engine.Standing) {
	fmt.Fprintf(w, "%s:\n", title)
	for _, s := range standings {
		fmt.Fprintf(w, "  %s -> Rank %d (%d cards left)\n", s.Name, s.Rank, s.Remaining)
	}
}
