package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cartridge/sevens/internal/config"
)

var (
	cfg        *config.Config
	configFile string
	logger     zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "sevens",
	Short: "Sevens card game simulator",
	Long: `Simulator for the card game Sevens.

Plays games between built-in, scripted (.lua) and plugin (.so) strategies,
and trains a tabular Q-learning strategy by self-play.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	cfg = config.Default()

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Config file (yaml, toml or json)")

	// Game settings
	flags.Int("players", cfg.Players, "Number of players")
	flags.Int64("seed", cfg.Seed, "Random seed for shuffles and strategies")
	flags.Bool("verbose", cfg.Verbose, "Log every move at info level")
	flags.Int("max-idle-rounds", cfg.MaxIdleRounds, "Rounds without a move before a game is declared stalled")

	// Logging
	flags.String("log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")

	// Event fan-out
	flags.String("nats-url", cfg.NATSURL, "NATS server URL; empty disables event publishing")
	flags.String("nats-subject", cfg.NATSSubject, "NATS subject prefix")

	rootCmd.AddCommand(newPlayCmd(), newCompeteCmd(), newTrainCmd())

	viper.SetEnvPrefix("SEVENS")
	viper.AutomaticEnv()
}

// flagKeys maps flags whose config key is not their own name.
var flagKeys = map[string]string{
	"rl-model": "model_path",
}

// bindFlags binds every flag to a viper key: the flagKeys entry if there is
// one, otherwise the flag name with dashes replaced by underscores.
func bindFlags(flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		switch f.Name {
		case "config", "help", "mode":
			return
		}
		key, ok := flagKeys[f.Name]
		if !ok {
			key = strings.ReplaceAll(f.Name, "-", "_")
		}
		_ = viper.BindPFlag(key, f)
	})
}

func loadConfig(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	bindFlags(cmd.Flags())

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", configFile, err)
		}
	}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().
		Timestamp().
		Logger()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
