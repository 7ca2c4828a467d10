package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gokatarajesh/picture-riddle/internal/app"
	"github.com/gokatarajesh/picture-riddle/internal/config"
	"github.com/gokatarajesh/picture-riddle/internal/logging"
)

var (
	envFile  string
	backend  string
	seed     uint64
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "riddle",
	Short: "Picture riddle trivia in your terminal",
	Long: `Riddle asks picture riddles from themed categories, four options each,
against a countdown. Lifetime statistics are kept in the configured store.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("❌", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "configs/.env", "dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "statistics backend: memory, sqlite, redis or postgres")
	rootCmd.PersistentFlags().Uint64Var(&seed, "seed", 0, "random seed for question order (0 = time based)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level written to stderr")
}

// loadGame reads configuration, applies flag overrides and builds the game wiring.
func loadGame(ctx context.Context) (*app.Game, *config.App, error) {
	if envFile != "" {
		_ = godotenv.Load(envFile)
	}
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	if backend != "" {
		cfg.Storage.Backend = backend
	}
	if seed != 0 {
		cfg.Game.Seed = seed
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	g, err := app.NewGame(ctx, cfg, newLogger(cfg))
	if err != nil {
		return nil, nil, err
	}
	return g, cfg, nil
}

func newLogger(cfg *config.App) zerolog.Logger {
	return logging.NewWithWriter(os.Stderr, cfg.Name, cfg.Env, logLevel)
}
