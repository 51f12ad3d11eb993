package main

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/pbpwpa/internal/simgames"
	"github.com/okian/pbpwpa/pkg/logger"
)

// Default configuration constants.
const (
	defaultNumGames    = 200
	defaultTopN        = 10
	defaultTimeoutRate = 0.04
	defaultMissingRate = 0.02
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	config := &simgames.Config{}
	var logFile, logFormat string

	cmd := &cobra.Command{
		Use:   "test-games",
		Short: "Generate synthetic games and check every corrected series",
		Long: `test-games generates games with provider-style descriptions, random
timeouts, period boundaries and a random walk of home win probability,
runs them through the pipeline in-process and verifies alignment,
last-play forcing, timeout neutrality and the telescoping sum.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			closeLog, err := simgames.SetupLogging(logFile, logger.Format(logFormat))
			if err != nil {
				return err
			}
			defer func() { _ = closeLog() }()

			_, err = simgames.Run(cmd.Context(), config)
			return err
		},
	}

	f := cmd.Flags()
	f.IntVar(&config.NumGames, "games", defaultNumGames, "Number of games to generate")
	f.IntVar(&config.Periods, "periods", simgames.DefaultPeriods, "Periods per game")
	f.IntVar(&config.PlaysPerPeriod, "plays", simgames.DefaultPlaysPerPeriod, "Plays per period")
	f.Float64Var(&config.TimeoutRate, "timeout-rate", defaultTimeoutRate, "Chance that a play is a timeout")
	f.Float64Var(&config.MissingRate, "missing-rate", defaultMissingRate, "Chance that a row has no win probability")
	f.IntVar(&config.Workers, "workers", runtime.NumCPU(), "Number of service workers")
	f.IntVar(&config.TopN, "top", defaultTopN, "Number of top swings to report")
	f.DurationVar(&config.Timeout, "timeout", defaultTestTimeout, "Deadline for the whole run")
	f.StringVar(&config.OutputFile, "output", "", "Write the generated games as JSON")
	f.StringVar(&logFile, "log", "", "Log file (default: test_games_TIMESTAMP.log)")
	f.StringVar(&logFormat, "log-format", "text", "Log format: text or json")
	f.BoolVar(&config.Verbose, "verbose", false, "Log every violation")
	return cmd
}
