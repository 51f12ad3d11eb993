package simgames

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/pbpwpa/internal/adapters/tableio"
	service "github.com/okian/pbpwpa/internal/app"
	"github.com/okian/pbpwpa/internal/domain/model"
	"github.com/okian/pbpwpa/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	percentMultiplier   = 100
)

// ErrGamesFailed is returned when a game did not finish or broke a rule.
var ErrGamesFailed = errors.New("synthetic games failed")

// Run generates the games, processes them through an in-process service
// and verifies every result.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	config.applyDefaults()
	log := logger.OrNop().Named("simgames")
	stats := &Stats{StartTime: time.Now()}

	log.Info(ctx, "starting synthetic game check",
		logger.Int("games", config.NumGames),
		logger.Int("periods", config.Periods),
		logger.Int("playsPerPeriod", config.PlaysPerPeriod),
		logger.Int("workers", config.Workers),
		logger.Float64("timeoutRate", config.TimeoutRate),
		logger.Float64("missingRate", config.MissingRate),
	)

	if config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.Timeout)
		defer cancel()
	}

	games, err := generateGames(ctx, config, stats)
	if err != nil {
		return stats, fmt.Errorf("game generation failed: %w", err)
	}

	svc := service.New(
		service.WithLogger(log),
		service.WithWorkerCount(config.Workers),
		service.WithQueueSize(config.NumGames),
	)
	if err := svc.Start(ctx); err != nil {
		return stats, err
	}
	defer svc.Stop()

	outs, err := svc.RunBatch(ctx, games)
	if err != nil {
		return stats, fmt.Errorf("batch failed: %w", err)
	}

	for i, out := range outs {
		if out.Err != nil {
			stats.GamesFailed++
			log.Error(ctx, "game failed", logger.String("game", out.GameID), logger.Error(out.Err))
			continue
		}
		stats.GamesSucceeded++
		stats.Timeouts += out.Result.Timeline.CountByKind()[model.KindTimeout]
		if errs := verifyGame(&games[i], out.Result); len(errs) > 0 {
			stats.GamesInvalid++
			stats.Violations += len(errs)
			if config.Verbose {
				for _, e := range errs {
					log.Warn(ctx, "violation", logger.Error(e))
				}
			}
		}
	}

	if config.TopN > 0 {
		swings, err := svc.TopSwings(ctx, config.TopN)
		if err != nil {
			log.Warn(ctx, "top swings unavailable", logger.Error(err))
		}
		for _, s := range swings {
			log.Info(ctx, "top swing",
				logger.Int("rank", s.Rank),
				logger.String("game", s.GameID),
				logger.Int("index", s.Index),
				logger.String("kind", s.Kind),
				logger.Float64("wpa", s.WPA))
		}
	}

	if config.OutputFile != "" {
		if err := saveGamesToFile(ctx, config.OutputFile, games); err != nil {
			log.Warn(ctx, "failed to save games to file", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)

	if stats.GamesFailed > 0 || stats.GamesInvalid > 0 {
		return stats, fmt.Errorf("%w: %d failed, %d invalid", ErrGamesFailed, stats.GamesFailed, stats.GamesInvalid)
	}
	return stats, nil
}

// saveGamesToFile writes the generated games as JSON so a failing run can
// be replayed.
func saveGamesToFile(ctx context.Context, filename string, games []model.Game) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.OrNop().Error(ctx, "failed to close file", logger.Error(err))
		}
	}()
	if err := tableio.WriteJSON(file, games); err != nil {
		return err
	}
	logger.OrNop().Info(ctx, "games saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var successRate, gamesPerSecond float64
	if stats.GamesGenerated > 0 {
		successRate = float64(stats.GamesSucceeded-stats.GamesInvalid) / float64(stats.GamesGenerated) * percentMultiplier
	}
	if stats.Duration > 0 {
		gamesPerSecond = float64(stats.GamesGenerated) / stats.Duration.Seconds()
	}

	log.Info(ctx, "final statistics",
		logger.Int("gamesGenerated", stats.GamesGenerated),
		logger.Int("gamesSucceeded", stats.GamesSucceeded),
		logger.Int("gamesFailed", stats.GamesFailed),
		logger.Int("gamesInvalid", stats.GamesInvalid),
		logger.Int("plays", stats.Plays),
		logger.Int("timeouts", stats.Timeouts),
		logger.Int("violations", stats.Violations),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("gamesPerSecond", gamesPerSecond))
}
