package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	app "github.com/okian/pbpwpa/internal/app"
	"github.com/okian/pbpwpa/internal/config"
	"github.com/okian/pbpwpa/pkg/logger"
	"github.com/okian/pbpwpa/pkg/metrics"
)

const nanosecondsPerMillisecond = 1e6

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// cli carries state shared by the subcommands of one invocation.
type cli struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg *config.Config
	log logger.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "pbpwpa",
		Short: "Classify play-by-play rows and attribute win probability swings",
		Long: `pbpwpa turns basketball play-by-play descriptions into typed events,
builds a per-game timeline and corrects a win probability series so that
every play carries its win probability added.`,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "YAML config file (defaults to $"+config.EnvConfigPath+")")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&c.logFormat, "log-format", "", "Log format: text or json")

	root.AddCommand(c.classifyCmd(), c.processCmd(), c.batchCmd())
	return root
}

// setup loads configuration and initializes logging.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}
	if c.logFormat != "" {
		cfg.LogFormat = c.logFormat
	}
	c.cfg = cfg

	if err := logger.Init(logger.WithOutput(cmd.ErrOrStderr()), logger.WithFormat(logger.Format(cfg.LogFormat))); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	c.log = logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		c.log.Warn(cmd.Context(), "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return nil
}

// flushing wraps a RunE so metrics are flushed whether or not it fails.
// Cobra skips post-run hooks after an error, so this cannot be one.
func (c *cli) flushing(run func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := run(cmd, args)
		if ferr := c.flushMetrics(cmd); ferr != nil {
			if err == nil {
				return ferr
			}
			c.log.Error(cmd.Context(), "metrics not written", logger.Error(ferr))
		}
		return err
	}
}

// flushMetrics writes the registry to the configured textfile.
func (c *cli) flushMetrics(cmd *cobra.Command) error {
	if c.cfg == nil || c.cfg.MetricsFile == "" {
		return nil
	}
	updateSystemMetrics()
	if err := metrics.WriteTextfile(c.cfg.MetricsFile); err != nil {
		return err
	}
	c.log.Debug(cmd.Context(), "metrics written", logger.String("path", c.cfg.MetricsFile))
	return nil
}

// newService builds the pipeline service from configuration.
func (c *cli) newService() *app.Service {
	return app.New(
		app.WithLogger(c.log),
		app.WithWorkerCount(c.cfg.WorkerCount),
		app.WithQueueSize(c.cfg.QueueSize),
		app.WithClassifyParallelism(c.cfg.ClassifyParallelism),
		app.WithCacheEnabled(c.cfg.CacheEnabled),
		app.WithPregameStdDev(c.cfg.PregameStdDev),
	)
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
