package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/okian/pbpwpa/internal/adapters/tableio"
	"github.com/okian/pbpwpa/internal/config"
	"github.com/okian/pbpwpa/internal/domain/classify"
	"github.com/okian/pbpwpa/internal/domain/model"
	"github.com/okian/pbpwpa/pkg/logger"
)

// errGamesFailed is returned by batch when at least one game did not finish.
var errGamesFailed = errors.New("games failed")

func (c *cli) classifyCmd() *cobra.Command {
	var home, away string
	var homePlay bool

	cmd := &cobra.Command{
		Use:   "classify <description>",
		Short: "Classify one play description and print the event as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: c.flushing(func(cmd *cobra.Command, args []string) error {
			e := classify.Classify(args[0], home, away, homePlay)
			return tableio.WriteJSON(cmd.OutOrStdout(), e)
		}),
	}
	cmd.Flags().StringVar(&home, "home", "HOME", "Home team code")
	cmd.Flags().StringVar(&away, "away", "AWAY", "Away team code")
	cmd.Flags().BoolVar(&homePlay, "home-play", false, "The row came from the home column")
	return cmd
}

func (c *cli) processCmd() *cobra.Command {
	var entry tableio.ManifestEntry
	var format, out string

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Process one game and write its enriched table",
		RunE: c.flushing(func(cmd *cobra.Command, _ []string) error {
			if (entry.Rows == "") == (entry.HTML == "") {
				return fmt.Errorf("exactly one of --rows and --html is required")
			}
			if format == "" {
				format = c.cfg.OutputFormat
			}
			if format != config.OutputJSON && format != config.OutputCSV {
				return fmt.Errorf("invalid format: %s (must be 'json' or 'csv')", format)
			}

			game, err := tableio.LoadGame(&entry)
			if err != nil {
				return err
			}
			res, err := c.newService().Process(cmd.Context(), game)
			if err != nil {
				return err
			}
			c.log.Info(cmd.Context(), "game processed",
				logger.String("game", res.GameID),
				logger.Int("plays", res.Timeline.Len()),
				logger.Int("unparsed", res.Unparsed),
				logger.Bool("adjusted", res.Series != nil),
			)

			if out == "" {
				return writeTable(cmd.OutOrStdout(), format, res.Table)
			}
			return writeTableFile(out, format, res.Table)
		}),
	}
	cmd.Flags().StringVar(&entry.ID, "id", "", "Game id (random when empty)")
	cmd.Flags().StringVar(&entry.Rows, "rows", "", "CSV file of play rows")
	cmd.Flags().StringVar(&entry.HTML, "html", "", "Stored play-by-play HTML page")
	cmd.Flags().StringVar(&entry.Home, "home", "", "Home team code")
	cmd.Flags().StringVar(&entry.Away, "away", "", "Away team code")
	cmd.Flags().Float64Var(&entry.Line, "line", 0, "Pregame line from the home side (negative favors home)")
	cmd.Flags().StringVar(&entry.Winner, "winner", "", "Game result: home, away or tie")
	cmd.Flags().StringVar(&entry.WP, "wp", "", "File with one home win probability per row")
	cmd.Flags().StringVar(&format, "format", "", "Output format: json or csv (defaults to output_format)")
	cmd.Flags().StringVar(&out, "out", "", "Output file (defaults to stdout)")
	_ = cmd.MarkFlagRequired("home")
	_ = cmd.MarkFlagRequired("away")
	_ = cmd.MarkFlagRequired("winner")
	return cmd
}

func (c *cli) batchCmd() *cobra.Command {
	var manifest, outDir string

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Process every game of a manifest through the worker pool",
		RunE: c.flushing(func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			m, err := tableio.LoadManifest(manifest)
			if err != nil {
				return err
			}
			if outDir != "" {
				if err := os.MkdirAll(outDir, 0o755); err != nil {
					return fmt.Errorf("create output dir: %w", err)
				}
			}

			failed := 0
			games := make([]model.Game, 0, len(m.Games))
			for i := range m.Games {
				g, err := tableio.LoadGame(&m.Games[i])
				if err != nil {
					failed++
					c.log.Error(ctx, "game not loaded", logger.String("game", m.Games[i].ID), logger.Error(err))
					continue
				}
				games = append(games, g)
			}

			svc := c.newService()
			if err := svc.Start(ctx); err != nil {
				return err
			}
			defer svc.Stop()

			outs, err := svc.RunBatch(ctx, games)
			if err != nil {
				return err
			}
			for _, o := range outs {
				if o.Err != nil {
					failed++
					c.log.Error(ctx, "game failed", logger.String("game", o.GameID), logger.Error(o.Err))
					continue
				}
				if outDir == "" {
					continue
				}
				path := filepath.Join(outDir, o.GameID+"."+c.cfg.OutputFormat)
				if err := writeTableFile(path, c.cfg.OutputFormat, o.Result.Table); err != nil {
					return err
				}
			}

			swings, err := svc.TopSwings(ctx, c.cfg.TopSwings)
			if err != nil {
				return err
			}
			for _, s := range swings {
				c.log.Info(ctx, "top swing",
					logger.Int("rank", s.Rank),
					logger.String("game", s.GameID),
					logger.Int("index", s.Index),
					logger.String("kind", s.Kind),
					logger.Float64("wpa", s.WPA),
					logger.String("detail", s.Detail),
				)
			}
			c.log.Info(ctx, "batch finished",
				logger.Int("games", len(m.Games)),
				logger.Int("failed", failed),
				logger.Any("stats", svc.GetStats()),
			)
			if failed > 0 {
				return fmt.Errorf("%w: %d of %d", errGamesFailed, failed, len(m.Games))
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&manifest, "manifest", "", "YAML manifest listing the games")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Directory for one enriched table per game")
	_ = cmd.MarkFlagRequired("manifest")
	return cmd
}

func writeTable(w io.Writer, format string, table []model.TablePlay) error {
	if strings.EqualFold(format, config.OutputCSV) {
		return tableio.WriteCSV(w, table)
	}
	return tableio.WriteJSON(w, table)
}

func writeTableFile(path, format string, table []model.TablePlay) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()
	return writeTable(f, format, table)
}
