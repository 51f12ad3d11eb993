// Package timeline turns the rows of one game into an index-aligned
// sequence of classified plays.
package timeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/okian/pbpwpa/internal/domain/classify"
	"github.com/okian/pbpwpa/internal/domain/model"
	"github.com/okian/pbpwpa/pkg/logger"
	"github.com/okian/pbpwpa/pkg/metrics"
)

// checkEvery is how many rows a sequential build classifies between
// context checks.
const checkEvery = 64

// Classifier classifies one row.
type Classifier interface {
	Classify(description, home, away string, isHomePlay bool) model.Event
}

// Builder builds timelines. It holds no per-game state and is safe for
// concurrent use.
type Builder struct {
	classifier     Classifier
	parallelism    int
	logger         logger.Logger
	metricsEnabled bool
	validate       bool
}

// New creates a Builder over the default classifier.
func New(opts ...Option) *Builder {
	b := &Builder{
		classifier:     classify.New(),
		parallelism:    1,
		logger:         logger.OrNop().Named("timeline"),
		metricsEnabled: true,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build classifies every row. The result has exactly one play per row, in
// row order; unparsable rows become Unparsed plays. The only errors are
// context cancellation and, with validation on, an event whose payload
// does not match its kind.
func (b *Builder) Build(ctx context.Context, rows []model.RawPlayRow) (model.Timeline, error) {
	plays := make([]model.Play, len(rows))

	var err error
	if b.parallelism > 1 && len(rows) > 1 {
		err = b.classifyParallel(ctx, rows, plays)
	} else {
		err = b.classifyRange(ctx, rows, plays, 0, len(rows))
	}
	if err != nil {
		return model.Timeline{}, err
	}

	assignPeriods(rows, plays)
	fillAttribution(plays)

	for i := range plays {
		e := &plays[i].Event
		if b.validate {
			if err := e.Validate(); err != nil {
				return model.Timeline{}, fmt.Errorf("%w: play %d: %w", ErrInvalidEvent, i, err)
			}
		}
		if e.IsUnparsed() {
			b.logger.Warn(ctx, "unparsed play",
				logger.Int("index", i),
				logger.String("text", rows[i].Description))
		}
		if b.metricsEnabled {
			metrics.RecordPlayClassified(e.Kind.String())
			if e.IsUnparsed() {
				metrics.RecordPlayUnparsed()
			}
		}
	}

	return model.Timeline{Plays: plays}, nil
}

// classifyParallel splits rows into contiguous chunks, one per goroutine.
// Each play is written only at its own index.
func (b *Builder) classifyParallel(ctx context.Context, rows []model.RawPlayRow, plays []model.Play) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.parallelism)

	chunk := (len(rows) + b.parallelism - 1) / b.parallelism
	for lo := 0; lo < len(rows); lo += chunk {
		hi := min(lo+chunk, len(rows))
		g.Go(func() error {
			return b.classifyRange(gctx, rows, plays, lo, hi)
		})
	}
	return g.Wait()
}

func (b *Builder) classifyRange(ctx context.Context, rows []model.RawPlayRow, plays []model.Play, lo, hi int) error {
	for i := lo; i < hi; i++ {
		if (i-lo)%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		r := &rows[i]
		e := b.classifier.Classify(r.Description, r.Home, r.Away, r.IsHomePlay)
		plays[i] = model.Play{
			Index:          i,
			SecsIntoPeriod: r.SecsIntoPeriod,
			Period:         r.Period,
			Team:           e.Team,
			Opp:            e.Opp,
			Event:          e,
		}
	}
	return nil
}

// assignPeriods numbers periods when the rows do not carry them. A new
// period starts at a zero-seconds row that follows a non-zero one.
func assignPeriods(rows []model.RawPlayRow, plays []model.Play) {
	for i := range rows {
		if rows[i].Period != 0 {
			return
		}
	}
	period := 1
	for i := range plays {
		if i > 0 && rows[i].SecsIntoPeriod == 0 && rows[i-1].SecsIntoPeriod != 0 {
			period++
		}
		plays[i].Period = period
	}
}

// fillAttribution gives plays the classifier left unattributed the team and
// opponent of the next attributed play, or failing that the previous one.
// Jump balls and unparsed plays are neither sources nor targets.
func fillAttribution(plays []model.Play) {
	eligible := func(p *model.Play) bool {
		return p.Event.Kind != model.KindJumpBall && p.Event.Kind != model.KindUnparsed
	}

	var team, opp string
	for i := len(plays) - 1; i >= 0; i-- {
		p := &plays[i]
		if !eligible(p) {
			continue
		}
		if p.Team != "" {
			team, opp = p.Team, p.Opp
			continue
		}
		p.Team, p.Opp = team, opp
	}

	team, opp = "", ""
	for i := range plays {
		p := &plays[i]
		if !eligible(p) {
			continue
		}
		if p.Team != "" {
			team, opp = p.Team, p.Opp
			continue
		}
		p.Team, p.Opp = team, opp
	}
}
