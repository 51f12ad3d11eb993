// Package winprob corrects a game's raw win probability series and
// attributes the change to individual plays.
//
// rawWP[i] is the home win probability entering play i, so the swing of
// play i is rawWP[i+1] - rawWP[i]. Three corrections are then applied, in
// this order, always reading the filled raw values and the uncorrected
// differences:
//
//  1. Period and game starts: the first play of the game enters at the
//     pregame probability; the first play of a later period enters at the
//     prior period's closing value.
//  2. Game end: the last play ends at the terminal probability of the
//     winner, and its corrected value is forced to it.
//  3. Timeouts: a timeout adds nothing. Its swing moves to the next
//     non-timeout play, so the game total is unchanged.
//
// The swings telescope: their sum is terminal(winner) - corrected[0] for
// any game of two or more plays. A one-play game has both ends on the same
// play, so its corrected value is the terminal one while its swing is
// measured from the value it entered at.
package winprob

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/okian/pbpwpa/internal/domain/model"
	"github.com/okian/pbpwpa/pkg/logger"
	"github.com/okian/pbpwpa/pkg/metrics"
)

// Adjuster applies the corrections. It holds no per-game state and is safe
// for concurrent use.
type Adjuster struct {
	stddev         float64
	pregame        func(line float64) float64
	logger         logger.Logger
	metricsEnabled bool
}

// New creates an Adjuster using the normal-margin pregame model.
func New(opts ...Option) *Adjuster {
	a := &Adjuster{
		stddev:         DefaultStdDev,
		logger:         logger.OrNop().Named("winprob"),
		metricsEnabled: true,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.pregame == nil {
		sd := a.stddev
		a.pregame = func(line float64) float64 { return PregameWinProbability(line, sd) }
	}
	return a
}

// Pregame returns the home win probability the adjuster uses before the
// first play.
func (a *Adjuster) Pregame(line float64) float64 { return a.pregame(line) }

// Adjust returns the corrected series for tl. rawWP must have one value per
// play; NaN marks a missing value and is filled from the previous play, or
// from the pregame probability at the start of the game. A length mismatch,
// an out-of-range probability or an unknown winner fails the whole game.
func (a *Adjuster) Adjust(ctx context.Context, tl model.Timeline, rawWP []float64, pregameLine float64, winner model.Winner) (model.WinProbabilitySeries, error) {
	if !winner.Valid() {
		return model.WinProbabilitySeries{}, fmt.Errorf("%w: %q", ErrInvalidWinner, winner)
	}
	n := tl.Len()
	if len(rawWP) != n {
		return model.WinProbabilitySeries{}, fmt.Errorf("%w: %d values for %d plays", ErrLengthMismatch, len(rawWP), n)
	}
	for i, v := range rawWP {
		if math.IsNaN(v) {
			continue
		}
		if math.IsInf(v, 0) || v < 0 || v > 100 {
			return model.WinProbabilitySeries{}, fmt.Errorf("%w: play %d: %v", ErrInvalidProbability, i, v)
		}
	}
	if err := ctx.Err(); err != nil {
		return model.WinProbabilitySeries{}, err
	}
	if n == 0 {
		return model.WinProbabilitySeries{Raw: []float64{}, Corrected: []float64{}, WPA: []float64{}}, nil
	}

	start := time.Now()
	pregame := a.pregame(pregameLine)
	terminal := winner.Terminal()
	last := n - 1

	raw := fill(rawWP, pregame)

	// base differences over the snapshot
	wpa := make([]float64, n)
	for i := 0; i < last; i++ {
		wpa[i] = raw[i+1] - raw[i]
	}

	// entering[i] is the corrected probability entering play i.
	entering := make([]float64, n)
	copy(entering, raw)
	boundaries := 0
	for i := range tl.Plays {
		if tl.Plays[i].SecsIntoPeriod != 0 {
			continue
		}
		if i == 0 {
			entering[0] = pregame
		} else {
			entering[i] = entering[i-1] + wpa[i-1]
		}
		if i < last {
			wpa[i] = raw[i+1] - entering[i]
		}
		boundaries++
	}

	wpa[last] = terminal - entering[last]

	timeouts := 0
	var pending float64
	carrying := false
	for i := range tl.Plays {
		if tl.Plays[i].Event.IsTimeout() && i < last {
			pending += wpa[i]
			wpa[i] = 0
			carrying = true
			timeouts++
			continue
		}
		if carrying {
			wpa[i] += pending
			pending, carrying = 0, false
		}
	}

	corrected := entering
	corrected[last] = terminal

	if a.metricsEnabled {
		metrics.RecordAdjustLatency(float64(time.Since(start).Microseconds()) / 1000)
		metrics.RecordCorrections(boundaries, timeouts)
		for _, v := range wpa {
			metrics.RecordPlayWPA(math.Abs(v))
		}
	}
	a.logger.Debug(ctx, "series adjusted",
		logger.Int("plays", n),
		logger.Float64("pregame", pregame),
		logger.Int("boundaries", boundaries),
		logger.Int("timeouts", timeouts))

	return model.WinProbabilitySeries{Raw: raw, Corrected: corrected, WPA: wpa}, nil
}

// fill replaces NaN values with the previous value, starting from first.
func fill(in []float64, first float64) []float64 {
	out := make([]float64, len(in))
	prev := first
	for i, v := range in {
		if math.IsNaN(v) {
			v = prev
		}
		out[i] = v
		prev = v
	}
	return out
}
