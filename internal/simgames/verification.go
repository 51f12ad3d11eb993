package simgames

import (
	"errors"
	"fmt"
	"math"

	"github.com/okian/pbpwpa/internal/domain/model"
)

const tolerance = 1e-6

// ErrViolation marks a processed game whose output breaks a series rule.
var ErrViolation = errors.New("series rule violated")

// verifyGame checks one processed game against its input: one play per
// row, the last play forced to the result, timeouts adding nothing
// except at the very end, and swings summing to the distance between the
// first corrected value and the result.
func verifyGame(g *model.Game, res *model.GameResult) []error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: game %s: %s", ErrViolation, g.ID, fmt.Sprintf(format, args...)))
	}

	n := len(g.Rows)
	if res.Timeline.Len() != n || len(res.Table) != n {
		fail("%d rows, %d plays, %d table rows", n, res.Timeline.Len(), len(res.Table))
		return errs
	}
	for i := range res.Timeline.Plays {
		if res.Timeline.Plays[i].Index != i {
			fail("play %d carries index %d", i, res.Timeline.Plays[i].Index)
		}
	}

	s := res.Series
	if s == nil {
		if _, ok := g.RawWP(); ok {
			fail("no series for a game with win probabilities")
		}
		return errs
	}
	if s.Len() != n || len(s.Raw) != n || len(s.Corrected) != n {
		fail("series of %d/%d/%d for %d plays", len(s.Raw), len(s.Corrected), s.Len(), n)
		return errs
	}
	if n == 0 {
		return errs
	}

	last := n - 1
	terminal := g.Winner.Terminal()
	if s.Corrected[last] != terminal {
		fail("last corrected value %.4f, want %.0f", s.Corrected[last], terminal)
	}
	for i := 0; i < last; i++ {
		if res.Timeline.Plays[i].Event.IsTimeout() && s.WPA[i] != 0 {
			fail("timeout at play %d adds %.4f", i, s.WPA[i])
		}
	}
	for i := range s.WPA {
		if math.IsNaN(s.WPA[i]) || math.IsNaN(s.Corrected[i]) {
			fail("NaN at play %d", i)
		}
	}
	if n >= 2 {
		if total, want := s.TotalWPA(), terminal-s.Corrected[0]; math.Abs(total-want) > tolerance {
			fail("swings sum to %.6f, want %.6f", total, want)
		}
	}
	return errs
}
