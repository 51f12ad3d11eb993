package winprob_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/okian/pbpwpa/internal/domain/model"
	"github.com/okian/pbpwpa/internal/domain/winprob"
	"github.com/okian/pbpwpa/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

const eps = 1e-9

// game builds a timeline with the given seconds-into-period per play.
// Plays listed in timeouts are timeouts; the rest are jump shots.
func game(secs []int, timeouts ...int) model.Timeline {
	isTimeout := make(map[int]bool, len(timeouts))
	for _, t := range timeouts {
		isTimeout[t] = true
	}
	tl := model.Timeline{Plays: make([]model.Play, len(secs))}
	for i, s := range secs {
		e := model.Event{Kind: model.KindFieldGoalAttempt, Payload: model.FieldGoalAttempt{Shooter: "smithjo01"}}
		if isTimeout[i] {
			e = model.Event{Kind: model.KindTimeout, Payload: model.Timeout{TimeoutTeam: "BOS"}}
		}
		tl.Plays[i] = model.Play{Index: i, SecsIntoPeriod: s, Event: e}
	}
	return tl
}

func newAdjuster() *winprob.Adjuster {
	return winprob.New(
		winprob.WithPregameModel(func(float64) float64 { return 48 }),
		winprob.WithLogger(logger.Nop()),
		winprob.WithMetrics(false),
	)
}

func TestAdjustTelescoping(t *testing.T) {
	Convey("Given a five play game entering at 48 that the home team wins", t, func() {
		a := newAdjuster()
		tl := game([]int{0, 10, 20, 30, 40})
		raw := []float64{50, 55, 60, 58, 62}

		Convey("When the series is adjusted", func() {
			s, err := a.Adjust(context.Background(), tl, raw, -1.5, model.WinnerHome)
			So(err, ShouldBeNil)

			Convey("Then the output is aligned with the timeline", func() {
				So(s.Len(), ShouldEqual, 5)
				So(len(s.Raw), ShouldEqual, 5)
				So(len(s.Corrected), ShouldEqual, 5)
			})

			Convey("Then the first play enters at the pregame probability", func() {
				So(s.Corrected[0], ShouldEqual, 48.0)
				So(s.WPA[0], ShouldAlmostEqual, 7, eps)
			})

			Convey("Then the swings telescope to the final margin", func() {
				So(s.WPA, ShouldResemble, []float64{7, 5, -2, 4, 38})
				So(s.TotalWPA(), ShouldAlmostEqual, 100-s.Corrected[0], eps)
			})

			Convey("Then the last play is forced to the terminal value", func() {
				So(s.Corrected[4], ShouldEqual, 100.0)
			})

			Convey("Then the input slice is left untouched", func() {
				So(raw, ShouldResemble, []float64{50, 55, 60, 58, 62})
			})
		})
	})
}

func TestAdjustBoundaryForcing(t *testing.T) {
	Convey("Given a game whose raw model ends far from the result", t, func() {
		a := newAdjuster()
		tl := game([]int{0, 5, 9})
		raw := []float64{50, 90, 97}

		for _, tc := range []struct {
			winner model.Winner
			want   float64
		}{
			{model.WinnerHome, 100},
			{model.WinnerAway, 0},
			{model.WinnerTie, 50},
		} {
			s, err := a.Adjust(context.Background(), tl, raw, 0, tc.winner)
			So(err, ShouldBeNil)
			So(s.Corrected[2], ShouldEqual, tc.want)
			So(s.WPA[2], ShouldAlmostEqual, tc.want-97, eps)
			So(s.TotalWPA(), ShouldAlmostEqual, tc.want-48, eps)
		}
	})
}

func TestAdjustSinglePlay(t *testing.T) {
	Convey("Given a game of one play", t, func() {
		a := newAdjuster()
		s, err := a.Adjust(context.Background(), game([]int{0}), []float64{50}, 0, model.WinnerHome)
		So(err, ShouldBeNil)

		Convey("Then the play carries the whole game from the pregame value", func() {
			So(s.WPA, ShouldResemble, []float64{52})
		})

		Convey("Then its corrected value is the terminal one", func() {
			So(s.Corrected, ShouldResemble, []float64{100})
			So(s.Raw, ShouldResemble, []float64{50})
		})
	})
}

func TestAdjustTimeouts(t *testing.T) {
	Convey("Given a baseline game and the same game with a timeout", t, func() {
		a := newAdjuster()
		base, err := a.Adjust(context.Background(), game([]int{0, 10, 20, 30, 40}),
			[]float64{50, 55, 60, 58, 62}, 0, model.WinnerHome)
		So(err, ShouldBeNil)

		// The model drifts a point across the timeout row.
		withTimeout, err := a.Adjust(context.Background(), game([]int{0, 10, 20, 25, 30, 40}, 2),
			[]float64{50, 55, 60, 61, 58, 62}, 0, model.WinnerHome)
		So(err, ShouldBeNil)

		Convey("Then the timeout adds nothing", func() {
			So(withTimeout.WPA[2], ShouldEqual, 0.0)
		})

		Convey("Then its swing lands on the next play", func() {
			So(withTimeout.WPA[3], ShouldAlmostEqual, base.WPA[2], eps)
		})

		Convey("Then the total swing is unchanged", func() {
			So(withTimeout.TotalWPA(), ShouldAlmostEqual, base.TotalWPA(), eps)
			So(withTimeout.WPA[1]+withTimeout.WPA[2]+withTimeout.WPA[3],
				ShouldAlmostEqual, base.WPA[1]+base.WPA[2], eps)
		})
	})

	Convey("Given consecutive timeouts", t, func() {
		a := newAdjuster()
		s, err := a.Adjust(context.Background(), game([]int{0, 10, 11, 12, 20}, 1, 2),
			[]float64{50, 52, 53, 55, 60}, 0, model.WinnerAway)
		So(err, ShouldBeNil)

		Convey("Then both swings fold into the next play", func() {
			So(s.WPA[1], ShouldEqual, 0.0)
			So(s.WPA[2], ShouldEqual, 0.0)
			So(s.WPA[3], ShouldAlmostEqual, 60-52, eps)
			So(s.TotalWPA(), ShouldAlmostEqual, 0-48, eps)
		})
	})

	Convey("Given a timeout on the final play", t, func() {
		a := newAdjuster()
		s, err := a.Adjust(context.Background(), game([]int{0, 10, 20}, 2),
			[]float64{50, 52, 53}, 0, model.WinnerHome)
		So(err, ShouldBeNil)

		Convey("Then it keeps the game-end swing", func() {
			So(s.WPA[2], ShouldAlmostEqual, 47, eps)
			So(s.Corrected[2], ShouldEqual, 100.0)
			So(s.TotalWPA(), ShouldAlmostEqual, 52, eps)
		})
	})

	Convey("Given a timeout on the first play of the game", t, func() {
		a := newAdjuster()
		s, err := a.Adjust(context.Background(), game([]int{0, 10, 20}, 0),
			[]float64{50, 52, 53}, 0, model.WinnerHome)
		So(err, ShouldBeNil)

		Convey("Then the boundary swing moves to the next play", func() {
			So(s.Corrected[0], ShouldEqual, 48.0)
			So(s.WPA[0], ShouldEqual, 0.0)
			So(s.WPA[1], ShouldAlmostEqual, (52-48)+(53-52), eps)
			So(s.TotalWPA(), ShouldAlmostEqual, 52, eps)
		})
	})
}

func TestAdjustMissingValues(t *testing.T) {
	Convey("Given a raw series with gaps", t, func() {
		a := newAdjuster()
		nan := math.NaN()

		Convey("When the first value is missing", func() {
			s, err := a.Adjust(context.Background(), game([]int{5, 10, 15}),
				[]float64{nan, 55, 57}, 0, model.WinnerHome)
			So(err, ShouldBeNil)

			Convey("Then it takes the pregame probability", func() {
				So(s.Raw[0], ShouldEqual, 48.0)
				So(s.Corrected[0], ShouldEqual, 48.0)
				So(s.TotalWPA(), ShouldAlmostEqual, 52, eps)
			})
		})

		Convey("When a later period starts without a value", func() {
			s, err := a.Adjust(context.Background(), game([]int{0, 600, 0, 300}),
				[]float64{50, 61, nan, 45}, 0, model.WinnerAway)
			So(err, ShouldBeNil)

			Convey("Then the period enters at the prior closing value", func() {
				So(s.Corrected[2], ShouldEqual, 61.0)
				So(s.WPA[2], ShouldAlmostEqual, 45-61, eps)
			})

			Convey("Then no NaN reaches the output", func() {
				for i := range s.Raw {
					So(math.IsNaN(s.Raw[i]), ShouldBeFalse)
					So(math.IsNaN(s.Corrected[i]), ShouldBeFalse)
					So(math.IsNaN(s.WPA[i]), ShouldBeFalse)
				}
				So(s.TotalWPA(), ShouldAlmostEqual, -48, eps)
			})
		})
	})
}

func TestAdjustErrors(t *testing.T) {
	Convey("Given an adjuster", t, func() {
		a := newAdjuster()
		tl := game([]int{0, 10, 20})

		Convey("When the lengths differ", func() {
			_, err := a.Adjust(context.Background(), tl, []float64{50, 55}, 0, model.WinnerHome)

			Convey("Then a boundary input error is returned", func() {
				So(errors.Is(err, winprob.ErrLengthMismatch), ShouldBeTrue)
				So(errors.Is(err, winprob.ErrBoundaryInput), ShouldBeTrue)
			})
		})

		Convey("When the winner is unknown", func() {
			_, err := a.Adjust(context.Background(), tl, []float64{50, 55, 60}, 0, model.Winner("draw"))

			Convey("Then a boundary input error is returned", func() {
				So(errors.Is(err, winprob.ErrInvalidWinner), ShouldBeTrue)
				So(errors.Is(err, winprob.ErrBoundaryInput), ShouldBeTrue)
			})
		})

		Convey("When a probability is out of range", func() {
			_, err := a.Adjust(context.Background(), tl, []float64{50, 155, 60}, 0, model.WinnerHome)

			Convey("Then a boundary input error is returned", func() {
				So(errors.Is(err, winprob.ErrInvalidProbability), ShouldBeTrue)
				So(errors.Is(err, winprob.ErrBoundaryInput), ShouldBeTrue)
			})
		})

		Convey("When the timeline is empty", func() {
			s, err := a.Adjust(context.Background(), model.Timeline{}, nil, 0, model.WinnerHome)

			Convey("Then an empty series is returned", func() {
				So(err, ShouldBeNil)
				So(s.Len(), ShouldEqual, 0)
			})
		})
	})
}

func TestPregameWinProbability(t *testing.T) {
	Convey("Given the normal-margin pregame model", t, func() {
		Convey("Then a pick'em line is a coin flip", func() {
			So(winprob.PregameWinProbability(0, winprob.DefaultStdDev), ShouldAlmostEqual, 50, eps)
		})

		Convey("Then a negative line favors the home team", func() {
			fav := winprob.PregameWinProbability(-7, winprob.DefaultStdDev)
			dog := winprob.PregameWinProbability(7, winprob.DefaultStdDev)
			So(fav, ShouldBeGreaterThan, 50)
			So(dog, ShouldBeLessThan, 50)
			So(fav+dog, ShouldAlmostEqual, 100, 1e-6)
		})

		Convey("Then a non-positive stddev falls back to the default", func() {
			So(winprob.PregameWinProbability(-3, 0), ShouldAlmostEqual,
				winprob.PregameWinProbability(-3, winprob.DefaultStdDev), eps)
		})

		Convey("Then the adjuster uses its configured stddev", func() {
			a := winprob.New(winprob.WithPregameStdDev(10), winprob.WithLogger(logger.Nop()))
			So(a.Pregame(-3), ShouldAlmostEqual, winprob.PregameWinProbability(-3, 10), eps)
		})
	})
}
