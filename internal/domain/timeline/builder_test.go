package timeline_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/okian/pbpwpa/internal/domain/classify"
	"github.com/okian/pbpwpa/internal/domain/memo"
	"github.com/okian/pbpwpa/internal/domain/model"
	"github.com/okian/pbpwpa/internal/domain/timeline"
	"github.com/okian/pbpwpa/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func row(desc string, secs int, home bool) model.RawPlayRow {
	return model.RawPlayRow{Description: desc, SecsIntoPeriod: secs, IsHomePlay: home, Home: "BOS", Away: "LAL"}
}

func sampleRows() []model.RawPlayRow {
	return []model.RawPlayRow{
		row("Jump ball: horfoal01 vs. jamesle01", 0, false),
		row("jamesle01 makes 2-pt jump shot from 15 ft", 20, false),
		row("horfoal01 enters the game for tatumja01", 30, true),
		row("Defensive rebound by horfoal01", 40, true),
		row("Instant replay", 50, true),
		row("", 0, false),
		row("LAL full timeout", 10, false),
		row("Technical foul by Team", 20, true),
	}
}

func newBuilder(opts ...timeline.Option) *timeline.Builder {
	base := []timeline.Option{timeline.WithLogger(logger.Nop()), timeline.WithMetrics(false)}
	return timeline.New(append(base, opts...)...)
}

func TestBuild(t *testing.T) {
	Convey("Given the rows of a short game", t, func() {
		rows := sampleRows()
		b := newBuilder(timeline.WithValidation(true))

		Convey("When the timeline is built", func() {
			tl, err := b.Build(context.Background(), rows)
			So(err, ShouldBeNil)

			Convey("Then every row yields exactly one play in order", func() {
				So(tl.Len(), ShouldEqual, len(rows))
				for i, p := range tl.Plays {
					So(p.Index, ShouldEqual, i)
					So(p.Event.Detail, ShouldEqual, rows[i].Description)
					So(p.SecsIntoPeriod, ShouldEqual, rows[i].SecsIntoPeriod)
				}
			})

			Convey("Then kinds follow the descriptions", func() {
				kinds := make([]model.Kind, tl.Len())
				for i, p := range tl.Plays {
					kinds[i] = p.Event.Kind
				}
				So(kinds, ShouldResemble, []model.Kind{
					model.KindJumpBall,
					model.KindFieldGoalAttempt,
					model.KindSubstitution,
					model.KindRebound,
					model.KindUnparsed,
					model.KindUnparsed,
					model.KindTimeout,
					model.KindTechnicalFoul,
				})
				So(tl.Unparsed(), ShouldResemble, []int{4, 5})
				So(tl.CountByKind()[model.KindUnparsed], ShouldEqual, 2)
			})

			Convey("Then periods are numbered from zero-second rows", func() {
				for i, want := range []int{1, 1, 1, 1, 1, 2, 2, 2} {
					So(tl.Plays[i].Period, ShouldEqual, want)
				}
			})

			Convey("Then unattributed plays borrow the next attribution", func() {
				So(tl.Plays[2].Event.Team, ShouldEqual, "")
				So(tl.Plays[2].Team, ShouldEqual, "LAL")
				So(tl.Plays[2].Opp, ShouldEqual, "BOS")
			})

			Convey("Then trailing unattributed plays borrow the previous attribution", func() {
				So(tl.Plays[7].Team, ShouldEqual, "LAL")
				So(tl.Plays[7].Opp, ShouldEqual, "BOS")
			})

			Convey("Then jump balls and unparsed plays stay unattributed", func() {
				So(tl.Plays[0].Team, ShouldEqual, "")
				So(tl.Plays[4].Team, ShouldEqual, "")
				So(tl.Plays[5].Team, ShouldEqual, "")
			})
		})

		Convey("When rows carry their own periods", func() {
			for i := range rows {
				rows[i].Period = 3
			}
			tl, err := b.Build(context.Background(), rows)

			Convey("Then they are kept", func() {
				So(err, ShouldBeNil)
				So(tl.Plays[0].Period, ShouldEqual, 3)
				So(tl.Plays[7].Period, ShouldEqual, 3)
			})
		})

		Convey("When there are no rows", func() {
			tl, err := b.Build(context.Background(), nil)

			Convey("Then the timeline is empty", func() {
				So(err, ShouldBeNil)
				So(tl.Len(), ShouldEqual, 0)
			})
		})

		Convey("When the context is already cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := b.Build(ctx, rows)

			Convey("Then the cancellation is returned", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})
}

func TestBuildParallel(t *testing.T) {
	Convey("Given a long game", t, func() {
		var rows []model.RawPlayRow
		for i := 0; i < 250; i++ {
			switch i % 5 {
			case 0:
				rows = append(rows, row(fmt.Sprintf("smithjo%02d misses 3-pt jump shot from 2%d ft", i%90, i%10), i, true))
			case 1:
				rows = append(rows, row("Defensive rebound by Team", i, false))
			case 2:
				rows = append(rows, row("Official timeout", i, true))
			case 3:
				rows = append(rows, row("Turnover by jamesle01 (offensive foul)", i, false))
			default:
				rows = append(rows, row("gibberish", i, true))
			}
		}

		Convey("When built sequentially and in parallel through a shared cache", func() {
			seq, err := newBuilder().Build(context.Background(), rows)
			So(err, ShouldBeNil)

			cache := memo.New(nil, memo.WithMetrics(false))
			par, err := newBuilder(
				timeline.WithParallelism(7),
				timeline.WithClassifier(classify.New(classify.WithParser(cache))),
			).Build(context.Background(), rows)
			So(err, ShouldBeNil)

			Convey("Then both timelines are identical", func() {
				So(par.Len(), ShouldEqual, len(rows))
				So(par, ShouldResemble, seq)
				So(cache.Size(), ShouldBeLessThan, len(rows))
			})
		})
	})
}

func TestEnrich(t *testing.T) {
	Convey("Given a built timeline", t, func() {
		tl, err := newBuilder().Build(context.Background(), sampleRows())
		So(err, ShouldBeNil)

		Convey("When enriched without a series", func() {
			table, err := timeline.Enrich(tl, nil)

			Convey("Then rows carry the events and no probabilities", func() {
				So(err, ShouldBeNil)
				So(len(table), ShouldEqual, tl.Len())
				So(table[1].Kind, ShouldEqual, model.KindFieldGoalAttempt)
				So(table[1].Team, ShouldEqual, "LAL")
				So(table[1].Payload.(model.FieldGoalAttempt).Distance, ShouldEqual, 15)
				So(table[1].WPA, ShouldBeNil)
			})
		})

		Convey("When enriched with an aligned series", func() {
			n := tl.Len()
			series := &model.WinProbabilitySeries{
				Raw:       make([]float64, n),
				Corrected: make([]float64, n),
				WPA:       make([]float64, n),
			}
			series.WPA[3] = 2.5
			table, err := timeline.Enrich(tl, series)

			Convey("Then the probability columns are filled", func() {
				So(err, ShouldBeNil)
				So(*table[3].WPA, ShouldEqual, 2.5)
				So(table[0].CorrectedWP, ShouldNotBeNil)
			})
		})

		Convey("When the series is misaligned", func() {
			_, err := timeline.Enrich(tl, &model.WinProbabilitySeries{WPA: []float64{1}})

			Convey("Then an alignment error is returned", func() {
				So(errors.Is(err, model.ErrMisalignedTable), ShouldBeTrue)
			})
		})
	})
}
