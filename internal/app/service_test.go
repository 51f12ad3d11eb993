package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	service "github.com/okian/pbpwpa/internal/app"
	"github.com/okian/pbpwpa/internal/domain/model"
	"github.com/okian/pbpwpa/internal/domain/winprob"
	"github.com/okian/pbpwpa/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func wp(v float64) *float64 { return &v }

func row(desc string, secs int, home bool, p *float64) model.RawPlayRow {
	return model.RawPlayRow{Description: desc, SecsIntoPeriod: secs, IsHomePlay: home, Home: "BOS", Away: "LAL", HomeWP: p}
}

func sampleGame(id string) model.Game {
	return model.Game{
		ID:          id,
		Home:        "BOS",
		Away:        "LAL",
		PregameLine: 0,
		Winner:      model.WinnerHome,
		Rows: []model.RawPlayRow{
			row("Jump ball: horfoal01 vs. jamesle01", 0, false, wp(50)),
			row("jamesle01 makes 2-pt jump shot from 15 ft", 20, false, wp(47)),
			row("BOS full timeout", 25, true, wp(46)),
			row("tatumja01 makes 3-pt jump shot from 25 ft (assist by smartma01)", 40, true, wp(52)),
			row("Defensive rebound by horfoal01", 55, true, wp(53)),
		},
	}
}

func newService(opts ...service.Option) *service.Service {
	base := []service.Option{service.WithLogger(logger.Nop()), service.WithWorkerCount(2)}
	return service.New(append(base, opts...)...)
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should report its defaults", func() {
			So(svc, ShouldNotBeNil)
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, false)
			So(stats["cacheEnabled"], ShouldEqual, true)
			So(stats["classifyParallelism"], ShouldEqual, 1)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := newService(
			service.WithWorkerCount(8),
			service.WithQueueSize(16),
			service.WithClassifyParallelism(4),
			service.WithCacheEnabled(false),
			service.WithPregameStdDev(12),
		)

		Convey("Then the options are applied", func() {
			stats := svc.GetStats()
			So(stats["workerCount"], ShouldEqual, 8)
			So(stats["queueSize"], ShouldEqual, 16)
			So(stats["classifyParallelism"], ShouldEqual, 4)
			So(stats["cacheEnabled"], ShouldEqual, false)
			_, hasCache := stats["cacheEntries"]
			So(hasCache, ShouldBeFalse)
		})
	})
}

func TestService_StartStop(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := newService()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		Convey("When starting the service", func() {
			So(svc.Start(ctx), ShouldBeNil)
			defer svc.Stop()

			Convey("Then it should be marked as started", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
				So(stats["queueLength"], ShouldEqual, 0)
			})

			Convey("Then starting again is a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})
		})

		Convey("When stopping a started service", func() {
			So(svc.Start(ctx), ShouldBeNil)
			svc.Stop()

			Convey("Then it should be marked as stopped", func() {
				So(svc.GetStats()["started"], ShouldEqual, false)
			})

			Convey("Then it can be started again", func() {
				So(svc.Start(ctx), ShouldBeNil)
				defer svc.Stop()
				_, err := svc.RunBatch(ctx, []model.Game{sampleGame("restart")})
				So(err, ShouldBeNil)
			})
		})

		Convey("When submitting before starting", func() {
			_, err := svc.Submit(ctx, sampleGame("early"), nil)

			Convey("Then ErrNotStarted is returned", func() {
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})
		})
	})
}

func TestService_Process(t *testing.T) {
	Convey("Given a service", t, func() {
		svc := newService()
		ctx := context.Background()

		Convey("When a game is processed", func() {
			res, err := svc.Process(ctx, sampleGame("g1"))
			So(err, ShouldBeNil)

			Convey("Then the timeline and series are aligned", func() {
				So(res.GameID, ShouldEqual, "g1")
				So(res.Timeline.Len(), ShouldEqual, 5)
				So(res.Series, ShouldNotBeNil)
				So(res.Series.Len(), ShouldEqual, 5)
				So(len(res.Table), ShouldEqual, 5)
				So(res.Unparsed, ShouldEqual, 0)
			})

			Convey("Then the swings telescope from the pregame value to the result", func() {
				So(res.Series.Corrected[0], ShouldAlmostEqual, 50, 1e-9)
				So(res.Series.Corrected[4], ShouldEqual, 100.0)
				So(res.Series.TotalWPA(), ShouldAlmostEqual, 50, 1e-9)
			})

			Convey("Then the timeout adds nothing", func() {
				So(res.Timeline.Plays[2].Event.IsTimeout(), ShouldBeTrue)
				So(res.Series.WPA[2], ShouldEqual, 0.0)
				So(*res.Table[2].WPA, ShouldEqual, 0.0)
			})

			Convey("Then it is stored and ranked", func() {
				got, err := svc.Get(ctx, "g1")
				So(err, ShouldBeNil)
				So(got, ShouldEqual, res)

				swings, err := svc.TopSwings(ctx, 1)
				So(err, ShouldBeNil)
				So(len(swings), ShouldEqual, 1)
				So(swings[0].Rank, ShouldEqual, 1)
				So(swings[0].Index, ShouldEqual, 4)
				So(swings[0].WPA, ShouldAlmostEqual, 47, 1e-9)
			})

			Convey("Then the same id is rejected", func() {
				_, err := svc.Process(ctx, sampleGame("g1"))
				So(errors.Is(err, service.ErrDuplicateGame), ShouldBeTrue)
			})
		})

		Convey("When a game has no id", func() {
			res, err := svc.Process(ctx, sampleGame(""))

			Convey("Then one is assigned", func() {
				So(err, ShouldBeNil)
				So(res.GameID, ShouldNotBeBlank)
			})
		})

		Convey("When a game has no win probabilities", func() {
			g := sampleGame("no-wp")
			for i := range g.Rows {
				g.Rows[i].HomeWP = nil
			}
			res, err := svc.Process(ctx, g)

			Convey("Then only the timeline is produced", func() {
				So(err, ShouldBeNil)
				So(res.Series, ShouldBeNil)
				So(res.Table[0].WPA, ShouldBeNil)
			})
		})

		Convey("When a probability is out of range", func() {
			g := sampleGame("bad")
			g.Rows[1].HomeWP = wp(140)
			_, err := svc.Process(ctx, g)

			Convey("Then the game fails and its id is released", func() {
				So(errors.Is(err, winprob.ErrBoundaryInput), ShouldBeTrue)
				g.Rows[1].HomeWP = wp(47)
				_, err := svc.Process(ctx, g)
				So(err, ShouldBeNil)
			})
		})
	})
}
