package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	service "github.com/okian/pbpwpa/internal/app"
	"github.com/okian/pbpwpa/internal/domain/model"
	"github.com/okian/pbpwpa/internal/domain/winprob"
	. "github.com/smartystreets/goconvey/convey"
)

func TestServiceIntegration(t *testing.T) {
	Convey("Given a started service with a small queue", t, func() {
		svc := newService(service.WithQueueSize(2), service.WithClassifyParallelism(3))
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When a batch larger than the queue is run", func() {
			games := make([]model.Game, 20)
			for i := range games {
				games[i] = sampleGame(fmt.Sprintf("game-%02d", i))
			}
			outs, err := svc.RunBatch(ctx, games)
			So(err, ShouldBeNil)

			Convey("Then every game finishes in input order", func() {
				So(len(outs), ShouldEqual, 20)
				for i, out := range outs {
					So(out.Err, ShouldBeNil)
					So(out.GameID, ShouldEqual, games[i].ID)
					So(out.Result.Series.Corrected[4], ShouldEqual, 100.0)
				}
			})

			Convey("Then every game is stored", func() {
				So(svc.GetStats()["gamesStored"], ShouldEqual, 20)
			})

			Convey("Then the shared cache served repeated descriptions", func() {
				stats := svc.GetStats()
				So(stats["cacheEntries"], ShouldEqual, int64(5))
				So(stats["cacheHits"], ShouldBeGreaterThan, int64(0))
			})

			Convey("Then the swing ranking spans games", func() {
				swings, err := svc.TopSwings(ctx, 20)
				So(err, ShouldBeNil)
				So(len(swings), ShouldEqual, 20)
				So(swings[0].GameID, ShouldEqual, "game-00")
				So(swings[19].Rank, ShouldEqual, 20)
			})
		})

		Convey("When a batch mixes good, failing and duplicate games", func() {
			bad := sampleGame("bad")
			bad.Winner = model.Winner("draw")
			outs, err := svc.RunBatch(ctx, []model.Game{sampleGame("ok"), bad, sampleGame("ok")})
			So(err, ShouldBeNil)

			Convey("Then each outcome reports its own result", func() {
				So(outs[0].Err, ShouldBeNil)
				So(errors.Is(outs[1].Err, winprob.ErrInvalidWinner), ShouldBeTrue)
				So(errors.Is(outs[2].Err, service.ErrDuplicateGame), ShouldBeTrue)
			})

			Convey("Then the failed game can be resubmitted", func() {
				outs, err := svc.RunBatch(ctx, []model.Game{sampleGame("bad")})
				So(err, ShouldBeNil)
				So(outs[0].Err, ShouldBeNil)
			})
		})

		Convey("When the context is already canceled", func() {
			cctx, ccancel := context.WithCancel(ctx)
			ccancel()
			_, err := svc.RunBatch(cctx, []model.Game{sampleGame("late")})

			Convey("Then the batch reports the cancellation", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})
}
