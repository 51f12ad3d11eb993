package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/pbpwpa/internal/adapters/mq/queue"
	worker "github.com/okian/pbpwpa/internal/adapters/mq/worker"
	model "github.com/okian/pbpwpa/internal/domain/model"
	logging "github.com/okian/pbpwpa/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type mockStore struct {
	mu       sync.Mutex
	saved    map[string]*model.GameResult
	released []string
	saveErr  error
}

func newMockStore() *mockStore {
	return &mockStore{saved: make(map[string]*model.GameResult)}
}

func (s *mockStore) Save(_ context.Context, res *model.GameResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved[res.GameID] = res
	return nil
}

func (s *mockStore) Release(_ context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.released = append(s.released, id)
}

func (s *mockStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}

var errBadGame = errors.New("bad game")

// echo returns an empty result, failing for games whose id starts with "bad".
func echo(_ context.Context, g model.Game) (*model.GameResult, error) {
	if len(g.ID) >= 3 && g.ID[:3] == "bad" {
		return nil, errBadGame
	}
	return &model.GameResult{GameID: g.ID, Home: g.Home, Away: g.Away}, nil
}

func TestWorker(t *testing.T) {
	convey.Convey("Given a worker over a queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(8))
		store := newMockStore()
		w := worker.NewInMemoryWorker(q, worker.ProcessorFunc(echo), store,
			worker.WithName("w0"), worker.WithLogger(logging.Nop()))

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When a good game is queued", func() {
			done := make(chan model.JobOutcome, 1)
			convey.So(q.Enqueue(ctx, model.GameJob{Game: model.Game{ID: "g1"}, Done: done}), convey.ShouldBeNil)
			out := <-done

			convey.Convey("Then the result is stored and reported", func() {
				convey.So(out.Err, convey.ShouldBeNil)
				convey.So(out.GameID, convey.ShouldEqual, "g1")
				convey.So(out.Result.GameID, convey.ShouldEqual, "g1")
				convey.So(store.count(), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When a game fails", func() {
			done := make(chan model.JobOutcome, 1)
			convey.So(q.Enqueue(ctx, model.GameJob{Game: model.Game{ID: "bad1"}, Done: done}), convey.ShouldBeNil)
			out := <-done

			convey.Convey("Then the error is reported and the id released", func() {
				convey.So(errors.Is(out.Err, errBadGame), convey.ShouldBeTrue)
				convey.So(out.Result, convey.ShouldBeNil)
				convey.So(store.released, convey.ShouldResemble, []string{"bad1"})
			})
		})

		convey.Convey("When saving fails", func() {
			store.mu.Lock()
			store.saveErr = errors.New("disk full")
			store.mu.Unlock()
			done := make(chan model.JobOutcome, 1)
			convey.So(q.Enqueue(ctx, model.GameJob{Game: model.Game{ID: "g2"}, Done: done}), convey.ShouldBeNil)
			out := <-done

			convey.Convey("Then the game is reported as failed", func() {
				convey.So(out.Err, convey.ShouldNotBeNil)
				convey.So(store.released, convey.ShouldResemble, []string{"g2"})
			})
		})

		convey.Convey("When the worker is shut down", func() {
			sctx, scancel := context.WithTimeout(context.Background(), time.Second)
			defer scancel()

			convey.Convey("Then it stops", func() {
				convey.So(w.Shutdown(sctx), convey.ShouldBeNil)
				convey.So(w.Shutdown(sctx), convey.ShouldBeNil)
			})
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool of four workers", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(4))
		store := newMockStore()
		pool := worker.NewPool(4, q, worker.ProcessorFunc(echo), store, worker.WithLogger(logging.Nop()))
		ctx := context.Background()
		pool.Start(ctx)

		convey.Convey("When more games than the queue holds are submitted", func() {
			const games = 40
			done := make(chan model.JobOutcome, games)
			for i := 0; i < games; i++ {
				err := q.EnqueueWait(ctx, model.GameJob{Game: model.Game{ID: fmt.Sprintf("g%02d", i)}, Done: done})
				convey.So(err, convey.ShouldBeNil)
			}
			for i := 0; i < games; i++ {
				<-done
			}

			convey.Convey("Then every game is processed and the pool shuts down cleanly", func() {
				convey.So(pool.Size(), convey.ShouldEqual, 4)
				convey.So(store.count(), convey.ShouldEqual, games)
				convey.So(pool.Shutdown(ctx), convey.ShouldBeNil)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})
	})
}
