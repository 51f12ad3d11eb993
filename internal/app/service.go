// Package service wires the classifier, the timeline builder and the win
// probability adjuster behind a queue of game jobs.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/pbpwpa/internal/adapters/mq/queue"
	"github.com/okian/pbpwpa/internal/adapters/mq/worker"
	"github.com/okian/pbpwpa/internal/adapters/repository"
	"github.com/okian/pbpwpa/internal/domain/classify"
	"github.com/okian/pbpwpa/internal/domain/memo"
	"github.com/okian/pbpwpa/internal/domain/model"
	"github.com/okian/pbpwpa/internal/domain/timeline"
	"github.com/okian/pbpwpa/internal/domain/types"
	"github.com/okian/pbpwpa/internal/domain/winprob"
	"github.com/okian/pbpwpa/pkg/logger"
	"github.com/okian/pbpwpa/pkg/metrics"
)

const defaultQueueSize = 1024

// Service processes games synchronously or through its worker pool and
// keeps every result for swing ranking.
type Service struct {
	mu sync.RWMutex

	// Core components
	cache    *memo.Cache
	builder  *timeline.Builder
	adjuster *winprob.Adjuster
	store    *repository.MemoryStore
	queue    *queue.InMemoryQueue
	pool     *worker.Pool

	// Configuration
	workerCount         int
	queueSize           int
	classifyParallelism int
	cacheEnabled        bool
	pregameStdDev       float64

	started bool
	logger  logger.Logger
}

// New constructs a Service. The pipeline components are ready at once, so
// Process works before Start; Submit and RunBatch need the worker pool.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:         runtime.NumCPU(),
		queueSize:           defaultQueueSize,
		classifyParallelism: 1,
		cacheEnabled:        true,
		pregameStdDev:       winprob.DefaultStdDev,
		logger:              logger.OrNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	cl := classify.New()
	if s.cacheEnabled {
		s.cache = memo.New(nil)
		cl = classify.New(classify.WithParser(s.cache))
	}
	s.builder = timeline.New(
		timeline.WithClassifier(cl),
		timeline.WithParallelism(s.classifyParallelism),
		timeline.WithLogger(s.logger.Named("timeline")),
	)
	s.adjuster = winprob.New(
		winprob.WithPregameStdDev(s.pregameStdDev),
		winprob.WithLogger(s.logger.Named("winprob")),
	)
	s.store = repository.NewMemoryStore()

	return s
}

// Start creates the queue and starts the worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, worker.ProcessorFunc(s.run), s.store,
		worker.WithLogger(s.logger))
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("classifyParallelism", s.classifyParallelism),
		logger.Bool("cache", s.cacheEnabled),
	)
	return nil
}

// Stop closes the queue and waits for the workers to drain it.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool did not drain", logger.Error(err))
	}
	s.started = false
	s.logger.Info(ctx, "service stopped", logger.Int("games", s.store.Count(ctx)))
}

// Process runs one game through the pipeline on the calling goroutine and
// stores the result. A game without an id gets a random one.
func (s *Service) Process(ctx context.Context, game model.Game) (*model.GameResult, error) { //nolint:gocritic // hugeParam: Game is copied to assign its id
	ensureID(&game)
	if !s.store.Reserve(ctx, game.ID) {
		metrics.RecordGameDuplicate()
		return nil, fmt.Errorf("%w: %s", ErrDuplicateGame, game.ID)
	}

	res, err := s.run(ctx, game)
	if err == nil {
		err = s.store.Save(ctx, res)
	}
	if err != nil {
		s.store.Release(ctx, game.ID)
		return nil, fmt.Errorf("game %s: %w", game.ID, err)
	}
	return res, nil
}

// Submit reserves the game id and queues the game. done, when non-nil,
// receives the outcome; it should be buffered. Submit blocks while the
// queue is full and returns the id the game was queued under.
func (s *Service) Submit(ctx context.Context, game model.Game, done chan<- model.JobOutcome) (string, error) { //nolint:gocritic // hugeParam: Game is copied to assign its id
	s.mu.RLock()
	started, q := s.started, s.queue
	s.mu.RUnlock()
	if !started {
		return "", ErrNotStarted
	}

	ensureID(&game)
	if !s.store.Reserve(ctx, game.ID) {
		metrics.RecordGameDuplicate()
		s.logger.Debug(ctx, "duplicate game skipped", logger.String("game", game.ID))
		return game.ID, fmt.Errorf("%w: %s", ErrDuplicateGame, game.ID)
	}
	if err := q.EnqueueWait(ctx, model.GameJob{Game: game, Done: done}); err != nil {
		s.store.Release(ctx, game.ID)
		return game.ID, fmt.Errorf("queue game %s: %w", game.ID, err)
	}
	return game.ID, nil
}

// RunBatch submits every game and waits for all outcomes, which are
// returned in input order. A game rejected at submission gets an outcome
// carrying that error. The error return is set only when ctx ends first.
func (s *Service) RunBatch(ctx context.Context, games []model.Game) ([]model.JobOutcome, error) {
	outs := make([]model.JobOutcome, len(games))
	pending := make([]chan model.JobOutcome, len(games))

	for i := range games {
		ch := make(chan model.JobOutcome, 1)
		id, err := s.Submit(ctx, games[i], ch)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return outs, ctxErr
			}
			if errors.Is(err, ErrNotStarted) {
				return nil, err
			}
			outs[i] = model.JobOutcome{GameID: id, Err: err}
			continue
		}
		pending[i] = ch
	}

	for i, ch := range pending {
		if ch == nil {
			continue
		}
		select {
		case out := <-ch:
			outs[i] = out
		case <-ctx.Done():
			return outs, ctx.Err()
		}
	}
	return outs, nil
}

// Get returns the stored result for a game.
func (s *Service) Get(ctx context.Context, gameID string) (*model.GameResult, error) {
	return s.store.Get(ctx, gameID)
}

// TopSwings returns the n plays with the largest absolute WPA across every
// processed game.
func (s *Service) TopSwings(ctx context.Context, n int) ([]types.Swing, error) {
	return s.store.TopSwings(ctx, n)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":             s.started,
		"workerCount":         s.workerCount,
		"queueSize":           s.queueSize,
		"classifyParallelism": s.classifyParallelism,
		"cacheEnabled":        s.cacheEnabled,
		"gamesStored":         s.store.Count(ctx),
	}

	if s.cache != nil {
		cs := s.cache.Stats()
		stats["cacheEntries"] = s.cache.Size()
		stats["cacheHits"] = cs.Hits
		stats["cacheMisses"] = cs.Misses
		metrics.UpdateClassifyCacheEntries(int(s.cache.Size()))
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		stats["queueLength"] = queueLen
		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateWorkerCount(s.workerCount)
	}

	metrics.UpdateGamesStored(s.store.Count(ctx))
	return stats
}

// run classifies, builds and adjusts one game without storing it.
func (s *Service) run(ctx context.Context, game model.Game) (*model.GameResult, error) { //nolint:gocritic // hugeParam: matches worker.ProcessorFunc
	start := time.Now()

	tl, err := s.builder.Build(ctx, game.Rows)
	if err != nil {
		return nil, s.fail(ctx, game.ID, "build", err)
	}

	res := &model.GameResult{
		GameID:   game.ID,
		Home:     game.Home,
		Away:     game.Away,
		Winner:   game.Winner,
		Timeline: tl,
		Unparsed: len(tl.Unparsed()),
	}

	if raw, ok := game.RawWP(); ok {
		series, err := s.adjuster.Adjust(ctx, tl, raw, game.PregameLine, game.Winner)
		if err != nil {
			return nil, s.fail(ctx, game.ID, failReason(err), err)
		}
		res.Series = &series
	} else {
		metrics.RecordGameWithoutWP()
		s.logger.Debug(ctx, "game has no win probabilities", logger.String("game", game.ID))
	}

	res.Table, err = timeline.Enrich(tl, res.Series)
	if err != nil {
		return nil, s.fail(ctx, game.ID, "enrich", err)
	}
	res.ProcessedAt = time.Now()

	metrics.RecordGameProcessed(tl.Len(), float64(time.Since(start).Microseconds())/1000)
	s.logger.Debug(ctx, "game processed",
		logger.String("game", game.ID),
		logger.Int("plays", tl.Len()),
		logger.Int("unparsed", res.Unparsed),
	)
	return res, nil
}

func (s *Service) fail(ctx context.Context, gameID, reason string, err error) error {
	metrics.RecordGameFailed(reason)
	metrics.RecordErrorByComponent("service", reason)
	s.logger.Warn(ctx, "game failed",
		logger.String("game", gameID),
		logger.String("reason", reason),
		logger.Error(err),
	)
	return err
}

func failReason(err error) string {
	switch {
	case errors.Is(err, winprob.ErrLengthMismatch):
		return "length_mismatch"
	case errors.Is(err, winprob.ErrInvalidWinner):
		return "invalid_winner"
	case errors.Is(err, winprob.ErrInvalidProbability):
		return "invalid_probability"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "adjust"
	}
}

func ensureID(g *model.Game) {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
}
