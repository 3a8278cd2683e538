package service

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/rajbhoyar729/LokDarpan/internal/repository"
)

// VideoInvalidator evicts cached video entries. *CacheService satisfies it.
type VideoInvalidator interface {
	InvalidateVideo(ctx context.Context, videoIDs ...string)
}

// InvalidationWorker listens for NOTIFY on the video_changes channel and
// evicts the cached entries in batches. If 50 writes hit video X inside one
// window it is evicted once.
type InvalidationWorker struct {
	pool   *pgxpool.Pool
	cache  VideoInvalidator
	batch  time.Duration
	logger zerolog.Logger

	mu      sync.Mutex
	pending map[string]struct{}
}

func NewInvalidationWorker(pool *pgxpool.Pool, cache VideoInvalidator, logger zerolog.Logger) *InvalidationWorker {
	return &InvalidationWorker{
		pool:    pool,
		cache:   cache,
		batch:   500 * time.Millisecond,
		logger:  logger.With().Str("component", "invalidation-worker").Logger(),
		pending: make(map[string]struct{}),
	}
}

// Start listens until ctx is cancelled, reconnecting after errors.
func (w *InvalidationWorker) Start(ctx context.Context) {
	w.logger.Info().Dur("batch_window", w.batch).Msg("starting")

	for {
		if err := w.listenLoop(ctx); err != nil {
			if ctx.Err() != nil {
				w.logger.Info().Msg("stopping (context cancelled)")
				return
			}
			w.logger.Warn().Err(err).Msg("listen error, reconnecting in 5s")
			select {
			case <-time.After(5 * time.Second):
			case <-ctx.Done():
				w.logger.Info().Msg("stopping (context cancelled)")
				return
			}
		}
	}
}

func (w *InvalidationWorker) listenLoop(ctx context.Context) error {
	conn, err := w.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+repository.VideoChangesChannel); err != nil {
		return err
	}
	w.logger.Debug().Str("channel", repository.VideoChangesChannel).Msg("listening")

	flushCtx, flushCancel := context.WithCancel(ctx)
	defer flushCancel()
	go w.flushLoop(flushCtx)

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		w.add(n.Payload)
	}
}

func (w *InvalidationWorker) add(videoID string) {
	if videoID == "" {
		return
	}
	w.mu.Lock()
	w.pending[videoID] = struct{}{}
	w.mu.Unlock()
}

func (w *InvalidationWorker) flushLoop(ctx context.Context) {
	ticker := time.NewTicker(w.batch)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.flush(ctx)
		case <-ctx.Done():
			w.flush(context.Background())
			return
		}
	}
}

// flush drains the pending set and evicts it in one call.
func (w *InvalidationWorker) flush(ctx context.Context) int {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return 0
	}
	batch := w.pending
	w.pending = make(map[string]struct{})
	w.mu.Unlock()

	ids := make([]string, 0, len(batch))
	for id := range batch {
		ids = append(ids, id)
	}
	w.cache.InvalidateVideo(ctx, ids...)
	w.logger.Debug().Int("videos", len(ids)).Msg("cache entries evicted")
	return len(ids)
}
