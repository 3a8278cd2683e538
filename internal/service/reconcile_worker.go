package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/rajbhoyar729/LokDarpan/internal/repository"
)

// ReconcileStore is the repository surface the reconcile worker needs.
type ReconcileStore interface {
	ReconcileReactions(ctx context.Context) (int64, error)
	ReconcileSubscribers(ctx context.Context) (int64, error)
	FailStaleUploads(ctx context.Context, cutoff time.Time) ([]repository.StaleUpload, error)
}

type reconcileRepos struct {
	*repository.VideoRepo
	*repository.ChannelRepo
}

// NewReconcileStore combines the video and channel repositories.
func NewReconcileStore(videos *repository.VideoRepo, channels *repository.ChannelRepo) ReconcileStore {
	return reconcileRepos{VideoRepo: videos, ChannelRepo: channels}
}

// ReconcileResult summarises one reconcile tick.
type ReconcileResult struct {
	Reactions   int64
	Subscribers int64
	StaleFailed int
}

// ReconcileWorker periodically repairs derived counters and fails uploads
// that were never completed.
type ReconcileWorker struct {
	store      ReconcileStore
	assets     AssetStore
	cache      *CacheService
	interval   time.Duration
	staleAfter time.Duration
	logger     zerolog.Logger
	now        func() time.Time
	stopCh     chan struct{}
}

func NewReconcileWorker(store ReconcileStore, assets AssetStore, cache *CacheService, interval, staleAfter time.Duration, logger zerolog.Logger) *ReconcileWorker {
	return &ReconcileWorker{
		store:      store,
		assets:     assets,
		cache:      cache,
		interval:   interval,
		staleAfter: staleAfter,
		logger:     logger.With().Str("component", "reconcile-worker").Logger(),
		now:        time.Now,
		stopCh:     make(chan struct{}),
	}
}

// Start runs one tick immediately, then every interval until ctx is done or
// Stop is called.
func (w *ReconcileWorker) Start(ctx context.Context) {
	w.logger.Info().Dur("interval", w.interval).Dur("stale_after", w.staleAfter).Msg("starting")

	w.tick(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.tick(ctx)
		case <-ctx.Done():
			w.logger.Info().Msg("stopping (context cancelled)")
			return
		case <-w.stopCh:
			w.logger.Info().Msg("stopping (stop signal)")
			return
		}
	}
}

func (w *ReconcileWorker) Stop() {
	close(w.stopCh)
}

func (w *ReconcileWorker) tick(ctx context.Context) {
	start := time.Now()
	res := w.Run(ctx)
	w.logger.Info().
		Int64("reactions_fixed", res.Reactions).
		Int64("subscribers_fixed", res.Subscribers).
		Int("stale_uploads_failed", res.StaleFailed).
		Dur("elapsed", time.Since(start).Round(time.Millisecond)).
		Msg("tick complete")
}

// Run performs one reconcile pass. A failing step is logged and the
// remaining steps still run.
func (w *ReconcileWorker) Run(ctx context.Context) ReconcileResult {
	var res ReconcileResult

	n, err := w.store.ReconcileReactions(ctx)
	if err != nil {
		w.logger.Error().Err(err).Msg("reconcile reactions")
	}
	res.Reactions = n

	n, err = w.store.ReconcileSubscribers(ctx)
	if err != nil {
		w.logger.Error().Err(err).Msg("reconcile subscribers")
	}
	res.Subscribers = n

	stale, err := w.store.FailStaleUploads(ctx, w.now().Add(-w.staleAfter))
	if err != nil {
		w.logger.Error().Err(err).Msg("fail stale uploads")
		return res
	}
	ids := make([]string, 0, len(stale))
	for _, s := range stale {
		w.assets.Delete(ctx, s.VideoKey)
		ids = append(ids, s.ID)
	}
	w.cache.InvalidateVideo(ctx, ids...)
	res.StaleFailed = len(stale)

	return res
}
