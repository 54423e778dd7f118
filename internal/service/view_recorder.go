package service

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/school-newsroom-api/internal/repository"
)

const viewTimeout = 5 * time.Second

// ViewRecorder increments article view counts in the background. Callers
// never wait for the store and never see its errors.
type ViewRecorder struct {
	articles repository.ArticleRepository
	log      zerolog.Logger
	wg       sync.WaitGroup
	mu       sync.Mutex
	stopped  bool
	// Semaphore: buffered channel bounding in-flight increments
	sem chan struct{}
}

// NewViewRecorder creates a recorder sized for I/O-bound work
func NewViewRecorder(articles repository.ArticleRepository, log zerolog.Logger) *ViewRecorder {
	maxWorkers := runtime.NumCPU() * 4
	if maxWorkers < 4 {
		maxWorkers = 4
	}
	if maxWorkers > 32 {
		maxWorkers = 32
	}

	return &ViewRecorder{
		articles: articles,
		log:      log.With().Str("service", "views").Logger(),
		sem:      make(chan struct{}, maxWorkers),
	}
}

// Record schedules one view of articleID. When every slot is busy the view is dropped.
func (r *ViewRecorder) Record(articleID string) {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	select {
	case r.sem <- struct{}{}:
	default:
		r.mu.Unlock()
		r.log.Debug().Str("article_id", articleID).Msg("View dropped, recorder busy")
		return
	}
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		defer func() { <-r.sem }()
		defer func() {
			if rec := recover(); rec != nil {
				r.log.Error().
					Interface("panic", rec).
					Str("article_id", articleID).
					Msg("View increment panicked - recovered")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), viewTimeout)
		defer cancel()
		if err := r.articles.IncrementViews(ctx, articleID); err != nil {
			r.log.Warn().Err(err).Str("article_id", articleID).Msg("Failed to increment view count")
		}
	}()
}

// Wait blocks until every scheduled increment has finished
func (r *ViewRecorder) Wait() {
	r.wg.Wait()
}

// Stop refuses new views and waits for in-flight ones
func (r *ViewRecorder) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	r.mu.Unlock()

	r.wg.Wait()
	r.log.Info().Msg("View recorder stopped")
}
