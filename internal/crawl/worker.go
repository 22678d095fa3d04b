// Package crawl implements the crawl worker pool: claim a task, fetch the
// page, extract and filter the content, persist it, and enqueue the links
// it points at.
package crawl

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/freeman-jiang/resonant/internal/extract"
	"github.com/freeman-jiang/resonant/internal/fetch"
	"github.com/freeman-jiang/resonant/internal/filter"
	"github.com/freeman-jiang/resonant/internal/link"
	"github.com/freeman-jiang/resonant/internal/metrics"
	"github.com/freeman-jiang/resonant/internal/store"
)

// TaskQueue is the durable queue the pool consumes from and feeds back into.
type TaskQueue interface {
	ClaimNext(ctx context.Context) (*store.CrawlTask, error)
	Enqueue(ctx context.Context, links []link.Link) (int64, error)
	Complete(ctx context.Context, task *store.CrawlTask) error
	Fail(ctx context.Context, task *store.CrawlTask) error
	FilterOut(ctx context.Context, task *store.CrawlTask) error
}

// PageSink persists extracted pages.
type PageSink interface {
	StorePage(ctx context.Context, depth int, res *extract.Result) (*store.Page, error)
}

// Fetcher retrieves a single URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (fetch.Response, error)
}

// Extractor turns raw HTML into article text and outbound links.
type Extractor interface {
	Extract(html []byte, l link.Link) (*extract.Result, error)
}

// FeedFinder returns the syndication entry links for a link's domain.
type FeedFinder interface {
	Find(ctx context.Context, domain link.Link) []link.Link
}

// ContentFilter decides whether an extracted page enters the corpus.
type ContentFilter func(l link.Link, content string) bool

// Config controls Pool behavior.
type Config struct {
	// Workers is the number of concurrent crawl loops.
	Workers int
	// MaxDepth caps how many hops from a root a task may sit at before its
	// children stop being enqueued.
	MaxDepth int
	// MaxPages stops the pool after this many tasks have been processed.
	// Zero means run until the queue drains.
	MaxPages int64
	// IdleWait is how long a worker backs off after a claim error before
	// retrying.
	IdleWait time.Duration
}

// Pool runs the crawl loop across a fixed set of workers. Tasks are handed
// to exactly one worker each by the queue's claim semantics, so workers
// share no state beyond the processed counter and the stop signal.
type Pool struct {
	tasks     TaskQueue
	pages     PageSink
	fetcher   Fetcher
	extractor Extractor
	feeds     FeedFinder
	keep      ContentFilter
	cfg       Config
	logger    *zap.Logger

	processed atomic.Int64
	stopOnce  sync.Once
	stop      chan struct{}
}

// NewPool constructs a Pool.
func NewPool(
	tasks TaskQueue,
	pages PageSink,
	fetcher Fetcher,
	extractor Extractor,
	feeds FeedFinder,
	cfg Config,
	logger *zap.Logger,
) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.IdleWait <= 0 {
		cfg.IdleWait = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pool{
		tasks:     tasks,
		pages:     pages,
		fetcher:   fetcher,
		extractor: extractor,
		feeds:     feeds,
		keep:      filter.ShouldKeep,
		cfg:       cfg,
		logger:    logger,
		stop:      make(chan struct{}),
	}
}

// Processed reports how many tasks the pool has finished so far.
func (p *Pool) Processed() int64 {
	return p.processed.Load()
}

// Stop asks every worker to finish its current task and exit. Safe to call
// more than once.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() { close(p.stop) })
}

// Run blocks until the queue drains, the context is canceled, Stop is
// called, or the configured page budget is exhausted.
func (p *Pool) Run(ctx context.Context) {
	p.logger.Info("starting crawl pool",
		zap.Int("workers", p.cfg.Workers),
		zap.Int("max_depth", p.cfg.MaxDepth),
		zap.Int64("max_pages", p.cfg.MaxPages),
	)

	var wg sync.WaitGroup
	for i := 0; i < p.cfg.Workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			p.workerLoop(ctx, id)
		}(i)
	}
	wg.Wait()

	p.logger.Info("crawl pool stopped", zap.Int64("processed", p.processed.Load()))
}

func (p *Pool) workerLoop(ctx context.Context, id int) {
	logger := p.logger.With(zap.Int("worker", id))
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stop:
			return
		default:
		}

		task, err := p.tasks.ClaimNext(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("claim failed", zap.Error(err))
			p.sleep(ctx, p.cfg.IdleWait)
			continue
		}
		// An empty queue means the run is drained: every reachable link has
		// either been processed or is being processed by another worker.
		if task == nil {
			logger.Info("queue drained, worker exiting")
			return
		}

		metrics.ObserveTaskClaimed()
		metrics.IncActiveWorkers()
		p.processTask(ctx, logger, task)
		metrics.DecActiveWorkers()

		if n := p.processed.Add(1); p.cfg.MaxPages > 0 && n >= p.cfg.MaxPages {
			logger.Info("page budget reached", zap.Int64("processed", n))
			p.Stop()
			return
		}
	}
}

func (p *Pool) processTask(ctx context.Context, logger *zap.Logger, task *store.CrawlTask) {
	l := link.Link{
		Text:      task.Text,
		URL:       task.URL,
		ParentURL: task.ParentURL,
		Depth:     task.Depth,
	}
	logger = logger.With(zap.String("url", l.URL), zap.Int("depth", l.Depth))

	resp, err := p.fetcher.Fetch(ctx, l.URL)
	if err != nil {
		logger.Warn("fetch failed", zap.Error(err))
		p.finishFailed(ctx, logger, task)
		return
	}
	metrics.ObserveFetch(l.URL, resp.Duration)

	res, err := p.extractor.Extract(resp.Body, l)
	if err != nil {
		logger.Warn("extraction failed", zap.Error(err))
		p.finishFailed(ctx, logger, task)
		return
	}

	feedLinks := p.feeds.Find(ctx, link.Link{URL: l.Domain(), Depth: l.Depth})

	// Root tasks are operator-curated and skip the quality gate.
	if l.Depth > 0 && !p.keep(l, res.Content) {
		logger.Debug("page filtered")
		metrics.ObservePage(l.URL, "filtered")
		if err := p.tasks.FilterOut(ctx, task); err != nil {
			logger.Error("status update failed", zap.Error(err))
		}
		// A filtered page contributes nothing it wrote itself, but its
		// domain's feed entries are still worth exploring.
		p.enqueueChildren(ctx, logger, task, feedLinks)
		return
	}

	page, err := p.pages.StorePage(ctx, l.Depth, res)
	if err != nil {
		logger.Error("store page failed", zap.Error(err))
		p.finishFailed(ctx, logger, task)
		return
	}
	if page == nil {
		logger.Debug("duplicate content, page not stored")
		metrics.ObservePage(l.URL, "duplicate")
	} else {
		metrics.ObservePage(l.URL, "stored")
	}

	p.enqueueChildren(ctx, logger, task, append(res.Outbound, feedLinks...))

	if err := p.tasks.Complete(ctx, task); err != nil {
		logger.Error("status update failed", zap.Error(err))
	}
}

func (p *Pool) finishFailed(ctx context.Context, logger *zap.Logger, task *store.CrawlTask) {
	metrics.ObservePage(task.URL, "failed")
	if err := p.tasks.Fail(ctx, task); err != nil {
		logger.Error("status update failed", zap.Error(err))
	}
}

// enqueueChildren pushes deduplicated child links back onto the queue,
// unless they would land past the depth cap.
func (p *Pool) enqueueChildren(ctx context.Context, logger *zap.Logger, task *store.CrawlTask, children []link.Link) {
	if task.Depth >= p.cfg.MaxDepth {
		return
	}

	seen := make(map[string]struct{}, len(children))
	unique := make([]link.Link, 0, len(children))
	for _, child := range children {
		if _, dup := seen[child.URL]; dup {
			continue
		}
		seen[child.URL] = struct{}{}
		unique = append(unique, child)
	}
	if len(unique) == 0 {
		return
	}

	inserted, err := p.tasks.Enqueue(ctx, unique)
	if err != nil {
		logger.Error("enqueue children failed", zap.Error(err))
		return
	}
	metrics.ObserveTasksEnqueued(inserted)
	logger.Debug("children enqueued",
		zap.Int("candidates", len(unique)),
		zap.Int64("inserted", inserted),
	)
}

func (p *Pool) sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-p.stop:
	case <-timer.C:
	}
}
