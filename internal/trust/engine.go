package trust

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/freeman-jiang/resonant/internal/store"
)

// PageSource is the corpus surface the engine consumes: a graph snapshot
// in, computed ranks out.
type PageSource interface {
	PagesForGraph(ctx context.Context) ([]store.GraphPage, error)
	UpdatePageRanks(ctx context.Context, updates []store.PageRankUpdate) error
}

// Engine runs one full offline propagation batch: snapshot the corpus,
// rank domains and pages, combine, and write the scores back. It is
// single-threaded and tolerates the snapshot being slightly stale relative
// to in-flight crawling.
type Engine struct {
	pages  PageSource
	params Params
	logger *zap.Logger
}

// NewEngine constructs an Engine.
func NewEngine(pages PageSource, params Params, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{pages: pages, params: params, logger: logger}
}

// Run executes one propagation batch. A mass conservation violation aborts
// the run before any score is written.
func (e *Engine) Run(ctx context.Context) error {
	pages, err := e.pages.PagesForGraph(ctx)
	if err != nil {
		return fmt.Errorf("snapshot corpus: %w", err)
	}
	if len(pages) == 0 {
		e.logger.Info("no pages in corpus, skipping propagation")
		return nil
	}

	pageGraph := BuildPageGraph(pages)
	domainGraph := CollapseToDomains(pageGraph)
	e.logger.Info("built trust graphs",
		zap.Int("pages", len(pageGraph)),
		zap.Int("domains", len(domainGraph)),
	)

	domainScores, domainIters, err := Rank(domainGraph, e.params)
	if err != nil {
		return fmt.Errorf("rank domains: %w", err)
	}
	// normalize domain authority by corpus presence so prolific domains
	// do not win on volume alone
	for domain, score := range domainScores {
		domainScores[domain] = score / float64(domainGraph[domain].PageCount)
	}

	pageScores, pageIters, err := Rank(pageGraph, e.params)
	if err != nil {
		return fmt.Errorf("rank pages: %w", err)
	}

	combined := CombineScores(domainScores, pageScores)

	updates := make([]store.PageRankUpdate, 0, len(pages))
	for _, p := range pages {
		updates = append(updates, store.PageRankUpdate{ID: p.ID, Score: combined[p.URL]})
	}
	if err := e.pages.UpdatePageRanks(ctx, updates); err != nil {
		return fmt.Errorf("write ranks: %w", err)
	}

	e.logger.Info("trust propagation finished",
		zap.Int("pages_ranked", len(updates)),
		zap.Int("domain_iterations", domainIters),
		zap.Int("page_iterations", pageIters),
	)
	return nil
}
