package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/freeman-jiang/resonant/internal/extract"
)

// PageStore is the content-hash-deduplicated page corpus.
type PageStore struct {
	pool Pool
}

// NewPageStore constructs a PageStore over an existing pool.
func NewPageStore(pool Pool) *PageStore {
	return &PageStore{pool: pool}
}

const insertPageSQL = `
INSERT INTO pages (url, parent_url, content_hash, title, date, author, content, outbound_urls, depth)
VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (content_hash) DO NOTHING
RETURNING id, created_at`

// StorePage persists an extracted page at the given depth. Two URLs whose
// content hashes to the same value store only one Page: the collision is a
// silent no-op and StorePage returns (nil, nil), leaving the original row
// canonical.
func (s *PageStore) StorePage(ctx context.Context, depth int, res *extract.Result) (*Page, error) {
	page := &Page{
		URL:         res.Link.URL,
		ParentURL:   res.Link.ParentURL,
		ContentHash: HashContent(res.Content),
		Title:       res.Title,
		Date:        res.Date,
		Author:      res.Author,
		Content:     res.Content,
		Depth:       depth,
	}
	page.OutboundURLs = make([]string, 0, len(res.Outbound))
	for _, out := range res.Outbound {
		page.OutboundURLs = append(page.OutboundURLs, out.URL)
	}

	err := s.pool.QueryRow(ctx, insertPageSQL,
		page.URL,
		page.ParentURL,
		page.ContentHash,
		page.Title,
		page.Date,
		page.Author,
		page.Content,
		page.OutboundURLs,
		page.Depth,
	).Scan(&page.ID, &page.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// duplicate content hash
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store page %s: %w", page.URL, err)
	}
	return page, nil
}

const pageByURLSQL = `
SELECT id, url, COALESCE(parent_url, ''), content_hash, title, date, author,
       content, outbound_urls, depth, COALESCE(page_rank, 0), created_at
FROM pages WHERE url = $1 LIMIT 1`

// PageByURL looks up a page by its URL. Returns (nil, nil) when absent.
func (s *PageStore) PageByURL(ctx context.Context, url string) (*Page, error) {
	var p Page
	err := s.pool.QueryRow(ctx, pageByURLSQL, url).Scan(
		&p.ID, &p.URL, &p.ParentURL, &p.ContentHash, &p.Title, &p.Date, &p.Author,
		&p.Content, &p.OutboundURLs, &p.Depth, &p.PageRank, &p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("page by url %s: %w", url, err)
	}
	return &p, nil
}

// PagesForGraph snapshots the projection of the corpus that the trust
// propagation engine consumes.
func (s *PageStore) PagesForGraph(ctx context.Context) ([]GraphPage, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, url, outbound_urls, depth FROM pages`)
	if err != nil {
		return nil, fmt.Errorf("load graph pages: %w", err)
	}
	defer rows.Close()

	var pages []GraphPage
	for rows.Next() {
		var p GraphPage
		if err := rows.Scan(&p.ID, &p.URL, &p.OutboundURLs, &p.Depth); err != nil {
			return nil, fmt.Errorf("scan graph page: %w", err)
		}
		pages = append(pages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate graph pages: %w", err)
	}
	return pages, nil
}

// UpdatePageRanks writes computed scores back to the corpus in one pass.
func (s *PageStore) UpdatePageRanks(ctx context.Context, updates []PageRankUpdate) error {
	for _, u := range updates {
		if _, err := s.pool.Exec(ctx, `UPDATE pages SET page_rank = $1 WHERE id = $2`, u.Score, u.ID); err != nil {
			return fmt.Errorf("update page_rank for page %d: %w", u.ID, err)
		}
	}
	return nil
}
