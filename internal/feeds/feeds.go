// Package feeds discovers syndication feeds for a domain and extracts the
// entry links they contain.
package feeds

import (
	"context"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/freeman-jiang/resonant/internal/fetch"
	"github.com/freeman-jiang/resonant/internal/link"
)

// probeSuffixes are the conventional feed locations tried on every domain.
var probeSuffixes = []string{"", "/feed", "/rss", "/atom.xml"}

// linkText labels feed-discovered links so they are distinguishable from
// body links downstream.
const linkText = "Link From RSS"

// Fetcher is the HTTP dependency used to probe candidate feed URLs.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (fetch.Response, error)
}

// Discoverer finds feed entry links per domain, caching results (including
// empty ones) for the process lifetime so a domain is probed at most once.
type Discoverer struct {
	fetcher Fetcher
	parser  *gofeed.Parser
	logger  *zap.Logger

	mu    sync.Mutex
	cache map[string][]link.Link
}

// NewDiscoverer constructs a Discoverer.
func NewDiscoverer(fetcher Fetcher, logger *zap.Logger) *Discoverer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Discoverer{
		fetcher: fetcher,
		parser:  gofeed.NewParser(),
		logger:  logger,
		cache:   make(map[string][]link.Link),
	}
}

// Find returns the feed entry links for the domain of the given link.
// An empty result is a valid outcome and is cached so the domain is not
// re-probed.
func (d *Discoverer) Find(ctx context.Context, domain link.Link) []link.Link {
	key := domain.URL

	d.mu.Lock()
	if cached, ok := d.cache[key]; ok {
		d.mu.Unlock()
		return cached
	}
	d.mu.Unlock()

	urls := d.discover(ctx, domain)

	links := make([]link.Link, 0, len(urls))
	for _, raw := range urls {
		if child, ok := domain.ChildLink(linkText, raw); ok {
			links = append(links, child)
		}
	}

	d.logger.Debug("feed discovery finished",
		zap.String("domain", key),
		zap.Int("links", len(links)),
	)

	d.mu.Lock()
	d.cache[key] = links
	d.mu.Unlock()
	return links
}

// discover probes autodiscovery hints plus the conventional suffixes and
// collects entry URLs from every candidate that parses as a feed.
func (d *Discoverer) discover(ctx context.Context, domain link.Link) []string {
	seen := make(map[string]struct{})
	var urls []string
	add := func(u string) {
		if _, dup := seen[u]; dup {
			return
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}

	for _, candidate := range d.autodiscover(ctx, domain.URL) {
		for _, entry := range d.entryLinks(ctx, candidate) {
			add(entry)
		}
	}

	for _, suffix := range probeSuffixes {
		for _, entry := range d.entryLinks(ctx, domain.URL+suffix) {
			add(entry)
		}
		if len(urls) > 1 {
			break
		}
	}
	return urls
}

// autodiscover fetches the domain root and returns hrefs of
// <link rel="alternate"> feed hints.
func (d *Discoverer) autodiscover(ctx context.Context, domainURL string) []string {
	resp, err := d.fetcher.Fetch(ctx, domainURL)
	if err != nil {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(resp.Body)))
	if err != nil {
		return nil
	}

	var candidates []string
	doc.Find(`link[rel="alternate"]`).Each(func(_ int, sel *goquery.Selection) {
		feedType, _ := sel.Attr("type")
		if !strings.Contains(feedType, "rss") && !strings.Contains(feedType, "atom") {
			return
		}
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		if strings.HasPrefix(href, "/") {
			href = domainURL + href
		}
		candidates = append(candidates, href)
	})
	return candidates
}

// entryLinks fetches one candidate URL and, if it parses as a feed,
// returns the entry links it contains.
func (d *Discoverer) entryLinks(ctx context.Context, candidate string) []string {
	resp, err := d.fetcher.Fetch(ctx, candidate)
	if err != nil {
		return nil
	}
	feed, err := d.parser.ParseString(string(resp.Body))
	if err != nil {
		return nil
	}

	var out []string
	for _, item := range feed.Items {
		if item.Link != "" {
			out = append(out, item.Link)
		}
	}
	return out
}
