// Package extract turns raw HTML into article text, metadata, and outbound
// links. It is the crawl pipeline's content-extraction collaborator:
// failure here is an expected outcome, handled like a fetch failure.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/freeman-jiang/resonant/internal/link"
)

// maxContentBytes guards against pathological pages blowing up a text row.
const maxContentBytes = 1 << 25

// ErrNoContent signals that the page had no usable article content.
var ErrNoContent = errors.New("extract: no usable content")

// Result is the extracted view of one fetched page.
type Result struct {
	Link     link.Link
	Title    string
	Author   string
	Date     string
	Content  string
	Outbound []link.Link
}

// Extractor parses HTML with readability and harvests outbound links.
type Extractor struct{}

// New constructs an Extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract parses raw HTML fetched from l. Sponsored, UGC, and nofollow
// anchors are dropped before link harvesting so the crawler never follows
// them. Returns ErrNoContent when no article text can be recovered;
// malformed HTML is tolerated as far as the parsers allow.
func (e *Extractor) Extract(html []byte, l link.Link) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	dropUntrustedAnchors(doc)
	outbound := harvestLinks(doc, l)

	pageURL, err := url.Parse(l.URL)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}
	article, err := readability.FromReader(bytes.NewReader(html), pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoContent, err)
	}

	content := strings.TrimSpace(article.TextContent)
	if content == "" {
		return nil, ErrNoContent
	}
	if len(content) > maxContentBytes {
		return nil, fmt.Errorf("extract: content too large (%d bytes)", len(content))
	}

	title := metaTitle(doc)
	if title == "" {
		title = article.Title
	}

	date := ""
	if article.PublishedTime != nil {
		date = article.PublishedTime.Format(time.RFC3339)
	}

	return &Result{
		Link:     l,
		Title:    title,
		Author:   article.Byline,
		Date:     date,
		Content:  content,
		Outbound: outbound,
	}, nil
}

// dropUntrustedAnchors removes hrefs from rel=ugc/sponsored/nofollow
// anchors so they never become crawl candidates.
func dropUntrustedAnchors(doc *goquery.Document) {
	doc.Find("a[rel]").Each(func(_ int, sel *goquery.Selection) {
		rel, _ := sel.Attr("rel")
		for _, token := range strings.Fields(strings.ToLower(rel)) {
			if token == "ugc" || token == "sponsored" || token == "nofollow" {
				sel.RemoveAttr("href")
				return
			}
		}
	})
}

func harvestLinks(doc *goquery.Document, l link.Link) []link.Link {
	var out []link.Link
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		child, ok := l.ChildLink(strings.TrimSpace(sel.Text()), href)
		if !ok {
			return
		}
		if child.URL == l.URL {
			return
		}
		out = append(out, child)
	})
	return out
}

func metaTitle(doc *goquery.Document) string {
	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		return strings.TrimSpace(og)
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
