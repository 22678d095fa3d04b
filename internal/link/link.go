// Package link models discovered hyperlinks and the normalization rules
// that decide whether a raw href becomes a crawl candidate.
package link

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/asaskevich/govalidator"
)

// MaxURLLength caps stored URLs. Longer values break the unique index on
// the task url column.
const MaxURLLength = 2000

// Link is an edge in the crawl graph: a URL plus where it was found.
// Identity is the cleaned URL; Depth counts hops from a root link.
type Link struct {
	Text      string
	URL       string
	ParentURL string
	Depth     int
}

// Clean strips the fragment and query string from a URL so that variants
// differing only by tracking parameters collapse to one identity.
func Clean(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	u.Fragment = ""
	u.RawFragment = ""
	u.RawQuery = ""
	return u.String(), nil
}

// IsValid reports whether raw is an absolute http(s) URL with a host.
func IsValid(raw string) bool {
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	return govalidator.IsURL(raw)
}

// FromURL builds a depth-0 root link from a raw URL.
func FromURL(raw string) (Link, error) {
	cleaned, err := Clean(raw)
	if err != nil {
		return Link{}, err
	}
	if !IsValid(cleaned) {
		return Link{}, fmt.Errorf("invalid url: %s", raw)
	}
	return Link{URL: cleaned}, nil
}

// Domain returns the scheme://host prefix of the link URL.
func (l Link) Domain() string {
	u, err := url.Parse(l.URL)
	if err != nil {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// RawDomain returns the host without scheme or a leading www. prefix.
func (l Link) RawDomain() string {
	u, err := url.Parse(l.URL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Host, "www.")
}

// ChildLink resolves a raw href found on this page into a crawl candidate
// at Depth+1. It returns false when the href is empty, too long, points at
// an unsupported file type, cannot be resolved, or lands on a suppressed
// domain. Malformed hrefs never surface as errors; they simply produce no
// link.
func (l Link) ChildLink(text, href string) (Link, bool) {
	if href == "" {
		return Link{}, false
	}
	if len(href) > MaxURLLength {
		return Link{}, false
	}
	child, ok := l.resolve(text, href)
	if !ok {
		return Link{}, false
	}
	cleaned, err := Clean(child.URL)
	if err != nil || !IsValid(cleaned) {
		return Link{}, false
	}
	child.URL = cleaned
	if isOnionHost(child.URL) || IsSuppressed(child.URL) {
		return Link{}, false
	}
	return child, true
}

// isOnionHost reports whether the resolved URL points into a .onion host,
// which is never crawlable.
func isOnionHost(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return strings.HasSuffix(u.Hostname(), ".onion")
}

func (l Link) resolve(text, href string) (Link, bool) {
	if hasUnsupportedExtension(href) {
		return Link{}, false
	}
	child := Link{Text: text, ParentURL: l.URL, Depth: l.Depth + 1}
	switch {
	case IsValid(href):
		child.URL = href
	case strings.HasPrefix(href, "#"):
		// same-page anchor
		return Link{}, false
	case strings.HasPrefix(href, "mailto:"):
		return Link{}, false
	case strings.HasSuffix(href, ".onion"):
		return Link{}, false
	case strings.HasPrefix(href, "//"):
		child.URL = "http:" + href
	case strings.HasPrefix(href, "/"):
		child.URL = l.Domain() + href
	default:
		child.URL = l.URL + "/" + href
	}
	return child, true
}

func hasUnsupportedExtension(href string) bool {
	for _, ext := range unsupportedExtensions {
		if strings.HasSuffix(href, ext) {
			return true
		}
	}
	return false
}
