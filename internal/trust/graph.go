// Package trust builds the crawl link graph and propagates authority
// scores over it with a damped, trusted-seed rank diffusion.
package trust

import (
	"math"
	"strings"

	"github.com/freeman-jiang/resonant/internal/store"
)

// Depth prior constants: a page k hops from a trusted root starts with
// score (depthPriorBase - k)^depthPriorExp.
const (
	depthPriorBase = 5
	depthPriorExp  = 2.5
)

// Node is one vertex of the trust graph: either a single page or a whole
// domain, depending on which graph it belongs to.
type Node struct {
	URL       string
	Out       []string
	Score     float64
	BestDepth int
	PageCount int
}

// URLToDomain collapses a URL to its registrable host, dropping the scheme
// and a leading www. prefix.
func URLToDomain(url string) string {
	idx := 0
	if strings.HasPrefix(url, "https://") || strings.HasPrefix(url, "http://") {
		idx = 2
	}
	parts := strings.Split(url, "/")
	if idx >= len(parts) {
		return ""
	}
	return strings.TrimPrefix(parts[idx], "www.")
}

func depthPrior(depth int) float64 {
	base := float64(depthPriorBase - depth)
	if base < 0 {
		base = 0
	}
	return math.Pow(base, depthPriorExp)
}

// BuildPageGraph materializes page-level nodes from a corpus snapshot.
// Self-loops and same-domain edges are removed so a site cannot trivially
// reinforce itself.
func BuildPageGraph(pages []store.GraphPage) map[string]*Node {
	graph := make(map[string]*Node, len(pages))
	for _, p := range pages {
		domain := URLToDomain(p.URL)
		out := make([]string, 0, len(p.OutboundURLs))
		for _, target := range p.OutboundURLs {
			if target == p.URL || URLToDomain(target) == domain {
				continue
			}
			out = append(out, target)
		}
		graph[p.URL] = &Node{
			URL:       p.URL,
			Out:       out,
			Score:     depthPrior(p.Depth),
			BestDepth: p.Depth,
			PageCount: 1,
		}
	}
	return graph
}

// CollapseToDomains folds a page graph into domain-level nodes: edges map
// to target domains (minus self-edges), scores sum, best depth is the
// minimum over the domain's pages, and the page count records how many
// pages the domain aggregates.
func CollapseToDomains(pages map[string]*Node) map[string]*Node {
	domains := make(map[string]*Node)
	for url, node := range pages {
		domain := URLToDomain(url)
		agg, ok := domains[domain]
		if !ok {
			agg = &Node{URL: domain, BestDepth: node.BestDepth, PageCount: 1}
			domains[domain] = agg
		}
		for _, target := range node.Out {
			targetDomain := URLToDomain(target)
			if targetDomain == domain {
				continue
			}
			agg.Out = append(agg.Out, targetDomain)
		}
		agg.Score += node.Score
		agg.PageCount++
		if node.BestDepth < agg.BestDepth {
			agg.BestDepth = node.BestDepth
		}
	}
	return domains
}
