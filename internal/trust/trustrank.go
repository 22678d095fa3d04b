package trust

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrMassNotConserved signals a bug in the propagation arithmetic: total
// score mass drifted across one iteration. The run must abort rather than
// write corrupted ranks.
var ErrMassNotConserved = errors.New("trust: score mass not conserved")

// ErrNoTrustedNodes means the graph has no node with BestDepth <= 1, so
// there is nowhere to send the random-jump mass.
var ErrNoTrustedNodes = errors.New("trust: graph has no trusted nodes")

// trustedMaxDepth bounds membership in the random-jump target set: roots
// and their direct children.
const trustedMaxDepth = 1

// Params tunes the rank diffusion.
type Params struct {
	Damping       float64
	Tolerance     float64
	MaxIterations int
	MassEpsilon   float64
}

// DefaultParams mirrors the production tuning.
func DefaultParams() Params {
	return Params{
		Damping:       0.82,
		Tolerance:     1.0,
		MaxIterations: 100,
		MassEpsilon:   0.1,
	}
}

// Rank runs the damped trust propagation over the graph until the total
// absolute score change drops below Tolerance or MaxIterations is hit.
// It returns the final scores and the number of iterations executed.
//
// Each iteration a node spreads Damping x score across its outbound edges,
// with one extra denominator slot held back so sparse graphs do not
// redistribute explosively. Mass aimed at nodes outside the graph, the
// held-back slot, and the full mass of dead-end nodes all fold into a
// random-jump pool together with the undamped (1 - Damping) share; the
// pool lands on trusted nodes (BestDepth <= 1) proportional to the pages
// they represent. Total mass is asserted each iteration.
func Rank(graph map[string]*Node, p Params) (map[string]float64, int, error) {
	urls := make([]string, 0, len(graph))
	for url := range graph {
		urls = append(urls, url)
	}
	sort.Strings(urls)

	var trusted []*Node
	trustedWeight := 0.0
	for _, url := range urls {
		if node := graph[url]; node.BestDepth <= trustedMaxDepth {
			trusted = append(trusted, node)
			trustedWeight += float64(node.PageCount)
		}
	}
	if trustedWeight == 0 {
		return nil, 0, ErrNoTrustedNodes
	}

	scores := make(map[string]float64, len(graph))
	for url, node := range graph {
		scores[url] = node.Score
	}
	next := make(map[string]float64, len(graph))

	iterations := 0
	for iter := 0; iter < p.MaxIterations; iter++ {
		for url := range graph {
			next[url] = 0
		}

		for _, url := range urls {
			node := graph[url]
			score := scores[url]

			lost := 0.0
			if len(node.Out) == 0 {
				// dead end: the whole damped mass goes to the jump pool
				lost = p.Damping * score
			} else {
				share := p.Damping * score / float64(len(node.Out)+1)
				for _, target := range node.Out {
					if _, known := graph[target]; known {
						next[target] += share
					} else {
						lost += share
					}
				}
				lost += share
			}

			jump := ((1-p.Damping)*score + lost) / trustedWeight
			for _, t := range trusted {
				next[t.URL] += jump * float64(t.PageCount)
			}
		}

		oldSum, newSum := 0.0, 0.0
		diff := 0.0
		for _, url := range urls {
			oldSum += scores[url]
			newSum += next[url]
			diff += math.Abs(next[url] - scores[url])
		}
		if math.Abs(oldSum-newSum) > p.MassEpsilon {
			return nil, iterations, fmt.Errorf("%w: %.6f -> %.6f at iteration %d",
				ErrMassNotConserved, oldSum, newSum, iter)
		}

		scores, next = next, scores
		iterations = iter + 1
		if diff < p.Tolerance {
			break
		}
	}
	return scores, iterations, nil
}

// domainExponent tempers how strongly a page's domain authority multiplies
// its own propagated score.
const domainExponent = 0.4

// CombineScores produces the final per-page rank: the page's domain score
// raised to a tempering exponent, multiplied against the page's own
// propagated score (shifted by one so zero-scored pages still inherit
// domain authority).
func CombineScores(domainScores, pageScores map[string]float64) map[string]float64 {
	combined := make(map[string]float64, len(pageScores))
	for url, pageScore := range pageScores {
		domainScore := domainScores[URLToDomain(url)]
		combined[url] = math.Pow(domainScore, domainExponent) * (pageScore + 1)
	}
	return combined
}
