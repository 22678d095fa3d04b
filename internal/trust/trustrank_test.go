package trust

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func cycleGraph() map[string]*Node {
	// A -> B -> C -> A, all depth 0, distinct domains.
	return map[string]*Node{
		"https://a.com/x": {URL: "https://a.com/x", Out: []string{"https://b.com/x"}, Score: depthPrior(0), BestDepth: 0, PageCount: 1},
		"https://b.com/x": {URL: "https://b.com/x", Out: []string{"https://c.com/x"}, Score: depthPrior(0), BestDepth: 0, PageCount: 1},
		"https://c.com/x": {URL: "https://c.com/x", Out: []string{"https://a.com/x"}, Score: depthPrior(0), BestDepth: 0, PageCount: 1},
	}
}

func totalScore(scores map[string]float64) float64 {
	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	return sum
}

func TestRank_MassConservedOnCycle(t *testing.T) {
	t.Parallel()

	graph := cycleGraph()
	before := 0.0
	for _, n := range graph {
		before += n.Score
	}

	params := DefaultParams()
	params.MaxIterations = 1

	scores, iters, err := Rank(graph, params)
	require.NoError(t, err)
	require.Equal(t, 1, iters)
	require.InDelta(t, before, totalScore(scores), params.MassEpsilon)
}

func TestRank_ConvergesToClosedFormOnChain(t *testing.T) {
	t.Parallel()

	// Chain A(depth 0) -> B(depth 1) -> C(depth 2); trusted set {A, B}.
	//
	// With damping d and k = (1 - d/2)/2, the steady state satisfies
	//   b = (1 + d/2) a
	//   c = (d/2) b
	// so with total mass M:
	//   a* = M / (2 + d + d^2/4)
	graph := map[string]*Node{
		"https://a.com/x": {URL: "https://a.com/x", Out: []string{"https://b.com/x"}, Score: depthPrior(0), BestDepth: 0, PageCount: 1},
		"https://b.com/x": {URL: "https://b.com/x", Out: []string{"https://c.com/x"}, Score: depthPrior(1), BestDepth: 1, PageCount: 1},
		"https://c.com/x": {URL: "https://c.com/x", Out: nil, Score: depthPrior(2), BestDepth: 2, PageCount: 1},
	}

	mass := depthPrior(0) + depthPrior(1) + depthPrior(2)

	params := DefaultParams()
	params.Tolerance = 1e-6

	scores, _, err := Rank(graph, params)
	require.NoError(t, err)

	d := params.Damping
	wantA := mass / (2 + d + d*d/4)
	wantB := (1 + d/2) * wantA
	wantC := (d / 2) * wantB

	require.InDelta(t, wantA, scores["https://a.com/x"], 0.01)
	require.InDelta(t, wantB, scores["https://b.com/x"], 0.01)
	require.InDelta(t, wantC, scores["https://c.com/x"], 0.01)
	require.InDelta(t, mass, totalScore(scores), params.MassEpsilon)
}

func TestRank_UnknownEdgesFoldIntoJumpPool(t *testing.T) {
	t.Parallel()

	// A points at a URL outside the graph; that mass must return to the
	// trusted set rather than vanish.
	graph := map[string]*Node{
		"https://a.com/x": {URL: "https://a.com/x", Out: []string{"https://unknown.org/y"}, Score: 10, BestDepth: 0, PageCount: 1},
	}

	params := DefaultParams()
	params.MaxIterations = 1

	scores, _, err := Rank(graph, params)
	require.NoError(t, err)
	require.InDelta(t, 10, scores["https://a.com/x"], 1e-9)
}

func TestRank_NoTrustedNodes(t *testing.T) {
	t.Parallel()

	graph := map[string]*Node{
		"https://a.com/x": {URL: "https://a.com/x", Score: 1, BestDepth: 3, PageCount: 1},
	}
	_, _, err := Rank(graph, DefaultParams())
	require.ErrorIs(t, err, ErrNoTrustedNodes)
}

func TestCombineScores(t *testing.T) {
	t.Parallel()

	domains := map[string]float64{"a.com": 16}
	pages := map[string]float64{"https://a.com/x": 3}

	combined := CombineScores(domains, pages)
	want := math.Pow(16, 0.4) * 4
	require.InDelta(t, want, combined["https://a.com/x"], 1e-9)
}
