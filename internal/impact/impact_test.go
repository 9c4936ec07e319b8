package impact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGraph is a minimal in-memory Graph built from a from->to adjacency
// list, plus an explicit node set (standing in for the total indexed file
// count V).
type fakeGraph struct {
	nodes []string
	pred  map[string][]string
}

func newFakeGraph(nodes []string, edges ...[2]string) *fakeGraph {
	g := &fakeGraph{nodes: nodes, pred: map[string][]string{}}
	for _, e := range edges {
		g.pred[e[1]] = append(g.pred[e[1]], e[0])
	}
	return g
}

func (g *fakeGraph) Nodes() []string { return g.nodes }

func (g *fakeGraph) Predecessors(path string) []string { return g.pred[path] }

func (g *fakeGraph) DirectDependents(seeds []string) []string {
	set := map[string]struct{}{}
	var out []string
	for _, s := range seeds {
		for _, p := range g.pred[s] {
			if _, ok := set[p]; ok {
				continue
			}
			set[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}

func (g *fakeGraph) TransitiveDependents(seeds []string) []string {
	visited := map[string]struct{}{}
	for _, s := range seeds {
		visited[s] = struct{}{}
	}
	queue := append([]string(nil), seeds...)
	var out []string
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, from := range g.pred[cur] {
			if _, seen := visited[from]; seen {
				continue
			}
			visited[from] = struct{}{}
			out = append(out, from)
			queue = append(queue, from)
		}
	}
	return out
}

type fakeCentrality map[string]float64

func (c fakeCentrality) Score(path string) float64 { return c[path] }

func TestAnalyze_NoDependentsHasZeroRisk(t *testing.T) {
	g := newFakeGraph([]string{"a.go"})
	report := Analyze(g, nil, []string{"a.go"})
	assert.Equal(t, 0.0, report.RiskScore)
	assert.Empty(t, report.DirectDependents)
	assert.Empty(t, report.TransitiveDependents)
}

func TestAnalyze_RiskScoreMatchesExactFormula(t *testing.T) {
	// 10 total files, seed "a.go" has 2 direct dependents (b, c) and the
	// reverse-reachable transitive set is {b, c, d, e, f, g} (6 files,
	// transitive dependents are a superset of direct ones), max seed
	// centrality 0.5:
	// 0.4*(2/10) + 0.4*0.5 + 0.2*(6/10) = 0.08 + 0.2 + 0.12 = 0.4
	g := newFakeGraph(
		[]string{"a.go", "b.go", "c.go", "d.go", "e.go", "f.go", "g.go", "h.go", "i.go", "j.go"},
		[2]string{"b.go", "a.go"},
		[2]string{"c.go", "a.go"},
		[2]string{"d.go", "b.go"},
		[2]string{"e.go", "b.go"},
		[2]string{"f.go", "c.go"},
		[2]string{"g.go", "c.go"},
	)

	report := Analyze(g, fakeCentrality{"a.go": 0.5}, []string{"a.go"})
	assert.InDelta(t, 0.4, report.RiskScore, 1e-9)
}

func TestAnalyze_RiskScoreUsesMaxNotAverageOfSeedCentrality(t *testing.T) {
	g := newFakeGraph([]string{"a.go", "b.go", "x.go"}, [2]string{"x.go", "a.go"})
	// max(0.9, 0.1) = 0.9, not the average 0.5.
	report := Analyze(g, fakeCentrality{"a.go": 0.9, "b.go": 0.1}, []string{"a.go", "b.go"})

	v := 3.0
	direct := float64(len(report.DirectDependents))
	transitive := float64(len(report.TransitiveDependents))
	want := clamp(0.4*(direct/v)+0.4*0.9+0.2*(transitive/v), 0, 1)
	assert.InDelta(t, want, report.RiskScore, 1e-9)
}

func TestAnalyze_RiskScoreClampedToOne(t *testing.T) {
	nodes := []string{"a.go"}
	var edges [][2]string
	for i := 0; i < 50; i++ {
		dep := string(rune('b' + i))
		nodes = append(nodes, dep)
		edges = append(edges, [2]string{dep, "a.go"})
	}
	g := newFakeGraph(nodes, edges...)
	report := Analyze(g, fakeCentrality{"a.go": 1.0}, []string{"a.go"})
	assert.LessOrEqual(t, report.RiskScore, 1.0)
}

func TestAnalyze_ZeroTotalFilesIsZeroRisk(t *testing.T) {
	g := newFakeGraph(nil)
	report := Analyze(g, fakeCentrality{"a.go": 1.0}, []string{"a.go"})
	assert.Equal(t, 0.0, report.RiskScore)
}

func TestAnalyze_SuggestedTestsFiltersActualTransitiveDependents(t *testing.T) {
	// "internal/foo/bar.go" is not itself a test file and must not be
	// suggested; only files that are themselves tests, and that are
	// actually in the transitive set, qualify.
	g := newFakeGraph(
		[]string{"seed.go", "internal/foo/bar.go", "internal/foo/bar_test.go", "pkg/mod_test.py"},
		[2]string{"internal/foo/bar.go", "seed.go"},
		[2]string{"internal/foo/bar_test.go", "internal/foo/bar.go"},
		[2]string{"pkg/mod_test.py", "internal/foo/bar.go"},
	)
	report := Analyze(g, nil, []string{"seed.go"})

	assert.ElementsMatch(t, []string{"internal/foo/bar_test.go", "pkg/mod_test.py"}, report.SuggestedTests)
	assert.NotContains(t, report.SuggestedTests, "internal/foo/bar.go")
}

func TestAnalyze_SuggestedTestsOrderedByProximityThenLexicographic(t *testing.T) {
	// z_test.go is one hop from the seed; a_test.go is two hops away, so it
	// must still sort after z_test.go despite the lexicographic order.
	g := newFakeGraph(
		[]string{"seed.go", "mid.go", "z_test.go", "a_test.go"},
		[2]string{"mid.go", "seed.go"},
		[2]string{"z_test.go", "seed.go"},
		[2]string{"a_test.go", "mid.go"},
	)
	report := Analyze(g, nil, []string{"seed.go"})
	require.Equal(t, []string{"z_test.go", "a_test.go"}, report.SuggestedTests)
}

func TestAnalyze_SuggestedTestsLexicographicTiebreakAtEqualDistance(t *testing.T) {
	g := newFakeGraph(
		[]string{"seed.go", "z_test.go", "a_test.go"},
		[2]string{"z_test.go", "seed.go"},
		[2]string{"a_test.go", "seed.go"},
	)
	report := Analyze(g, nil, []string{"seed.go"})
	assert.Equal(t, []string{"a_test.go", "z_test.go"}, report.SuggestedTests)
}

func TestIsTestFile_RecognizesPerLanguageConventions(t *testing.T) {
	cases := map[string]bool{
		"pkg/mod_test.go":     true,
		"pkg/mod.go":          false,
		"pkg/test_mod.py":     true,
		"pkg/mod_test.py":     true,
		"pkg/mod.test.js":     true,
		"pkg/mod.spec.ts":     true,
		"pkg/ModTest.java":    true,
		"pkg/ModTests.cs":     true,
		"README.md":           false,
	}
	for path, want := range cases {
		assert.Equal(t, want, isTestFile(path), path)
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, clamp(-1, 0, 1))
	assert.Equal(t, 1.0, clamp(2, 0, 1))
	assert.Equal(t, 0.5, clamp(0.5, 0, 1))
}
