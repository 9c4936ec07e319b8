// Package facade is the Analysis Façade (spec.md §4, §6): the only
// component the external CLI speaks to. It wires the File Discoverer, Tag
// Cache, AST Tag Extractor, Identifier Extractor, Import Resolver, Call
// Graph Builder, Dependency Graph, Centrality Engine, Impact Analyzer, and
// the three matchers plus Hybrid Ranker into the six public operations of
// spec.md §6: index, search, centrality, impact, find_cycles, stats.
package facade

import (
	"context"
	"os"
	"time"

	"github.com/codelensdev/codelens/internal/astextract"
	"github.com/codelensdev/codelens/internal/cache"
	"github.com/codelensdev/codelens/internal/callgraph"
	"github.com/codelensdev/codelens/internal/centrality"
	"github.com/codelensdev/codelens/internal/config"
	"github.com/codelensdev/codelens/internal/depgraph"
	"github.com/codelensdev/codelens/internal/discover"
	"github.com/codelensdev/codelens/internal/embedding"
	cerrors "github.com/codelensdev/codelens/internal/errors"
	"github.com/codelensdev/codelens/internal/fuzzy"
	"github.com/codelensdev/codelens/internal/hybridrank"
	"github.com/codelensdev/codelens/internal/identifier"
	"github.com/codelensdev/codelens/internal/impact"
	"github.com/codelensdev/codelens/internal/importresolve"
	"github.com/codelensdev/codelens/internal/indexpipeline"
	"github.com/codelensdev/codelens/internal/tfidf"
	"github.com/codelensdev/codelens/internal/types"
)

// SearchStrategy selects which matcher(s) back a search() call.
type SearchStrategy string

const (
	StrategyFuzzy     SearchStrategy = "fuzzy"
	StrategyTFIDF     SearchStrategy = "tfidf"
	StrategyHybrid     SearchStrategy = "hybrid"
	StrategyEmbedding SearchStrategy = "embedding"
)

// IndexSummary is index()'s result.
type IndexSummary struct {
	FileCount int
	TagCount  int
	Failed    int
	Skipped   int
	Duration  time.Duration
	Failures  []cerrors.FileFailure
}

// SearchResult is one search() hit.
type SearchResult struct {
	Identifier    string
	Score         float64
	DefiningFiles []string
}

// Stats is stats()'s result.
type Stats struct {
	CacheHits    int64
	CacheMisses  int64
	CachedFiles  int
	NodeCount    int
	EdgeCount    int
	Identifiers  int
}

// Facade holds the constructed analysis state for one project root. Safe
// for concurrent search/centrality/impact/find_cycles/stats calls once
// Index has completed; see spec.md §5 ("Search ... must not run during
// indexing of the same project root").
type Facade struct {
	cfg    *config.Config
	cache  *cache.Cache
	extractor *astextract.Extractor
	resolvers importresolve.Registry
	embedder  *embedding.Matcher

	graph       *depgraph.Graph
	identifiers []types.Identifier
	scores      types.CentralityScores

	indexedAt time.Time
}

// New constructs a Facade over a loaded configuration and opened cache.
func New(cfg *config.Config, c *cache.Cache, embedder *embedding.Matcher) *Facade {
	return &Facade{
		cfg:       cfg,
		cache:     c,
		extractor: astextract.New(),
		resolvers: importresolve.DefaultRegistry(),
		embedder:  embedder,
	}
}

// Index runs the full indexing phase: discover, extract (through the
// worker pool and Tag Cache), resolve imports, build the call graph, the
// dependency graph, and centrality scores. Per spec.md §5, the resulting
// identifier/graph state is an immutable snapshot until the next Index.
func (f *Facade) Index(ctx context.Context) (IndexSummary, error) {
	start := time.Now()

	if _, err := os.Stat(f.cfg.ProjectRoot); err != nil {
		return IndexSummary{}, cerrors.New(cerrors.KindProjectNotFound, f.cfg.ProjectRoot, "project root not found", err)
	}

	discovered, err := discover.Discover(f.cfg.ProjectRoot, f.cfg)
	if err != nil {
		return IndexSummary{}, cerrors.New(cerrors.KindPermissionDenied, f.cfg.ProjectRoot, "failed to discover files", err)
	}

	paths := make([]string, len(discovered))
	for i, d := range discovered {
		paths[i] = d.Path
	}

	results := indexpipeline.Run(ctx, paths, f.extractor.LanguageForExt,
		func(path string, content []byte) ([]types.Tag, *cerrors.Error) {
			tags, warn := f.extractor.Extract(path, content)
			if warn != nil {
				return tags, cerrors.New(cerrors.KindParseFailure, path, warn.Message, nil)
			}
			return tags, nil
		},
		f.cache,
		indexpipeline.Options{
			WorkerPoolSize: f.cfg.WorkerPoolSize,
			PerFileTimeout: f.cfg.PerFileTimeout,
			MaxFileSize:    f.cfg.MaxFileSize,
			Read:           os.ReadFile,
		},
	)

	var allTags []types.Tag
	filesByPath := make(importresolve.ProjectFiles, len(paths))
	for _, p := range paths {
		filesByPath[p] = struct{}{}
	}

	var (
		summary  IndexSummary
		tagsByFile = make(map[string][]types.Tag)
	)
	summary.FileCount = len(results)
	for _, r := range results {
		switch {
		case r.Skipped:
			summary.Skipped++
		case r.Failed:
			summary.Failed++
			if r.Err != nil {
				summary.Failures = append(summary.Failures, cerrors.FileFailure{FilePath: r.Path, Kind: r.Err.Kind, Message: r.Err.Message})
			}
		default:
			tagsByFile[r.Path] = r.Tags
			allTags = append(allTags, r.Tags...)
		}
	}
	summary.TagCount = len(allTags)

	f.identifiers = identifier.Build(allTags)

	builder := callgraph.NewBuilder()
	builder.IndexDefinitions(allTags)

	g := depgraph.New()
	// Register a node for every discovered path, not just the ones that
	// extracted cleanly: a file that failed extraction (parse error,
	// timeout, too large) can still be legitimately imported by another
	// file, and an edge into it needs a DependencyNode to land on (spec.md
	// §3: every DependencyEdge endpoint exists as a DependencyNode).
	for p := range filesByPath {
		lang := f.extractor.LanguageForExt(p)
		tags := tagsByFile[p]
		g.AddNode(types.DependencyNode{FilePath: p, Language: lang, TagCount: len(tags), DeclaredSymbols: declaredSymbols(tags)})
	}

	for path, tags := range tagsByFile {
		lang := f.extractor.LanguageForExt(path)
		var imports []types.Import
		for _, t := range tags {
			if t.Kind != types.TagKindImportModule {
				continue
			}
			imp := f.resolvers.Resolve(lang, path, t, f.cfg.ProjectRoot, filesByPath)
			imports = append(imports, imp)
			if imp.ResolvedFile != "" {
				g.AddEdge(path, imp.ResolvedFile, types.EdgeKindImport)
			}
		}

		for _, call := range builder.Resolve(path, tags, imports) {
			if call.ResolvedCalleeFile != "" {
				g.AddEdge(path, call.ResolvedCalleeFile, types.EdgeKindCall)
			}
		}
	}

	f.graph = g
	f.scores = centrality.Compute(g)
	f.indexedAt = time.Now()

	summary.Duration = time.Since(start)
	return summary, nil
}

func declaredSymbols(tags []types.Tag) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, t := range tags {
		switch t.Kind {
		case types.TagKindClassDefinition, types.TagKindFunctionDefinition, types.TagKindVariableDefinition:
			if _, ok := seen[t.Name]; ok {
				continue
			}
			seen[t.Name] = struct{}{}
			out = append(out, t.Name)
		}
	}
	return out
}

// Search ranks identifiers against query using the requested strategy.
func (f *Facade) Search(ctx context.Context, query string, strategy SearchStrategy, threshold float64, k int) ([]SearchResult, error) {
	if f.graph == nil {
		return nil, cerrors.New(cerrors.KindIndexNotReady, "", "index() has not completed", nil)
	}

	names := make([]string, len(f.identifiers))
	defining := make(map[string][]string, len(f.identifiers))
	for i, id := range f.identifiers {
		names[i] = id.Name
		defining[id.Name] = id.DefiningFiles
	}

	switch strategy {
	case StrategyFuzzy:
		fm := fuzzy.New(nil, threshold)
		matches := fm.Rank(query, names)
		return toSearchResults(matches, defining, k), nil
	case StrategyTFIDF:
		tm := tfidf.Build(names, threshold, k)
		matches := tm.Rank(query)
		return toSearchResultsTFIDF(matches, defining, k), nil
	case StrategyEmbedding:
		if f.embedder == nil || f.embedder.Disabled() {
			return nil, nil
		}
		matches := f.embedder.Rank(ctx, query, threshold, k)
		return toSearchResultsEmbed(matches, defining, k), nil
	default: // hybrid
		return f.hybridSearch(ctx, query, names, defining, threshold, k), nil
	}
}

func (f *Facade) hybridSearch(ctx context.Context, query string, names []string, defining map[string][]string, threshold float64, k int) []SearchResult {
	fm := fuzzy.New(nil, 0)
	fuzzyMatches := fm.Rank(query, names)

	tm := tfidf.Build(names, 0, 0)
	tfidfMatches := tm.Rank(query)

	var embedMatches []embedding.Match
	if f.embedder != nil && !f.embedder.Disabled() {
		embedMatches = f.embedder.Rank(ctx, query, 0, 0)
	}

	byID := make(map[string]hybridrank.Scores)
	for _, m := range fuzzyMatches {
		s := byID[m.Identifier]
		s.Identifier = m.Identifier
		s.Fuzzy, s.HasFuzzy = m.Score, true
		byID[m.Identifier] = s
	}
	for _, m := range tfidfMatches {
		s := byID[m.Identifier]
		s.Identifier = m.Identifier
		s.TFIDF, s.HasTFIDF = m.Score, true
		byID[m.Identifier] = s
	}
	for _, m := range embedMatches {
		s := byID[m.Identifier]
		s.Identifier = m.Identifier
		s.Embedding, s.HasEmbed = m.Score, true
		byID[m.Identifier] = s
	}

	scores := make([]hybridrank.Scores, 0, len(byID))
	for _, s := range byID {
		scores = append(scores, s)
	}

	results := hybridrank.Combine(scores, hybridrank.DefaultWeights, threshold, k)
	out := make([]SearchResult, len(results))
	for i, r := range results {
		out[i] = SearchResult{Identifier: r.Identifier, Score: r.Composite, DefiningFiles: defining[r.Identifier]}
	}
	return out
}

func toSearchResults(matches []fuzzy.Match, defining map[string][]string, k int) []SearchResult {
	out := make([]SearchResult, 0, len(matches))
	for _, m := range matches {
		out = append(out, SearchResult{Identifier: m.Identifier, Score: m.Score, DefiningFiles: defining[m.Identifier]})
	}
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out
}

func toSearchResultsTFIDF(matches []tfidf.Match, defining map[string][]string, k int) []SearchResult {
	out := make([]SearchResult, 0, len(matches))
	for _, m := range matches {
		out = append(out, SearchResult{Identifier: m.Identifier, Score: m.Score, DefiningFiles: defining[m.Identifier]})
	}
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out
}

func toSearchResultsEmbed(matches []embedding.Match, defining map[string][]string, k int) []SearchResult {
	out := make([]SearchResult, 0, len(matches))
	for _, m := range matches {
		out = append(out, SearchResult{Identifier: m.Identifier, Score: m.Score, DefiningFiles: defining[m.Identifier]})
	}
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out
}

// Centrality returns composite + per-metric scores, optionally scoped to
// a subset of files.
func (f *Facade) Centrality(scope []string) (types.CentralityScores, error) {
	if f.graph == nil {
		return nil, cerrors.New(cerrors.KindIndexNotReady, "", "index() has not completed", nil)
	}
	if len(scope) == 0 {
		return f.scores, nil
	}
	out := make(types.CentralityScores, len(scope))
	for _, s := range scope {
		if score, ok := f.scores[s]; ok {
			out[s] = score
		}
	}
	return out, nil
}

// centralityAdapter lets internal/impact consume f.scores through its
// narrow Centrality interface without importing internal/facade.
type centralityAdapter struct{ scores types.CentralityScores }

func (c centralityAdapter) Score(path string) float64 { return c.scores[path].Composite }

// Impact analyzes the blast radius of changing seedFiles.
func (f *Facade) Impact(seedFiles []string) (types.ImpactReport, error) {
	if f.graph == nil {
		return types.ImpactReport{}, cerrors.New(cerrors.KindIndexNotReady, "", "index() has not completed", nil)
	}
	if len(seedFiles) == 0 {
		return types.ImpactReport{}, cerrors.New(cerrors.KindInvalidQuery, "", "impact requires at least one seed file", nil)
	}
	for _, s := range seedFiles {
		if _, ok := f.graph.Node(s); !ok {
			return types.ImpactReport{}, cerrors.New(cerrors.KindUnknownFile, s, "file not present in index", nil)
		}
	}
	return impact.Analyze(f.graph, centralityAdapter{f.scores}, seedFiles), nil
}

// FindCycles returns every non-trivial strongly connected component.
func (f *Facade) FindCycles() ([][]string, error) {
	if f.graph == nil {
		return nil, cerrors.New(cerrors.KindIndexNotReady, "", "index() has not completed", nil)
	}
	return f.graph.FindCycles(), nil
}

// StatsReport returns cache and graph counters.
func (f *Facade) StatsReport() Stats {
	cs := f.cache.Stats()
	s := Stats{
		CacheHits:   cs.Hits,
		CacheMisses: cs.Misses,
		CachedFiles: cs.Entries,
		Identifiers: len(f.identifiers),
	}
	if f.graph != nil {
		s.NodeCount = len(f.graph.Nodes())
		s.EdgeCount = len(f.graph.Edges())
	}
	return s
}
