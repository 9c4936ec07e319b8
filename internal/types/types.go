// Package types defines the core data model shared across the indexing,
// graph, centrality, impact, and search subsystems: Tag, FileRecord,
// Identifier, Import, Call, DependencyNode/Edge, CentralityScores, and
// ImpactReport.
package types

import "time"

// FileID is a dense handle type for an indexed file. The packages of this
// module key files by path; none of them assigns a FileID.
type FileID uint32

// Language identifies the grammar used to parse a file.
type Language string

const (
	LangPython     Language = "python"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangGo         Language = "go"
	LangJava       Language = "java"
	LangCSharp     Language = "csharp"
	LangRust       Language = "rust"
	LangCPP        Language = "cpp"
	LangPHP        Language = "php"
	LangZig        Language = "zig"
	LangUnknown    Language = ""
)

// TagKind is the stable, documented mapping target of every tree-sitter
// capture name (spec.md §4.2). New capture names must map to one of these;
// the mapping itself lives per-language in internal/astextract.
type TagKind string

const (
	TagKindClassDefinition    TagKind = "class.definition"
	TagKindFunctionDefinition TagKind = "function.definition"
	TagKindFunctionReference  TagKind = "function.reference"
	TagKindVariableDefinition TagKind = "variable.definition"
	TagKindImportModule       TagKind = "import.module"
)

// Tag represents one extracted symbol occurrence. Immutable once created.
type Tag struct {
	Name        string
	Kind        TagKind
	FilePath    string
	StartLine   int
	StartColumn int
	EndLine     int
	EndColumn   int
}

// FileRecord is the persisted identity of one indexed file.
type FileRecord struct {
	FilePath    string
	ContentHash [32]byte // SHA-256 of exactly the bytes that produced Tags
	ModTime     time.Time
	Language    Language
	CachedAt    time.Time
}

// Identifier is an ephemeral, query-time projection of tags into named
// symbols. Rebuilt on demand, never persisted.
type Identifier struct {
	Name             string
	KindSet          map[TagKind]struct{}
	DefiningFiles    []string
	ReferencingFiles []string
}

// ImportResolution classifies how an Import's module reference resolved.
type ImportResolution string

const (
	ResolutionRelative ImportResolution = "relative"
	ResolutionAbsolute ImportResolution = "absolute"
	ResolutionExternal ImportResolution = "external"
	ResolutionNotFound ImportResolution = "not_found"
)

// Import is one resolved (or unresolved) import statement.
type Import struct {
	ImportingFile string
	ModuleRef     string
	ResolvedFile  string // empty when unresolved
	IsRelative    bool
	Line          int
	Resolution    ImportResolution
}

// Call is one resolved (or unresolved) call site.
type Call struct {
	CallerFile             string
	CallerFunction         string
	CalleeName             string
	ResolvedCalleeFile     string // empty when unresolved
	ResolvedCalleeFunction string
	Line                   int
}

// EdgeKind distinguishes import-induced edges from call-induced edges.
type EdgeKind string

const (
	EdgeKindImport EdgeKind = "import"
	EdgeKindCall   EdgeKind = "call"
)

// DependencyNode is one file-level node in the dependency graph.
type DependencyNode struct {
	FilePath        string
	Language        Language
	TagCount        int
	DeclaredSymbols []string
}

// DependencyEdge is a directed, kind-tagged, weight-aggregated edge between
// two files.
type DependencyEdge struct {
	FromFile string
	ToFile   string
	Kind     EdgeKind
	Weight   int
}

// MetricScores holds the four normalized centrality values for one file.
type MetricScores struct {
	Degree      float64
	Betweenness float64
	PageRank    float64
	Composite   float64
}

// CentralityScores maps file path to its MetricScores.
type CentralityScores map[string]MetricScores

// ImpactReport is the result of an impact(seed_files) query.
type ImpactReport struct {
	SeedFiles            []string
	DirectDependents     []string
	TransitiveDependents []string
	RiskScore            float64
	SuggestedTests       []string
}
