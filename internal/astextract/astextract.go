// Package astextract is the AST Tag Extractor (spec.md §4.2): given a file
// path and bytes, it selects a tree-sitter grammar by extension, parses to
// a syntax tree, runs a language-specific tag query, and emits the
// resulting Tags.
//
// Grounded directly on the teacher's internal/parser package (grammar
// registration, tree_sitter.NewQuery/QueryCursor usage) but restructured
// around one declarative per-language query + a single, stable
// capture-name -> types.TagKind mapping table (spec.md §4.2 requires this
// mapping be "part of the spec and stable across implementations" rather
// than scattered across per-node-type parse functions).
package astextract

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/codelensdev/codelens/internal/types"
)

// captureKindMapping is the documented, stable mapping from tree-sitter
// capture name to Tag.Kind (spec.md §4.2). Every language's query uses
// only these capture names.
var captureKindMapping = map[string]types.TagKind{
	"definition.class":    types.TagKindClassDefinition,
	"definition.function": types.TagKindFunctionDefinition,
	"definition.method":   types.TagKindFunctionDefinition,
	"definition.variable": types.TagKindVariableDefinition,
	"import.module":       types.TagKindImportModule,
	"reference.call":      types.TagKindFunctionReference,
}

// Warning mirrors spec.md §4.2's "empty on parse failure, not fatal, with
// a warning surfaced to the caller".
type Warning struct {
	FilePath string
	Message  string
}

// Extractor is stateless and reentrant once constructed: each Extractor
// owns its grammars and compiled queries, compiles each language's once on
// first use, and only reads them afterwards (spec.md §4.2, §9 "explicit
// owned handles" — constructed once, passed by reference).
type Extractor struct {
	mu        sync.Mutex // guards lazy grammar/query compilation
	grammars  map[types.Language]*grammar
	extLangs  map[string]types.Language
}

type grammar struct {
	language *tree_sitter.Language
	query    *tree_sitter.Query
	captures []string
	once     sync.Once
	err      error
}

// New constructs an Extractor with every supported language registered
// (lazily compiled on first use, per language, to avoid paying grammar
// construction cost for languages a project never contains).
func New() *Extractor {
	e := &Extractor{
		grammars: make(map[types.Language]*grammar),
		extLangs: map[string]types.Language{
			".py":   types.LangPython,
			".js":   types.LangJavaScript,
			".jsx":  types.LangJavaScript,
			".ts":   types.LangTypeScript,
			".tsx":  types.LangTypeScript,
			".go":   types.LangGo,
			".java": types.LangJava,
			".cs":   types.LangCSharp,
			".rs":   types.LangRust,
			".cpp":  types.LangCPP,
			".cc":   types.LangCPP,
			".hpp":  types.LangCPP,
			".h":    types.LangCPP,
			".php":  types.LangPHP,
			".zig":  types.LangZig,
		},
	}
	for _, lang := range []types.Language{
		types.LangPython, types.LangJavaScript, types.LangTypeScript, types.LangGo,
		types.LangJava, types.LangCSharp, types.LangRust, types.LangCPP, types.LangPHP, types.LangZig,
	} {
		e.grammars[lang] = &grammar{}
	}
	return e
}

// LanguageForExt returns the language registered for a file extension, or
// LangUnknown if unsupported (spec.md §4.2: "Files whose extension does
// not map to a supported language are skipped").
func (e *Extractor) LanguageForExt(path string) types.Language {
	lang, ok := e.extLangs[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return types.LangUnknown
	}
	return lang
}

// Extract parses content for path and runs the language's tag query,
// returning an ordered Tag list. Per spec.md §4.2: a completely
// unparseable file yields an empty (not nil-error) tag list; an
// unsupported extension likewise yields an empty list with a nil
// *Warning left to the caller to interpret, since "skipped" is not
// itself a parse failure.
func (e *Extractor) Extract(path string, content []byte) ([]types.Tag, *Warning) {
	lang := e.LanguageForExt(path)
	if lang == types.LangUnknown {
		return nil, nil
	}

	g, err := e.grammarFor(lang)
	if err != nil {
		return nil, &Warning{FilePath: path, Message: fmt.Sprintf("grammar unavailable for %s: %v", lang, err)}
	}

	parser := tree_sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(g.language); err != nil {
		return nil, &Warning{FilePath: path, Message: fmt.Sprintf("set language %s: %v", lang, err)}
	}

	// tree-sitter's C library may mutate the input buffer; parse a
	// defensive copy so the caller's content (often cache-owned) stays
	// immutable.
	buf := make([]byte, len(content))
	copy(buf, content)

	tree := parser.Parse(buf, nil)
	if tree == nil {
		return nil, &Warning{FilePath: path, Message: "parse produced no tree"}
	}
	defer tree.Close()

	return e.runQuery(g, tree, buf, path), nil
}

func (e *Extractor) grammarFor(lang types.Language) (*grammar, error) {
	e.mu.Lock()
	g, ok := e.grammars[lang]
	e.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("unregistered language %s", lang)
	}
	g.once.Do(func() {
		ptr, queryStr, buildErr := grammarFor(lang)
		if buildErr != nil {
			g.err = buildErr
			return
		}
		g.language = tree_sitter.NewLanguage(ptr)
		query, queryErr := tree_sitter.NewQuery(g.language, queryStr)
		if query == nil {
			g.err = queryErr
			if g.err == nil {
				g.err = fmt.Errorf("query compilation returned nil for %s", lang)
			}
			return
		}
		g.query = query
		g.captures = query.CaptureNames()
	})
	return g, g.err
}

func (e *Extractor) runQuery(g *grammar, tree *tree_sitter.Tree, content []byte, path string) []types.Tag {
	if g.query == nil {
		return nil
	}
	qc := tree_sitter.NewQueryCursor()
	defer qc.Close()

	matches := qc.Matches(g.query, tree.RootNode(), content)

	var tags []types.Tag
	for {
		match := matches.Next()
		if match == nil {
			break
		}

		// A tag-producing capture (e.g. "definition.function") and its
		// companion "@name" capture arrive in the same match; find the
		// name text first, then emit one Tag per recognized kind capture.
		name := ""
		for _, c := range match.Captures {
			if g.captures[c.Index] == "name" {
				name = string(content[c.Node.StartByte():c.Node.EndByte()])
			}
		}

		for _, c := range match.Captures {
			captureName := g.captures[c.Index]
			kind, recognized := captureKindMapping[captureName]
			if !recognized {
				continue
			}
			start := c.Node.StartPosition()
			end := c.Node.EndPosition()
			tagName := name
			if captureName == "import.module" {
				tagName = strings.Trim(name, "\"'`")
			}
			tags = append(tags, types.Tag{
				Name:        tagName,
				Kind:        kind,
				FilePath:    path,
				StartLine:   int(start.Row) + 1,
				StartColumn: int(start.Column),
				EndLine:     int(end.Row) + 1,
				EndColumn:   int(end.Column),
			})
		}
	}
	return tags
}
