// Package discover implements the File Discoverer (spec.md §2): it
// enumerates candidate source files under a project root, honoring ignore
// patterns, and yields file paths tagged with a language. Adapted from the
// teacher's internal/config gitignore parser and internal/indexing glob
// matching, both built on bmatcuk/doublestar/v4.
package discover

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/codelensdev/codelens/internal/config"
	"github.com/codelensdev/codelens/internal/types"
)

// extensionLanguages is the supported-extension table from spec.md §6,
// extended with the bonus languages the teacher's grammar set enables
// (cpp, php, zig) per SPEC_FULL.md §4.2.
var extensionLanguages = map[string]types.Language{
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
}

// File is one discovered candidate: its absolute path and inferred
// language. Files whose extension is unsupported are still yielded (with
// Language == LangUnknown) so the caller can count them as skipped.
type File struct {
	Path     string
	Language types.Language
}

// LanguageOf returns the language tag for path's extension, or
// LangUnknown if unsupported.
func LanguageOf(path string) types.Language {
	lang, ok := extensionLanguages[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return types.LangUnknown
	}
	return lang
}

// Discover walks root single-threaded (spec.md §5 "discovery is
// single-threaded and produces a work queue") and returns every regular
// file not excluded by cfg's patterns or a .gitignore, deterministically
// ordered.
func Discover(root string, cfg *config.Config) ([]File, error) {
	ignore := newIgnoreSet(root, cfg)

	var files []File
	err := filepath.Walk(root, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		if info.IsDir() {
			if rel != "." && ignore.matchesDir(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if ignore.matchesFile(rel) {
			return nil
		}
		files = append(files, File{Path: path, Language: LanguageOf(path)})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// ignoreSet combines Config.Exclude/Include globs, manifest-derived
// excludes, and .gitignore patterns into one matcher.
type ignoreSet struct {
	excludeGlobs []string
	includeGlobs []string
	gitignore    []gitignorePattern
}

func newIgnoreSet(root string, cfg *config.Config) *ignoreSet {
	set := &ignoreSet{
		includeGlobs: append([]string{}, cfg.Include...),
	}
	set.excludeGlobs = append(set.excludeGlobs, cfg.Exclude...)
	set.excludeGlobs = append(set.excludeGlobs, config.DetectManifestExcludes(root)...)
	set.gitignore = loadGitignore(root)
	return set
}

func (s *ignoreSet) matchesDir(rel string) bool {
	return s.matches(rel + "/")
}

func (s *ignoreSet) matchesFile(rel string) bool {
	if len(s.includeGlobs) > 0 && !s.matchesAny(s.includeGlobs, rel) {
		return true
	}
	return s.matches(rel)
}

func (s *ignoreSet) matches(rel string) bool {
	if s.matchesAny(s.excludeGlobs, strings.TrimSuffix(rel, "/")) {
		return true
	}
	for _, p := range s.gitignore {
		if p.match(rel) {
			return !p.negate
		}
	}
	return false
}

func (s *ignoreSet) matchesAny(globs []string, rel string) bool {
	for _, g := range globs {
		if ok, _ := doublestar.Match(g, rel); ok {
			return true
		}
	}
	return false
}

// gitignorePattern is a single parsed .gitignore line, adapted from the
// teacher's GitignoreParser but trimmed to doublestar-backed matching.
type gitignorePattern struct {
	glob   string
	negate bool
}

func (p gitignorePattern) match(rel string) bool {
	ok, _ := doublestar.Match(p.glob, rel)
	if !ok {
		// Every pattern is also tried at any depth, including patterns
		// that contain a "/" or were written with a leading "/"; anchoring
		// to the project root is not honored.
		ok, _ = doublestar.Match("**/"+p.glob, rel)
	}
	return ok
}

func loadGitignore(root string) []gitignorePattern {
	f, err := os.Open(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	defer f.Close()

	var patterns []gitignorePattern
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		negate := strings.HasPrefix(line, "!")
		if negate {
			line = line[1:]
		}
		glob := strings.TrimPrefix(line, "/")
		if strings.HasSuffix(glob, "/") {
			glob += "**"
		} else {
			glob += "/**"
			patterns = append(patterns, gitignorePattern{glob: strings.TrimSuffix(glob, "/**"), negate: negate})
		}
		patterns = append(patterns, gitignorePattern{glob: glob, negate: negate})
	}
	return patterns
}
