package importresolve

import "path/filepath"

// JSResolver resolves CommonJS/ESM module specifiers shared by JavaScript
// and TypeScript (spec.md §4.3): "./" and "../" prefixes are relative to
// the importing file's directory; a bare specifier is treated as external
// (node_modules) unless it resolves under the project root via an
// absolute (root-relative) path, which this codebase's projects sometimes
// configure via baseUrl/paths. Grounded on the teacher's
// internal/symbollinker/js_resolver.go, trimmed to file resolution only
// (no package.json "main" field resolution, since that needs a
// file-content read the resolver interface doesn't provide).
type JSResolver struct{}

var jsExts = []string{".ts", ".tsx", ".js", ".jsx"}
var jsIndexNames = []string{"index.ts", "index.tsx", "index.js", "index.jsx"}

func (JSResolver) Resolve(importingFile, moduleRef, projectRoot string, files ProjectFiles) (string, bool) {
	if isRelativeRef(moduleRef) {
		dir := filepath.Dir(importingFile)
		target := filepath.Join(dir, moduleRef)
		return resolveCandidate(target, jsExts, jsIndexNames, files), true
	}

	// Root-relative specifiers some projects resolve via tsconfig
	// "paths"/"baseUrl"; try as a best-effort absolute lookup before
	// declaring the import external.
	target := filepath.Join(projectRoot, moduleRef)
	resolved := resolveCandidate(target, jsExts, jsIndexNames, files)
	return resolved, false
}
