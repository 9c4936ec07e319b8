package importresolve

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// GoResolver resolves Go import paths: relative imports aren't part of the
// language (Go has none), so every import is either this module's own
// package tree or an external module/stdlib package. Grounded on the
// teacher's internal/symbollinker/go_resolver.go, trimmed to file-level
// (not package-level) resolution: an import resolves to the
// lexicographically smallest .go file discovered in the target directory.
type GoResolver struct {
	modulePath string
	root       string
}

var goModRegexp = regexp.MustCompile(`(?m)^module\s+(\S+)`)

func (r *GoResolver) moduleName(root string) string {
	if r.root == root && r.modulePath != "" {
		return r.modulePath
	}
	data, err := os.ReadFile(filepath.Join(root, "go.mod"))
	if err != nil {
		return ""
	}
	m := goModRegexp.FindSubmatch(data)
	if m == nil {
		return ""
	}
	r.root = root
	r.modulePath = string(m[1])
	return r.modulePath
}

func (r *GoResolver) Resolve(importingFile, moduleRef, projectRoot string, files ProjectFiles) (string, bool) {
	module := r.moduleName(projectRoot)
	if module == "" || !strings.HasPrefix(moduleRef, module) {
		return "", false // standard library or external module
	}

	sub := strings.TrimPrefix(moduleRef, module)
	sub = strings.TrimPrefix(sub, "/")
	dir := filepath.Clean(filepath.Join(projectRoot, sub))

	var candidates []string
	for path := range files {
		if filepath.Dir(path) == dir && strings.HasSuffix(path, ".go") && !strings.HasSuffix(path, "_test.go") {
			candidates = append(candidates, path)
		}
	}
	if len(candidates) == 0 {
		return "", false
	}
	sort.Strings(candidates)
	return candidates[0], false
}
