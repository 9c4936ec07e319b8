package importresolve

import (
	"path/filepath"
	"sort"
	"strings"
)

// CSharpResolver resolves "using" directives. C# namespaces don't map to
// file paths by language rule (unlike Java), so this best-effort matches
// the trailing namespace segment against file basenames project-wide,
// preferring the shallowest, lexicographically smallest match -- the same
// tie-break the other resolvers use. Grounded on the teacher's
// internal/symbollinker/csharp_resolver.go.
type CSharpResolver struct{}

func (CSharpResolver) Resolve(importingFile, moduleRef, projectRoot string, files ProjectFiles) (string, bool) {
	segments := strings.Split(moduleRef, ".")
	if len(segments) == 0 {
		return "", false
	}
	want := segments[len(segments)-1]

	base := filepath.Join(projectRoot, strings.Join(segments, string(filepath.Separator)))
	if resolved := resolveCandidate(base, []string{".cs"}, nil, files); resolved != "" {
		return resolved, false
	}

	target := want + ".cs"
	resolved := resolveCandidate(filepath.Join(projectRoot, want), []string{".cs"}, nil, files)
	if resolved != "" {
		return resolved, false
	}
	var matches []string
	for path := range files {
		if filepath.Base(path) == target {
			matches = append(matches, path)
		}
	}
	if len(matches) == 0 {
		return "", false
	}
	sort.Slice(matches, func(i, j int) bool {
		di, dj := strings.Count(matches[i], string(filepath.Separator)), strings.Count(matches[j], string(filepath.Separator))
		if di != dj {
			return di < dj
		}
		return matches[i] < matches[j]
	})
	return matches[0], false
}
