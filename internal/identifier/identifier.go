// Package identifier is the Identifier Extractor (spec.md §2, §3): a thin
// projection of Tags into the set of identifier names and their kinds,
// used by the matchers. Identifiers are ephemeral and rebuilt on demand
// from the current tag set, never persisted.
package identifier

import "github.com/codelensdev/codelens/internal/types"

// Build projects a flat tag stream (across every indexed file) into the
// identifier set: one entry per distinct name, aggregating kinds and
// defining/referencing files.
func Build(tags []types.Tag) []types.Identifier {
	byName := make(map[string]*types.Identifier)
	order := make([]string, 0)

	for _, t := range tags {
		if t.Name == "" {
			continue
		}
		id, ok := byName[t.Name]
		if !ok {
			id = &types.Identifier{Name: t.Name, KindSet: make(map[types.TagKind]struct{})}
			byName[t.Name] = id
			order = append(order, t.Name)
		}
		id.KindSet[t.Kind] = struct{}{}

		switch t.Kind {
		case types.TagKindClassDefinition, types.TagKindFunctionDefinition, types.TagKindVariableDefinition:
			id.DefiningFiles = appendUnique(id.DefiningFiles, t.FilePath)
		case types.TagKindFunctionReference:
			id.ReferencingFiles = appendUnique(id.ReferencingFiles, t.FilePath)
		}
	}

	out := make([]types.Identifier, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	return out
}

func appendUnique(files []string, file string) []string {
	for _, f := range files {
		if f == file {
			return files
		}
	}
	return append(files, file)
}
