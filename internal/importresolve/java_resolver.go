package importresolve

import (
	"path/filepath"
	"strings"
)

// JavaResolver has no teacher equivalent (the teacher repo never indexed
// Java); written fresh in the shape the other resolvers share. A
// fully-qualified import ("com.acme.service.Widget") maps to a source
// root-relative path by replacing dots with path separators and appending
// ".java"; this resolver tries <root>/src/main/java, then <root>/src, then
// the project root itself as the base. Source roots nested below the
// project root (e.g. a sub-module's src/main/java) are not searched.
type JavaResolver struct{}

func (JavaResolver) Resolve(importingFile, moduleRef, projectRoot string, files ProjectFiles) (string, bool) {
	if strings.HasSuffix(moduleRef, ".*") {
		moduleRef = strings.TrimSuffix(moduleRef, ".*")
	}
	rel := strings.ReplaceAll(moduleRef, ".", string(filepath.Separator)) + ".java"

	bases := []string{
		filepath.Join(projectRoot, "src", "main", "java"),
		filepath.Join(projectRoot, "src"),
		projectRoot,
	}
	for _, base := range bases {
		target := filepath.Join(base, rel)
		if _, ok := files[filepath.Clean(target)]; ok {
			return filepath.Clean(target), false
		}
	}
	return "", false
}
