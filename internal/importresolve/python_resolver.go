package importresolve

import (
	"path/filepath"
	"strings"
)

// PythonResolver resolves dotted-name imports (spec.md §4.3). Dotted
// segments map to nested directories; a resolved module may be a plain
// "<name>.py" file or a package directory's "__init__.py". Leading dots in
// "from . import x" / "from .. import x" count levels up from the
// importing file's directory, the same relative-import rule CPython uses.
// Grounded on the teacher's internal/symbollinker/python_resolver.go.
type PythonResolver struct{}

func (PythonResolver) Resolve(importingFile, moduleRef, projectRoot string, files ProjectFiles) (string, bool) {
	isRelative := strings.HasPrefix(moduleRef, ".")
	dir := filepath.Dir(importingFile)

	ref := moduleRef
	base := dir
	if isRelative {
		level := 0
		for level < len(ref) && ref[level] == '.' {
			level++
		}
		for i := 1; i < level; i++ {
			base = filepath.Dir(base)
		}
		ref = ref[level:]
	} else {
		base = projectRoot
	}

	ref = strings.TrimPrefix(ref, ".")
	segments := strings.Split(ref, ".")
	target := base
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		target = filepath.Join(target, seg)
	}

	resolved := resolveCandidate(target, []string{".py"}, []string{"__init__.py"}, files)
	return resolved, isRelative
}
