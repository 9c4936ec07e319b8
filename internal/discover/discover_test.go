package discover

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codelensdev/codelens/internal/config"
	"github.com/codelensdev/codelens/internal/types"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestLanguageOf_KnownAndUnknownExtensions(t *testing.T) {
	assert.Equal(t, types.LangGo, LanguageOf("main.go"))
	assert.Equal(t, types.LangPython, LanguageOf("script.py"))
	assert.Equal(t, types.LangJavaScript, LanguageOf("app.jsx"))
	assert.Equal(t, types.LangUnknown, LanguageOf("README.md"))
}

func TestLanguageOf_IsCaseInsensitive(t *testing.T) {
	assert.Equal(t, types.LangGo, LanguageOf("MAIN.GO"))
}

func TestDiscover_FindsFilesAndInfersLanguage(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main")
	writeFile(t, root, "script.py", "print(1)")
	writeFile(t, root, "README.md", "# hi")

	cfg := config.Default(root)
	files, err := Discover(root, cfg)
	require.NoError(t, err)

	byPath := map[string]types.Language{}
	for _, f := range files {
		rel, _ := filepath.Rel(root, f.Path)
		byPath[rel] = f.Language
	}
	assert.Equal(t, types.LangGo, byPath["main.go"])
	assert.Equal(t, types.LangPython, byPath["script.py"])
	assert.Equal(t, types.LangUnknown, byPath["README.md"])
}

func TestDiscover_ExcludesConfiguredGlobs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "vendor/lib.go", "package lib")
	writeFile(t, root, "main.go", "package main")

	cfg := config.Default(root)
	cfg.Exclude = append(cfg.Exclude, "**/vendor/**")
	files, err := Discover(root, cfg)
	require.NoError(t, err)

	for _, f := range files {
		assert.NotContains(t, f.Path, "vendor")
	}
}

func TestDiscover_HonorsGitignore(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "build/out.go", "package out")
	writeFile(t, root, "main.go", "package main")
	writeFile(t, root, ".gitignore", "build/\n")

	cfg := config.Default(root)
	files, err := Discover(root, cfg)
	require.NoError(t, err)

	for _, f := range files {
		assert.NotContains(t, f.Path, "build")
	}
}

func TestDiscover_IncludeGlobRestrictsToMatchingFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main")
	writeFile(t, root, "script.py", "print(1)")

	cfg := config.Default(root)
	cfg.Include = []string{"**/*.go"}
	files, err := Discover(root, cfg)
	require.NoError(t, err)

	require.Len(t, files, 1)
	assert.Equal(t, types.LangGo, files[0].Language)
}

func TestDiscover_ResultsAreSortedByPath(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "z.go", "package z")
	writeFile(t, root, "a.go", "package a")

	cfg := config.Default(root)
	files, err := Discover(root, cfg)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Less(t, files[0].Path, files[1].Path)
}
