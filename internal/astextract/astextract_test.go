package astextract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codelensdev/codelens/internal/types"
)

func TestLanguageForExt_KnownExtensions(t *testing.T) {
	e := New()
	assert.Equal(t, types.LangGo, e.LanguageForExt("main.go"))
	assert.Equal(t, types.LangPython, e.LanguageForExt("script.py"))
	assert.Equal(t, types.LangJavaScript, e.LanguageForExt("app.js"))
	assert.Equal(t, types.LangTypeScript, e.LanguageForExt("app.tsx"))
}

func TestLanguageForExt_UnsupportedExtension(t *testing.T) {
	e := New()
	assert.Equal(t, types.LangUnknown, e.LanguageForExt("README.md"))
}

func TestExtract_UnsupportedExtensionReturnsEmptyNoWarning(t *testing.T) {
	e := New()
	tags, warn := e.Extract("README.md", []byte("# hello"))
	assert.Nil(t, tags)
	assert.Nil(t, warn)
}

func TestExtract_GoSource_FindsFunctionDefinition(t *testing.T) {
	e := New()
	src := []byte(`package main

func add(a, b int) int {
	return a + b
}
`)
	tags, warn := e.Extract("main.go", src)
	require.Nil(t, warn)
	require.NotEmpty(t, tags)

	found := false
	for _, tag := range tags {
		if tag.Kind == types.TagKindFunctionDefinition && tag.Name == "add" {
			found = true
		}
	}
	assert.True(t, found, "expected a function.definition tag named 'add', got %+v", tags)
}

func TestExtract_GoSource_FindsCallReference(t *testing.T) {
	e := New()
	src := []byte(`package main

func add(a, b int) int { return a + b }

func main() {
	add(1, 2)
}
`)
	tags, warn := e.Extract("main.go", src)
	require.Nil(t, warn)

	found := false
	for _, tag := range tags {
		if tag.Kind == types.TagKindFunctionReference && tag.Name == "add" {
			found = true
		}
	}
	assert.True(t, found, "expected a function.reference tag named 'add', got %+v", tags)
}

func TestExtract_PythonSource_FindsFunctionAndImport(t *testing.T) {
	e := New()
	src := []byte(`import os

def greet(name):
    return "hi " + name
`)
	tags, warn := e.Extract("script.py", src)
	require.Nil(t, warn)

	var foundFunc, foundImport bool
	for _, tag := range tags {
		if tag.Kind == types.TagKindFunctionDefinition && tag.Name == "greet" {
			foundFunc = true
		}
		if tag.Kind == types.TagKindImportModule {
			foundImport = true
		}
	}
	assert.True(t, foundFunc, "expected function.definition 'greet', got %+v", tags)
	assert.True(t, foundImport, "expected an import.module tag, got %+v", tags)
}

func TestExtract_MalformedSourceDoesNotPanic(t *testing.T) {
	e := New()
	assert.NotPanics(t, func() {
		_, _ = e.Extract("main.go", []byte("func func func {{{ ???"))
	})
}
