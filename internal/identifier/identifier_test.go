package identifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codelensdev/codelens/internal/types"
)

func findByName(ids []types.Identifier, name string) (types.Identifier, bool) {
	for _, id := range ids {
		if id.Name == name {
			return id, true
		}
	}
	return types.Identifier{}, false
}

func TestBuild_AggregatesDefiningAndReferencingFiles(t *testing.T) {
	tags := []types.Tag{
		{Name: "parseConfig", Kind: types.TagKindFunctionDefinition, FilePath: "a.go"},
		{Name: "parseConfig", Kind: types.TagKindFunctionReference, FilePath: "b.go"},
		{Name: "parseConfig", Kind: types.TagKindFunctionReference, FilePath: "c.go"},
	}
	ids := Build(tags)

	id, ok := findByName(ids, "parseConfig")
	require.True(t, ok)
	assert.Equal(t, []string{"a.go"}, id.DefiningFiles)
	assert.ElementsMatch(t, []string{"b.go", "c.go"}, id.ReferencingFiles)
	_, hasDef := id.KindSet[types.TagKindFunctionDefinition]
	_, hasRef := id.KindSet[types.TagKindFunctionReference]
	assert.True(t, hasDef)
	assert.True(t, hasRef)
}

func TestBuild_DeduplicatesRepeatedFileInSameRole(t *testing.T) {
	tags := []types.Tag{
		{Name: "helper", Kind: types.TagKindFunctionDefinition, FilePath: "a.go"},
		{Name: "helper", Kind: types.TagKindFunctionDefinition, FilePath: "a.go"},
	}
	ids := Build(tags)
	id, ok := findByName(ids, "helper")
	require.True(t, ok)
	assert.Equal(t, []string{"a.go"}, id.DefiningFiles)
}

func TestBuild_SkipsEmptyNames(t *testing.T) {
	tags := []types.Tag{{Name: "", Kind: types.TagKindFunctionDefinition, FilePath: "a.go"}}
	ids := Build(tags)
	assert.Empty(t, ids)
}

func TestBuild_PreservesFirstSeenOrder(t *testing.T) {
	tags := []types.Tag{
		{Name: "zeta", Kind: types.TagKindFunctionDefinition, FilePath: "a.go"},
		{Name: "alpha", Kind: types.TagKindFunctionDefinition, FilePath: "a.go"},
	}
	ids := Build(tags)
	require.Len(t, ids, 2)
	assert.Equal(t, "zeta", ids[0].Name)
	assert.Equal(t, "alpha", ids[1].Name)
}

func TestBuild_VariableDefinitionCountsAsDefiningFile(t *testing.T) {
	tags := []types.Tag{{Name: "count", Kind: types.TagKindVariableDefinition, FilePath: "a.go"}}
	ids := Build(tags)
	id, ok := findByName(ids, "count")
	require.True(t, ok)
	assert.Equal(t, []string{"a.go"}, id.DefiningFiles)
}
