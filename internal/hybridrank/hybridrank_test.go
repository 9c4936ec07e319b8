package hybridrank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCombine_RenormalizesAcrossPresentComponents(t *testing.T) {
	// Only fuzzy present: composite should equal the fuzzy score itself,
	// not fuzzy*weight (renormalized so weights sum to 1 for this id).
	scores := []Scores{
		{Identifier: "parseConfig", Fuzzy: 0.8, HasFuzzy: true},
	}
	out := Combine(scores, DefaultWeights, 0, 0)
	require.Len(t, out, 1)
	assert.InDelta(t, 0.8, out[0].Composite, 1e-9)
}

func TestCombine_AllComponentsPresentUsesDefaultWeights(t *testing.T) {
	scores := []Scores{
		{Identifier: "id", Fuzzy: 1.0, HasFuzzy: true, TFIDF: 1.0, HasTFIDF: true, Embedding: 1.0, HasEmbed: true},
	}
	out := Combine(scores, DefaultWeights, 0, 0)
	require.Len(t, out, 1)
	assert.InDelta(t, 1.0, out[0].Composite, 1e-9)
}

func TestCombine_FiltersBelowThreshold(t *testing.T) {
	scores := []Scores{
		{Identifier: "low", Fuzzy: 0.1, HasFuzzy: true},
		{Identifier: "high", Fuzzy: 0.9, HasFuzzy: true},
	}
	out := Combine(scores, DefaultWeights, 0.5, 0)
	require.Len(t, out, 1)
	assert.Equal(t, "high", out[0].Identifier)
}

func TestCombine_DedupsByIdentifierKeepingMaxPerComponent(t *testing.T) {
	scores := []Scores{
		{Identifier: "dup", Fuzzy: 0.3, HasFuzzy: true},
		{Identifier: "dup", Fuzzy: 0.9, HasFuzzy: true, TFIDF: 0.6, HasTFIDF: true},
	}
	out := Combine(scores, DefaultWeights, 0, 0)
	require.Len(t, out, 1)
	assert.Equal(t, 0.9, out[0].Fuzzy)
}

func TestCombine_SortsByCompositeDescThenFuzzyThenIdentifier(t *testing.T) {
	scores := []Scores{
		{Identifier: "b", Fuzzy: 0.5, HasFuzzy: true},
		{Identifier: "a", Fuzzy: 0.5, HasFuzzy: true},
		{Identifier: "c", Fuzzy: 0.9, HasFuzzy: true},
	}
	out := Combine(scores, DefaultWeights, 0, 0)
	require.Len(t, out, 3)
	assert.Equal(t, []string{"c", "a", "b"}, []string{out[0].Identifier, out[1].Identifier, out[2].Identifier})
}

func TestCombine_RespectsTopK(t *testing.T) {
	scores := []Scores{
		{Identifier: "a", Fuzzy: 0.9, HasFuzzy: true},
		{Identifier: "b", Fuzzy: 0.8, HasFuzzy: true},
		{Identifier: "c", Fuzzy: 0.7, HasFuzzy: true},
	}
	out := Combine(scores, DefaultWeights, 0, 2)
	assert.Len(t, out, 2)
}

func TestCombine_NoComponentsPresentScoresZero(t *testing.T) {
	scores := []Scores{{Identifier: "empty"}}
	out := Combine(scores, DefaultWeights, 0, 0)
	require.Len(t, out, 1)
	assert.Equal(t, 0.0, out[0].Composite)
}
