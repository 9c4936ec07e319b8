package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore_ExactMatchIsOne(t *testing.T) {
	m := New(nil, 0)
	assert.Equal(t, 1.0, m.Score("parseConfig", "parseConfig"))
}

func TestScore_PrefixMatch(t *testing.T) {
	m := New([]string{StrategyPrefix}, 0)
	assert.Equal(t, 1.0, m.Score("parse", "parseConfig"))
	assert.Equal(t, 0.0, m.Score("config", "parseConfig"))
}

func TestScore_SubstringMatch(t *testing.T) {
	m := New([]string{StrategySubstring}, 0)
	score := m.Score("config", "parseConfigFile")
	assert.Greater(t, score, 0.0)
	assert.Less(t, score, 1.0)
}

func TestScore_WordOverlap(t *testing.T) {
	m := New([]string{StrategyWordOverlap}, 0)
	score := m.Score("parse_file", "file_parser")
	assert.Greater(t, score, 0.0)
}

func TestScore_NoEnabledStrategiesScoresZero(t *testing.T) {
	m := &Matcher{enabled: map[string]bool{}, threshold: 0}
	assert.Equal(t, 0.0, m.Score("anything", "anything"))
}

func TestRank_FiltersByThresholdAndSortsDescending(t *testing.T) {
	m := New([]string{StrategyPrefix}, 0.5)
	results := m.Rank("parse", []string{"parseConfig", "serialize", "parseFile"})

	require.Len(t, results, 2)
	assert.Equal(t, "parseConfig", results[0].Identifier)
	assert.Equal(t, "parseFile", results[1].Identifier)
}

func TestRank_TiesBrokenByIdentifierName(t *testing.T) {
	m := New([]string{StrategyPrefix}, 0)
	results := m.Rank("zzz_no_match", []string{"bravo", "alpha", "charlie"})
	// none match via prefix, all score 0.0 -> tie-break alphabetically
	require.Len(t, results, 3)
	assert.Equal(t, []string{"alpha", "bravo", "charlie"}, []string{results[0].Identifier, results[1].Identifier, results[2].Identifier})
}

func TestTokenize_SplitsCamelSnakeKebab(t *testing.T) {
	assert.Equal(t, []string{"parse", "config", "file"}, tokenize("parseConfigFile"))
	assert.Equal(t, []string{"parse", "config", "file"}, tokenize("parse_config_file"))
	assert.Equal(t, []string{"parse", "config", "file"}, tokenize("parse-config-file"))
}
