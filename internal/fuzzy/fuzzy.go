// Package fuzzy is the Fuzzy Matcher (spec.md §4.8): scores and ranks
// identifiers against a query using prefix, substring, edit-distance, and
// word-overlap strategies, combined by taking the max enabled strategy
// score per identifier.
//
// Grounded directly on the teacher's internal/semantic/fuzzy_matcher.go,
// which wraps github.com/hbollon/go-edlib for string-distance algorithms;
// generalized here from the teacher's single-algorithm-at-a-time
// (Jaro-Winkler / Levenshtein / cosine) design to the spec's four
// always-computed strategies taken by max, and from the teacher's
// dictionary-weighted combination to the spec's plain per-identifier
// scoring.
package fuzzy

import (
	"sort"
	"strings"
	"unicode"

	"github.com/hbollon/go-edlib"
)

// Strategy names usable in a Matcher's enabled set.
const (
	StrategyPrefix      = "prefix"
	StrategySubstring   = "substring"
	StrategyEditDistance = "edit_distance"
	StrategyWordOverlap = "word_overlap"
)

// Match is one scored identifier.
type Match struct {
	Identifier string
	Score      float64
}

// Matcher holds the enabled strategy set and score threshold.
type Matcher struct {
	enabled   map[string]bool
	threshold float64
}

// New constructs a Matcher. An empty enabled slice enables every strategy.
func New(enabled []string, threshold float64) *Matcher {
	m := &Matcher{enabled: make(map[string]bool), threshold: threshold}
	if len(enabled) == 0 {
		enabled = []string{StrategyPrefix, StrategySubstring, StrategyEditDistance, StrategyWordOverlap}
	}
	for _, s := range enabled {
		m.enabled[s] = true
	}
	return m
}

// Rank scores every identifier against query, keeping only those at or
// above the threshold, sorted by score descending then identifier name
// ascending (spec.md §4.8).
func (m *Matcher) Rank(query string, identifiers []string) []Match {
	var out []Match
	for _, id := range identifiers {
		score := m.Score(query, id)
		if score >= m.threshold {
			out = append(out, Match{Identifier: id, Score: score})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Identifier < out[j].Identifier
	})
	return out
}

// Score computes the max-over-enabled-strategies score for one identifier.
func (m *Matcher) Score(query, identifier string) float64 {
	best := 0.0
	if m.enabled[StrategyPrefix] {
		best = max(best, prefixScore(query, identifier))
	}
	if m.enabled[StrategySubstring] {
		best = max(best, substringScore(query, identifier))
	}
	if m.enabled[StrategyEditDistance] {
		best = max(best, editDistanceScore(query, identifier))
	}
	if m.enabled[StrategyWordOverlap] {
		best = max(best, wordOverlapScore(query, identifier))
	}
	return best
}

func prefixScore(query, identifier string) float64 {
	if strings.HasPrefix(strings.ToLower(identifier), strings.ToLower(query)) {
		return 1.0
	}
	return 0.0
}

func substringScore(query, identifier string) float64 {
	if query == "" || identifier == "" {
		return 0.0
	}
	idx := strings.Index(strings.ToLower(identifier), strings.ToLower(query))
	if idx < 0 {
		return 0.0
	}
	return 1.0 - float64(idx)/float64(len(identifier))
}

// editDistanceScore uses go-edlib's Levenshtein distance (the same
// library the teacher imports for its own edit-distance strategy),
// normalized by the longer string's length.
func editDistanceScore(query, identifier string) float64 {
	if query == identifier {
		return 1.0
	}
	if query == "" || identifier == "" {
		return 0.0
	}
	sim, err := edlib.StringsSimilarity(query, identifier, edlib.Levenshtein)
	if err != nil {
		return 0.0
	}
	// go-edlib's StringsSimilarity already returns the 0-1 similarity for
	// Levenshtein (1 - distance / length of the longer string), so it is
	// used as the score directly.
	score := float64(sim)
	if score < 0 {
		score = 0
	}
	return score
}

func wordOverlapScore(query, identifier string) float64 {
	qTokens := tokenize(query)
	iTokens := tokenize(identifier)
	if len(qTokens) == 0 || len(iTokens) == 0 {
		return 0.0
	}

	qSet := make(map[string]struct{}, len(qTokens))
	for _, t := range qTokens {
		qSet[t] = struct{}{}
	}
	iSet := make(map[string]struct{}, len(iTokens))
	for _, t := range iTokens {
		iSet[t] = struct{}{}
	}

	intersection := 0
	union := make(map[string]struct{})
	for t := range qSet {
		union[t] = struct{}{}
		if _, ok := iSet[t]; ok {
			intersection++
		}
	}
	for t := range iSet {
		union[t] = struct{}{}
	}
	if len(union) == 0 {
		return 0.0
	}
	return float64(intersection) / float64(len(union))
}

// tokenize splits an identifier by camelCase, snake_case, and kebab-case
// boundaries, lower-casing every token. Shared in shape with the
// tokenizer internal/tfidf uses, kept duplicated (not extracted to a
// shared package) since each caller tunes stop-token filtering
// differently.
func tokenize(s string) []string {
	var tokens []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			tokens = append(tokens, strings.ToLower(string(cur)))
			cur = nil
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == '.' || r == '/':
			flush()
		case unicode.IsUpper(r) && i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])):
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
	}
	flush()
	return tokens
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
