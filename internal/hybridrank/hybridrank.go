// Package hybridrank is the Hybrid Ranker (spec.md §4.11): combines
// per-strategy score vectors (fuzzy, TF-IDF, embedding) into one
// composite ranking, with threshold filtering, dedup-by-identifier, and
// top-K truncation.
//
// No teacher or pack file combines multiple matcher scores this way; it's
// written fresh directly against the spec's weighting formula.
package hybridrank

import "sort"

// Weights are the per-component blend weights, renormalized across
// whichever components are present for a given identifier (spec.md
// §4.11: "renormalized across enabled components so weights sum to 1").
type Weights struct {
	Fuzzy     float64
	TFIDF     float64
	Embedding float64
}

// DefaultWeights matches spec.md §4.11's default (0.5, 0.3, 0.2).
var DefaultWeights = Weights{Fuzzy: 0.5, TFIDF: 0.3, Embedding: 0.2}

// Component scores for one identifier, any subset of which may be absent
// (HasX = false) when that matcher didn't produce a score for it.
type Scores struct {
	Identifier string
	Fuzzy      float64
	HasFuzzy   bool
	TFIDF      float64
	HasTFIDF   bool
	Embedding  float64
	HasEmbed   bool
}

// Result is one ranked identifier with its composite and component scores.
type Result struct {
	Identifier string
	Composite  float64
	Fuzzy      float64
}

// Combine merges per-matcher score lists into ranked Results. threshold
// filters the composite score (default 0.3 per spec.md §4.11); topK <= 0
// means unbounded.
func Combine(scores []Scores, weights Weights, threshold float64, topK int) []Result {
	byID := make(map[string]Scores, len(scores))
	for _, s := range scores {
		if existing, ok := byID[s.Identifier]; ok {
			byID[s.Identifier] = mergeScores(existing, s)
		} else {
			byID[s.Identifier] = s
		}
	}

	var out []Result
	for _, s := range byID {
		composite, fuzzy := composite(s, weights)
		if composite < threshold {
			continue
		}
		out = append(out, Result{Identifier: s.Identifier, Composite: composite, Fuzzy: fuzzy})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Composite != out[j].Composite {
			return out[i].Composite > out[j].Composite
		}
		if out[i].Fuzzy != out[j].Fuzzy {
			return out[i].Fuzzy > out[j].Fuzzy
		}
		return out[i].Identifier < out[j].Identifier
	})
	if topK > 0 && len(out) > topK {
		out = out[:topK]
	}
	return out
}

// mergeScores combines two Scores entries for the same identifier
// (e.g. arriving from two separate matcher passes), keeping the max of
// each present component — the same "keep max composite" dedup rule
// spec.md §4.11 specifies, applied per-component before the composite is
// computed.
func mergeScores(a, b Scores) Scores {
	out := a
	if b.HasFuzzy && (!a.HasFuzzy || b.Fuzzy > a.Fuzzy) {
		out.Fuzzy, out.HasFuzzy = b.Fuzzy, true
	}
	if b.HasTFIDF && (!a.HasTFIDF || b.TFIDF > a.TFIDF) {
		out.TFIDF, out.HasTFIDF = b.TFIDF, true
	}
	if b.HasEmbed && (!a.HasEmbed || b.Embedding > a.Embedding) {
		out.Embedding, out.HasEmbed = b.Embedding, true
	}
	return out
}

func composite(s Scores, w Weights) (compositeScore, fuzzyScore float64) {
	var sumWeight float64
	var sumScore float64

	if s.HasFuzzy {
		sumWeight += w.Fuzzy
		sumScore += w.Fuzzy * s.Fuzzy
	}
	if s.HasTFIDF {
		sumWeight += w.TFIDF
		sumScore += w.TFIDF * s.TFIDF
	}
	if s.HasEmbed {
		sumWeight += w.Embedding
		sumScore += w.Embedding * s.Embedding
	}
	if sumWeight == 0 {
		return 0, s.Fuzzy
	}
	return sumScore / sumWeight, s.Fuzzy
}
