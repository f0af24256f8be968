package rag

import (
	"sort"
	"strings"
	"unicode"
)

const (
	// vectorWeight blends the vector score into the composite as a tiebreaker;
	// exact term overlap dominates ranking order.
	vectorWeight = 0.1
	// primaryFileBonus boosts chunks from the intent's canonical document.
	primaryFileBonus = 1.0
)

// Rerank reorders candidates by a composite of token overlap with the
// question, a small vector-score contribution and a bonus for the intent's
// primary file. The sort is stable: ties keep their vector-score order.
// primaryFile may be empty when no intent is active.
func Rerank(candidates []SearchCandidate, question, primaryFile string) []SearchCandidate {
	if len(candidates) == 0 {
		return candidates
	}

	questionTokens := tokenSet(question)

	reranked := make([]SearchCandidate, len(candidates))
	copy(reranked, candidates)

	for i := range reranked {
		overlap := countOverlap(questionTokens, tokenSet(reranked[i].Text))
		score := float64(overlap) + vectorWeight*float64(reranked[i].VectorScore)
		if primaryFile != "" && reranked[i].FilePath == primaryFile {
			score += primaryFileBonus
		}
		reranked[i].LexicalOverlap = overlap
		reranked[i].RerankScore = score
	}

	sort.SliceStable(reranked, func(i, j int) bool {
		return reranked[i].RerankScore > reranked[j].RerankScore
	})

	return reranked
}

// tokenSet tokenizes text by lower-casing and splitting on anything that is
// not a letter or digit. Purely numeric tokens also register their
// leading-zero-stripped form as an alias, so "05" and "5" count as the same
// token across phone and date fragments.
func tokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	if text == "" {
		return set
	}

	var builder strings.Builder
	builder.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			builder.WriteRune(r)
		} else {
			builder.WriteRune(' ')
		}
	}

	for _, token := range strings.Fields(builder.String()) {
		set[token] = struct{}{}
		if alias, ok := numericAlias(token); ok {
			set[alias] = struct{}{}
		}
	}
	return set
}

// numericAlias returns the leading-zero-stripped form of a purely numeric
// token, when stripping changes it.
func numericAlias(token string) (string, bool) {
	for _, r := range token {
		if !unicode.IsDigit(r) {
			return "", false
		}
	}
	stripped := strings.TrimLeft(token, "0")
	if stripped == "" {
		stripped = "0"
	}
	if stripped == token {
		return "", false
	}
	return stripped, true
}

// countOverlap counts tokens present in both sets.
func countOverlap(query, chunk map[string]struct{}) int {
	count := 0
	for token := range query {
		if _, ok := chunk[token]; ok {
			count++
		}
	}
	return count
}
