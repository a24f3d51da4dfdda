package wisdom

import (
	"strings"
	"unicode"
)

// SimilarityThreshold is the Jaccard similarity at which two contents
// count as the same pattern for lexical deduplication.
const SimilarityThreshold = 0.7

// wordTokens splits on whitespace and punctuation, lowercased.
func wordTokens(text string) map[string]bool {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return set
}

// IsSimilar reports whether two contents exceed the Jaccard similarity
// threshold over their word sets. Two empty contents are similar; an
// empty content is never similar to a non-empty one.
func IsSimilar(a, b string, threshold float64) bool {
	setA, setB := wordTokens(a), wordTokens(b)
	if len(setA) == 0 && len(setB) == 0 {
		return true
	}
	if len(setA) == 0 || len(setB) == 0 {
		return false
	}

	intersection := 0
	for tok := range setA {
		if setB[tok] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection)/float64(union) >= threshold
}

// FindDuplicates pairs each candidate against the existing canonical
// contents; the first matching pattern wins. Returns candidate node id
// -> matched pattern id.
func FindDuplicates(candidates []GraphNode, existing []*GlobalPattern, threshold float64) map[string]string {
	matches := make(map[string]string)
	for _, cand := range candidates {
		for _, pattern := range existing {
			if IsSimilar(cand.Content, pattern.CanonicalContent, threshold) {
				matches[cand.ID] = pattern.ID
				break
			}
		}
	}
	return matches
}
