package vault

import (
	"regexp"
	"strings"

	"github.com/taste-memory-kernel/internal/graph"
)

var (
	neverRe  = regexp.MustCompile(`(?i)\bnever\s+(\w+)`)
	alwaysRe = regexp.MustCompile(`(?i)\balways\s+(\w+)`)
	// "should not" must be matched before plain "should".
	shouldNotRe = regexp.MustCompile(`(?i)\bshould\s+not\s+(.+)`)
	shouldRe    = regexp.MustCompile(`(?i)\bshould\s+(.+)`)
)

const (
	// Residual should-phrases this similar are treated as the same action.
	actionSimilarityThreshold = 0.7
	// New content this similar to an existing node inherits that node's
	// contradiction neighbors as conflicts.
	transitiveSimilarityThreshold = 0.8
)

// DetectConflicts scans existing nodes for statements the candidate
// content contradicts. Two lexical heuristics ("never X" against
// "always X" on the same word, "should" against "should not" over
// near-identical action phrases) plus a transitive check through
// already-recorded contradicts edges.
func (m *Manager) DetectConflicts(content string, existing []*graph.MemoryNode) []*graph.MemoryNode {
	seen := make(map[string]bool)
	var conflicts []*graph.MemoryNode
	add := func(n *graph.MemoryNode) {
		if !seen[n.ID] {
			seen[n.ID] = true
			conflicts = append(conflicts, n)
		}
	}

	for _, node := range existing {
		if polarityConflict(content, node.Content) || imperativeConflict(content, node.Content) {
			add(node)
		}
	}

	// Content close enough to an existing node also conflicts with
	// whatever that node is already known to contradict.
	for _, node := range existing {
		if jaccard(wordSet(content), wordSet(node.Content)) <= transitiveSimilarityThreshold {
			continue
		}
		for _, neighbor := range m.store.Related(node.ID, graph.RelationContradicts) {
			add(neighbor)
		}
	}
	return conflicts
}

// polarityConflict reports a "never X" vs "always X" clash on the same
// captured word, in either direction.
func polarityConflict(a, b string) bool {
	return sharesCapture(neverRe, a, alwaysRe, b) || sharesCapture(alwaysRe, a, neverRe, b)
}

func sharesCapture(reA *regexp.Regexp, a string, reB *regexp.Regexp, b string) bool {
	capA := reA.FindStringSubmatch(a)
	capB := reB.FindStringSubmatch(b)
	if capA == nil || capB == nil {
		return false
	}
	return strings.EqualFold(capA[1], capB[1])
}

// imperativeConflict reports a "should" vs "should not" clash where the
// residual action phrases are near-identical.
func imperativeConflict(a, b string) bool {
	posA, negA := shouldPhrases(a)
	posB, negB := shouldPhrases(b)

	if posA != "" && negB != "" &&
		jaccard(wordSet(posA), wordSet(negB)) > actionSimilarityThreshold {
		return true
	}
	if negA != "" && posB != "" &&
		jaccard(wordSet(negA), wordSet(posB)) > actionSimilarityThreshold {
		return true
	}
	return false
}

// shouldPhrases extracts the action phrase following "should" and
// "should not" respectively; at most one of each per statement.
func shouldPhrases(text string) (positive, negative string) {
	if m := shouldNotRe.FindStringSubmatch(text); m != nil {
		negative = m[1]
		return "", negative
	}
	if m := shouldRe.FindStringSubmatch(text); m != nil {
		positive = m[1]
	}
	return positive, ""
}

// wordSet tokenizes on whitespace and punctuation, lowercased.
func wordSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range nonAlnum.Split(strings.ToLower(text), -1) {
		if tok != "" {
			set[tok] = true
		}
	}
	return set
}

// jaccard computes set similarity; two empty sets are identical.
func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for tok := range a {
		if b[tok] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}
