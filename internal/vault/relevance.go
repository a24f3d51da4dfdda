package vault

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/taste-memory-kernel/internal/graph"
)

// Keyword overlap dominates the relevance score, confidence acts as a
// strong prior, and helpfulness contributes logarithmically so a single
// heavily-reinforced node cannot drown out topical matches.
const (
	keywordWeight    = 10.0
	confidenceWeight = 20.0
	helpfulWeight    = 5.0
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "all": true, "can": true, "use": true,
	"with": true, "this": true, "that": true, "from": true, "have": true,
	"was": true, "when": true, "what": true, "how": true, "its": true,
	"will": true, "should": true, "would": true, "could": true,
	"there": true, "their": true, "then": true, "them": true,
	"been": true, "being": true, "into": true, "only": true,
	"some": true, "such": true, "than": true, "very": true,
	"your": true, "about": true, "also": true, "each": true,
}

// tokenize lowercases, strips non-alphanumeric characters, and keeps
// tokens longer than two characters that are not stop words.
func tokenize(text string) []string {
	raw := nonAlnum.Split(strings.ToLower(text), -1)
	out := make([]string, 0, len(raw))
	for _, tok := range raw {
		if len(tok) <= 2 || stopWords[tok] {
			continue
		}
		out = append(out, tok)
	}
	return out
}

func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range tokenize(text) {
		set[tok] = true
	}
	return set
}

type scoredNode struct {
	node  *graph.MemoryNode
	score float64
}

// RelevantPatterns scores every node against the agent's current
// context and returns the top limit nodes, best first.
func (m *Manager) RelevantPatterns(context string, limit int) []*graph.MemoryNode {
	keywords := tokenSet(context)

	nodes := m.store.Nodes()
	scored := make([]scoredNode, 0, len(nodes))
	for _, n := range nodes {
		overlap := 0
		for tok := range tokenSet(n.Content) {
			if keywords[tok] {
				overlap++
			}
		}
		score := keywordWeight*float64(overlap) +
			confidenceWeight*n.Confidence +
			helpfulWeight*math.Log(float64(n.HelpfulCount)+1)
		scored = append(scored, scoredNode{node: n, score: score})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].node.ID < scored[j].node.ID
	})

	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	out := make([]*graph.MemoryNode, len(scored))
	for i, s := range scored {
		out[i] = s.node
	}
	return out
}
