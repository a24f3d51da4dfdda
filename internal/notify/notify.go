// Package notify carries the best-effort side channels: the external
// learning hook fired by vault mutations and the promotion events
// published by the wisdom pipeline. Failures on these paths are logged
// at the call site and never affect the primary operation.
package notify

import "github.com/taste-memory-kernel/internal/graph"

// LearnHook receives vault mutations after they commit. Implementations
// must tolerate being called on every learn/reinforce; errors are
// logged by the caller and dropped.
type LearnHook interface {
	OnLearn(node *graph.MemoryNode) error
	OnReinforce(nodeID string, node *graph.MemoryNode) error
}

// PromotionEvent describes a pattern accepted into the global corpus.
type PromotionEvent struct {
	PatternID        string   `json:"pattern_id"`
	CanonicalContent string   `json:"canonical_content"`
	SuccessScore     float64  `json:"success_score"`
	UserDiversity    int      `json:"user_diversity"`
	Language         string   `json:"language,omitempty"`
	Tags             []string `json:"tags,omitempty"`
}
