// Package wisdom implements the cross-user global wisdom pipeline:
// anonymization, deduplication, scoring, per-user promotion throttling,
// moderation, and two-tier distribution of shared taste patterns.
package wisdom

import (
	"encoding/hex"
	"time"

	"golang.org/x/crypto/blake2b"
)

// GraphNode is the flat promotion input. It is deliberately decoupled
// from any vault instance: the pipeline outlives every contributing
// vault. HelpfulCount carries the contributing node's normalized
// confidence in [0,1], not the raw helpfulness counter.
type GraphNode struct {
	ID           string    `json:"id"`
	Content      string    `json:"content"`
	HelpfulCount float64   `json:"helpful_count"`
	CreatedAt    time.Time `json:"created_at"`
	Tags         []string  `json:"tags,omitempty"`
	Language     string    `json:"language,omitempty"`
}

// GlobalPattern is an anonymized, aggregated unit published into the
// shared corpus. Patterns are never physically deleted; moderation only
// deactivates them, terminally.
type GlobalPattern struct {
	ID               string    `json:"id"`
	CanonicalContent string    `json:"canonical_content"`
	OriginalNodeIDs  []string  `json:"original_node_ids"`
	Contributors     []string  `json:"contributors"` // hashed user ids, distinct
	SuccessScore     float64   `json:"success_score"`
	UserDiversity    int       `json:"user_diversity"`
	LastPromotedAt   time.Time `json:"last_promoted_at"`
	Language         string    `json:"language,omitempty"`
	Tags             []string  `json:"tags,omitempty"`
	PromotionCount   int       `json:"promotion_count"`
	HarmReports      int       `json:"harm_reports"`
	IsActive         bool      `json:"is_active"`
}

// hasContributor reports whether the hashed contributor is recorded.
func (p *GlobalPattern) hasContributor(hash string) bool {
	for _, c := range p.Contributors {
		if c == hash {
			return true
		}
	}
	return false
}

// WeeklyPromotionLog is the per-user, per-week promotion counter used
// for anti-gaming. Week rollover resets it implicitly: a new week keys
// a new entry.
type WeeklyPromotionLog struct {
	UserID    string    `json:"user_id"`
	WeekStart time.Time `json:"week_start"`
	Count     int       `json:"count"`
}

// VaultSnapshot is one opt-in decision plus the flattened nodes a vault
// offers for promotion.
type VaultSnapshot struct {
	UserID string
	OptIn  bool
	Nodes  []GraphNode
}

// Candidate pairs a promotable node with its contributing user.
type Candidate struct {
	UserID string
	Node   GraphNode
}

// HashContributor derives the anonymized contributor id recorded on
// global patterns. Raw user ids never enter the shared corpus.
func HashContributor(userID string) string {
	sum := blake2b.Sum256([]byte("contributor:" + userID))
	return hex.EncodeToString(sum[:8])
}
