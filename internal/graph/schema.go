// Package graph implements the per-user taste memory graph: typed
// memory units connected by typed, weighted relations, with
// confidence-weighted retrieval and blob-backed persistence.
package graph

import "time"

// NodeKind classifies a unit of learned knowledge.
type NodeKind string

const (
	KindStrategy   NodeKind = "strategy"
	KindMistake    NodeKind = "mistake"
	KindPreference NodeKind = "preference"
	KindPattern    NodeKind = "pattern"
	KindDecision   NodeKind = "decision"
)

// Relation classifies a directed edge between two memory nodes.
type Relation string

const (
	RelationSupports    Relation = "supports"
	RelationContradicts Relation = "contradicts"
	RelationRefines     Relation = "refines"
	RelationReplaces    Relation = "replaces"
	RelationDependsOn   Relation = "depends_on"
)

// MemoryNode is a single learned unit of knowledge. Confidence stays
// clamped to [0,1] and HelpfulCount never goes negative; UpdatedAt
// advances on every mutation.
type MemoryNode struct {
	ID                 string    `json:"id"`
	Kind               NodeKind  `json:"kind"`
	Content            string    `json:"content"`
	Confidence         float64   `json:"confidence"`
	HelpfulCount       int       `json:"helpful_count"`
	OwnerID            string    `json:"owner_id,omitempty"`
	IsGlobal           bool      `json:"is_global,omitempty"`
	GlobalSuccessCount int       `json:"global_success_count,omitempty"`
	Language           string    `json:"language,omitempty"`
	Tags               []string  `json:"tags,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// HasTag reports whether the node carries the given tag.
func (n *MemoryNode) HasTag(tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// MemoryEdge is a directed, typed relation between two nodes in the
// same store. Both endpoints must exist when the edge is created and
// every edge is removed when either endpoint is removed.
type MemoryEdge struct {
	ID        string    `json:"id"`
	SourceID  string    `json:"source_id"`
	TargetID  string    `json:"target_id"`
	Relation  Relation  `json:"relation"`
	Strength  float64   `json:"strength"`
	CreatedAt time.Time `json:"created_at"`
}

// Stats summarizes a store's contents.
type Stats struct {
	NodeCount      int              `json:"node_count"`
	EdgeCount      int              `json:"edge_count"`
	NodesByKind    map[NodeKind]int `json:"nodes_by_kind"`
	MeanConfidence float64          `json:"mean_confidence"`
}

// snapshot is the persisted on-disk form of a store.
type snapshot struct {
	UserID string        `json:"userId"`
	Nodes  []*MemoryNode `json:"nodes"`
	Edges  []*MemoryEdge `json:"edges"`
}
