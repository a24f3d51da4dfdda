package vault

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/taste-memory-kernel/internal/graph"
	"github.com/taste-memory-kernel/internal/notify"
)

// ConflictEdgeStrength is assigned to the contradicts edge created when
// a learned node conflicts with an existing one.
const ConflictEdgeStrength = 0.9

// Manager wraps one user's graph store with tier policy. It is the only
// public surface peer subsystems use to mutate a user's taste memory.
type Manager struct {
	store  *graph.Store
	tier   TierConfig
	hook   notify.LearnHook
	logger *zap.Logger

	optInGlobal bool
}

// NewManager creates a vault over an existing store. hook may be nil.
func NewManager(store *graph.Store, tier TierConfig, hook notify.LearnHook, logger *zap.Logger) *Manager {
	return &Manager{
		store:  store,
		tier:   tier,
		hook:   hook,
		logger: logger.Named("vault").With(zap.String("user", store.UserID())),
	}
}

// Store exposes the underlying graph store for read-side queries.
func (m *Manager) Store() *graph.Store { return m.store }

// Tier returns the vault's tier configuration.
func (m *Manager) Tier() TierConfig { return m.tier }

// UserID returns the owning user's id.
func (m *Manager) UserID() string { return m.store.UserID() }

// SetGlobalOptIn records the user's choice to share high-confidence
// knowledge with the global corpus. Rejected for tiers without the
// entitlement.
func (m *Manager) SetGlobalOptIn(optIn bool) {
	if optIn && !m.tier.CanOptIntoGlobal {
		m.logger.Warn("global opt-in refused for tier", zap.String("tier", string(m.tier.Tier)))
		return
	}
	m.optInGlobal = optIn
}

// GlobalOptIn reports whether the vault shares into the global corpus.
func (m *Manager) GlobalOptIn() bool { return m.optInGlobal }

// LearnOptions carries the optional fields for Learn.
type LearnOptions struct {
	Confidence *float64
	Language   string
	Tags       []string
}

// Learn records a new unit of knowledge. Existing nodes are scanned for
// conflicts first; each detected conflict earns a contradicts edge from
// the new node. Free-tier vaults at capacity evict the single
// lowest-confidence node below the eviction ceiling before inserting;
// if every node is at or above the ceiling the insert proceeds anyway.
func (m *Manager) Learn(kind graph.NodeKind, content string, opts LearnOptions) (*graph.MemoryNode, error) {
	conflicts := m.DetectConflicts(content, m.store.Nodes())

	evictedID := m.evictIfNeeded()

	confidence := DefaultConfidence
	if opts.Confidence != nil {
		confidence = *opts.Confidence
	}

	node, err := m.store.AddNode(graph.NodeInput{
		Kind:       kind,
		Content:    content,
		Confidence: confidence,
		Language:   opts.Language,
		Tags:       opts.Tags,
	})
	if err != nil {
		return nil, err
	}

	for _, c := range conflicts {
		if c.ID == evictedID {
			continue
		}
		if _, err := m.store.AddEdge(graph.EdgeInput{
			SourceID: node.ID,
			TargetID: c.ID,
			Relation: graph.RelationContradicts,
			Strength: ConflictEdgeStrength,
		}); err != nil {
			m.logger.Warn("failed to record conflict edge",
				zap.String("target", c.ID), zap.Error(err))
			continue
		}
		m.logger.Info("conflict detected",
			zap.String("node", node.ID), zap.String("contradicts", c.ID))
	}

	if m.hook != nil {
		if err := m.hook.OnLearn(node); err != nil {
			m.logger.Warn("learn hook failed", zap.Error(err))
		}
	}
	return node, nil
}

// evictIfNeeded enforces the free-tier soft capacity cap. Returns the
// evicted node id, or "" when nothing was evicted.
func (m *Manager) evictIfNeeded() string {
	if m.tier.Tier != TierFree || m.tier.MaxNodes <= 0 {
		return ""
	}
	if m.store.Len() < m.tier.MaxNodes {
		return ""
	}

	var victim *graph.MemoryNode
	for _, n := range m.store.Nodes() {
		if n.Confidence >= EvictionCeiling {
			continue
		}
		if victim == nil || n.Confidence < victim.Confidence {
			victim = n
		}
	}
	if victim == nil {
		// Everything is high-trust; soft limit, let the store grow.
		return ""
	}

	m.store.RemoveNode(victim.ID)
	m.logger.Info("evicted low-confidence node",
		zap.String("node", victim.ID),
		zap.Float64("confidence", victim.Confidence))
	return victim.ID
}

// Forget removes a node and all edges touching it. Returns whether the
// node existed.
func (m *Manager) Forget(id string) bool {
	return m.store.RemoveNode(id)
}

// Reinforce raises a node's confidence and increments its helpfulness
// together. Fails when the node does not exist.
func (m *Manager) Reinforce(id string) (*graph.MemoryNode, error) {
	node, ok := m.store.Reinforce(id, graph.DefaultReinforceDelta)
	if !ok {
		return nil, fmt.Errorf("reinforce %s: %w", id, graph.ErrNodeNotFound)
	}
	m.store.IncrementHelpful(id)

	if m.hook != nil {
		if err := m.hook.OnReinforce(id, node); err != nil {
			m.logger.Warn("reinforce hook failed", zap.Error(err))
		}
	}
	return node, nil
}

// Demote lowers a node's confidence by the standard demotion step.
func (m *Manager) Demote(id string) (*graph.MemoryNode, error) {
	node, ok := m.store.Demote(id, graph.DefaultDemoteDelta)
	if !ok {
		return nil, fmt.Errorf("demote %s: %w", id, graph.ErrNodeNotFound)
	}
	return node, nil
}

// Summary aggregates the vault for dashboards and agent context.
type Summary struct {
	NodeCount      int                    `json:"node_count"`
	EdgeCount      int                    `json:"edge_count"`
	MeanConfidence float64                `json:"mean_confidence"`
	NodesByKind    map[graph.NodeKind]int `json:"nodes_by_kind"`
	TopNodes       []*graph.MemoryNode    `json:"top_nodes"`
}

// Summarize returns counts plus the top five nodes ranked by
// confidence × (helpfulCount + 1).
func (m *Manager) Summarize() Summary {
	stats := m.store.Stats()

	nodes := m.store.Nodes()
	sort.Slice(nodes, func(i, j int) bool {
		si := nodes[i].Confidence * float64(nodes[i].HelpfulCount+1)
		sj := nodes[j].Confidence * float64(nodes[j].HelpfulCount+1)
		if si != sj {
			return si > sj
		}
		return nodes[i].ID < nodes[j].ID
	})
	if len(nodes) > 5 {
		nodes = nodes[:5]
	}

	return Summary{
		NodeCount:      stats.NodeCount,
		EdgeCount:      stats.EdgeCount,
		MeanConfidence: stats.MeanConfidence,
		NodesByKind:    stats.NodesByKind,
		TopNodes:       nodes,
	}
}

// Persist writes the vault's graph snapshot.
func (m *Manager) Persist() error { return m.store.Persist() }

// Load restores the vault's graph snapshot; reports whether one existed.
func (m *Manager) Load() bool { return m.store.Load() }
