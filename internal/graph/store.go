package graph

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taste-memory-kernel/internal/blob"
	"github.com/taste-memory-kernel/internal/jsonx"
)

// Validation failures surfaced to callers. Policy outcomes (eviction
// skips, duplicate rejections) are plain boolean/nil results instead.
var (
	ErrEmptyContent        = errors.New("node content cannot be empty")
	ErrNodeNotFound        = errors.New("node not found")
	ErrEdgeEndpointMissing = errors.New("edge endpoint does not exist")
	ErrSelfLoop            = errors.New("edge source and target must differ")
)

// Default confidence adjustment deltas. Demotion is deliberately twice
// reinforcement: mistakes should be unlearned faster than trust is built.
const (
	DefaultReinforceDelta = 0.05
	DefaultDemoteDelta    = 0.10
)

// Store is one user's in-memory taste graph. All mutations go through
// Store methods so the edge indexes and node invariants stay consistent.
type Store struct {
	userID string
	blobs  blob.Store
	logger *zap.Logger

	mu       sync.RWMutex
	nodes    map[string]*MemoryNode
	edges    map[string]*MemoryEdge
	outgoing map[string][]string // node id -> edge ids where node is source
	incoming map[string][]string // node id -> edge ids where node is target
}

// NewStore creates an empty store for one user. blobs may be nil for
// purely in-memory use; Persist/Load then become logged no-ops.
func NewStore(userID string, blobs blob.Store, logger *zap.Logger) *Store {
	return &Store{
		userID:   userID,
		blobs:    blobs,
		logger:   logger.Named("graph").With(zap.String("user", userID)),
		nodes:    make(map[string]*MemoryNode),
		edges:    make(map[string]*MemoryEdge),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
	}
}

// UserID returns the owning user's id.
func (s *Store) UserID() string { return s.userID }

// NodeInput carries the caller-settable fields for a new node.
type NodeInput struct {
	Kind       NodeKind
	Content    string
	Confidence float64
	OwnerID    string
	IsGlobal   bool
	Language   string
	Tags       []string
}

// AddNode creates a node with a fresh id and timestamps. Fails with
// ErrEmptyContent when the content is blank.
func (s *Store) AddNode(in NodeInput) (*MemoryNode, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, ErrEmptyContent
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	node := &MemoryNode{
		ID:         uuid.NewString(),
		Kind:       in.Kind,
		Content:    in.Content,
		Confidence: clamp01(in.Confidence),
		OwnerID:    in.OwnerID,
		IsGlobal:   in.IsGlobal,
		Language:   in.Language,
		Tags:       in.Tags,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if node.OwnerID == "" {
		node.OwnerID = s.userID
	}
	s.nodes[node.ID] = node
	return node, nil
}

// NodeUpdate carries optional field changes for UpdateNode. Nil fields
// are left untouched.
type NodeUpdate struct {
	Content    *string
	Confidence *float64
	Language   *string
	Tags       []string
	IsGlobal   *bool
}

// UpdateNode merges the given fields into the node and refreshes
// UpdatedAt. Returns (nil, false) when the id is unknown.
func (s *Store) UpdateNode(id string, upd NodeUpdate) (*MemoryNode, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.nodes[id]
	if !ok {
		return nil, false
	}
	if upd.Content != nil && strings.TrimSpace(*upd.Content) != "" {
		node.Content = *upd.Content
	}
	if upd.Confidence != nil {
		node.Confidence = clamp01(*upd.Confidence)
	}
	if upd.Language != nil {
		node.Language = *upd.Language
	}
	if upd.Tags != nil {
		node.Tags = upd.Tags
	}
	if upd.IsGlobal != nil {
		node.IsGlobal = *upd.IsGlobal
	}
	node.UpdatedAt = time.Now()
	return node, true
}

// RemoveNode deletes the node and every edge touching it, in one step.
// Returns whether a node existed under the id.
func (s *Store) RemoveNode(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[id]; !ok {
		return false
	}
	for _, edgeID := range append(append([]string{}, s.outgoing[id]...), s.incoming[id]...) {
		s.deleteEdgeLocked(edgeID)
	}
	delete(s.nodes, id)
	delete(s.outgoing, id)
	delete(s.incoming, id)
	return true
}

// Get returns the node with the given id.
func (s *Store) Get(id string) (*MemoryNode, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	node, ok := s.nodes[id]
	return node, ok
}

// Nodes returns all nodes in the store.
func (s *Store) Nodes() []*MemoryNode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*MemoryNode, 0, len(s.nodes))
	for _, n := range s.nodes {
		out = append(out, n)
	}
	return out
}

// Len returns the number of nodes in the store.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// EdgeInput carries the caller-settable fields for a new edge.
type EdgeInput struct {
	SourceID string
	TargetID string
	Relation Relation
	Strength float64
}

// AddEdge inserts a directed edge. Fails when either endpoint is
// unknown; self-loops are rejected so contradiction chains stay acyclic
// at the single-node level.
func (s *Store) AddEdge(in EdgeInput) (*MemoryEdge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if in.SourceID == in.TargetID {
		return nil, ErrSelfLoop
	}
	if _, ok := s.nodes[in.SourceID]; !ok {
		return nil, fmt.Errorf("source %s: %w", in.SourceID, ErrEdgeEndpointMissing)
	}
	if _, ok := s.nodes[in.TargetID]; !ok {
		return nil, fmt.Errorf("target %s: %w", in.TargetID, ErrEdgeEndpointMissing)
	}

	edge := &MemoryEdge{
		ID:        uuid.NewString(),
		SourceID:  in.SourceID,
		TargetID:  in.TargetID,
		Relation:  in.Relation,
		Strength:  clamp01(in.Strength),
		CreatedAt: time.Now(),
	}
	s.indexEdgeLocked(edge)
	return edge, nil
}

// RemoveEdge deletes a single edge. Returns whether it existed.
func (s *Store) RemoveEdge(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.edges[id]; !ok {
		return false
	}
	s.deleteEdgeLocked(id)
	return true
}

func (s *Store) indexEdgeLocked(edge *MemoryEdge) {
	s.edges[edge.ID] = edge
	s.outgoing[edge.SourceID] = append(s.outgoing[edge.SourceID], edge.ID)
	s.incoming[edge.TargetID] = append(s.incoming[edge.TargetID], edge.ID)
}

func (s *Store) deleteEdgeLocked(id string) {
	edge, ok := s.edges[id]
	if !ok {
		return
	}
	delete(s.edges, id)
	s.outgoing[edge.SourceID] = removeString(s.outgoing[edge.SourceID], id)
	s.incoming[edge.TargetID] = removeString(s.incoming[edge.TargetID], id)
}

// Reinforce raises a node's confidence by delta (clamped at 1.0) and
// refreshes UpdatedAt. Pass DefaultReinforceDelta for the standard step.
func (s *Store) Reinforce(id string, delta float64) (*MemoryNode, bool) {
	return s.adjustConfidence(id, delta)
}

// Demote lowers a node's confidence by delta (clamped at 0.0).
func (s *Store) Demote(id string, delta float64) (*MemoryNode, bool) {
	return s.adjustConfidence(id, -delta)
}

func (s *Store) adjustConfidence(id string, delta float64) (*MemoryNode, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.nodes[id]
	if !ok {
		return nil, false
	}
	node.Confidence = clamp01(node.Confidence + delta)
	node.UpdatedAt = time.Now()
	return node, true
}

// IncrementHelpful bumps the node's helpfulness counter. No upper bound.
func (s *Store) IncrementHelpful(id string) (*MemoryNode, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.nodes[id]
	if !ok {
		return nil, false
	}
	node.HelpfulCount++
	node.UpdatedAt = time.Now()
	return node, true
}

// Stats returns node/edge counts, per-kind counts, and the mean
// confidence rounded to two decimals.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{
		NodeCount:   len(s.nodes),
		EdgeCount:   len(s.edges),
		NodesByKind: make(map[NodeKind]int),
	}
	var sum float64
	for _, n := range s.nodes {
		st.NodesByKind[n.Kind]++
		sum += n.Confidence
	}
	if st.NodeCount > 0 {
		st.MeanConfidence = math.Round(sum/float64(st.NodeCount)*100) / 100
	}
	return st
}

// Persist writes the full node and edge collections to the blob store.
func (s *Store) Persist() error {
	if s.blobs == nil {
		return nil
	}

	s.mu.RLock()
	snap := snapshot{UserID: s.userID}
	for _, n := range s.nodes {
		snap.Nodes = append(snap.Nodes, n)
	}
	for _, e := range s.edges {
		snap.Edges = append(snap.Edges, e)
	}
	s.mu.RUnlock()

	data, err := jsonx.MarshalIndent(snap)
	if err != nil {
		return fmt.Errorf("encode graph snapshot: %w", err)
	}
	if err := s.blobs.Write(SnapshotPath(s.userID), data); err != nil {
		return fmt.Errorf("persist graph: %w", err)
	}
	s.logger.Debug("persisted graph snapshot",
		zap.Int("nodes", len(snap.Nodes)),
		zap.Int("edges", len(snap.Edges)))
	return nil
}

// Load replaces the in-memory state with the persisted snapshot and
// rebuilds both adjacency indexes from the deserialized edges. A missing
// or corrupt blob is a logged no-op; Load reports whether a snapshot was
// restored.
func (s *Store) Load() bool {
	if s.blobs == nil {
		return false
	}

	data, found, err := s.blobs.Read(SnapshotPath(s.userID))
	if err != nil {
		s.logger.Warn("failed to read graph snapshot", zap.Error(err))
		return false
	}
	if !found {
		return false
	}

	var snap snapshot
	if err := jsonx.Unmarshal(data, &snap); err != nil {
		s.logger.Warn("corrupt graph snapshot, keeping in-memory state", zap.Error(err))
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nodes = make(map[string]*MemoryNode, len(snap.Nodes))
	s.edges = make(map[string]*MemoryEdge, len(snap.Edges))
	s.outgoing = make(map[string][]string)
	s.incoming = make(map[string][]string)
	for _, n := range snap.Nodes {
		s.nodes[n.ID] = n
	}
	for _, e := range snap.Edges {
		// Drop edges whose endpoints did not survive; the no-orphans
		// invariant must hold after load as well.
		if _, ok := s.nodes[e.SourceID]; !ok {
			continue
		}
		if _, ok := s.nodes[e.TargetID]; !ok {
			continue
		}
		s.indexEdgeLocked(e)
	}
	s.logger.Info("loaded graph snapshot",
		zap.Int("nodes", len(s.nodes)),
		zap.Int("edges", len(s.edges)))
	return true
}

// SnapshotPath derives the blob path for a user's graph snapshot.
func SnapshotPath(userID string) string {
	return "vaults/" + userID + ".json"
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func removeString(list []string, v string) []string {
	for i, s := range list {
		if s == v {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
