package graph

import "strings"

// ByKind returns all nodes of the given kind.
func (s *Store) ByKind(kind NodeKind) []*MemoryNode {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*MemoryNode
	for _, n := range s.nodes {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

// HighConfidence returns all nodes at or above the confidence threshold.
func (s *Store) HighConfidence(threshold float64) []*MemoryNode {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*MemoryNode
	for _, n := range s.nodes {
		if n.Confidence >= threshold {
			out = append(out, n)
		}
	}
	return out
}

// ByTag returns all nodes carrying the given tag.
func (s *Store) ByTag(tag string) []*MemoryNode {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*MemoryNode
	for _, n := range s.nodes {
		if n.HasTag(tag) {
			out = append(out, n)
		}
	}
	return out
}

// Search returns all nodes whose content contains the query,
// case-insensitively. Full scan; stores are bounded by tier capacity.
func (s *Store) Search(query string) []*MemoryNode {
	q := strings.ToLower(query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*MemoryNode
	for _, n := range s.nodes {
		if strings.Contains(strings.ToLower(n.Content), q) {
			out = append(out, n)
		}
	}
	return out
}

// EdgesFrom returns the edges whose source is the given node.
func (s *Store) EdgesFrom(id string) []*MemoryEdge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.edgesByIDsLocked(s.outgoing[id])
}

// EdgesTo returns the edges whose target is the given node.
func (s *Store) EdgesTo(id string) []*MemoryEdge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.edgesByIDsLocked(s.incoming[id])
}

func (s *Store) edgesByIDsLocked(ids []string) []*MemoryEdge {
	out := make([]*MemoryEdge, 0, len(ids))
	for _, id := range ids {
		if e, ok := s.edges[id]; ok {
			out = append(out, e)
		}
	}
	return out
}

// Related returns the neighbors of a node across both edge directions,
// optionally filtered by relation. Pass "" to include every relation.
func (s *Store) Related(id string, relation Relation) []*MemoryNode {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	var out []*MemoryNode
	appendNeighbor := func(neighborID string) {
		if seen[neighborID] {
			return
		}
		if n, ok := s.nodes[neighborID]; ok {
			seen[neighborID] = true
			out = append(out, n)
		}
	}

	for _, edgeID := range s.outgoing[id] {
		e := s.edges[edgeID]
		if relation == "" || e.Relation == relation {
			appendNeighbor(e.TargetID)
		}
	}
	for _, edgeID := range s.incoming[id] {
		e := s.edges[edgeID]
		if relation == "" || e.Relation == relation {
			appendNeighbor(e.SourceID)
		}
	}
	return out
}
