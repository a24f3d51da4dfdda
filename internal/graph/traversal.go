package graph

// Traverse runs a breadth-first expansion from startID, following edges
// in both directions up to depth levels, optionally restricted to one
// relation. Each node is visited at most once and nodes come back in
// BFS discovery order; the start node itself is excluded. An unknown
// start id yields an empty result.
func (s *Store) Traverse(startID string, depth int, relation Relation) []*MemoryNode {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.nodes[startID]; !ok || depth <= 0 {
		return nil
	}

	visited := map[string]bool{startID: true}
	frontier := []string{startID}
	var discovered []*MemoryNode

	for level := 0; level < depth && len(frontier) > 0; level++ {
		var next []string
		for _, id := range frontier {
			for _, neighborID := range s.neighborsLocked(id, relation) {
				if visited[neighborID] {
					continue
				}
				visited[neighborID] = true
				discovered = append(discovered, s.nodes[neighborID])
				next = append(next, neighborID)
			}
		}
		frontier = next
	}
	return discovered
}

// neighborsLocked returns the ids adjacent to a node across both edge
// directions; reachability does not distinguish outgoing from incoming.
func (s *Store) neighborsLocked(id string, relation Relation) []string {
	var out []string
	for _, edgeID := range s.outgoing[id] {
		e := s.edges[edgeID]
		if relation == "" || e.Relation == relation {
			out = append(out, e.TargetID)
		}
	}
	for _, edgeID := range s.incoming[id] {
		e := s.edges[edgeID]
		if relation == "" || e.Relation == relation {
			out = append(out, e.SourceID)
		}
	}
	return out
}
