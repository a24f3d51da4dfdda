package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraverseBothDirections(t *testing.T) {
	s := newTestStore(t)
	a := mustAdd(t, s, "a", 0.5)
	b := mustAdd(t, s, "b", 0.5)
	c := mustAdd(t, s, "c", 0.5)
	d := mustAdd(t, s, "d", 0.5)
	e := mustAdd(t, s, "e", 0.5)

	// a -> b -> c -> d, plus e -> a so depth one must also walk the
	// incoming direction.
	for _, pair := range [][2]string{{a.ID, b.ID}, {b.ID, c.ID}, {c.ID, d.ID}, {e.ID, a.ID}} {
		_, err := s.AddEdge(EdgeInput{SourceID: pair[0], TargetID: pair[1], Relation: RelationSupports})
		require.NoError(t, err)
	}

	got := s.Traverse(a.ID, 1, "")
	assert.Equal(t, []string{b.ID, e.ID}, nodeIDs(got))

	got = s.Traverse(a.ID, 2, "")
	assert.Equal(t, []string{b.ID, e.ID, c.ID}, nodeIDs(got))

	got = s.Traverse(a.ID, 10, "")
	assert.Equal(t, []string{b.ID, e.ID, c.ID, d.ID}, nodeIDs(got))
}

func TestTraverseVisitsOnce(t *testing.T) {
	s := newTestStore(t)
	a := mustAdd(t, s, "a", 0.5)
	b := mustAdd(t, s, "b", 0.5)
	c := mustAdd(t, s, "c", 0.5)

	// Cycle a -> b -> c -> a.
	for _, pair := range [][2]string{{a.ID, b.ID}, {b.ID, c.ID}, {c.ID, a.ID}} {
		_, err := s.AddEdge(EdgeInput{SourceID: pair[0], TargetID: pair[1], Relation: RelationSupports})
		require.NoError(t, err)
	}

	got := s.Traverse(a.ID, 10, "")
	assert.Len(t, got, 2)
	for _, n := range got {
		assert.NotEqual(t, a.ID, n.ID, "start node must be excluded")
	}
}

func TestTraverseRelationFilter(t *testing.T) {
	s := newTestStore(t)
	a := mustAdd(t, s, "a", 0.5)
	b := mustAdd(t, s, "b", 0.5)
	c := mustAdd(t, s, "c", 0.5)

	_, err := s.AddEdge(EdgeInput{SourceID: a.ID, TargetID: b.ID, Relation: RelationSupports})
	require.NoError(t, err)
	_, err = s.AddEdge(EdgeInput{SourceID: a.ID, TargetID: c.ID, Relation: RelationContradicts})
	require.NoError(t, err)

	got := s.Traverse(a.ID, 3, RelationContradicts)
	assert.Equal(t, []string{c.ID}, nodeIDs(got))

	assert.Empty(t, s.Traverse("missing", 3, ""))
	assert.Empty(t, s.Traverse(a.ID, 0, ""))
}

func TestRelated(t *testing.T) {
	s := newTestStore(t)
	a := mustAdd(t, s, "a", 0.5)
	b := mustAdd(t, s, "b", 0.5)
	c := mustAdd(t, s, "c", 0.5)

	_, err := s.AddEdge(EdgeInput{SourceID: a.ID, TargetID: b.ID, Relation: RelationSupports})
	require.NoError(t, err)
	_, err = s.AddEdge(EdgeInput{SourceID: c.ID, TargetID: a.ID, Relation: RelationContradicts})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{b.ID, c.ID}, nodeIDs(s.Related(a.ID, "")))
	assert.Equal(t, []string{c.ID}, nodeIDs(s.Related(a.ID, RelationContradicts)))
}

func TestQueries(t *testing.T) {
	s := newTestStore(t)
	mustAdd(t, s, "Prefer SMALL focused interfaces", 0.95)
	_, err := s.AddNode(NodeInput{Kind: KindMistake, Content: "forgot to close the file", Confidence: 0.3, Tags: []string{"io"}})
	require.NoError(t, err)

	assert.Len(t, s.ByKind(KindMistake), 1)
	assert.Len(t, s.HighConfidence(0.9), 1)
	assert.Len(t, s.ByTag("io"), 1)
	assert.Empty(t, s.ByTag("missing"))

	// Case-insensitive substring match.
	assert.Len(t, s.Search("small FOCUSED"), 1)
	assert.Empty(t, s.Search("nonexistent"))
}

func nodeIDs(nodes []*MemoryNode) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}
