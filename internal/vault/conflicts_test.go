package vault

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taste-memory-kernel/internal/graph"
)

func TestPolarityConflict(t *testing.T) {
	assert.True(t, polarityConflict("never mock the database in integration tests", "always mock external services"))
	assert.True(t, polarityConflict("always commit lockfiles", "never commit generated files"))
	assert.False(t, polarityConflict("never mock the database", "always validate input"))
	assert.False(t, polarityConflict("prefer small commits", "write descriptive messages"))
}

func TestImperativeConflict(t *testing.T) {
	assert.True(t, imperativeConflict(
		"you should cache session tokens in memory",
		"you should not cache session tokens in memory"))
	assert.False(t, imperativeConflict(
		"you should cache session tokens",
		"you should not log request bodies"))
	// Same polarity never conflicts.
	assert.False(t, imperativeConflict(
		"you should cache session tokens",
		"you should cache session tokens"))
}

func TestDetectConflictsTransitive(t *testing.T) {
	m := newTestManager(t, freeTier(500))

	a, err := m.Learn(graph.KindPreference, "always inline small helpers", LearnOptions{})
	require.NoError(t, err)
	b, err := m.Learn(graph.KindPreference, "never inline tiny helper functions for readability reasons", LearnOptions{})
	require.NoError(t, err)

	// b contradicts a via the polarity rule.
	edges := m.Store().EdgesFrom(b.ID)
	require.Len(t, edges, 1)
	assert.Equal(t, a.ID, edges[0].TargetID)

	// Content nearly identical to b inherits b's contradiction with a.
	conflicts := m.DetectConflicts("inline tiny helper functions for readability reasons", m.Store().Nodes())
	ids := make(map[string]bool)
	for _, c := range conflicts {
		ids[c.ID] = true
	}
	assert.True(t, ids[a.ID], "near-duplicate of b should conflict with a transitively")
}

func TestJaccard(t *testing.T) {
	assert.Equal(t, 1.0, jaccard(wordSet(""), wordSet("")))
	assert.Equal(t, 0.0, jaccard(wordSet("alpha beta"), wordSet("")))
	assert.Equal(t, 1.0, jaccard(wordSet("alpha beta"), wordSet("beta alpha")))
	assert.InDelta(t, 1.0/3.0, jaccard(wordSet("alpha beta"), wordSet("beta gamma")), 1e-9)
}
