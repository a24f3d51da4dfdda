package kernel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/taste-memory-kernel/internal/config"
	"github.com/taste-memory-kernel/internal/graph"
	"github.com/taste-memory-kernel/internal/vault"
	"github.com/taste-memory-kernel/internal/wisdom"
)

func newTestKernel(t *testing.T) *Kernel {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	k, err := New(cfg, nil, nil, zaptest.NewLogger(t))
	require.NoError(t, err)
	return k
}

func TestVaultIsCachedPerUser(t *testing.T) {
	k := newTestKernel(t)

	a := k.Vault("alice", vault.TierFree)
	b := k.Vault("alice", vault.TierPremium)
	assert.Same(t, a, b, "first access pins the vault, tier included")

	c := k.Vault("bob", vault.TierPremium)
	assert.NotSame(t, a, c)
	assert.Equal(t, vault.TierPremium, c.Tier().Tier)
}

func TestVaultUnknownTierFallsBackToFree(t *testing.T) {
	k := newTestKernel(t)
	m := k.Vault("alice", vault.Tier("enterprise"))
	assert.Equal(t, vault.TierFree, m.Tier().Tier)
}

func TestSnapshotsCarryConfidence(t *testing.T) {
	k := newTestKernel(t)

	m := k.Vault("alice", vault.TierPremium)
	m.SetGlobalOptIn(true)
	node, err := m.Learn(graph.KindStrategy, "wrap errors with operation context", vault.LearnOptions{})
	require.NoError(t, err)

	snaps := k.Snapshots()
	require.Len(t, snaps, 1)
	assert.True(t, snaps[0].OptIn)
	require.Len(t, snaps[0].Nodes, 1)
	assert.Equal(t, node.ID, snaps[0].Nodes[0].ID)
	assert.Equal(t, node.Confidence, snaps[0].Nodes[0].HelpfulCount)
}

func TestPromotionFlowThroughKernel(t *testing.T) {
	k := newTestKernel(t)

	m := k.Vault("alice", vault.TierPremium)
	m.SetGlobalOptIn(true)
	node, err := m.Learn(graph.KindStrategy, "wrap errors with operation context", vault.LearnOptions{})
	require.NoError(t, err)
	// Two reinforcements push confidence past the promotion threshold.
	_, err = m.Reinforce(node.ID)
	require.NoError(t, err)
	_, err = m.Reinforce(node.ID)
	require.NoError(t, err)

	candidates := k.Pipeline().CollectHighConfidenceNodes(k.Snapshots(), 0.85)
	require.Len(t, candidates, 1)

	pattern := k.Pipeline().Promote(context.Background(), candidates[0].Node, candidates[0].UserID)
	require.NotNil(t, pattern)
	assert.Equal(t, 1, k.Pipeline().Statistics().TotalPatterns)
}

func TestGlobalWisdomRespectsTierLimit(t *testing.T) {
	k := newTestKernel(t)

	contents := []string{
		"wrap errors with operation context before returning",
		"pin dependency versions in the lockfile",
		"run migrations inside a single transaction",
		"paginate list endpoints past one hundred rows",
		"fail closed when the authorizer is unreachable",
		"compress response payloads above one megabyte",
	}
	for i, c := range contents {
		user := "contrib-" + string(rune('a'+i))
		pattern := k.Pipeline().Promote(context.Background(),
			candidateNode(c), user)
		require.NotNil(t, pattern)
	}

	k.Vault("free-user", vault.TierFree)
	k.Vault("premium-user", vault.TierPremium)

	assert.Len(t, k.GlobalWisdom("free-user"), 4)
	assert.Len(t, k.GlobalWisdom("premium-user"), 6)
	assert.Nil(t, k.GlobalWisdom("stranger"))
}

func candidateNode(content string) wisdom.GraphNode {
	return wisdom.GraphNode{ID: content, Content: content, HelpfulCount: 0.9}
}

func TestStopPersistsEverything(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	logger := zaptest.NewLogger(t)

	k, err := New(cfg, nil, nil, logger)
	require.NoError(t, err)

	m := k.Vault("alice", vault.TierFree)
	_, err = m.Learn(graph.KindPreference, "tabs over spaces", vault.LearnOptions{})
	require.NoError(t, err)
	k.Stop()

	// A fresh kernel over the same data dir sees the persisted vault.
	k2, err := New(cfg, nil, nil, logger)
	require.NoError(t, err)
	restored := k2.Vault("alice", vault.TierFree)
	assert.Equal(t, 1, restored.Store().Len())
}
