package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/taste-memory-kernel/internal/blob"
)

func TestRegistryLifecycle(t *testing.T) {
	blobs := blob.NewMemory()
	reg := NewRegistry(blobs, zaptest.NewLogger(t))

	s1 := reg.Get("alice")
	assert.Same(t, s1, reg.Get("alice"))
	assert.NotSame(t, s1, reg.Get("bob"))
	assert.ElementsMatch(t, []string{"alice", "bob"}, reg.UserIDs())

	_, err := s1.AddNode(NodeInput{Kind: KindPreference, Content: "tabs over spaces", Confidence: 0.8})
	require.NoError(t, err)
	reg.PersistAll()

	reg.Reset()
	assert.Empty(t, reg.UserIDs())

	// A fresh store for the same user restores the persisted snapshot.
	restored := reg.Get("alice")
	assert.Equal(t, 1, restored.Len())
}
