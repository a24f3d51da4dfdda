package vault

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taste-memory-kernel/internal/graph"
)

const sampleHandler = `
func CreateInvoice(w http.ResponseWriter, r *http.Request) {
	user := requireAuth(r)
	var req InvoiceRequest
	if err := Validate(req); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	db.Exec("INSERT INTO invoices (tenant_id, total) VALUES ($1, $2)",
		user.TenantID, math.Trunc(req.Total))
}
`

func TestDetectPatterns(t *testing.T) {
	m := newTestManager(t, freeTier(500))

	detected := m.DetectPatterns(sampleHandler, "go")
	require.Len(t, detected, 4)

	names := make(map[graph.NodeKind]int)
	for _, n := range detected {
		names[n.Kind]++
		assert.Equal(t, detectedConfidence, n.Confidence)
		assert.Equal(t, "go", n.Language)
		assert.True(t, n.HasTag(AutoLearnedTag))
	}
	assert.Equal(t, 4, names[graph.KindPattern])

	tagged := m.Store().ByTag("security")
	assert.Len(t, tagged, 2, "auth-guard and tenant-isolation both carry the security tag")
}

func TestDetectPatternsNoTriggers(t *testing.T) {
	m := newTestManager(t, freeTier(500))
	assert.Empty(t, m.DetectPatterns("plain prose, no code at all", "text"))
	assert.Equal(t, 0, m.Store().Len())
}

func TestLearnFromBuildFailure(t *testing.T) {
	m := newTestManager(t, freeTier(500))

	learned, err := m.LearnFromBuildResult("billing export", "nightly CSV export job", "", "agent-7", false)
	require.NoError(t, err)
	require.Len(t, learned, 1)
	assert.Equal(t, graph.KindMistake, learned[0].Kind)
	assert.True(t, learned[0].HasTag("build-result"))
}

func TestLearnFromBuildSuccess(t *testing.T) {
	m := newTestManager(t, freeTier(500))

	output := `added route with requireAuth( and Validate( on the payload`
	learned, err := m.LearnFromBuildResult("billing export", "nightly CSV export job", output, "agent-7", true)
	require.NoError(t, err)

	// Generic strategy, agent-specific strategy, and two matched build
	// detectors.
	require.Len(t, learned, 4)
	assert.Equal(t, graph.KindStrategy, learned[0].Kind)
	assert.Equal(t, graph.KindStrategy, learned[1].Kind)
	assert.True(t, learned[1].HasTag("agent:agent-7"))
	assert.Equal(t, graph.KindPattern, learned[2].Kind)
	assert.Equal(t, graph.KindPattern, learned[3].Kind)
}

func TestLearnFromBuildSuccessWithoutAgent(t *testing.T) {
	m := newTestManager(t, freeTier(500))

	learned, err := m.LearnFromBuildResult("refactor", "split the module", "no triggers here", "", true)
	require.NoError(t, err)
	require.Len(t, learned, 1)
	assert.Equal(t, graph.KindStrategy, learned[0].Kind)
}
