package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 0, 1}, []float32{1, 0, 1}), 1e-6)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-6)
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 2}, []float32{-1, -2}), 1e-6)

	// Degenerate inputs score zero rather than erroring.
	assert.Equal(t, float32(0), CosineSimilarity([]float32{1, 2}, []float32{1}))
	assert.Equal(t, float32(0), CosineSimilarity(nil, nil))
	assert.Equal(t, float32(0), CosineSimilarity([]float32{0, 0}, []float32{1, 1}))
}
