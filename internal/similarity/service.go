// Package similarity is the boundary to the embedding/semantic
// similarity collaborator. The wisdom pipeline consults it for fuzzy
// duplicate detection and falls back to lexical comparison whenever it
// fails or is absent.
package similarity

import (
	"context"
	"math"
)

// Document is the minimal shape the duplicate check operates on.
type Document struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// Service is the consumed collaborator interface. Implementations:
// Client (HTTP sidecar) and ChromemIndex (embedded, no sidecar).
type Service interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	IsDuplicate(ctx context.Context, candidate Document, existing []Document) (bool, error)
}

// CosineSimilarity computes the cosine of the angle between two
// vectors; mismatched or empty vectors score zero.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
