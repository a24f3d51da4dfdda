package similarity

import (
	"context"
	"fmt"
	"sync"

	chromem "github.com/philippgille/chromem-go"
	"go.uber.org/zap"
)

// ChromemIndex is an embedded implementation of Service built on
// chromem-go, for deployments without the AI-services sidecar. Existing
// documents are indexed incrementally by id so repeated duplicate
// checks against the growing global corpus stay cheap.
type ChromemIndex struct {
	col    *chromem.Collection
	embed  chromem.EmbeddingFunc
	logger *zap.Logger

	mu      sync.Mutex
	indexed map[string]bool
}

// NewChromemIndex creates the index. embed must be non-nil; typically
// it wraps a local ONNX model or the sidecar client.
func NewChromemIndex(embed chromem.EmbeddingFunc, logger *zap.Logger) (*ChromemIndex, error) {
	if embed == nil {
		return nil, fmt.Errorf("chromem index requires an embedding func")
	}

	db := chromem.NewDB()
	col, err := db.GetOrCreateCollection("global-patterns", nil, embed)
	if err != nil {
		return nil, fmt.Errorf("create chromem collection: %w", err)
	}
	return &ChromemIndex{
		col:     col,
		embed:   embed,
		logger:  logger.Named("chromem"),
		indexed: make(map[string]bool),
	}, nil
}

// Embed delegates to the configured embedding func.
func (ix *ChromemIndex) Embed(ctx context.Context, text string) ([]float32, error) {
	return ix.embed(ctx, text)
}

// IsDuplicate indexes any unseen existing documents, then queries the
// collection with the candidate content and compares the best match
// against the duplicate threshold.
func (ix *ChromemIndex) IsDuplicate(ctx context.Context, candidate Document, existing []Document) (bool, error) {
	ix.mu.Lock()
	for _, doc := range existing {
		if ix.indexed[doc.ID] {
			continue
		}
		if err := ix.col.AddDocument(ctx, chromem.Document{
			ID:      doc.ID,
			Content: doc.Content,
		}); err != nil {
			ix.mu.Unlock()
			return false, fmt.Errorf("index document: %w", err)
		}
		ix.indexed[doc.ID] = true
	}
	count := ix.col.Count()
	ix.mu.Unlock()

	if count == 0 {
		return false, nil
	}

	results, err := ix.col.Query(ctx, candidate.Content, 1, nil, nil)
	if err != nil {
		return false, fmt.Errorf("query chromem: %w", err)
	}
	if len(results) == 0 {
		return false, nil
	}

	if results[0].Similarity >= DuplicateThreshold {
		ix.logger.Debug("semantic duplicate",
			zap.String("candidate", candidate.ID),
			zap.String("existing", results[0].ID),
			zap.Float32("similarity", results[0].Similarity))
		return true, nil
	}
	return false, nil
}
