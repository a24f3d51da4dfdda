package similarity

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"go.uber.org/zap"

	"github.com/taste-memory-kernel/internal/jsonx"
)

// DuplicateThreshold is the cosine similarity at which two embedded
// contents are treated as the same pattern.
const DuplicateThreshold = 0.85

// Client talks to the AI-services sidecar over HTTP. Embeddings are
// memoized in a ristretto cache since the pipeline re-embeds canonical
// contents on every duplicate check.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
	cache   *ristretto.Cache[string, []float32]
}

// NewClient creates a client for the sidecar at baseURL.
func NewClient(baseURL string, logger *zap.Logger) (*Client, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, []float32]{
		NumCounters: 10_000,
		MaxCost:     1_000,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}

	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  logger.Named("similarity"),
		cache:   cache,
	}, nil
}

type embedRequest struct {
	Text string `json:"text"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embed returns the embedding vector for text, consulting the cache
// first.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if emb, ok := c.cache.Get(text); ok {
		return emb, nil
	}

	body, err := jsonx.Marshal(embedRequest{Text: text})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/embed", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding service unavailable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding service returned %d", resp.StatusCode)
	}

	var result embedResponse
	if err := jsonx.DecodeFrom(resp.Body, &result); err != nil {
		return nil, err
	}

	c.cache.Set(text, result.Embedding, 1)
	return result.Embedding, nil
}

// IsDuplicate embeds the candidate and every existing document and
// reports whether any pair crosses the duplicate threshold.
func (c *Client) IsDuplicate(ctx context.Context, candidate Document, existing []Document) (bool, error) {
	candEmb, err := c.Embed(ctx, candidate.Content)
	if err != nil {
		return false, err
	}

	for _, doc := range existing {
		emb, err := c.Embed(ctx, doc.Content)
		if err != nil {
			return false, err
		}
		if CosineSimilarity(candEmb, emb) >= DuplicateThreshold {
			c.logger.Debug("semantic duplicate",
				zap.String("candidate", candidate.ID),
				zap.String("existing", doc.ID))
			return true, nil
		}
	}
	return false, nil
}

// Close releases the embedding cache.
func (c *Client) Close() {
	c.cache.Close()
}
