// Package googleai provides a thin wrapper around the Google Gen AI SDK for embeddings (Gemini API).
package googleai

import (
	"context"
	"fmt"
	"math"
	"strings"

	"google.golang.org/genai"

	"github.com/pmlens/insights/internal/embeddings"
	"github.com/pmlens/insights/internal/insighterrors"
)

const (
	providerName     = "googleai"
	defaultDimension = 1536
	defaultModel     = "gemini-embedding-001"
)

// Client calls the Gemini embeddings API via the Google Gen AI SDK.
type Client struct {
	client     *genai.Client
	model      string
	dimensions int
}

var _ embeddings.Client = (*Client)(nil)

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithDimensions sets the requested embedding dimension (must match the DB column).
func WithDimensions(dim int) ClientOption {
	return func(c *Client) {
		c.dimensions = dim
	}
}

// WithModel sets the embedding model name (e.g. gemini-embedding-001). Empty uses default.
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// NewClient creates a Gemini embeddings client.
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("googleai client: %w", err)
	}

	client := &Client{
		client:     genaiClient,
		model:      defaultModel,
		dimensions: defaultDimension,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// CreateEmbedding returns the embedding vector for the given text using the
// configured model. Any remote failure or shape mismatch surfaces as a
// ProviderError.
func (c *Client) CreateEmbedding(ctx context.Context, input string) ([]float32, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, insighterrors.NewProviderError(providerName, "input text is empty", nil)
	}

	if c.dimensions <= 0 || c.dimensions > math.MaxInt32 {
		return nil, insighterrors.NewProviderError(providerName, "embedding dimensions out of range", nil)
	}

	contents := []*genai.Content{genai.NewContentFromText(input, genai.RoleUser)}
	//nolint:gosec // G115: c.dimensions is bounded above by math.MaxInt32
	dimInt32 := int32(c.dimensions)

	resp, err := c.client.Models.EmbedContent(ctx, c.model, contents, &genai.EmbedContentConfig{
		OutputDimensionality: &dimInt32,
	})
	if err != nil {
		return nil, insighterrors.NewProviderError(providerName, "create embedding", err)
	}

	if len(resp.Embeddings) == 0 {
		return nil, insighterrors.NewProviderError(providerName, "no embedding in response", nil)
	}

	emb := resp.Embeddings[0].Values
	if len(emb) != c.dimensions {
		return nil, insighterrors.NewProviderError(providerName,
			fmt.Sprintf("embedding dimension mismatch: got %d, want %d", len(emb), c.dimensions), nil)
	}

	out := make([]float32, len(emb))
	copy(out, emb)

	return out, nil
}
