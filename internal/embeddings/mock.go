package embeddings

import (
	"context"
	"crypto/sha256"
	"math"
	"strings"

	"github.com/pmlens/insights/internal/insighterrors"
)

// MockClient implements Client for tests and local development. It derives a
// deterministic unit-length vector from the input text hash, so equal texts
// always embed identically.
type MockClient struct {
	dimensions int
}

var _ Client = (*MockClient)(nil)

// NewMockClient creates a mock client with the given dimension.
func NewMockClient(dimensions int) *MockClient {
	return &MockClient{dimensions: dimensions}
}

// CreateEmbedding returns a deterministic normalized vector for the text.
func (c *MockClient) CreateEmbedding(_ context.Context, input string) ([]float32, error) {
	if strings.TrimSpace(input) == "" {
		return nil, insighterrors.NewProviderError("mock", "input text is empty", nil)
	}

	hash := sha256.Sum256([]byte(input))
	vec := make([]float32, c.dimensions)

	for i := range vec {
		// Hash bytes used cyclically, mapped into [-1, 1].
		vec[i] = (float32(hash[i%len(hash)]) / 127.5) - 1.0
	}

	return normalize(vec), nil
}

func normalize(v []float32) []float32 {
	var sum float64
	for _, val := range v {
		sum += float64(val * val)
	}

	magnitude := float32(math.Sqrt(sum))
	if magnitude == 0 {
		return v
	}

	out := make([]float32, len(v))
	for i, val := range v {
		out[i] = val / magnitude
	}

	return out
}
