package domain

import "context"

// EmbeddingResult carries an embedding vector and token usage through the
// decorator chain.
type EmbeddingResult struct {
	Vector       []float32
	PromptTokens int
	TotalTokens  int
}

// Provider exposes the two modalities of the underlying joint embedding model.
// Both modalities must come from the same model so their vectors share a space.
type Provider interface {
	EmbedImage(ctx context.Context, image []byte) (EmbeddingResult, error)
	EmbedText(ctx context.Context, text string) (EmbeddingResult, error)
}

// JointEmbedder produces the combined image+text vector for a claim.
// Must be deterministic: identical inputs yield identical vectors.
type JointEmbedder interface {
	Embed(ctx context.Context, image []byte, description string) ([]float32, error)
}

// HealthChecker verifies embedding provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
