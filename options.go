package claimdex

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type openAIConfig struct {
	baseURL    string
	apiKey     string
	model      string
	dimensions int
}

type clientConfig struct {
	provider Provider
	openAI   *openAIConfig
	cacheTTL time.Duration
	logger   *zap.Logger
}

// EmbeddingResult is one embedding vector plus token accounting.
type EmbeddingResult struct {
	Vector       []float32
	PromptTokens int
	TotalTokens  int
}

// Provider produces image and text embeddings in one shared vector space.
// Both modalities must return vectors of the same dimensionality.
type Provider interface {
	EmbedImage(ctx context.Context, image []byte) (EmbeddingResult, error)
	EmbedText(ctx context.Context, text string) (EmbeddingResult, error)
}

// WithProvider sets a custom embedding provider.
func WithProvider(p Provider) Option {
	return optionFunc(func(c *clientConfig) {
		c.provider = p
	})
}

// WithOpenAI configures an OpenAI-compatible CLIP embedding endpoint.
// Ignored when WithProvider is also given.
func WithOpenAI(baseURL, apiKey, model string, dimensions int) Option {
	return optionFunc(func(c *clientConfig) {
		c.openAI = &openAIConfig{
			baseURL:    baseURL,
			apiKey:     apiKey,
			model:      model,
			dimensions: dimensions,
		}
	})
}

// WithCacheTTL enables in-process embedding caching with the given TTL.
// Zero (the default) disables caching.
func WithCacheTTL(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheTTL = ttl
	})
}

// WithLogger enables structured logging for client operations.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		if l != nil {
			c.logger = l
		}
	})
}
