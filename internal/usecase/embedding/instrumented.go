package embedding

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/claimdex/internal/domain"
)

// InstrumentedProvider wraps a Provider with per-call logging.
// Transport metrics (requests, duration, errors) are recorded in
// transport/openai; this layer owns the log lines only.
type InstrumentedProvider struct {
	inner    domain.Provider
	provider string
	model    string
	logger   *zap.Logger
}

// NewInstrumentedProvider wraps a provider with observability.
func NewInstrumentedProvider(inner domain.Provider, provider, model string, logger *zap.Logger) *InstrumentedProvider {
	return &InstrumentedProvider{
		inner:    inner,
		provider: provider,
		model:    model,
		logger:   logger,
	}
}

// EmbedImage delegates to the inner provider and logs the outcome.
func (p *InstrumentedProvider) EmbedImage(ctx context.Context, image []byte) (domain.EmbeddingResult, error) {
	result, err := p.observe(ctx, "image", func(ctx context.Context) (domain.EmbeddingResult, error) {
		return p.inner.EmbedImage(ctx, image)
	})
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed image: %w", err)
	}
	return result, nil
}

// EmbedText delegates to the inner provider and logs the outcome.
func (p *InstrumentedProvider) EmbedText(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	result, err := p.observe(ctx, "text", func(ctx context.Context) (domain.EmbeddingResult, error) {
		return p.inner.EmbedText(ctx, text)
	})
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", err)
	}
	return result, nil
}

func (p *InstrumentedProvider) observe(
	ctx context.Context, modality string,
	call func(ctx context.Context) (domain.EmbeddingResult, error),
) (domain.EmbeddingResult, error) {
	start := time.Now()

	result, err := call(ctx)

	duration := time.Since(start)

	if err != nil {
		p.logger.Error("Embedding request failed",
			zap.String("provider", p.provider),
			zap.String("model", p.model),
			zap.String("modality", modality),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.EmbeddingResult{}, err
	}

	p.logger.Debug("Embedding request completed",
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.String("modality", modality),
		zap.Duration("duration", duration),
		zap.Int("dimensions", len(result.Vector)),
		zap.Int("prompt_tokens", result.PromptTokens),
		zap.Int("total_tokens", result.TotalTokens),
	)

	return result, nil
}
