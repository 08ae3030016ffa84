// Package openai provides the embedding model transport over an
// OpenAI-compatible API serving a joint image/text model (CLIP-style).
package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/claimdex/internal/domain"
	"github.com/kailas-cloud/claimdex/internal/metrics"
)

// Modality labels for transport metrics.
const (
	modalityText  = "text"
	modalityImage = "image"
)

// Provider talks to an OpenAI-compatible embeddings endpoint that accepts both
// plain text and base64 data-URL image inputs against the same model, so the
// two modalities share one vector space.
type Provider struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	name       string
	logger     *zap.Logger
}

// Config holds the embedding provider settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	Name       string
	Logger     *zap.Logger
}

// NewProvider creates an OpenAI-compatible embedding provider.
func NewProvider(cfg *Config) *Provider {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Provider{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      openai.EmbeddingModel(cfg.Model),
		dimensions: cfg.Dimensions,
		name:       cfg.Name,
		logger:     logger,
	}
}

// EmbedText implements domain.Provider for the text modality.
// An empty string is a valid input: the model still returns a vector,
// it is just a weak signal for the narrative channel.
func (p *Provider) EmbedText(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	return p.embed(ctx, text, modalityText)
}

// EmbedImage implements domain.Provider for the image modality.
// The encoded image bytes go over the wire as a base64 data URL, the input
// convention of OpenAI-compatible CLIP serving stacks.
func (p *Provider) EmbedImage(ctx context.Context, image []byte) (domain.EmbeddingResult, error) {
	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(image)
	return p.embed(ctx, dataURL, modalityImage)
}

func (p *Provider) embed(ctx context.Context, input, modality string) (domain.EmbeddingResult, error) {
	req := openai.EmbeddingRequest{
		Input:          []string{input},
		Model:          p.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}
	if p.dimensions > 0 {
		req.Dimensions = p.dimensions
	}

	start := time.Now()

	resp, err := p.client.CreateEmbeddings(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(p.name, string(p.model), modality, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(p.name, string(p.model), "api_error").Inc()
		return domain.EmbeddingResult{}, parseAPIError(err)
	}

	if len(resp.Data) == 0 {
		metrics.EmbeddingRequestsTotal.WithLabelValues(p.name, string(p.model), modality, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(p.name, string(p.model), "empty_response").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("empty embedding response: %w", domain.ErrEmbeddingProviderError)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(p.name, string(p.model), modality, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(p.name, string(p.model), modality).Observe(duration.Seconds())

	return domain.EmbeddingResult{
		Vector:       resp.Data[0].Embedding,
		PromptTokens: resp.Usage.PromptTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (p *Provider) HealthCheck(ctx context.Context) error {
	if _, err := p.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrEmbeddingProviderError; context
// cancellation keeps its own identity so callers can tell a timeout apart.
func parseAPIError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("embedding request aborted: %w", err)
	}

	wrap := domain.ErrEmbeddingProviderError

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail == "" {
			detail = string(reqErr.Body)
		}
		return fmt.Errorf("embedding API error %d: %s: %w", reqErr.HTTPStatusCode, detail, wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("embedding API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("embedding request failed: %w", wrap)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}

var _ domain.Provider = (*Provider)(nil)
var _ domain.HealthChecker = (*Provider)(nil)
