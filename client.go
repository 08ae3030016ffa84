package claimdex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/claimdex/internal/domain"
	"github.com/kailas-cloud/claimdex/internal/fingerprint"
	"github.com/kailas-cloud/claimdex/internal/metrics"
	"github.com/kailas-cloud/claimdex/internal/repository/claims"
	openaiEmb "github.com/kailas-cloud/claimdex/internal/transport/openai"
	"github.com/kailas-cloud/claimdex/internal/usecase/embedding"
	"github.com/kailas-cloud/claimdex/internal/usecase/intake"
)

// Client is the claimdex SDK entry point: an embedded duplicate-claim
// detector over a local SQLite record store.
type Client struct {
	store *claims.Store
	svc   *intake.Service
}

// Open creates a Client backed by the SQLite database at path. The file and
// its schema are created on first use. An embedding provider must be
// configured (WithOpenAI or WithProvider) before Submit or Classify is called.
func Open(path string, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		logger: zap.NewNop(),
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	store, err := claims.Open(path)
	if err != nil {
		return nil, fmt.Errorf("claimdex: open store: %w", err)
	}

	var provider domain.Provider
	switch {
	case cfg.provider != nil:
		provider = &providerAdapter{inner: cfg.provider}
	case cfg.openAI != nil:
		provider = newOpenAIProvider(cfg)
	default:
		provider = noopProvider{}
	}
	if cfg.cacheTTL > 0 {
		provider = embedding.NewCachedProvider(provider, cfg.cacheTTL, metrics.EmbeddingCacheTotal)
	}
	joint := embedding.NewJoint(provider)

	svc := intake.New(store, fingerprint.NewPHash(), joint, cfg.logger)

	return &Client{store: store, svc: svc}, nil
}

// SubmitRequest is a claim to classify and record.
type SubmitRequest struct {
	Image       []byte // encoded jpeg, png or gif
	Description string
	CustomerID  string
	OrderID     string
	Marketplace string
}

// Verdict is the classification outcome for a submitted claim.
type Verdict string

// Possible verdicts, highest priority first.
const (
	ExactDuplicate Verdict = Verdict(domain.VerdictExactDuplicate)
	SimilarImage   Verdict = Verdict(domain.VerdictSimilarImage)
	SameNarrative  Verdict = Verdict(domain.VerdictSameNarrative)
	NoDuplicate    Verdict = Verdict(domain.VerdictNoDuplicate)
)

// Result describes how a claim was classified. On a matched verdict the
// Matched fields identify the prior claim that triggered the match.
type Result struct {
	Verdict           Verdict
	ClusterID         string
	Similarity        float64
	MatchedCustomerID string
	MatchedOrderID    string
}

// Record is a stored claim, as returned by Records.
type Record struct {
	ClusterID      string
	CustomerID     string
	OrderID        string
	Marketplace    string
	Description    string
	PerceptualHash string
	CreatedAt      time.Time
}

// Submit classifies the claim against the stored history and records it.
func (c *Client) Submit(ctx context.Context, req SubmitRequest) (Result, error) {
	res, err := c.svc.Submit(ctx, intake.SubmitRequest{
		Image:       req.Image,
		Description: req.Description,
		CustomerID:  req.CustomerID,
		OrderID:     req.OrderID,
		Marketplace: req.Marketplace,
	})
	if err != nil {
		return Result{}, fmt.Errorf("claimdex: submit: %w", err)
	}
	return toResult(res), nil
}

// Classify runs a dry-run classification: same verdict Submit would produce,
// but nothing is recorded and no cluster id is minted.
func (c *Client) Classify(ctx context.Context, image []byte, description string) (Result, error) {
	res, err := c.svc.Classify(ctx, image, description)
	if err != nil {
		return Result{}, fmt.Errorf("claimdex: classify: %w", err)
	}
	return toResult(res), nil
}

// Records returns every stored claim, oldest first.
func (c *Client) Records(ctx context.Context) ([]Record, error) {
	recs, err := c.store.ScanAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("claimdex: records: %w", err)
	}
	out := make([]Record, 0, len(recs))
	for _, r := range recs {
		out = append(out, Record{
			ClusterID:      r.ClusterID,
			CustomerID:     r.CustomerID,
			OrderID:        r.OrderID,
			Marketplace:    r.Marketplace,
			Description:    r.Description,
			PerceptualHash: r.PerceptualHash,
			CreatedAt:      r.CreatedAt,
		})
	}
	return out, nil
}

// Count returns the number of stored claims.
func (c *Client) Count(ctx context.Context) (int, error) {
	n, err := c.store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("claimdex: count: %w", err)
	}
	return n, nil
}

// Ping checks store connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("claimdex: ping: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (c *Client) Close() error {
	return c.store.Close()
}

func toResult(res intake.Result) Result {
	return Result{
		Verdict:           Verdict(res.Verdict),
		ClusterID:         res.ClusterID,
		Similarity:        res.Similarity,
		MatchedCustomerID: res.MatchedCustomerID,
		MatchedOrderID:    res.MatchedOrderID,
	}
}

func newOpenAIProvider(cfg *clientConfig) domain.Provider {
	return openaiEmb.NewProvider(&openaiEmb.Config{
		APIKey:     cfg.openAI.apiKey,
		BaseURL:    cfg.openAI.baseURL,
		Model:      cfg.openAI.model,
		Dimensions: cfg.openAI.dimensions,
		Name:       "openai",
		Logger:     cfg.logger,
	})
}

// providerAdapter wraps the public Provider to satisfy internal domain.Provider.
type providerAdapter struct {
	inner Provider
}

func (a *providerAdapter) EmbedImage(ctx context.Context, image []byte) (domain.EmbeddingResult, error) {
	r, err := a.inner.EmbedImage(ctx, image)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed image: %w", err)
	}
	return domain.EmbeddingResult{
		Vector:       r.Vector,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

func (a *providerAdapter) EmbedText(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.EmbedText(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", err)
	}
	return domain.EmbeddingResult{
		Vector:       r.Vector,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// noopProvider fails on use; installed when no provider is configured.
type noopProvider struct{}

func (noopProvider) EmbedImage(context.Context, []byte) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, errors.New(
		"claimdex: embedding provider not configured (use WithOpenAI or WithProvider)",
	)
}

func (noopProvider) EmbedText(context.Context, string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, errors.New(
		"claimdex: embedding provider not configured (use WithOpenAI or WithProvider)",
	)
}
