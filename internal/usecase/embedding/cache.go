package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/claimdex/internal/domain"
)

// CachedProvider memoizes per-modality provider calls in process.
// Model inference is the expensive step of a submission; resubmissions of the
// same image or narrative within the TTL skip the round trip entirely.
// Safe because the provider contract is deterministic at evaluation time.
type CachedProvider struct {
	inner      domain.Provider
	cache      *gocache.Cache
	cacheTotal *prometheus.CounterVec
}

// NewCachedProvider creates a caching decorator with the given entry TTL.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func NewCachedProvider(inner domain.Provider, ttl time.Duration, cacheTotal *prometheus.CounterVec) *CachedProvider {
	return &CachedProvider{
		inner:      inner,
		cache:      gocache.New(ttl, 2*ttl),
		cacheTotal: cacheTotal,
	}
}

// EmbedImage returns a cached image embedding or calls the inner provider.
func (c *CachedProvider) EmbedImage(ctx context.Context, image []byte) (domain.EmbeddingResult, error) {
	return c.embed(ctx, cacheKey("img:", image), func() (domain.EmbeddingResult, error) {
		return c.inner.EmbedImage(ctx, image)
	})
}

// EmbedText returns a cached text embedding or calls the inner provider.
func (c *CachedProvider) EmbedText(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	return c.embed(ctx, cacheKey("txt:", []byte(text)), func() (domain.EmbeddingResult, error) {
		return c.inner.EmbedText(ctx, text)
	})
}

func (c *CachedProvider) embed(
	_ context.Context, key string, call func() (domain.EmbeddingResult, error),
) (domain.EmbeddingResult, error) {
	if v, ok := c.cache.Get(key); ok {
		if vec, ok := v.([]float32); ok {
			c.incCache("hit")
			// Cache hit: TotalTokens = 0, no real tokens consumed.
			return domain.EmbeddingResult{Vector: vec}, nil
		}
	}

	c.incCache("miss")

	result, err := call()
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}

	c.cache.Set(key, result.Vector, gocache.DefaultExpiration)
	return result, nil
}

func (c *CachedProvider) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

// cacheKey hashes the payload so raw image bytes never become map keys.
// The modality prefix keeps an image and a text with identical bytes apart.
func cacheKey(prefix string, payload []byte) string {
	h := sha256.New()
	h.Write([]byte(prefix))
	h.Write(payload)
	return prefix + hex.EncodeToString(h.Sum(nil))
}

var _ domain.Provider = (*CachedProvider)(nil)
