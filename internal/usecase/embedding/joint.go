// Package embedding assembles the joint image+text embedder and its
// decorator chain (cache, instrumentation).
package embedding

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/claimdex/internal/domain"
)

// Channel weights for the joint vector. Text dominates: narrative phrasing is
// the stronger duplicate signal once an exact hash match has been ruled out.
const (
	imageWeight = 0.4
	textWeight  = 0.6
)

// Joint combines the two modalities of a claim into one vector:
// 0.4*image + 0.6*text, pointwise. Deterministic for fixed provider output.
type Joint struct {
	provider domain.Provider
}

// NewJoint creates a joint embedder over a two-modality provider.
func NewJoint(provider domain.Provider) *Joint {
	return &Joint{provider: provider}
}

// Embed implements domain.JointEmbedder. The empty description is embedded as
// an empty text input, never rejected. Any provider failure aborts the whole
// embedding; no partial vector is returned.
func (j *Joint) Embed(ctx context.Context, image []byte, description string) ([]float32, error) {
	imgRes, err := j.provider.EmbedImage(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("embed image: %w", err)
	}

	txtRes, err := j.provider.EmbedText(ctx, description)
	if err != nil {
		return nil, fmt.Errorf("embed text: %w", err)
	}

	if len(imgRes.Vector) != len(txtRes.Vector) {
		return nil, fmt.Errorf(
			"image vector is %d-dim, text vector is %d-dim: %w",
			len(imgRes.Vector), len(txtRes.Vector), domain.ErrDimMismatch,
		)
	}
	if len(imgRes.Vector) == 0 {
		return nil, fmt.Errorf("provider returned empty vectors: %w", domain.ErrEmbeddingProviderError)
	}

	combined := make([]float32, len(imgRes.Vector))
	for i := range combined {
		combined[i] = float32(imageWeight*float64(imgRes.Vector[i]) + textWeight*float64(txtRes.Vector[i]))
	}
	return combined, nil
}

var _ domain.JointEmbedder = (*Joint)(nil)
