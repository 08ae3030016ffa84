package domain

import (
	"fmt"
	"math"
)

// Cosine returns the cosine similarity of a and b in [-1, 1].
// Fails on mismatched lengths and on zero-norm operands (undefined result);
// scan loops treat ErrDegenerateVector as a non-match rather than a fatal error.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("cosine of %d-dim and %d-dim vectors: %w", len(a), len(b), ErrDimMismatch)
	}
	if len(a) == 0 {
		return 0, fmt.Errorf("cosine of empty vectors: %w", ErrDimMismatch)
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0, fmt.Errorf("cosine: %w", ErrDegenerateVector)
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
