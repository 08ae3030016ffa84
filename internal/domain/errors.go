package domain

import "errors"

var (
	// ErrImageDecode signals input that is not a decodable raster image.
	ErrImageDecode = errors.New("image decode failed")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrDimMismatch signals a vector dimension mismatch.
	ErrDimMismatch = errors.New("vector dimension mismatch")
	// ErrDegenerateVector signals a zero-norm vector, for which cosine
	// similarity is undefined.
	ErrDegenerateVector = errors.New("zero-norm vector")
	// ErrInvalidRecord signals a claim record violating a store invariant.
	ErrInvalidRecord = errors.New("invalid claim record")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
)
