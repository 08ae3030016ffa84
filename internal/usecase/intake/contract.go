package intake

import (
	"context"
	"image"

	"github.com/kailas-cloud/claimdex/internal/domain"
)

// Repository defines the storage contract for the classifier.
// The core only appends and scans; nothing here updates or deletes.
type Repository interface {
	Insert(ctx context.Context, rec domain.ClaimRecord) error
	ScanAll(ctx context.Context) ([]domain.ClaimRecord, error)
	// ReserveCluster atomically claims clusterID for hash and returns the
	// winning id (the previously reserved one on conflict).
	ReserveCluster(ctx context.Context, hash, clusterID string) (string, error)
}

// Hasher computes the perceptual fingerprint used as the exact-duplicate key.
type Hasher interface {
	Hash(img image.Image) (string, error)
}
