package domain

import (
	"fmt"
	"time"
)

// ClaimRecord is one submitted claim. Records are append-only: the core never
// mutates or deletes a stored record, it only adds new ones.
type ClaimRecord struct {
	ClusterID      string
	CustomerID     string
	OrderID        string
	Marketplace    string
	Description    string
	PerceptualHash string
	Embedding      []float32
	CreatedAt      time.Time

	// Corrupt marks a historical row whose persisted embedding failed
	// validation on read (dim/buffer disagreement). Corrupt rows are
	// skipped during classification, never returned as matches.
	Corrupt bool
}

// Validate checks the invariants required before a record may be stored.
func (r *ClaimRecord) Validate() error {
	if r.ClusterID == "" {
		return fmt.Errorf("cluster id is empty: %w", ErrInvalidRecord)
	}
	if r.PerceptualHash == "" {
		return fmt.Errorf("perceptual hash is empty: %w", ErrInvalidRecord)
	}
	if len(r.Embedding) == 0 {
		return fmt.Errorf("embedding is empty: %w", ErrInvalidRecord)
	}
	return nil
}
