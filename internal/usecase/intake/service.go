// Package intake classifies incoming claims against the full record history
// and assigns cluster identifiers.
package intake

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/claimdex/internal/domain"
	"github.com/kailas-cloud/claimdex/internal/fingerprint"
	"github.com/kailas-cloud/claimdex/internal/metrics"
)

// Fixed policy thresholds. Strict >: a similarity exactly on a threshold falls
// through to the next lower band.
const (
	similarImageThreshold  = 0.85
	sameNarrativeThreshold = 0.65
)

// SubmitRequest carries one incoming claim.
type SubmitRequest struct {
	Image       []byte
	Description string
	CustomerID  string
	OrderID     string
	Marketplace string
}

// Result is the classification outcome. On a matched verdict ClusterID is the
// existing cluster's id and the Matched* fields identify the prior claim that
// triggered the match, so a reviewer can audit why the submission was flagged.
type Result struct {
	Verdict           domain.Verdict
	ClusterID         string
	Similarity        float64
	MatchedCustomerID string
	MatchedOrderID    string
}

// Service is the duplicate classifier.
type Service struct {
	repo     Repository
	hasher   Hasher
	embedder domain.JointEmbedder
	logger   *zap.Logger
	newID    func() string

	// mu serializes classify-then-insert in Submit. Without it two concurrent
	// submissions of the same new image could both observe NoDuplicate and
	// mint two cluster ids for one underlying image.
	mu sync.Mutex
}

// New creates the classifier service.
func New(repo Repository, hasher Hasher, embedder domain.JointEmbedder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:     repo,
		hasher:   hasher,
		embedder: embedder,
		logger:   logger,
		newID:    uuid.NewString,
	}
}

// Classify runs the read-only classification pass: decode, fingerprint, embed,
// then scan the history. It never mutates the store; use Submit to record the
// claim. Decode and embedding failures abort before any store access.
func (s *Service) Classify(ctx context.Context, image []byte, description string) (Result, error) {
	hash, vec, err := s.prepare(ctx, image, description)
	if err != nil {
		return Result{}, err
	}
	return s.classify(ctx, hash, vec)
}

// Submit classifies the claim and records it. On NoDuplicate a fresh cluster
// id is minted; on a matched verdict the existing cluster id is reused for the
// newly inserted record. Classification failures leave the store untouched.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (Result, error) {
	// Inference runs outside the critical section: it is the slow step and
	// needs no consistency with the store.
	hash, vec, err := s.prepare(ctx, req.Image, req.Description)
	if err != nil {
		return Result{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.classify(ctx, hash, vec)
	if err != nil {
		return Result{}, err
	}

	if result.Verdict == domain.VerdictNoDuplicate {
		proposed := s.newID()
		winner, err := s.repo.ReserveCluster(ctx, hash, proposed)
		if err != nil {
			return Result{}, fmt.Errorf("reserve cluster: %w", err)
		}
		if winner == proposed {
			result.ClusterID = proposed
		} else {
			// Another writer (outside this process) reserved the hash
			// between our scan and the reservation: treat as a match
			// against the winner instead of minting a second cluster.
			result = Result{Verdict: domain.VerdictExactDuplicate, ClusterID: winner}
			s.logger.Info("cluster reservation lost, attaching to winner",
				zap.String("perceptual_hash", hash),
				zap.String("cluster_id", winner),
			)
		}
	}

	rec := domain.ClaimRecord{
		ClusterID:      result.ClusterID,
		CustomerID:     req.CustomerID,
		OrderID:        req.OrderID,
		Marketplace:    req.Marketplace,
		Description:    req.Description,
		PerceptualHash: hash,
		Embedding:      vec,
	}
	if err := s.repo.Insert(ctx, rec); err != nil {
		return Result{}, fmt.Errorf("insert record: %w", err)
	}

	s.logger.Info("claim recorded",
		zap.String("verdict", result.Verdict.String()),
		zap.String("cluster_id", result.ClusterID),
		zap.String("customer_id", req.CustomerID),
		zap.String("order_id", req.OrderID),
	)
	return result, nil
}

// prepare decodes the image and computes fingerprint and joint embedding.
// Any failure here is fatal to the call and precedes all store access.
func (s *Service) prepare(ctx context.Context, image []byte, description string) (string, []float32, error) {
	img, err := fingerprint.Decode(image)
	if err != nil {
		return "", nil, err
	}

	hash, err := s.hasher.Hash(img)
	if err != nil {
		return "", nil, fmt.Errorf("fingerprint image: %w", err)
	}

	vec, err := s.embedder.Embed(ctx, image, description)
	if err != nil {
		return "", nil, fmt.Errorf("embed claim: %w", err)
	}

	return hash, vec, nil
}

// classify scans the history in store order. First match wins: the first
// record to cross any threshold decides the cluster, by policy — this is not
// a best-match search. An exact hash match short-circuits before any scoring.
func (s *Service) classify(ctx context.Context, hash string, vec []float32) (Result, error) {
	start := time.Now()

	records, err := s.repo.ScanAll(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("scan records: %w", err)
	}

	result := Result{Verdict: domain.VerdictNoDuplicate}

	scanned := 0
	for _, rec := range records {
		scanned++

		if rec.Corrupt {
			s.skipRecord(rec, "corrupt_row", nil)
			continue
		}

		if rec.PerceptualHash == hash {
			result = Result{
				Verdict:           domain.VerdictExactDuplicate,
				ClusterID:         rec.ClusterID,
				MatchedCustomerID: rec.CustomerID,
				MatchedOrderID:    rec.OrderID,
			}
			break
		}

		sim, err := domain.Cosine(vec, rec.Embedding)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrDimMismatch):
				s.skipRecord(rec, "dim_mismatch", err)
			case errors.Is(err, domain.ErrDegenerateVector):
				s.skipRecord(rec, "degenerate_vector", err)
			default:
				return Result{}, fmt.Errorf("score record: %w", err)
			}
			continue
		}

		if v := verdictForSimilarity(sim); v.Matched() {
			result = Result{
				Verdict:           v,
				ClusterID:         rec.ClusterID,
				Similarity:        sim,
				MatchedCustomerID: rec.CustomerID,
				MatchedOrderID:    rec.OrderID,
			}
			break
		}
	}

	metrics.ClassificationsTotal.WithLabelValues(result.Verdict.String()).Inc()
	metrics.ClassificationScanDuration.Observe(time.Since(start).Seconds())
	metrics.ClassificationRecordsScanned.Observe(float64(scanned))

	return result, nil
}

// verdictForSimilarity maps a similarity score to its outcome band.
func verdictForSimilarity(sim float64) domain.Verdict {
	switch {
	case sim > similarImageThreshold:
		return domain.VerdictSimilarImage
	case sim > sameNarrativeThreshold:
		return domain.VerdictSameNarrative
	default:
		return domain.VerdictNoDuplicate
	}
}

// skipRecord logs and counts a historical row excluded from scoring.
// One bad row must never block classification of new submissions.
func (s *Service) skipRecord(rec domain.ClaimRecord, reason string, err error) {
	metrics.ClassificationSkippedRecords.WithLabelValues(reason).Inc()
	s.logger.Warn("skipping historical record",
		zap.String("cluster_id", rec.ClusterID),
		zap.String("reason", reason),
		zap.Error(err),
	)
}
