// Package chi is the HTTP transport for the claim intake API.
package chi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/claimdex/internal/domain"
	healthuc "github.com/kailas-cloud/claimdex/internal/usecase/health"
	"github.com/kailas-cloud/claimdex/internal/usecase/intake"
)

// Error codes returned in JSON error bodies.
const (
	codeBadRequest       = "bad_request"
	codeImageDecode      = "image_decode_failed"
	codeEmbeddingError   = "embedding_provider_error"
	codeInternal         = "internal_error"
	codeValidationFailed = "validation_failed"
)

// RecordReader lists stored claim records for the audit endpoint.
type RecordReader interface {
	ScanAll(ctx context.Context) ([]domain.ClaimRecord, error)
}

// Server exposes the intake and health services over HTTP.
type Server struct {
	intake  *intake.Service
	health  *healthuc.Service
	records RecordReader
	logger  *zap.Logger
}

// NewServer creates the HTTP API server.
func NewServer(intakeSvc *intake.Service, healthSvc *healthuc.Service, records RecordReader, logger *zap.Logger) *Server {
	return &Server{
		intake:  intakeSvc,
		health:  healthSvc,
		records: records,
		logger:  logger,
	}
}

// Routes registers all handlers on r.
func (s *Server) Routes(r chi.Router) {
	r.Post("/v1/claims", s.submitClaim)
	r.Post("/v1/claims/classify", s.classifyClaim)
	r.Get("/v1/claims", s.listClaims)
	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
}

// submitRequest is the wire form of a claim submission.
type submitRequest struct {
	Image       string `json:"image"` // base64-encoded jpeg/png/gif
	Description string `json:"description"`
	CustomerID  string `json:"customer_id"`
	OrderID     string `json:"order_id"`
	Marketplace string `json:"marketplace"`
}

// claimResponse is the wire form of a classification result.
type claimResponse struct {
	Verdict           string  `json:"verdict"`
	ClusterID         string  `json:"cluster_id,omitempty"`
	Similarity        float64 `json:"similarity,omitempty"`
	MatchedCustomerID string  `json:"matched_customer_id,omitempty"`
	MatchedOrderID    string  `json:"matched_order_id,omitempty"`
}

// recordResponse is the wire form of a stored claim record.
type recordResponse struct {
	ClusterID      string    `json:"cluster_id"`
	CustomerID     string    `json:"customer_id"`
	OrderID        string    `json:"order_id"`
	Marketplace    string    `json:"marketplace"`
	Description    string    `json:"description"`
	PerceptualHash string    `json:"perceptual_hash"`
	CreatedAt      time.Time `json:"created_at"`
}

// submitClaim handles POST /v1/claims: classify and record.
func (s *Server) submitClaim(w http.ResponseWriter, r *http.Request) {
	req, image, ok := s.decodeSubmit(w, r)
	if !ok {
		return
	}

	result, err := s.intake.Submit(r.Context(), intake.SubmitRequest{
		Image:       image,
		Description: req.Description,
		CustomerID:  req.CustomerID,
		OrderID:     req.OrderID,
		Marketplace: req.Marketplace,
	})
	if err != nil {
		s.handleClaimError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toClaimResponse(result))
}

// classifyClaim handles POST /v1/claims/classify: dry run, nothing stored.
func (s *Server) classifyClaim(w http.ResponseWriter, r *http.Request) {
	req, image, ok := s.decodeSubmit(w, r)
	if !ok {
		return
	}

	result, err := s.intake.Classify(r.Context(), image, req.Description)
	if err != nil {
		s.handleClaimError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toClaimResponse(result))
}

// listClaims handles GET /v1/claims: the full record history, oldest first.
func (s *Server) listClaims(w http.ResponseWriter, r *http.Request) {
	recs, err := s.records.ScanAll(r.Context())
	if err != nil {
		s.logger.Error("listing claims failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
		return
	}

	out := make([]recordResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, recordResponse{
			ClusterID:      rec.ClusterID,
			CustomerID:     rec.CustomerID,
			OrderID:        rec.OrderID,
			Marketplace:    rec.Marketplace,
			Description:    rec.Description,
			PerceptualHash: rec.PerceptualHash,
			CreatedAt:      rec.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"records": out,
		"count":   len(out),
	})
}

// healthz is a liveness probe: the process is up.
func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readyz checks the store and embedding provider.
func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// decodeSubmit parses and validates the shared submit/classify request body.
func (s *Server) decodeSubmit(w http.ResponseWriter, r *http.Request) (submitRequest, []byte, bool) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return submitRequest{}, nil, false
	}

	if req.Image == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "image is required")
		return submitRequest{}, nil, false
	}

	image, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "image must be base64-encoded")
		return submitRequest{}, nil, false
	}

	return req, image, true
}

// handleClaimError maps domain errors to HTTP status codes.
func (s *Server) handleClaimError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrImageDecode):
		writeError(w, http.StatusBadRequest, codeImageDecode, "uploaded image could not be decoded")
	case errors.Is(err, domain.ErrInvalidRecord):
		writeError(w, http.StatusBadRequest, codeValidationFailed, "claim metadata is invalid")
	case errors.Is(err, domain.ErrEmbeddingProviderError):
		writeError(w, http.StatusBadGateway, codeEmbeddingError, "embedding provider failed")
	default:
		s.logger.Error("claim handling failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
	}
}

func toClaimResponse(res intake.Result) claimResponse {
	return claimResponse{
		Verdict:           res.Verdict.String(),
		ClusterID:         res.ClusterID,
		Similarity:        res.Similarity,
		MatchedCustomerID: res.MatchedCustomerID,
		MatchedOrderID:    res.MatchedOrderID,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
