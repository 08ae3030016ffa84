package intake

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"math"
	"sync"
	"testing"

	"github.com/kailas-cloud/claimdex/internal/domain"
)

// --- Mocks ---

// memRepo is a thread-safe in-memory Repository.
type memRepo struct {
	mu        sync.Mutex
	records   []domain.ClaimRecord
	clusters  map[string]string
	insertErr error
	scanErr   error
}

func newMemRepo(records ...domain.ClaimRecord) *memRepo {
	return &memRepo{records: records, clusters: make(map[string]string)}
}

func (m *memRepo) Insert(_ context.Context, rec domain.ClaimRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *memRepo) ScanAll(_ context.Context) ([]domain.ClaimRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.scanErr != nil {
		return nil, m.scanErr
	}
	out := make([]domain.ClaimRecord, len(m.records))
	copy(out, m.records)
	return out, nil
}

func (m *memRepo) ReserveCluster(_ context.Context, hash, clusterID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if winner, ok := m.clusters[hash]; ok {
		return winner, nil
	}
	m.clusters[hash] = clusterID
	return clusterID, nil
}

func (m *memRepo) stored() []domain.ClaimRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.ClaimRecord, len(m.records))
	copy(out, m.records)
	return out
}

type mockHasher struct {
	hash string
	err  error
}

func (m *mockHasher) Hash(_ image.Image) (string, error) {
	return m.hash, m.err
}

type mockEmbedder struct {
	vec []float32
	err error
}

func (m *mockEmbedder) Embed(_ context.Context, _ []byte, _ string) ([]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.vec, nil
}

// pngBytes renders a tiny valid PNG so prepare() can decode it.
func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// storedRecord builds a historical record for scan fixtures.
func storedRecord(cluster, hash string, vec []float32) domain.ClaimRecord {
	return domain.ClaimRecord{
		ClusterID:      cluster,
		CustomerID:     "prior-customer",
		OrderID:        "prior-order",
		Marketplace:    "emea",
		Description:    "previously submitted claim",
		PerceptualHash: hash,
		Embedding:      vec,
	}
}

// unitAtCosine returns a 2-dim vector whose cosine similarity against (1, 0)
// is approximately c.
func unitAtCosine(c float64) []float32 {
	s := 1 - c*c
	if s < 0 {
		s = 0
	}
	return []float32{float32(c), float32(math.Sqrt(s))}
}
