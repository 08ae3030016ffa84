package claims

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/kailas-cloud/claimdex/internal/domain"
)

// vectorToBlob serializes []float32 to raw bytes (4 bytes per float, little-endian).
// The element count is persisted separately in embedding_dim, never inferred
// from the buffer length alone.
func vectorToBlob(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// blobToVector deserializes a raw buffer back to []float32, checking it against
// the persisted dimensionality. Returns nil and false on disagreement.
func blobToVector(blob []byte, dim int) ([]float32, bool) {
	if dim <= 0 || len(blob) != dim*4 {
		return nil, false
	}
	v := make([]float32, dim)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return v, true
}

// rowScanner abstracts *sql.Rows and *sql.Row for scanRecord.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRecord reads one records row. A dim/buffer disagreement marks the record
// Corrupt rather than failing: one bad historical row must never block a scan.
func scanRecord(row rowScanner) (domain.ClaimRecord, error) {
	var (
		rec       domain.ClaimRecord
		dim       int
		blob      []byte
		createdAt time.Time
	)
	if err := row.Scan(
		&rec.ClusterID, &rec.CustomerID, &rec.OrderID, &rec.Marketplace,
		&rec.Description, &rec.PerceptualHash, &dim, &blob, &createdAt,
	); err != nil {
		return domain.ClaimRecord{}, err
	}
	rec.CreatedAt = createdAt

	vec, ok := blobToVector(blob, dim)
	if !ok {
		rec.Corrupt = true
		return rec, nil
	}
	rec.Embedding = vec
	return rec, nil
}
