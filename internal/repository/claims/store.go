// Package claims persists the append-only claim record history in SQLite.
package claims

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kailas-cloud/claimdex/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	cluster_id      TEXT NOT NULL,
	customer_id     TEXT NOT NULL DEFAULT '',
	order_id        TEXT NOT NULL DEFAULT '',
	marketplace     TEXT NOT NULL DEFAULT '',
	description     TEXT NOT NULL DEFAULT '',
	perceptual_hash TEXT NOT NULL,
	embedding_dim   INTEGER NOT NULL,
	embedding       BLOB NOT NULL,
	created_at      TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_records_hash ON records(perceptual_hash);

CREATE TABLE IF NOT EXISTS clusters (
	perceptual_hash TEXT PRIMARY KEY,
	cluster_id      TEXT NOT NULL
);
`

// Store is the SQLite-backed claim record store. The records table is
// append-only: there are no update or delete paths. The clusters table maps
// each perceptual hash to the cluster id that first claimed it and backs the
// compare-and-insert used to close the check-then-insert race.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the claims database at path.
// WAL mode keeps full-history scans running concurrently with inserts.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Insert appends one record. The write is a single implicit transaction:
// a concurrent scan sees either the whole row or nothing.
func (s *Store) Insert(ctx context.Context, rec domain.ClaimRecord) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("validate record: %w", err)
	}

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO records
			(cluster_id, customer_id, order_id, marketplace, description,
			 perceptual_hash, embedding_dim, embedding, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ClusterID, rec.CustomerID, rec.OrderID, rec.Marketplace, rec.Description,
		rec.PerceptualHash, len(rec.Embedding), vectorToBlob(rec.Embedding), createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// ScanAll returns every stored record. Order is unspecified; callers must not
// depend on it. Rows whose embedding buffer disagrees with the stored
// dimensionality come back with Corrupt set instead of failing the scan.
func (s *Store) ScanAll(ctx context.Context) ([]domain.ClaimRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT cluster_id, customer_id, order_id, marketplace, description,
		       perceptual_hash, embedding_dim, embedding, created_at
		FROM records`)
	if err != nil {
		return nil, fmt.Errorf("scan records: %w", err)
	}
	defer rows.Close()

	var records []domain.ClaimRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("read record row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

// ReserveCluster atomically claims clusterID for hash. Returns the winning
// cluster id: the proposed one if this call reserved the hash first, or the
// previously reserved id if another writer won — the caller then treats the
// submission as a match against the winner instead of minting a second cluster.
func (s *Store) ReserveCluster(ctx context.Context, hash, clusterID string) (string, error) {
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO clusters (perceptual_hash, cluster_id) VALUES (?, ?)
		ON CONFLICT(perceptual_hash) DO NOTHING`,
		hash, clusterID,
	); err != nil {
		return "", fmt.Errorf("reserve cluster: %w", err)
	}

	var winner string
	if err := s.db.QueryRowContext(ctx,
		`SELECT cluster_id FROM clusters WHERE perceptual_hash = ?`, hash,
	).Scan(&winner); err != nil {
		return "", fmt.Errorf("read reserved cluster: %w", err)
	}
	return winner, nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
