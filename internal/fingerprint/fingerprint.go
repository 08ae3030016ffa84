// Package fingerprint computes perceptual image fingerprints used as the
// exact-duplicate key. Two images differing only by minor recompression or
// resizing produce identical or near-identical fingerprints; visually distinct
// images diverge with high probability.
package fingerprint

import (
	"bytes"
	"fmt"
	"image"

	// Registered decoders for image.Decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/corona10/goimagehash"

	"github.com/kailas-cloud/claimdex/internal/domain"
)

// PHash computes 64-bit DCT perceptual hashes.
type PHash struct{}

// NewPHash creates a perceptual hasher.
func NewPHash() *PHash { return &PHash{} }

// Hash returns the perceptual hash of img in its canonical string form
// ("p:<hex>"). Deterministic: the same image always yields the same string.
func (*PHash) Hash(img image.Image) (string, error) {
	h, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return "", fmt.Errorf("perception hash: %w", err)
	}
	return h.ToString(), nil
}

// Decode decodes a raster image (jpeg, png or gif) from raw bytes.
// Failures wrap domain.ErrImageDecode so callers can reject the claim
// before any hashing, embedding or store access happens.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %v: %w", err, domain.ErrImageDecode)
	}
	return img, nil
}

// Distance returns the Hamming distance between two fingerprint strings.
// Used by audit tooling to inspect how close a near-miss was.
func Distance(a, b string) (int, error) {
	ha, err := goimagehash.ImageHashFromString(a)
	if err != nil {
		return 0, fmt.Errorf("parse fingerprint %q: %w", a, err)
	}
	hb, err := goimagehash.ImageHashFromString(b)
	if err != nil {
		return 0, fmt.Errorf("parse fingerprint %q: %w", b, err)
	}
	d, err := ha.Distance(hb)
	if err != nil {
		return 0, fmt.Errorf("fingerprint distance: %w", err)
	}
	return d, nil
}
