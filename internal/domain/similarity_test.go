package domain

import (
	"errors"
	"math"
	"testing"
)

func TestCosine_SelfSimilarity(t *testing.T) {
	v := []float32{0.3, -1.2, 4.5, 0.01}

	sim, err := Cosine(v, v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(sim-1.0) > 1e-6 {
		t.Errorf("Cosine(v, v) = %v, want 1.0", sim)
	}
}

func TestCosine_OppositeVectors(t *testing.T) {
	a := []float32{1, 2, -3}
	b := []float32{-1, -2, 3}

	sim, err := Cosine(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(sim+1.0) > 1e-6 {
		t.Errorf("Cosine(v, -v) = %v, want -1.0", sim)
	}
}

func TestCosine_Symmetric(t *testing.T) {
	a := []float32{0.5, 0.1, -0.7, 2.2}
	b := []float32{1.5, -0.3, 0.9, 0.4}

	ab, err := Cosine(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ba, err := Cosine(b, a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ab != ba {
		t.Errorf("Cosine not symmetric: %v vs %v", ab, ba)
	}
}

func TestCosine_Orthogonal(t *testing.T) {
	sim, err := Cosine([]float32{1, 0}, []float32{0, 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(sim) > 1e-6 {
		t.Errorf("orthogonal vectors: sim = %v, want 0", sim)
	}
}

func TestCosine_DimensionMismatch(t *testing.T) {
	_, err := Cosine([]float32{1, 2}, []float32{1, 2, 3})
	if !errors.Is(err, ErrDimMismatch) {
		t.Errorf("expected ErrDimMismatch, got %v", err)
	}
}

func TestCosine_EmptyVectors(t *testing.T) {
	_, err := Cosine(nil, nil)
	if !errors.Is(err, ErrDimMismatch) {
		t.Errorf("expected ErrDimMismatch, got %v", err)
	}
}

func TestCosine_ZeroNorm(t *testing.T) {
	_, err := Cosine([]float32{0, 0, 0}, []float32{1, 2, 3})
	if !errors.Is(err, ErrDegenerateVector) {
		t.Errorf("expected ErrDegenerateVector, got %v", err)
	}

	_, err = Cosine([]float32{1, 2, 3}, []float32{0, 0, 0})
	if !errors.Is(err, ErrDegenerateVector) {
		t.Errorf("expected ErrDegenerateVector, got %v", err)
	}
}
