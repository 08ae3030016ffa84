package embedding

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/kailas-cloud/claimdex/internal/domain"
)

// --- Mocks ---

type mockProvider struct {
	imageVec   []float32
	textVec    []float32
	imageErr   error
	textErr    error
	imageCalls int
	textCalls  int
	gotText    string
}

func (m *mockProvider) EmbedImage(_ context.Context, _ []byte) (domain.EmbeddingResult, error) {
	m.imageCalls++
	if m.imageErr != nil {
		return domain.EmbeddingResult{}, m.imageErr
	}
	return domain.EmbeddingResult{Vector: m.imageVec}, nil
}

func (m *mockProvider) EmbedText(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.textCalls++
	m.gotText = text
	if m.textErr != nil {
		return domain.EmbeddingResult{}, m.textErr
	}
	return domain.EmbeddingResult{Vector: m.textVec}, nil
}

func TestJoint_WeightedCombination(t *testing.T) {
	provider := &mockProvider{
		imageVec: []float32{1, 0, -1},
		textVec:  []float32{0, 1, 1},
	}
	joint := NewJoint(provider)

	vec, err := joint.Embed(context.Background(), []byte("img"), "broken on arrival")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []float64{0.4, 0.6, 0.2} // 0.4*img + 0.6*text
	if len(vec) != len(want) {
		t.Fatalf("vector length = %d, want %d", len(vec), len(want))
	}
	for i := range want {
		if math.Abs(float64(vec[i])-want[i]) > 1e-6 {
			t.Errorf("vec[%d] = %v, want %v", i, vec[i], want[i])
		}
	}
}

func TestJoint_Deterministic(t *testing.T) {
	provider := &mockProvider{
		imageVec: []float32{0.25, 0.75},
		textVec:  []float32{0.5, -0.5},
	}
	joint := NewJoint(provider)

	v1, err := joint.Embed(context.Background(), []byte("img"), "desc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v2, err := joint.Embed(context.Background(), []byte("img"), "desc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range v1 {
		if v1[i] != v2[i] {
			t.Fatalf("embedding not deterministic at [%d]: %v vs %v", i, v1[i], v2[i])
		}
	}
}

func TestJoint_EmptyDescriptionAccepted(t *testing.T) {
	provider := &mockProvider{
		imageVec: []float32{1, 1},
		textVec:  []float32{0, 0},
	}
	joint := NewJoint(provider)

	vec, err := joint.Embed(context.Background(), []byte("img"), "")
	if err != nil {
		t.Fatalf("empty description must embed, got error: %v", err)
	}
	if provider.gotText != "" {
		t.Errorf("expected empty text forwarded to provider, got %q", provider.gotText)
	}
	if len(vec) != 2 {
		t.Errorf("vector length = %d, want 2", len(vec))
	}
}

func TestJoint_ImageErrorAborts(t *testing.T) {
	providerErr := errors.New("inference down")
	provider := &mockProvider{imageErr: providerErr, textVec: []float32{1}}
	joint := NewJoint(provider)

	_, err := joint.Embed(context.Background(), []byte("img"), "desc")
	if !errors.Is(err, providerErr) {
		t.Fatalf("expected wrapped provider error, got %v", err)
	}
}

func TestJoint_TextErrorAborts(t *testing.T) {
	providerErr := errors.New("inference down")
	provider := &mockProvider{imageVec: []float32{1}, textErr: providerErr}
	joint := NewJoint(provider)

	_, err := joint.Embed(context.Background(), []byte("img"), "desc")
	if !errors.Is(err, providerErr) {
		t.Fatalf("expected wrapped provider error, got %v", err)
	}
}

func TestJoint_ModalityDimMismatch(t *testing.T) {
	provider := &mockProvider{
		imageVec: []float32{1, 2, 3},
		textVec:  []float32{1, 2},
	}
	joint := NewJoint(provider)

	_, err := joint.Embed(context.Background(), []byte("img"), "desc")
	if !errors.Is(err, domain.ErrDimMismatch) {
		t.Fatalf("expected ErrDimMismatch, got %v", err)
	}
}

func TestJoint_EmptyVectors(t *testing.T) {
	provider := &mockProvider{imageVec: []float32{}, textVec: []float32{}}
	joint := NewJoint(provider)

	_, err := joint.Embed(context.Background(), []byte("img"), "desc")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
	}
}
