package embedding

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/claimdex/internal/domain"
)

func TestCachedProvider_TextHit(t *testing.T) {
	inner := &mockProvider{textVec: []float32{0.1, 0.2}}
	cached := NewCachedProvider(inner, time.Minute, nil)

	for i := 0; i < 3; i++ {
		res, err := cached.EmbedText(context.Background(), "same narrative")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(res.Vector) != 2 {
			t.Fatalf("vector length = %d, want 2", len(res.Vector))
		}
	}

	if inner.textCalls != 1 {
		t.Errorf("inner provider called %d times, want 1", inner.textCalls)
	}
}

func TestCachedProvider_ImageHit(t *testing.T) {
	inner := &mockProvider{imageVec: []float32{1, 0}}
	cached := NewCachedProvider(inner, time.Minute, nil)

	img := []byte{0xde, 0xad, 0xbe, 0xef}
	if _, err := cached.EmbedImage(context.Background(), img); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := cached.EmbedImage(context.Background(), img); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if inner.imageCalls != 1 {
		t.Errorf("inner provider called %d times, want 1", inner.imageCalls)
	}
}

func TestCachedProvider_DistinctInputsMiss(t *testing.T) {
	inner := &mockProvider{textVec: []float32{0.5}}
	cached := NewCachedProvider(inner, time.Minute, nil)

	if _, err := cached.EmbedText(context.Background(), "first"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := cached.EmbedText(context.Background(), "second"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if inner.textCalls != 2 {
		t.Errorf("inner provider called %d times, want 2", inner.textCalls)
	}
}

func TestCachedProvider_ModalitiesDoNotCollide(t *testing.T) {
	inner := &mockProvider{imageVec: []float32{1}, textVec: []float32{2}}
	cached := NewCachedProvider(inner, time.Minute, nil)

	payload := []byte("identical bytes")
	imgRes, err := cached.EmbedImage(context.Background(), payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	txtRes, err := cached.EmbedText(context.Background(), string(payload))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if imgRes.Vector[0] == txtRes.Vector[0] {
		t.Error("image and text entries with identical payloads collided in the cache")
	}
}

func TestCachedProvider_ErrorNotCached(t *testing.T) {
	providerErr := errors.New("transient")
	inner := &mockProvider{textErr: providerErr}
	cached := NewCachedProvider(inner, time.Minute, nil)

	if _, err := cached.EmbedText(context.Background(), "x"); !errors.Is(err, providerErr) {
		t.Fatalf("expected provider error, got %v", err)
	}

	inner.textErr = nil
	inner.textVec = []float32{0.9}
	res, err := cached.EmbedText(context.Background(), "x")
	if err != nil {
		t.Fatalf("recovery call failed: %v", err)
	}
	if res.Vector[0] != 0.9 {
		t.Errorf("expected fresh result after failed call, got %v", res.Vector)
	}
	if inner.textCalls != 2 {
		t.Errorf("inner provider called %d times, want 2", inner.textCalls)
	}
}

var _ domain.Provider = (*mockProvider)(nil)
