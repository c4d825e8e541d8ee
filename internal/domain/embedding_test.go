package domain

import (
	"context"
	"errors"
	"testing"
)

type stubEmbedder struct {
	result    EmbeddingResult
	err       error
	healthErr error
	got       string
}

func (s *stubEmbedder) Embed(_ context.Context, text string) (EmbeddingResult, error) {
	s.got = text
	return s.result, s.err
}

func (s *stubEmbedder) HealthCheck(_ context.Context) error { return s.healthErr }

type plainEmbedder struct{}

func (plainEmbedder) Embed(_ context.Context, _ string) (EmbeddingResult, error) {
	return EmbeddingResult{}, nil
}

func TestInstructionEmbedder_PrependsInstruction(t *testing.T) {
	inner := &stubEmbedder{result: EmbeddingResult{Embedding: []float32{0.1, 0.2, 0.3}}}
	emb := NewInstructionEmbedder(inner, "query: ")

	result, err := emb.Embed(context.Background(), "summer vibes")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.got != "query: summer vibes" {
		t.Errorf("expected prepended text, got %q", inner.got)
	}
	if len(result.Embedding) != 3 {
		t.Errorf("expected 3-element vector, got %d", len(result.Embedding))
	}
}

func TestInstructionEmbedder_ErrorPropagation(t *testing.T) {
	innerErr := errors.New("provider down")
	inner := &stubEmbedder{err: innerErr}
	emb := NewInstructionEmbedder(inner, "query: ")

	_, err := emb.Embed(context.Background(), "party")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, innerErr) {
		t.Errorf("expected wrapped inner error, got %v", err)
	}
}

func TestInstructionEmbedder_EmptyInstruction(t *testing.T) {
	inner := &stubEmbedder{result: EmbeddingResult{Embedding: []float32{0.5}}}
	emb := NewInstructionEmbedder(inner, "")

	if _, err := emb.Embed(context.Background(), "breakup"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.got != "breakup" {
		t.Errorf("expected 'breakup', got %q", inner.got)
	}
}

func TestInstructionEmbedder_HealthCheckDelegates(t *testing.T) {
	down := errors.New("model missing")
	emb := NewInstructionEmbedder(&stubEmbedder{healthErr: down}, "query: ")

	if err := emb.HealthCheck(context.Background()); !errors.Is(err, down) {
		t.Errorf("expected inner health error, got %v", err)
	}
}

func TestInstructionEmbedder_HealthCheckWithoutSupport(t *testing.T) {
	emb := NewInstructionEmbedder(plainEmbedder{}, "query: ")

	if err := emb.HealthCheck(context.Background()); err != nil {
		t.Errorf("expected nil for embedder without health check, got %v", err)
	}
}
