package domain

import (
	"math"
	"testing"
)

func TestCosineSimilarity_Identity(t *testing.T) {
	v := []float32{0.3, -0.5, 0.8, 0.1}
	got := CosineSimilarity(v, v)
	if math.Abs(got-1.0) > 1e-6 {
		t.Fatalf("expected ~1.0 for identical vectors, got %f", got)
	}
}

func TestCosineSimilarity_LengthMismatch(t *testing.T) {
	if got := CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3}); got != -1 {
		t.Fatalf("expected -1 for length mismatch, got %f", got)
	}
	if got := CosineSimilarity(nil, []float32{1}); got != -1 {
		t.Fatalf("expected -1 for nil vector, got %f", got)
	}
}

func TestCosineSimilarity_ZeroVector(t *testing.T) {
	if got := CosineSimilarity([]float32{0, 0}, []float32{1, 1}); got != 0 {
		t.Fatalf("expected 0 for zero vector, got %f", got)
	}
}

func TestCosineSimilarity_Opposite(t *testing.T) {
	got := CosineSimilarity([]float32{1, 0}, []float32{-1, 0})
	if math.Abs(got+1.0) > 1e-6 {
		t.Fatalf("expected ~-1.0 for opposite vectors, got %f", got)
	}
}

func TestEncodeDecodeVector(t *testing.T) {
	v := []float32{0.25, -1.5, 3.75}

	decoded, err := DecodeVector(EncodeVector(v))
	if err != nil {
		t.Fatalf("DecodeVector: %v", err)
	}
	if len(decoded) != len(v) {
		t.Fatalf("expected %d values, got %d", len(v), len(decoded))
	}
	for i := range v {
		if decoded[i] != v[i] {
			t.Errorf("value %d: got %f, want %f", i, decoded[i], v[i])
		}
	}
}

func TestDecodeVector_InvalidLength(t *testing.T) {
	if _, err := DecodeVector([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error for data not a multiple of 4 bytes")
	}
}
