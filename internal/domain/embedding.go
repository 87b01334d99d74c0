package domain

import "context"

// Embedder is the shared text vectorization contract between layers.
// Implementations are provider-agnostic: given text, return a vector of
// fixed dimensionality.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// Captioner produces a short descriptive caption for an image reference.
type Captioner interface {
	CaptionImage(ctx context.Context, url string) (string, error)
}

// ProviderHealthChecker verifies embedding provider availability.
type ProviderHealthChecker interface {
	HealthCheck(ctx context.Context) error
}
