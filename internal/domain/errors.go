package domain

import "errors"

var (
	// ErrQueryRequired signals an empty search query.
	ErrQueryRequired = errors.New("query is required")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrEmbedderUnavailable signals that the embedding model could not be loaded.
	ErrEmbedderUnavailable = errors.New("embedder unavailable")
	// ErrVectorStoreError signals a vector store failure.
	ErrVectorStoreError = errors.New("vector store error")
	// ErrMalformedRecord signals a store hit that carries no payload.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrInvalidPreferences signals a preference form that failed validation.
	ErrInvalidPreferences = errors.New("invalid preferences")
)
