package domain

// KeyPrefix namespaces every key this service writes or indexes in Redis.
const KeyPrefix = "pitchsearch:"

// DefaultCollection is the reviews collection name shared by all vector store drivers.
const DefaultCollection = "music_reviews"

// DefaultReviewOrigin qualifies relative review URLs.
const DefaultReviewOrigin = "https://pitchfork.com"

// VectorConfig holds internal vectorization settings, not exposed to clients.
type VectorConfig struct {
	Model          string
	Dimensions     int
	DistanceMetric string
	TopK           int
}

// DefaultVectorConfig returns the default configuration tuned for all-MiniLM-L6-v2.
func DefaultVectorConfig() VectorConfig {
	return VectorConfig{
		Model:          "sentence-transformers/all-MiniLM-L6-v2",
		Dimensions:     384,
		DistanceMetric: "cosine",
		TopK:           10,
	}
}
